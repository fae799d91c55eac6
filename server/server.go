package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"specter-vision/config"
	"specter-vision/handlers"
	"specter-vision/middleware"

	"github.com/apex/log"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	EndPointRoot          = "/"
	EndPointHealth        = "/health"
	EndPointMetrics       = "/metrics"
	EndPointAnalyze       = "/analyze"
	EndPointAnalyzeStream = "/analyze/stream"
	EndPointUpload        = "/upload"

	shutdownTimeout = 30 * time.Second
)

// NewRouter wires the HTTP routes.
func NewRouter(cfg *config.Config, h *handlers.Handlers) *gin.Engine {
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cache-Control", middleware.HeaderRequestID},
		ExposeHeaders:    []string{middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.CORSOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID(), cors.New(corsConfig))

	router.GET(EndPointRoot, h.HealthCheck)
	router.GET(EndPointHealth, h.HealthCheck)
	router.GET(EndPointMetrics, gin.WrapH(promhttp.Handler()))

	limited := router.Group("/")
	limited.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerMinute, time.Minute))
	{
		// SSE frames must reach the client unbuffered, so only the JSON routes are compressed.
		compressed := limited.Group("/", gzip.Gzip(gzip.DefaultCompression))
		compressed.POST(EndPointAnalyze, h.Analyze)
		compressed.POST(EndPointUpload, h.Upload)

		limited.POST(EndPointAnalyzeStream, h.AnalyzeStream)
	}

	return router
}

// Run serves handler on cfg.Addr() until ctx is canceled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting HTTP server on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server exited")
	return nil
}
