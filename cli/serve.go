package cli

import (
	"os/signal"
	"syscall"

	"specter-vision/config"
	"specter-vision/handlers"
	"specter-vision/metrics"
	"specter-vision/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			setLogLevel(cfg.LogLevel)
			if cfg.LogLevel != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}

			svc, err := buildService(cfg)
			if err != nil {
				return err
			}
			metrics.Register()

			router := server.NewRouter(cfg, handlers.NewHandlers(svc, cfg))

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Run(ctx, cfg, router)
		},
	}
}
