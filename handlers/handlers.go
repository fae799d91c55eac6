package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"specter-vision/config"
	"specter-vision/models"
	"specter-vision/service"
	"specter-vision/version"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const (
	ServiceName     = "Specter Vision API"
	DefaultMimeType = "image/jpeg"

	KindValidation = "ValidationError"
)

// Handlers represents the HTTP handlers
type Handlers struct {
	service *service.Service
	config  *config.Config
}

// NewHandlers creates new HTTP handlers
func NewHandlers(svc *service.Service, cfg *config.Config) *Handlers {
	return &Handlers{service: svc, config: cfg}
}

// HealthCheck handles health check requests
func (h *Handlers) HealthCheck(c *gin.Context) {
	model := h.config.GeminiModel
	if h.config.LLMProvider == config.ProviderStub {
		model = config.ProviderStub
	}
	c.JSON(http.StatusOK, gin.H{
		"name":    ServiceName,
		"status":  "operational",
		"model":   model,
		"version": version.Get("specter-vision"),
	})
}

// Analyze runs a synchronous analysis and returns the complete result
func (h *Handlers) Analyze(c *gin.Context) {
	imageData, mimeType, ok := h.bindImage(c)
	if !ok {
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), imageData, mimeType)
	if err != nil {
		status := http.StatusInternalServerError
		if service.ErrorKind(err) == service.KindUpstreamCall {
			status = http.StatusBadGateway
		}
		c.JSON(status, models.AnalysisError{
			Success: false,
			Error:   service.ErrorKind(err),
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// AnalyzeStream runs an analysis and pushes its progress as server-sent events
func (h *Handlers) AnalyzeStream(c *gin.Context) {
	imageData, mimeType, ok := h.bindImage(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	// Drain until the producer closes the channel, even after a failed write.
	var writeErr error
	for ev := range h.service.AnalyzeStream(c.Request.Context(), imageData, mimeType) {
		if writeErr != nil {
			continue
		}
		if writeErr = writeEvent(c.Writer, ev); writeErr != nil {
			log.FromContext(c.Request.Context()).WithError(writeErr).Warn("analysis.stream.write_failed")
		}
	}
}

// bindImage reads and validates the analyze request body. It writes the
// 400 response itself and reports false when the request is unusable.
func (h *Handlers) bindImage(c *gin.Context) ([]byte, string, bool) {
	var req models.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			badRequest(c, "image_base64 is required")
		} else {
			badRequest(c, fmt.Sprintf("request body is not valid JSON: %v", err))
		}
		return nil, "", false
	}

	mimeType, encoded := splitDataURI(req.ImageBase64)
	if req.MimeType != "" {
		mimeType = req.MimeType
	}
	if mimeType == "" {
		mimeType = DefaultMimeType
	}

	imageData, err := decodeBase64(encoded)
	if err != nil {
		badRequest(c, "image_base64 is not valid base64")
		return nil, "", false
	}
	if len(imageData) == 0 {
		badRequest(c, "image is empty")
		return nil, "", false
	}
	if int64(len(imageData)) > h.config.MaxFileSizeBytes() {
		badRequest(c, fmt.Sprintf("image too large: %.2fMB > %dMB", sizeMB(len(imageData)), h.config.MaxFileSizeMB))
		return nil, "", false
	}

	log.FromContext(c.Request.Context()).WithFields(log.Fields{
		"mime_type":   mimeType,
		"image_bytes": len(imageData),
	}).Info("analysis.request")
	return imageData, mimeType, true
}

// splitDataURI accepts both bare base64 and "data:<mime>;base64,<data>".
func splitDataURI(s string) (string, string) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return "", s
	}
	header, data, found := strings.Cut(s, ",")
	if !found {
		return "", s
	}
	mimeType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
	return mimeType, data
}

func decodeBase64(s string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(s)
	if err == nil {
		return data, nil
	}
	// browsers sometimes strip padding
	if raw, rawErr := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "=")); rawErr == nil {
		return raw, nil
	}
	return nil, err
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, models.AnalysisError{
		Success: false,
		Error:   KindValidation,
		Message: message,
	})
}

func sizeMB(n int) float64 {
	return float64(n) / (1024 * 1024)
}
