package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"math"
	"net/http"

	"specter-vision/models"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

var allowedUploadTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

// Upload accepts a multipart image file, checks its type and size, and
// returns it base64-encoded for a following analyze call.
func (h *Handlers) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "file is required")
		return
	}

	declared := file.Header.Get("Content-Type")
	if !allowedUploadTypes[declared] {
		badRequest(c, fmt.Sprintf("unsupported file type: %s", declared))
		return
	}

	limit := h.config.MaxFileSizeBytes()
	if file.Size > limit {
		badRequest(c, fmt.Sprintf("file too large: %.2fMB > %dMB", sizeMB(int(file.Size)), h.config.MaxFileSizeMB))
		return
	}

	f, err := file.Open()
	if err != nil {
		log.Errorf("Failed to open uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, models.AnalysisError{Success: false, Error: "InternalError", Message: "failed to read upload"})
		return
	}
	defer f.Close()

	contents, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		log.Errorf("Failed to read uploaded file: %v", err)
		c.JSON(http.StatusInternalServerError, models.AnalysisError{Success: false, Error: "InternalError", Message: "failed to read upload"})
		return
	}
	if int64(len(contents)) > limit {
		badRequest(c, fmt.Sprintf("file too large: more than %dMB", h.config.MaxFileSizeMB))
		return
	}

	// The declared type comes from the client; trust the bytes instead.
	detected := mimetype.Detect(contents)
	if !allowedUploadTypes[detected.String()] {
		badRequest(c, fmt.Sprintf("file content is %s, not a supported image", detected.String()))
		return
	}

	c.JSON(http.StatusOK, models.UploadResponse{
		Success:  true,
		Filename: file.Filename,
		MimeType: detected.String(),
		SizeMB:   math.Round(sizeMB(len(contents))*100) / 100,
		Base64:   base64.StdEncoding.EncodeToString(contents),
	})
}
