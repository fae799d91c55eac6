package models

import (
	"errors"
	"fmt"
	"strings"
)

const (
	MinShockValue = 1
	MaxShockValue = 10
)

// ErrInvalidAttribute is returned by strict validation of an Attribute.
var ErrInvalidAttribute = errors.New("invalid attribute")

// Coordinates locate an attribute on the image, normalized to 0..1.
type Coordinates struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius"`
}

// Attribute is one finding surfaced by the model about an image
type Attribute struct {
	Name           string       `json:"attribute_name"`
	DetectionLogic string       `json:"detection_logic"`
	Insight        string       `json:"black_tech_insight"`
	ShockValue     int          `json:"shock_value"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`
}

// Validate reports whether the attribute satisfies the strict shape.
// Values are never clamped or trimmed into validity.
func (a Attribute) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: attribute_name is required", ErrInvalidAttribute)
	}
	if strings.TrimSpace(a.DetectionLogic) == "" {
		return fmt.Errorf("%w: detection_logic is required", ErrInvalidAttribute)
	}
	if strings.TrimSpace(a.Insight) == "" {
		return fmt.Errorf("%w: black_tech_insight is required", ErrInvalidAttribute)
	}
	if a.ShockValue < MinShockValue || a.ShockValue > MaxShockValue {
		return fmt.Errorf("%w: shock_value %d out of range [%d,%d]", ErrInvalidAttribute, a.ShockValue, MinShockValue, MaxShockValue)
	}
	return nil
}

// AnalysisResult is the complete output of one analysis
type AnalysisResult struct {
	Success          bool        `json:"success"`
	Summary          string      `json:"image_summary"`
	Attributes       []Attribute `json:"attributes"`
	ProcessingTimeMs *float64    `json:"processing_time_ms,omitempty"`
}

// SetProcessingTime stamps the elapsed milliseconds on the result.
func (r *AnalysisResult) SetProcessingTime(ms float64) {
	if ms < 0 {
		ms = 0
	}
	r.ProcessingTimeMs = &ms
}

// AnalysisError is the body returned when an analysis cannot be produced
type AnalysisError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// AnalyzeRequest is the inbound body of the analyze endpoints
type AnalyzeRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`
	MimeType    string `json:"mime_type"`
}

// UploadResponse is returned by the upload endpoint
type UploadResponse struct {
	Success  bool    `json:"success"`
	Filename string  `json:"filename"`
	MimeType string  `json:"mime_type"`
	SizeMB   float64 `json:"size_mb"`
	Base64   string  `json:"base64"`
}
