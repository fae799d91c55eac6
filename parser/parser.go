package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"specter-vision/metrics"
	"specter-vision/models"

	"github.com/apex/log"
)

const (
	// FallbackSummary is used when the reply decodes but carries no summary.
	FallbackSummary = "Analysis complete"

	// DegradedSummaryLength is the number of characters of the raw reply
	// kept as the summary when the reply cannot be decoded.
	DegradedSummaryLength = 200

	jsonFence = "```json"
	fence     = "```"
)

var errNoJSON = errors.New("no JSON object found in response")

// ExtractJSON locates the JSON object in a model reply. A fenced block
// labelled json wins; otherwise the text from the first '{' to the last '}'
// is returned.
func ExtractJSON(response string) (string, error) {
	if start := strings.Index(response, jsonFence); start != -1 {
		content := response[start+len(jsonFence):]
		if end := strings.Index(content, fence); end != -1 {
			content = content[:end]
		}
		return strings.TrimSpace(content), nil
	}

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end < start {
		return "", errNoJSON
	}
	return response[start : end+1], nil
}

// Parse turns a raw model reply into an AnalysisResult. It never fails:
// replies that cannot be decoded degrade to a result with no attributes
// and the head of the raw text as summary. Attribute items that fail strict
// validation are skipped; their valid siblings keep their order.
func Parse(response string) *models.AnalysisResult {
	result, err := decode(response)
	if err != nil {
		log.Warnf("Failed to parse model reply, using degraded result: %v", err)
		metrics.DegradedRepliesTotal.Inc()
		return Degraded(response)
	}
	return result
}

// Degraded builds the fallback result for a reply that could not be decoded.
func Degraded(response string) *models.AnalysisResult {
	summary := truncate(response, DegradedSummaryLength)
	if strings.TrimSpace(summary) == "" {
		summary = FallbackSummary
	}
	return &models.AnalysisResult{
		Success:    true,
		Summary:    summary,
		Attributes: []models.Attribute{},
	}
}

func decode(response string) (*models.AnalysisResult, error) {
	jsonContent, err := ExtractJSON(response)
	if err != nil {
		return nil, err
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(jsonContent), &obj); err != nil {
		return nil, fmt.Errorf("failed to decode JSON: %w", err)
	}
	if obj == nil {
		return nil, errors.New("reply JSON is not an object")
	}

	var items []json.RawMessage
	if raw, ok := obj["attributes"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("attributes is not an array: %w", err)
		}
	}

	attributes := make([]models.Attribute, 0, len(items))
	for i, item := range items {
		attr, err := decodeAttribute(item)
		if err != nil {
			log.Warnf("Skipping attribute %d: %v", i, err)
			metrics.SkippedAttributesTotal.Inc()
			continue
		}
		attributes = append(attributes, attr)
	}

	return &models.AnalysisResult{
		Success:    true,
		Summary:    decodeSummary(obj["image_summary"]),
		Attributes: attributes,
	}, nil
}

func decodeSummary(raw json.RawMessage) string {
	var summary string
	if len(raw) == 0 || json.Unmarshal(raw, &summary) != nil || strings.TrimSpace(summary) == "" {
		return FallbackSummary
	}
	return summary
}

type rawAttribute struct {
	Name           string          `json:"attribute_name"`
	DetectionLogic string          `json:"detection_logic"`
	Insight        string          `json:"black_tech_insight"`
	ShockValue     json.RawMessage `json:"shock_value"`
	Coordinates    json.RawMessage `json:"coordinates"`
}

type rawCoordinates struct {
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Radius *float64 `json:"radius"`
}

func decodeAttribute(item json.RawMessage) (models.Attribute, error) {
	var raw rawAttribute
	if err := json.Unmarshal(item, &raw); err != nil {
		return models.Attribute{}, fmt.Errorf("%w: %v", models.ErrInvalidAttribute, err)
	}

	shock, err := decodeShockValue(raw.ShockValue)
	if err != nil {
		return models.Attribute{}, err
	}
	coords, err := decodeCoordinates(raw.Coordinates)
	if err != nil {
		return models.Attribute{}, err
	}

	attr := models.Attribute{
		Name:           raw.Name,
		DetectionLogic: raw.DetectionLogic,
		Insight:        raw.Insight,
		ShockValue:     shock,
		Coordinates:    coords,
	}
	if err := attr.Validate(); err != nil {
		return models.Attribute{}, err
	}
	return attr, nil
}

// decodeShockValue accepts JSON numbers with no fractional part only.
// Strings such as "7" and values like 7.5 are rejected rather than coerced.
func decodeShockValue(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return 0, fmt.Errorf("%w: shock_value is required", models.ErrInvalidAttribute)
	}
	if raw[0] == '"' {
		return 0, fmt.Errorf("%w: shock_value must be a number", models.ErrInvalidAttribute)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("%w: shock_value must be a number", models.ErrInvalidAttribute)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: shock_value %v is not an integer", models.ErrInvalidAttribute, f)
	}
	if f < models.MinShockValue || f > models.MaxShockValue {
		return 0, fmt.Errorf("%w: shock_value %v out of range [%d,%d]", models.ErrInvalidAttribute, f, models.MinShockValue, models.MaxShockValue)
	}
	return int(f), nil
}

func decodeCoordinates(raw json.RawMessage) (*models.Coordinates, error) {
	if len(bytes.TrimSpace(raw)) == 0 || isNull(raw) {
		return nil, nil
	}
	var rc rawCoordinates
	if err := json.Unmarshal(raw, &rc); err != nil {
		return nil, fmt.Errorf("%w: coordinates: %v", models.ErrInvalidAttribute, err)
	}
	if rc.X == nil || rc.Y == nil || rc.Radius == nil {
		return nil, fmt.Errorf("%w: coordinates need x, y and radius", models.ErrInvalidAttribute)
	}
	return &models.Coordinates{X: *rc.X, Y: *rc.Y, Radius: *rc.Radius}, nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// truncate returns at most max characters of s without splitting a rune.
func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
