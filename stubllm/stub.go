package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Client is a deterministic, no-network model stub for local runs and
// end-to-end tests. It answers with a fenced, schema-valid reply so the
// whole normalization path is exercised.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) Generate(ctx context.Context, prompt string, imageData []byte, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Make output deterministic per-input.
	sum := sha256.Sum256(imageData)
	short := hex.EncodeToString(sum[:4])
	shock := int(sum[0])%10 + 1

	out := map[string]any{
		"image_summary": fmt.Sprintf("Stubbed analysis of a %d byte %s image (%s)", len(imageData), mimeType, short),
		"attributes": []map[string]any{
			{
				"attribute_name":     "Compression Fingerprint Drift",
				"detection_logic":    fmt.Sprintf("Byte histogram digest %s", short),
				"black_tech_insight": "The file has been re-encoded at least once since capture.",
				"shock_value":        shock,
			},
			{
				"attribute_name":     "Central Light Vector Offset",
				"detection_logic":    "Brightest region sits off the geometric center.",
				"black_tech_insight": "A second light source sits outside the frame.",
				"shock_value":        5,
				"coordinates":        map[string]float64{"x": 0.5, "y": 0.5, "radius": 0.2},
			},
		},
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return "Here is what I found:\n```json\n" + string(b) + "\n```", nil
}
