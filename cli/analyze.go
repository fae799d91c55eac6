package cli

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"specter-vision/config"
	"specter-vision/metrics"
	"specter-vision/models"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"
)

var analyzeFlags struct {
	mimeType string
	stream   bool
	provider string
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <image>",
		Short: "Analyze a local image and print the result",
		Long: `Analyze reads an image file, sends it to the configured model and prints
the normalized result as JSON.

With --stream every event is printed on its own line as it is produced:
  {"event":"progress","data":{"message":"Scanning image..."}}`,
		Args: cobra.ExactArgs(1),
		RunE: runAnalyze,
	}
	f := cmd.Flags()
	f.StringVar(&analyzeFlags.mimeType, "mime", "", "Image MIME type (default: guessed from the file)")
	f.BoolVar(&analyzeFlags.stream, "stream", false, "Print streaming events instead of the final result")
	f.StringVar(&analyzeFlags.provider, "provider", "", "Model provider override: gemini or stub (default: $LLM_PROVIDER)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return fmt.Errorf("image %s is empty", args[0])
	}

	cfg := config.Load()
	setLogLevel(cfg.LogLevel)
	if analyzeFlags.provider != "" {
		cfg.LLMProvider = strings.ToLower(analyzeFlags.provider)
	}
	svc, err := buildService(cfg)
	if err != nil {
		return err
	}
	metrics.Register()

	mimeType := analyzeFlags.mimeType
	if mimeType == "" {
		mimeType = guessMimeType(args[0], data)
	}

	out := cmd.OutOrStdout()
	if !analyzeFlags.stream {
		result, err := svc.Analyze(cmd.Context(), data, mimeType)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	enc := json.NewEncoder(out)
	var failure error
	for ev := range svc.AnalyzeStream(cmd.Context(), data, mimeType) {
		if err := enc.Encode(map[string]interface{}{"event": ev.Kind, "data": ev.Data}); err != nil {
			return err
		}
		if !ev.Terminal() {
			continue
		}
		if payload, ok := ev.Data.(models.ErrorPayload); ok {
			failure = fmt.Errorf("analysis failed: %s: %s", payload.Error, payload.Message)
		}
	}
	return failure
}

// guessMimeType prefers the file extension and sniffs the content otherwise.
func guessMimeType(path string, data []byte) string {
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(t, "image/") {
		return t
	}
	return mimetype.Detect(data).String()
}
