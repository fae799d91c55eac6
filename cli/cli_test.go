package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"specter-vision/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	// PNG signature is enough for content sniffing
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n0000"), 0o600))
	return path
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestAnalyzePrintsResult(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "stub")
	path := writeImage(t, "room.png")

	out, err := runCmd(t, "analyze", path)
	require.NoError(t, err)

	var result models.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	assert.Contains(t, result.Summary, "image/png")
	assert.Len(t, result.Attributes, 2)
	require.NotNil(t, result.ProcessingTimeMs)
}

func TestAnalyzeStreamPrintsOneEventPerLine(t *testing.T) {
	path := writeImage(t, "room.bin")

	out, err := runCmd(t, "analyze", path, "--stream", "--provider", "stub", "--mime", "image/webp")
	require.NoError(t, err)

	var kinds []string
	scanner := bufio.NewScanner(bytes.NewBufferString(out))
	for scanner.Scan() {
		var line struct {
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		kinds = append(kinds, line.Event)
	}
	assert.Equal(t, []string{"progress", "progress", "progress", "attribute", "attribute", "complete"}, kinds)
}

func TestAnalyzeRequiresGeminiKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GOOGLE_API_KEY", "")
	path := writeImage(t, "room.png")

	_, err := runCmd(t, "analyze", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_API_KEY")
}

func TestAnalyzeMissingFile(t *testing.T) {
	_, err := runCmd(t, "analyze", filepath.Join(t.TempDir(), "nope.png"), "--provider", "stub")
	assert.Error(t, err)
}

func TestGuessMimeType(t *testing.T) {
	assert.Equal(t, "image/png", guessMimeType("a.PNG", nil))
	assert.Equal(t, "image/jpeg", guessMimeType("a.jpg", nil))
	assert.Equal(t, "image/png", guessMimeType("upload", []byte("\x89PNG\r\n\x1a\n0000")))
}
