package prompt

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AttributeDelimiter separates attributes when the model is asked to self-delimit.
const AttributeDelimiter = "---ATTRIBUTE---"

//go:embed heuristic.yaml
var defaultDocument []byte

// Document is the prompt configuration as stored on disk
type Document struct {
	Role                 string `yaml:"role"`
	Protocol             string `yaml:"protocol"`
	StreamingInstruction string `yaml:"streaming_instruction"`
}

// Builder assembles the instruction text sent with each image.
// It holds no mutable state and is safe for concurrent use.
type Builder struct {
	doc Document
}

// NewBuilder returns a Builder over the embedded heuristic prompt.
func NewBuilder() (*Builder, error) {
	return parse(defaultDocument)
}

// LoadBuilder reads a prompt document from path. An empty path selects the
// embedded prompt.
func LoadBuilder(path string) (*Builder, error) {
	if path == "" {
		return NewBuilder()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read prompt file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Builder, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse prompt document: %w", err)
	}
	doc.Role = strings.TrimSpace(doc.Role)
	doc.Protocol = strings.TrimSpace(doc.Protocol)
	if doc.Role == "" || doc.Protocol == "" {
		return nil, errors.New("prompt document needs both role and protocol")
	}
	return &Builder{doc: doc}, nil
}

// Build returns the role block followed by the protocol block.
func (b *Builder) Build() string {
	return b.doc.Role + "\n\n" + b.doc.Protocol
}

// StreamingInstruction asks the model to separate attributes with
// AttributeDelimiter. The stream flow waits for the full reply and does
// not send it; it is kept for token-level streaming.
func (b *Builder) StreamingInstruction() string {
	if s := strings.TrimSpace(b.doc.StreamingInstruction); s != "" {
		return s
	}
	return fmt.Sprintf("Output each finding one at a time, separating findings with %q.", AttributeDelimiter)
}
