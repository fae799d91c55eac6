package llm

import (
	"context"
	"sync"
)

// Client abstracts the generative model used by the analyzer.
// Implementations must be concurrency-safe; one Client serves every request.
type Client interface {
	// Generate sends the prompt together with the image and returns the
	// model's reply text as-is. The reply may be any text at all.
	Generate(ctx context.Context, prompt string, imageData []byte, mimeType string) (string, error)
	// SourceName returns a short provider label for logs (e.g. "Gemini").
	SourceName() string
}

// Provider hands out the process-wide Client, constructing it on first use.
// Concurrent first callers block until the single construction finishes;
// a construction error is kept and returned to every caller.
type Provider struct {
	once   sync.Once
	newFn  func() (Client, error)
	client Client
	err    error
}

func NewProvider(newFn func() (Client, error)) *Provider {
	return &Provider{newFn: newFn}
}

// Client returns the shared client.
func (p *Provider) Client() (Client, error) {
	p.once.Do(func() {
		p.client, p.err = p.newFn()
	})
	return p.client, p.err
}
