package stubllm

import (
	"context"
	"testing"

	"specter-vision/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubReplyParses(t *testing.T) {
	c := NewClient()
	reply, err := c.Generate(context.Background(), "prompt", []byte("image-bytes"), "image/png")
	require.NoError(t, err)

	result := parser.Parse(reply)
	require.Len(t, result.Attributes, 2)
	assert.Contains(t, result.Summary, "image/png")
	for _, attr := range result.Attributes {
		assert.NoError(t, attr.Validate())
	}
	assert.NotNil(t, result.Attributes[1].Coordinates)
}

func TestStubIsDeterministic(t *testing.T) {
	c := NewClient()
	a, err := c.Generate(context.Background(), "p", []byte("same"), "image/jpeg")
	require.NoError(t, err)
	b, err := c.Generate(context.Background(), "other prompt", []byte("same"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStubHonoursCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient().Generate(ctx, "p", nil, "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)
}
