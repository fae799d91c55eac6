package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewGray(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func TestNewResizerDisabled(t *testing.T) {
	assert.Nil(t, NewResizer(0))
	assert.Nil(t, NewResizer(-1))

	var r *Resizer
	data := []byte("anything")
	out, mime := r.Prepare(data, "image/webp")
	assert.Equal(t, data, out)
	assert.Equal(t, "image/webp", mime)
}

func TestPrepareKeepsSmallImages(t *testing.T) {
	data := encodePNG(t, 40, 30)
	out, mime := NewResizer(64).Prepare(data, "image/png")
	assert.Equal(t, data, out)
	assert.Equal(t, "image/png", mime)
}

func TestPrepareShrinksPNG(t *testing.T) {
	data := encodePNG(t, 200, 100)
	out, mime := NewResizer(50).Prepare(data, "image/png")
	assert.Equal(t, "image/png", mime)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 50, cfg.Width)
	assert.Equal(t, 25, cfg.Height)
}

func TestPrepareShrinksJPEG(t *testing.T) {
	data := encodeJPEG(t, 60, 240)
	out, mime := NewResizer(120).Prepare(data, "image/jpeg")
	assert.Equal(t, "image/jpeg", mime)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Width)
	assert.Equal(t, 120, cfg.Height)
}

func TestPrepareLeavesUndecodableBytes(t *testing.T) {
	data := []byte("definitely not an image")
	out, mime := NewResizer(10).Prepare(data, "image/jpeg")
	assert.Equal(t, data, out)
	assert.Equal(t, "image/jpeg", mime)
}

func TestOrientationWithoutExif(t *testing.T) {
	assert.Equal(t, 1, Orientation(encodeJPEG(t, 4, 4)))
	assert.Equal(t, 1, Orientation([]byte("junk")))
}

func TestOrient(t *testing.T) {
	// 2x1 image: red at (0,0), blue at (1,0)
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	red := color.RGBA{R: 255, A: 255}
	blue := color.RGBA{B: 255, A: 255}
	src.Set(0, 0, red)
	src.Set(1, 0, blue)

	assert.Same(t, image.Image(src), Orient(src, 1))

	flipped := Orient(src, 2)
	assert.Equal(t, blue, flipped.At(0, 0))
	assert.Equal(t, red, flipped.At(1, 0))

	cw := Orient(src, 6)
	assert.Equal(t, image.Rect(0, 0, 1, 2), cw.Bounds())
	assert.Equal(t, red, cw.At(0, 0))
	assert.Equal(t, blue, cw.At(0, 1))

	ccw := Orient(src, 8)
	assert.Equal(t, image.Rect(0, 0, 1, 2), ccw.Bounds())
	assert.Equal(t, blue, ccw.At(0, 0))
	assert.Equal(t, red, ccw.At(0, 1))
}
