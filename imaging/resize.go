package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/apex/log"
	"github.com/rwcarlsen/goexif/exif"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const jpegQuality = 85

// Resizer shrinks images whose longest side exceeds MaxDimension before
// they are sent to the model. Attribute coordinates are normalized to the
// image size, so downscaling does not change their meaning.
type Resizer struct {
	MaxDimension int
}

// NewResizer returns nil when maxDimension is not positive, which disables resizing.
func NewResizer(maxDimension int) *Resizer {
	if maxDimension <= 0 {
		return nil
	}
	return &Resizer{MaxDimension: maxDimension}
}

// Prepare returns the image to send and its mime type. Images that are small
// enough, or that cannot be decoded, are returned unchanged; the model gets
// the original bytes rather than an error.
func (r *Resizer) Prepare(data []byte, mimeType string) ([]byte, string) {
	if r == nil || r.MaxDimension <= 0 {
		return data, mimeType
	}
	out, outType, err := r.resize(data, mimeType)
	if err != nil {
		log.Warnf("Image left unchanged: %v", err)
		return data, mimeType
	}
	return out, outType
}

func (r *Resizer) resize(data []byte, mimeType string) ([]byte, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image header: %w", err)
	}
	if cfg.Width <= r.MaxDimension && cfg.Height <= r.MaxDimension {
		return data, mimeType, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	// Re-encoding drops EXIF, so bake the orientation into the pixels first.
	orientation := Orientation(data)
	img = Orient(img, orientation)

	b := img.Bounds()
	scale := float64(r.MaxDimension) / float64(b.Dx())
	if s := float64(r.MaxDimension) / float64(b.Dy()); s < scale {
		scale = s
	}
	w := max(1, int(float64(b.Dx())*scale))
	h := max(1, int(float64(b.Dy())*scale))

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)

	var buf bytes.Buffer
	outType := "image/jpeg"
	if format == "png" {
		outType = "image/png"
		err = png.Encode(&buf, dst)
	} else {
		err = jpeg.Encode(&buf, dst, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode resized image: %w", err)
	}

	log.Infof("Image resized: %d bytes -> %d bytes (%dx%d -> %dx%d, orientation: %d)",
		len(data), buf.Len(), b.Dx(), b.Dy(), w, h, orientation)
	return buf.Bytes(), outType, nil
}

// Orientation reads the EXIF orientation tag, defaulting to 1 (upright).
func Orientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 1
	}
	return v
}

// Orient returns img transformed so that EXIF orientation o displays upright.
func Orient(img image.Image, o int) image.Image {
	if o <= 1 || o > 8 {
		return img
	}
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	// orientations 5-8 swap the axes
	dw, dh := w, h
	if o >= 5 {
		dw, dh = h, w
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var dx, dy int
			switch o {
			case 2: // flip horizontal
				dx, dy = w-1-x, y
			case 3: // rotate 180
				dx, dy = w-1-x, h-1-y
			case 4: // flip vertical
				dx, dy = x, h-1-y
			case 5: // transpose
				dx, dy = y, x
			case 6: // rotate 90 clockwise
				dx, dy = h-1-y, x
			case 7: // transverse
				dx, dy = h-1-y, w-1-x
			case 8: // rotate 90 counter-clockwise
				dx, dy = y, w-1-x
			}
			dst.Set(dx, dy, img.At(b.Min.X+x, b.Min.Y+y))
		}
	}
	return dst
}
