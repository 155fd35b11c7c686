package encoder

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// ScaledSize applies a linear scale factor to both dimensions. Results are
// floored and never drop below one pixel.
func ScaledSize(width, height int, scale float64) (int, int) {
	w := int(math.Floor(float64(width) * scale))
	h := int(math.Floor(float64(height) * scale))
	return max(1, w), max(1, h)
}

// Resize returns img scaled by a linear factor using Lanczos resampling.
// The original is returned untouched when the dimensions would not change.
func Resize(img image.Image, scale float64) image.Image {
	b := img.Bounds()
	w, h := ScaledSize(b.Dx(), b.Dy(), scale)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	return imaging.Resize(img, w, h, imaging.Lanczos)
}

// Scaled turns a format encoder into an encode primitive over
// (image, scale, quality).
type Scaled struct {
	enc Encoder
}

// NewScaled wraps enc.
func NewScaled(enc Encoder) *Scaled {
	return &Scaled{enc: enc}
}

func (s *Scaled) Format() string    { return s.enc.Format() }
func (s *Scaled) Extension() string { return s.enc.Extension() }
func (s *Scaled) Kind() Kind        { return s.enc.Kind() }

// Encode resizes img by scale and encodes it at quality.
func (s *Scaled) Encode(ctx context.Context, img image.Image, scale, quality float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.enc.Encode(ctx, Resize(img, scale), quality)
}
