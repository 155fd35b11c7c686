package encoder

import (
	"bytes"
	"context"
	"image"

	"github.com/disintegration/imaging"
)

// JPEGEncoder encodes images to JPEG through imaging (stdlib codec underneath).
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() string    { return "jpeg" }
func (e *JPEGEncoder) Extension() string { return "jpg" }
func (e *JPEGEncoder) Kind() Kind        { return Lossy }
func (e *JPEGEncoder) Available() bool   { return true }

func (e *JPEGEncoder) Encode(ctx context.Context, img image.Image, quality float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(qualityPercent(quality))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
