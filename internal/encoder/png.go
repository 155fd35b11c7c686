package encoder

import (
	"bytes"
	"context"
	"image"
	"image/png"

	"github.com/disintegration/imaging"
)

// PNGEncoder encodes images to PNG at best compression. It is also the
// output container for sources that have no encoder of their own (gif, bmp, tiff).
type PNGEncoder struct{}

func (e *PNGEncoder) Format() string    { return "png" }
func (e *PNGEncoder) Extension() string { return "png" }
func (e *PNGEncoder) Kind() Kind        { return Lossless }
func (e *PNGEncoder) Available() bool   { return true }

func (e *PNGEncoder) Encode(ctx context.Context, img image.Image, _ float64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression))
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
