package targetsize

import (
	"context"
	"errors"
	"image"
	"image/color"

	"github.com/AnyUserName/imgfit/internal/encoder"
)

// blankImage has bounds but no pixel storage, so large sources cost nothing.
type blankImage struct{ w, h int }

func (b blankImage) ColorModel() color.Model { return color.RGBAModel }
func (b blankImage) Bounds() image.Rectangle { return image.Rect(0, 0, b.w, b.h) }
func (b blankImage) At(int, int) color.Color { return color.Black }

const fakeHeader = 1000

// fakeEncoder models encoded size analytically: a fixed header plus a
// per-pixel cost that grows with quality for lossy kinds. It is
// deterministic and monotonic in both axes.
type fakeEncoder struct {
	kind   encoder.Kind
	calls  int
	failAt int // fail on this call number (1-based); 0 never fails
	scales []float64
}

func (f *fakeEncoder) Format() string {
	if f.kind == encoder.Lossless {
		return "png"
	}
	return "jpeg"
}

func (f *fakeEncoder) Kind() encoder.Kind { return f.kind }

func (f *fakeEncoder) Encode(_ context.Context, img image.Image, scale, quality float64) ([]byte, error) {
	f.calls++
	f.scales = append(f.scales, scale)
	if f.failAt > 0 && f.calls == f.failAt {
		return nil, errors.New("backend exploded")
	}
	return make([]byte, f.sizeFor(img, scale, quality)), nil
}

func (f *fakeEncoder) sizeFor(img image.Image, scale, quality float64) int {
	b := img.Bounds()
	w, h := encoder.ScaledSize(b.Dx(), b.Dy(), scale)
	bpp := 3.0
	if f.kind == encoder.Lossy {
		bpp = 0.05 + 1.95*quality
	}
	return fakeHeader + int(float64(w*h)*bpp)
}
