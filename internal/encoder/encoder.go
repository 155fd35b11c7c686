package encoder

import (
	"context"
	"image"
	"math"
)

// Kind classifies an output format by whether it exposes a quality axis.
type Kind int

const (
	// Lossy formats (JPEG, WebP, AVIF) trade quality for size.
	Lossy Kind = iota
	// Lossless formats (PNG) ignore quality; only dimensions change size.
	Lossless
)

func (k Kind) String() string {
	switch k {
	case Lossy:
		return "lossy"
	case Lossless:
		return "lossless"
	default:
		return "unknown"
	}
}

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the output format name (e.g. "jpeg", "webp", "avif", "png").
	Format() string

	// Kind reports whether quality is a usable axis for this format.
	Kind() Kind

	// Encode converts the image to bytes at the given quality in [0, 1].
	// Lossless encoders ignore quality. Output must be deterministic for
	// identical inputs.
	Encode(ctx context.Context, img image.Image, quality float64) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, avifenc) may not be installed.
	Available() bool

	// Extension returns the file extension without dot.
	Extension() string
}

// qualityPercent maps a [0, 1] quality factor to the 1-100 scale codecs use.
func qualityPercent(q float64) int {
	p := int(math.Round(q * 100))
	if p < 1 {
		return 1
	}
	if p > 100 {
		return 100
	}
	return p
}
