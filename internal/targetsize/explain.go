package targetsize

import (
	"fmt"
	"math"

	"github.com/AnyUserName/imgfit/internal/encoder"
)

// fullScaleThreshold is the scale below which a result counts as resized.
const fullScaleThreshold = 0.99

// Reduction returns the percentage saved going from original to final
// bytes, clamped at zero when the output grew. An unknown original (<= 0)
// reports zero.
func Reduction(original, final int64) float64 {
	if original <= 0 {
		return 0
	}
	return math.Max(0, float64(original-final)/float64(original)*100)
}

func qualityPercent(q float64) int {
	return int(math.Round(q * 100))
}

// explain picks one explanation: dimension scaling wins over the lossless
// note, which wins over the quality note.
func explain(r *Result) string {
	switch {
	case r.Scale < fullScaleThreshold:
		return fmt.Sprintf("Dimensions scaled to %d%% (%dx%d) to fit the target size",
			int(math.Round(r.Scale*100)), r.Width, r.Height)
	case r.Kind == encoder.Lossless:
		return "Lossless format: container compression optimized at original dimensions"
	default:
		return fmt.Sprintf("Encoding quality set to %d%% at original dimensions", r.Quality)
	}
}
