package targetsize

// Defaults for the search. The phase-2 working quality is an empirical
// tuning constant and is exposed through Options.
const (
	DefaultStepsPerPhase   = 16
	DefaultMinQuality      = 0.01
	DefaultMinScale        = 0.01
	DefaultScaleQuality    = 0.75
	DefaultFallbackScale   = 0.05
	DefaultFallbackQuality = 0.1
)

// Options tunes a search. Zero fields take the defaults above.
type Options struct {
	// StepsPerPhase is the fixed number of binary-search iterations per phase.
	StepsPerPhase int
	// MinQuality is the lower quality bound for phase 1.
	MinQuality float64
	// MinScale is the lower scale bound for phase 2.
	MinScale float64
	// ScaleQuality is the quality held fixed while lossy formats scale.
	ScaleQuality float64
	// FallbackScale and FallbackQuality configure the final encode used
	// when nothing fits.
	FallbackScale   float64
	FallbackQuality float64

	// OnProgress, if set, receives a non-decreasing percentage after every
	// encode attempt and exactly 100 once the search completes.
	OnProgress func(percent float64)
}

// WithDefaults fills zero or out-of-range fields with the package defaults.
func (o Options) WithDefaults() Options {
	if o.StepsPerPhase <= 0 {
		o.StepsPerPhase = DefaultStepsPerPhase
	}
	if o.MinQuality <= 0 || o.MinQuality >= 1 {
		o.MinQuality = DefaultMinQuality
	}
	if o.MinScale <= 0 || o.MinScale >= 1 {
		o.MinScale = DefaultMinScale
	}
	if o.ScaleQuality <= 0 || o.ScaleQuality > 1 {
		o.ScaleQuality = DefaultScaleQuality
	}
	if o.FallbackScale <= 0 || o.FallbackScale > 1 {
		o.FallbackScale = DefaultFallbackScale
	}
	if o.FallbackQuality <= 0 || o.FallbackQuality > 1 {
		o.FallbackQuality = DefaultFallbackQuality
	}
	return o
}
