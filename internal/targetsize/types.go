// Package targetsize searches an encoder's quality and scale axes for the
// highest-fidelity encoding that fits a byte budget.
package targetsize

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/AnyUserName/imgfit/internal/encoder"
)

var (
	// ErrInvalidTarget is returned for a non-positive byte budget.
	ErrInvalidTarget = errors.New("target size must be positive")
	// ErrEmptyImage is returned for images with no pixels.
	ErrEmptyImage = errors.New("image has no pixels")
	// ErrNoEncoder is returned when Search is called without an encoder.
	ErrNoEncoder = errors.New("no encoder")
)

// Source is a decoded image plus what is known about the file it came from.
// The search never mutates it.
type Source struct {
	Image  image.Image
	Format string // source format: jpeg, png, webp, gif, bmp, tiff...
	Size   int64  // original encoded size in bytes, 0 if unknown
}

// Dimensions returns the pixel width and height, or 0, 0 without an image.
func (s Source) Dimensions() (int, int) {
	if s.Image == nil {
		return 0, 0
	}
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Encoder is the encode primitive the search drives: encode img scaled by a
// linear factor at a quality in [0, 1]. It must be deterministic.
type Encoder interface {
	Format() string
	Kind() encoder.Kind
	Encode(ctx context.Context, img image.Image, scale, quality float64) ([]byte, error)
}

// EncodeError wraps a failure of the encode primitive with the parameters
// that were being tried.
type EncodeError struct {
	Format  string
	Quality float64
	Scale   float64
	Err     error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s at quality %.3f scale %.3f: %v", e.Format, e.Quality, e.Scale, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Result is the outcome of one search.
type Result struct {
	Data         []byte
	Size         int64
	Target       int64
	OriginalSize int64
	Format       string // upper-case output format, e.g. "JPEG"
	Kind         encoder.Kind

	Quality       int     // quality percent, 0-100
	QualityFactor float64 // quality in [0, 1] actually used
	Scale         float64
	Width         int
	Height        int

	ReductionPercentage float64
	Explanation         string

	// OverBudget is set when even the fallback encode exceeds Target.
	OverBudget bool
	// Fallback is set when no candidate fit and the minimum
	// configuration was returned instead.
	Fallback bool
	// Attempts counts encode calls, the fallback included.
	Attempts int
}

// State is the lifecycle of one image as observed by a caller.
type State int

const (
	Idle State = iota
	Searching
	Completed
	Failed
)

var stateNames = [...]string{"idle", "searching", "completed", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// Terminal reports whether no further transitions can happen.
func (s State) Terminal() bool { return s == Completed || s == Failed }

func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if string(text) == name {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown state %q", text)
}
