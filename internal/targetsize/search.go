package targetsize

import (
	"context"
	"fmt"
	"strings"

	"github.com/AnyUserName/imgfit/internal/encoder"
)

// candidate is one encode attempt tagged with the parameters that produced it.
type candidate struct {
	data    []byte
	quality float64
	scale   float64
}

func (c *candidate) size() int64 { return int64(len(c.data)) }

// searchState holds the bounds of the current phase and the best candidate
// that fits the budget. It is owned by a single Search call.
type searchState struct {
	lowQuality, highQuality float64
	lowScale, highScale     float64
	best                    *candidate
}

type searcher struct {
	ctx      context.Context
	src      Source
	enc      Encoder
	target   int64
	opts     Options
	progress *progress
	attempts int
}

// Search finds the highest-quality, then largest-scale, encoding of src that
// fits in targetBytes.
//
// Lossy formats first binary-search quality at full scale. If nothing fits,
// or the format is lossless, scale is searched with quality held fixed. When
// even that fails, a single encode at the fallback configuration is returned
// with OverBudget set; an unreachable target is never an error.
//
// Errors are returned only for invalid arguments, encoder failures
// (*EncodeError) and context cancellation, which is checked before every
// encode.
func Search(ctx context.Context, src Source, enc Encoder, targetBytes int64, opts Options) (*Result, error) {
	if targetBytes <= 0 {
		return nil, ErrInvalidTarget
	}
	if enc == nil {
		return nil, ErrNoEncoder
	}
	if w, h := src.Dimensions(); w < 1 || h < 1 {
		return nil, ErrEmptyImage
	}
	opts = opts.WithDefaults()

	lossy := enc.Kind() == encoder.Lossy
	phases := 1
	if lossy {
		phases = 2
	}

	s := &searcher{
		ctx:      ctx,
		src:      src,
		enc:      enc,
		target:   targetBytes,
		opts:     opts,
		progress: newProgress(opts.StepsPerPhase*phases, opts.OnProgress),
	}
	state := searchState{
		lowQuality:  opts.MinQuality,
		highQuality: 1.0,
		lowScale:    opts.MinScale,
		highScale:   1.0,
	}

	if lossy {
		if err := s.searchQuality(&state); err != nil {
			return nil, err
		}
	}

	// Quality is not a usable axis for lossless formats.
	scaleQuality, fallbackQuality := 1.0, 1.0
	if lossy {
		scaleQuality, fallbackQuality = opts.ScaleQuality, opts.FallbackQuality
	}

	if state.best == nil {
		if err := s.searchScale(&state, scaleQuality); err != nil {
			return nil, err
		}
	}

	fallback := false
	if state.best == nil {
		c, err := s.attempt(opts.FallbackScale, fallbackQuality)
		if err != nil {
			return nil, err
		}
		state.best = &c
		fallback = true
	}

	res := s.result(state.best, fallback)
	s.progress.finish()
	return res, nil
}

// searchQuality binary-searches quality at full scale, keeping the largest
// quality whose encoding fits.
func (s *searcher) searchQuality(st *searchState) error {
	for i := 0; i < s.opts.StepsPerPhase; i++ {
		mid := (st.lowQuality + st.highQuality) / 2
		c, err := s.attempt(1.0, mid)
		if err != nil {
			return err
		}
		if c.size() <= s.target {
			st.best = &c
			st.lowQuality = mid
		} else {
			st.highQuality = mid
		}
	}
	return nil
}

// searchScale binary-searches the linear scale factor at a fixed quality,
// keeping the largest scale whose encoding fits.
func (s *searcher) searchScale(st *searchState, quality float64) error {
	for i := 0; i < s.opts.StepsPerPhase; i++ {
		mid := (st.lowScale + st.highScale) / 2
		c, err := s.attempt(mid, quality)
		if err != nil {
			return err
		}
		if c.size() <= s.target {
			st.best = &c
			st.lowScale = mid
		} else {
			st.highScale = mid
		}
	}
	return nil
}

func (s *searcher) attempt(scale, quality float64) (candidate, error) {
	if err := s.ctx.Err(); err != nil {
		return candidate{}, fmt.Errorf("search canceled after %d attempts: %w", s.attempts, err)
	}
	s.attempts++
	data, err := s.enc.Encode(s.ctx, s.src.Image, scale, quality)
	if err != nil {
		return candidate{}, &EncodeError{Format: s.enc.Format(), Quality: quality, Scale: scale, Err: err}
	}
	s.progress.step()
	return candidate{data: data, quality: quality, scale: scale}, nil
}

func (s *searcher) result(best *candidate, fallback bool) *Result {
	w, h := s.src.Dimensions()
	outW, outH := encoder.ScaledSize(w, h, best.scale)
	kind := s.enc.Kind()

	res := &Result{
		Data:          best.data,
		Size:          best.size(),
		Target:        s.target,
		OriginalSize:  s.src.Size,
		Format:        strings.ToUpper(s.enc.Format()),
		Kind:          kind,
		Quality:       qualityPercent(best.quality),
		QualityFactor: best.quality,
		Scale:         best.scale,
		Width:         outW,
		Height:        outH,
		OverBudget:    best.size() > s.target,
		Fallback:      fallback,
		Attempts:      s.attempts,
	}
	res.ReductionPercentage = Reduction(s.src.Size, res.Size)
	res.Explanation = explain(res)
	return res
}
