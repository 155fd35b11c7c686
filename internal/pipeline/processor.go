package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/AnyUserName/imgfit/internal/decoder"
	"github.com/AnyUserName/imgfit/internal/encoder"
	"github.com/AnyUserName/imgfit/internal/hasher"
	"github.com/AnyUserName/imgfit/internal/logger"
	"github.com/AnyUserName/imgfit/internal/report"
	"github.com/AnyUserName/imgfit/internal/targetsize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// processResult holds the report entry for a single input.
type processResult struct {
	key   string
	entry report.Entry
}

// process handles one input: decode, pick an encoder, search, write.
func (p *Pipeline) process(ctx context.Context, in Input) processResult {
	log := logger.WithImage(p.log, in.Key)
	res := processResult{
		key: in.Key,
		entry: report.Entry{
			JobID: uuid.NewString(),
			State: targetsize.Idle,
			Source: report.SourceInfo{
				Path:   in.RelPath,
				Format: in.Format,
				Size:   in.Size,
			},
		},
	}

	fail := func(err error) processResult {
		res.entry.State = targetsize.Failed
		res.entry.Error = err.Error()
		log.WithError(err).Error("failed")
		p.emit(Event{Key: in.Key, State: targetsize.Failed, Err: err})
		return res
	}

	if err := ctx.Err(); err != nil {
		return fail(fmt.Errorf("not started: %w", err))
	}

	res.entry.State = targetsize.Searching
	p.emit(Event{Key: in.Key, State: targetsize.Searching})

	src, err := decoder.DecodeFile(in.AbsPath)
	if err != nil {
		return fail(err)
	}
	w, h := src.Dimensions()
	res.entry.Source.Width, res.entry.Source.Height = w, h
	res.entry.Source.Format = src.Format

	enc, err := p.encoderFor(src.Format)
	if err != nil {
		return fail(err)
	}

	opts := p.cfg.Search
	opts.OnProgress = func(pct float64) {
		p.emit(Event{Key: in.Key, State: targetsize.Searching, Percent: pct})
	}

	log.WithFields(logrus.Fields{
		"format": enc.Format(),
		"width":  w,
		"height": h,
		"target": p.cfg.Target,
	}).Debug("searching")

	result, err := targetsize.Search(ctx, src, encoder.NewScaled(enc), p.cfg.Target, opts)
	if err != nil {
		return fail(err)
	}

	relPath := outputPath(in, enc, p.cfg.Suffix)
	if err := writeAtomic(filepath.Join(p.cfg.OutputDir, filepath.FromSlash(relPath)), result.Data); err != nil {
		return fail(fmt.Errorf("write %s: %w", relPath, err))
	}

	res.entry.State = targetsize.Completed
	res.entry.Output = &report.Output{
		Path:        relPath,
		Format:      enc.Format(),
		Width:       result.Width,
		Height:      result.Height,
		Size:        result.Size,
		Hash:        hasher.ContentHash(result.Data, hasher.DefaultLen),
		Quality:     result.Quality,
		Scale:       result.Scale,
		Reduction:   result.ReductionPercentage,
		Explanation: result.Explanation,
		OverBudget:  result.OverBudget,
		Fallback:    result.Fallback,
		Attempts:    result.Attempts,
	}

	entry := log.WithFields(logrus.Fields{
		"quality":  result.Quality,
		"scale":    result.Scale,
		"size":     result.Size,
		"target":   result.Target,
		"attempts": result.Attempts,
	})
	if result.OverBudget {
		entry.Warn("target unreachable; wrote minimum configuration")
	} else {
		entry.Info("done")
	}

	p.emit(Event{Key: in.Key, State: targetsize.Completed, Percent: 100, Result: result})
	return res
}

// encoderFor honours a forced output format, else maps the source format.
func (p *Pipeline) encoderFor(sourceFormat string) (encoder.Encoder, error) {
	if p.cfg.Format == "" {
		return p.registry.ForSource(sourceFormat)
	}
	enc := p.registry.Get(p.cfg.Format)
	if enc == nil {
		return nil, fmt.Errorf("%w: %s", encoder.ErrUnavailable, p.cfg.Format)
	}
	return enc, nil
}

// outputPath builds <key><suffix>.<ext> using the input's unique key, so
// two sources never share an output. The source extension is kept when the
// format is unchanged so "photo.JPG" stays "photo_exact.JPG".
func outputPath(in Input, enc encoder.Encoder, suffix string) string {
	ext := "." + enc.Extension()
	if in.Format == enc.Format() {
		ext = path.Ext(in.RelPath)
	}
	return in.Key + suffix + ext
}

// writeAtomic writes data to a private temp file next to dst and renames
// it into place.
func writeAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	_, err = f.Write(data)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0o644)
	}
	if err == nil {
		err = os.Rename(tmp, dst)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
