package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/AnyUserName/imgfit/internal/encoder"
	"github.com/AnyUserName/imgfit/internal/logger"
	"github.com/AnyUserName/imgfit/internal/report"
	"github.com/AnyUserName/imgfit/internal/targetsize"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrNoInputs is returned when a run has nothing to process.
var ErrNoInputs = errors.New("no images found")

// Config holds all parameters for a pipeline run.
type Config struct {
	Inputs    []string // files and/or directories
	OutputDir string
	Target    int64  // byte budget per image
	Format    string // force this output format; empty keeps the source's
	Suffix    string // appended to the output base name, e.g. "_exact"
	Workers   int    // concurrent searches; <= 0 means NumCPU
	Profile   string // recorded in the report
	Search    targetsize.Options

	// Registry supplies encoders; nil probes the built-in set.
	Registry *encoder.Registry
	// Logger receives per-image logs; nil discards them.
	Logger logrus.FieldLogger
	// OnEvent observes state changes and progress. It is called from
	// worker goroutines and must be safe for concurrent use.
	OnEvent func(Event)
}

// Event is a state change or progress update for one image.
type Event struct {
	Key     string
	State   targetsize.State
	Percent float64
	Result  *targetsize.Result // set on Completed
	Err     error              // set on Failed
}

// Pipeline runs target-size searches over many images.
type Pipeline struct {
	cfg      Config
	registry *encoder.Registry
	log      logrus.FieldLogger
}

// New creates a configured pipeline.
func New(cfg Config) *Pipeline {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = encoder.NewRegistry()
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Discard()
	}
	return &Pipeline{cfg: cfg, registry: registry, log: log}
}

// Run scans the inputs, searches every image with at most Workers running
// at once, and returns the report. One image failing never stops the
// others; an error is returned only when nothing could be processed or the
// context was canceled, in which case the partial report is still returned.
func (p *Pipeline) Run(ctx context.Context) (*report.Report, error) {
	if p.cfg.Target <= 0 {
		return nil, targetsize.ErrInvalidTarget
	}
	log := logger.WithOperation(p.log, "compress")
	log.Debug(p.registry.String())

	inputs, err := ScanImages(p.cfg.Inputs...)
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if len(inputs) == 0 {
		return nil, ErrNoInputs
	}
	log.WithField("images", len(inputs)).Info("starting")

	if err := os.MkdirAll(p.cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	for _, in := range inputs {
		p.emit(Event{Key: in.Key, State: targetsize.Idle})
	}

	results := make([]processResult, len(inputs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, p.cfg.Workers)

	for i, in := range inputs {
		wg.Add(1)
		go func(idx int, in Input) {
			defer wg.Done()
			sem <- struct{}{}        // acquire
			defer func() { <-sem }() // release

			results[idx] = p.process(ctx, in)
		}(i, in)
	}
	wg.Wait()

	r := report.New(p.cfg.Profile, p.cfg.Target)
	opts := p.cfg.Search.WithDefaults()
	r.RunInfo = &report.RunInfo{
		RunID:         uuid.NewString(),
		Workers:       p.cfg.Workers,
		StepsPerPhase: opts.StepsPerPhase,
		ScaleQuality:  opts.ScaleQuality,
	}

	failed := 0
	for _, res := range results {
		r.Entries[res.key] = res.entry
		if res.entry.State == targetsize.Failed {
			failed++
		}
	}
	r.ComputeStats()

	if err := ctx.Err(); err != nil {
		return r, fmt.Errorf("run canceled: %w", err)
	}
	if failed == len(inputs) {
		return r, fmt.Errorf("all %d images failed to process", failed)
	}
	if failed > 0 {
		log.WithField("failed", failed).Warnf("%d of %d images had errors", failed, len(inputs))
	}
	return r, nil
}

func (p *Pipeline) emit(ev Event) {
	if p.cfg.OnEvent != nil {
		p.cfg.OnEvent(ev)
	}
}
