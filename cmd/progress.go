package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/AnyUserName/imgfit/internal/pipeline"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progress folds per-image percentages into one bar. Each image is worth
// 100 units; the bar grows as Idle events announce new images.
type progress struct {
	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	percent map[string]float64
	done    int
}

func newProgress(w io.Writer, show bool) *progress {
	p := &progress{percent: map[string]float64{}}
	if !show {
		return p
	}
	p.bar = progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("compressing"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return p
}

func (p *progress) enabled() bool { return p.bar != nil }

// observe is the pipeline event hook; it runs on worker goroutines.
func (p *progress) observe(ev pipeline.Event) {
	if p.bar == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	prev, known := p.percent[ev.Key]
	switch {
	case !known:
		p.percent[ev.Key] = 0
		p.bar.ChangeMax(len(p.percent) * 100)
	case ev.State.Terminal():
		p.percent[ev.Key] = 100
		p.done++
		p.bar.Describe(fmt.Sprintf("compressing %d/%d", p.done, len(p.percent)))
	case ev.Percent > prev:
		p.percent[ev.Key] = ev.Percent
	}

	var sum float64
	for _, v := range p.percent {
		sum += v
	}
	_ = p.bar.Set(int(sum))
}

func (p *progress) finish() {
	if p.bar == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.bar.Finish()
}
