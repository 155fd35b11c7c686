package targetsize

import "math"

// progress turns completed encode attempts into a percentage. It stays
// below 100 until finish is called.
type progress struct {
	total int
	done  int
	last  float64
	fn    func(float64)
}

func newProgress(total int, fn func(float64)) *progress {
	return &progress{total: max(total, 1), fn: fn}
}

func (p *progress) step() {
	p.done++
	if p.fn == nil {
		return
	}
	pct := math.Min(99, float64(p.done)/float64(p.total)*100)
	if pct < p.last {
		pct = p.last
	}
	p.last = pct
	p.fn(pct)
}

func (p *progress) finish() {
	if p.fn != nil {
		p.last = 100
		p.fn(100)
	}
}
