// Package metrics provides running accumulators and the post-yield
// threshold analysis of a result table.
package metrics

import "math"

// Metric accumulates a scalar summary over observed samples.
type Metric interface {
	Name() string
	Observe(v float64)
	Value() float64
	Reset()
}

// Mean is the arithmetic mean of the observed samples.
type Mean struct {
	name    string
	sum     float64
	samples int
}

func NewMean(name string) *Mean {
	return &Mean{name: name}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(v float64) {
	m.sum += v
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Samples() int { return m.samples }

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}

// Peak tracks the largest magnitude observed.
type Peak struct {
	name string
	max  float64
	seen bool
}

func NewPeak(name string) *Peak {
	return &Peak{name: name}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(v float64) {
	a := math.Abs(v)
	if !p.seen || a > p.max {
		p.max = a
	}
	p.seen = true
}

func (p *Peak) Value() float64 { return p.max }

func (p *Peak) Reset() {
	p.max = 0
	p.seen = false
}

// Exceedance is the fraction of samples strictly above a threshold.
type Exceedance struct {
	name      string
	threshold float64
	above     int
	samples   int
}

func NewExceedance(name string, threshold float64) *Exceedance {
	return &Exceedance{name: name, threshold: threshold}
}

func (e *Exceedance) Name() string { return e.name }

func (e *Exceedance) Observe(v float64) {
	e.samples++
	if v > e.threshold {
		e.above++
	}
}

func (e *Exceedance) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return float64(e.above) / float64(e.samples)
}

func (e *Exceedance) Reset() {
	e.above = 0
	e.samples = 0
}
