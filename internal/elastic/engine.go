package elastic

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"

	"github.com/san-kum/tqcsim/internal/table"
	"github.com/san-kum/tqcsim/internal/thermo"
)

// Engine fits stress-strain sweeps and assembles the elastic matrices.
type Engine struct {
	threshold float64
	workers   int
	logger    *slog.Logger
}

type Option func(*Engine)

// WithThreshold sets the maximum governing strain kept for fitting.
func WithThreshold(t float64) Option {
	return func(e *Engine) { e.threshold = t }
}

// WithWorkers fits up to n files concurrently.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		threshold: DefaultThreshold,
		workers:   1,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	return e
}

func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Outcome is the result of processing one sweep file.
type Outcome struct {
	Source string
	Load   Load
	Fit    *Fit
	Err    error
}

func (o Outcome) OK() bool {
	return o.Err == nil && o.Fit != nil
}

// FitFiles reads and fits every path. Results keep the input order and a
// failing file is reported in its Outcome rather than aborting the batch.
func (e *Engine) FitFiles(paths []string) []Outcome {
	out := make([]Outcome, len(paths))

	if e.workers == 1 || len(paths) < 2 {
		for i, p := range paths {
			out[i] = e.fitFile(p)
		}
	} else {
		sem := make(chan struct{}, e.workers)
		var wg sync.WaitGroup
		for i, p := range paths {
			wg.Add(1)
			go func(idx int, path string) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				out[idx] = e.fitFile(path)
			}(i, p)
		}
		wg.Wait()
	}

	for _, o := range out {
		if o.Err != nil {
			e.logger.Warn("sweep skipped", "source", o.Source, "err", o.Err)
			continue
		}
		e.logger.Debug("sweep fitted", "source", o.Source, "load", o.Load.Identifier(), "rows", o.Fit.Rows)
	}
	return out
}

func (e *Engine) fitFile(path string) Outcome {
	o := Outcome{Source: path}

	load, err := ParseIdentifier(path)
	if err != nil {
		o.Err = &thermo.ConfigError{Source: path, Reason: err.Error()}
		return o
	}
	o.Load = load

	t, err := table.ReadFile(path, table.ReadOptions{Headers: [][]string{Headers()}})
	if err != nil {
		o.Err = err
		return o
	}
	sweep, err := SweepFromColumns(t, path)
	if err != nil {
		o.Err = err
		return o
	}
	o.Fit, o.Err = e.Fit(load, sweep, path)
	return o
}

// Constants maps stiffness names (C1111, C2211, ..., C6666) to values in
// the units of the input pressure over strain.
type Constants map[string]float64

// Combine averages forward and reverse fits of every constant and takes the
// magnitude. A constant seen in only one direction is used as is and a
// warning is returned for it. When several sweeps share a load the first
// one wins and the others are reported.
func (e *Engine) Combine(outcomes []Outcome) (Constants, []string) {
	type pair struct {
		fwd, rev       float64
		hasFwd, hasRev bool
	}
	pairs := make(map[string]*pair)
	seen := make(map[Load]string)
	var order, duplicates []string

	for _, o := range outcomes {
		if !o.OK() {
			continue
		}
		if first, ok := seen[o.Load]; ok {
			duplicates = append(duplicates, fmt.Sprintf("%s: duplicate %s sweep, keeping %s", o.Source, o.Load.Identifier(), first))
			continue
		}
		seen[o.Load] = o.Source
		for name, v := range o.Fit.Slopes {
			p, ok := pairs[name]
			if !ok {
				p = &pair{}
				pairs[name] = p
				order = append(order, name)
			}
			if o.Load.Reverse {
				p.rev, p.hasRev = v, true
			} else {
				p.fwd, p.hasFwd = v, true
			}
		}
	}

	sort.Strings(order)

	out := make(Constants, len(pairs))
	warnings := duplicates
	for _, name := range order {
		p := pairs[name]
		switch {
		case p.hasFwd && p.hasRev:
			out[name] = math.Abs((p.fwd + p.rev) / 2)
		case p.hasFwd:
			out[name] = math.Abs(p.fwd)
			warnings = append(warnings, name+": no reverse sweep, using forward fit only")
		default:
			out[name] = math.Abs(p.rev)
			warnings = append(warnings, name+": no forward sweep, using reverse fit only")
		}
	}
	for _, w := range warnings {
		e.logger.Warn("elastic sweep", "detail", w)
	}
	return out, warnings
}
