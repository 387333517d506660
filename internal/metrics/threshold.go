package metrics

import (
	"github.com/san-kum/tqcsim/internal/table"
	"github.com/san-kum/tqcsim/internal/thermo"
	"github.com/san-kum/tqcsim/internal/tqc"
)

const (
	DefaultThreshold = 0.002
	DefaultColumn    = "von_mises_strain"
)

// ThresholdConfig selects the governing column and the averaged targets.
// Zero values select DefaultColumn, DefaultThreshold and the Beta columns.
type ThresholdConfig struct {
	Column string
	// Threshold of zero means DefaultThreshold unless Exact is set.
	Threshold float64
	// Exact uses Threshold as given, including zero.
	Exact   bool
	Targets []string
}

func (c ThresholdConfig) withDefaults() ThresholdConfig {
	if c.Column == "" {
		c.Column = DefaultColumn
	}
	if c.Threshold == 0 && !c.Exact {
		c.Threshold = DefaultThreshold
	}
	if len(c.Targets) == 0 {
		c.Targets = tqc.Names
	}
	return c
}

// ThresholdResult splits a table at the threshold.
type ThresholdResult struct {
	Column    string
	Threshold float64

	// Below keeps the rows whose governing value is at most the threshold.
	Below *table.Table
	// Averages holds the mean of each target over rows strictly above the
	// threshold. It is empty, never nil, when no row exceeds it.
	Averages map[string]float64
	// Order lists the averaged targets in request order.
	Order []string
	// Skipped names requested targets the table does not carry.
	Skipped []string

	RowsAbove int
	Fraction  float64
	Peak      float64
}

// AnalyzeThreshold filters the table and averages the post-threshold rows.
func AnalyzeThreshold(t *table.Table, cfg ThresholdConfig) (*ThresholdResult, error) {
	cfg = cfg.withDefaults()

	gov, ok := t.Column(cfg.Column)
	if !ok {
		return nil, &thermo.ConfigError{Columns: []string{cfg.Column}, Reason: "threshold column not in table"}
	}

	res := &ThresholdResult{
		Column:    cfg.Column,
		Threshold: cfg.Threshold,
		Averages:  make(map[string]float64),
	}

	means := make([]*Mean, 0, len(cfg.Targets))
	cols := make([][]float64, 0, len(cfg.Targets))
	for _, name := range cfg.Targets {
		col, ok := t.Column(name)
		if !ok {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		means = append(means, NewMean(name))
		cols = append(cols, col)
	}

	exceed := NewExceedance(cfg.Column, cfg.Threshold)
	peak := NewPeak(cfg.Column)
	for i, v := range gov {
		exceed.Observe(v)
		peak.Observe(v)
		if v <= cfg.Threshold {
			continue
		}
		res.RowsAbove++
		for j, m := range means {
			m.Observe(cols[j][i])
		}
	}
	res.Fraction = exceed.Value()
	res.Peak = peak.Value()

	if res.RowsAbove > 0 {
		for _, m := range means {
			res.Averages[m.Name()] = m.Value()
			res.Order = append(res.Order, m.Name())
		}
	}

	res.Below = t.Filter(func(row int) bool { return gov[row] <= cfg.Threshold })
	return res, nil
}
