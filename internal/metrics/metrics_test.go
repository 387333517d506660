package metrics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/tqcsim/internal/table"
	"github.com/san-kum/tqcsim/internal/thermo"
)

func TestMean(t *testing.T) {
	m := NewMean("beta")
	if m.Value() != 0 {
		t.Error("empty mean should be 0")
	}
	for _, v := range []float64{1, 2, 3, 6} {
		m.Observe(v)
	}
	if m.Value() != 3 {
		t.Errorf("expected 3, got %f", m.Value())
	}
	if m.Samples() != 4 {
		t.Errorf("expected 4 samples, got %d", m.Samples())
	}
	m.Reset()
	if m.Value() != 0 || m.Samples() != 0 {
		t.Error("reset should clear state")
	}
}

func TestPeak(t *testing.T) {
	p := NewPeak("stress")
	for _, v := range []float64{1, -5, 3} {
		p.Observe(v)
	}
	if p.Value() != 5 {
		t.Errorf("expected 5, got %f", p.Value())
	}
	p.Reset()
	if p.Value() != 0 {
		t.Error("reset should clear peak")
	}
}

func TestExceedance(t *testing.T) {
	e := NewExceedance("strain", 0.5)
	for _, v := range []float64{0.1, 0.5, 0.6, 0.9} {
		e.Observe(v)
	}
	if math.Abs(e.Value()-0.5) > 1e-12 {
		t.Errorf("expected 0.5, got %f", e.Value())
	}
}

func resultTable() *table.Table {
	t := table.New()
	t.MustAdd("step", []float64{0, 100, 200, 300, 400})
	t.MustAdd("von_mises_strain", []float64{0, 0.001, 0.002, 0.003, 0.004})
	t.MustAdd("Beta_0_diff", []float64{9, 9, 9, 0.8, 0.9})
	t.MustAdd("Beta_0_int", []float64{9, 9, 9, 0.6, 0.7})
	t.MustAdd("Beta_1_diff", []float64{9, 9, 9, 1.0, 0.8})
	t.MustAdd("Beta_1_int", []float64{9, 9, 9, 0.5, 0.5})
	return t
}

func TestAnalyzeThreshold(t *testing.T) {
	res, err := AnalyzeThreshold(resultTable(), ThresholdConfig{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Below.Len() != 3 {
		t.Errorf("expected 3 rows at or below threshold, got %d", res.Below.Len())
	}
	if res.RowsAbove != 2 {
		t.Errorf("expected 2 rows above, got %d", res.RowsAbove)
	}

	want := map[string]float64{
		"Beta_0_diff": 0.85,
		"Beta_0_int":  0.65,
		"Beta_1_diff": 0.9,
		"Beta_1_int":  0.5,
	}
	for k, v := range want {
		if math.Abs(res.Averages[k]-v) > 1e-12 {
			t.Errorf("%s: expected %g, got %g", k, v, res.Averages[k])
		}
	}
	if len(res.Order) != 4 || res.Order[0] != "Beta_0_diff" {
		t.Errorf("unexpected order %v", res.Order)
	}
	if res.Peak != 0.004 {
		t.Errorf("expected peak 0.004, got %g", res.Peak)
	}
}

func TestAnalyzeThreshold_NoneAbove(t *testing.T) {
	res, err := AnalyzeThreshold(resultTable(), ThresholdConfig{Threshold: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.Averages == nil {
		t.Fatal("expected empty, non-nil averages")
	}
	if len(res.Averages) != 0 {
		t.Errorf("expected no averages, got %v", res.Averages)
	}
	if res.Below.Len() != 5 {
		t.Errorf("expected all rows kept, got %d", res.Below.Len())
	}
}

func TestAnalyzeThreshold_Columns(t *testing.T) {
	res, err := AnalyzeThreshold(resultTable(), ThresholdConfig{
		Column:    "step",
		Threshold: 250,
		Targets:   []string{"Beta_1_int", "work_plastic"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Averages) != 1 || res.Averages["Beta_1_int"] != 0.5 {
		t.Errorf("unexpected averages %v", res.Averages)
	}
	if len(res.Skipped) != 1 || res.Skipped[0] != "work_plastic" {
		t.Errorf("expected work_plastic skipped, got %v", res.Skipped)
	}

	_, err = AnalyzeThreshold(resultTable(), ThresholdConfig{Column: "missing"})
	if !errors.Is(err, thermo.ErrConfiguration) {
		t.Errorf("expected configuration error, got %v", err)
	}
}

func TestAnalyzeThreshold_ZeroThreshold(t *testing.T) {
	res, err := AnalyzeThreshold(resultTable(), ThresholdConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if res.Threshold != DefaultThreshold {
		t.Errorf("expected unset threshold to default to %g, got %g", DefaultThreshold, res.Threshold)
	}

	res, err = AnalyzeThreshold(resultTable(), ThresholdConfig{Exact: true})
	if err != nil {
		t.Fatal(err)
	}
	if res.Threshold != 0 {
		t.Errorf("expected exact zero threshold, got %g", res.Threshold)
	}
	if res.RowsAbove != 4 || res.Below.Len() != 1 {
		t.Errorf("expected 4 rows above zero and 1 at it, got %d/%d", res.RowsAbove, res.Below.Len())
	}
	if math.Abs(res.Averages["Beta_0_diff"]-(9+9+0.8+0.9)/4) > 1e-12 {
		t.Errorf("unexpected Beta_0_diff average %g", res.Averages["Beta_0_diff"])
	}
}
