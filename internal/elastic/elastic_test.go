package elastic

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/tqcsim/internal/thermo"
	"gonum.org/v1/gonum/mat"
)

const (
	c11 = 100.0
	c12 = 40.0
	c44 = 30.0
)

var sweepStrains = []float64{0.0005, 0.001, 0.0015, 0.0019, 0.0025, 0.003}

func near(a, b, rel float64) bool {
	return math.Abs(a-b) <= rel*math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
}

// cubicSweep builds a sweep along axis whose response is linear up to the
// default threshold and twice as stiff beyond it. With a negative sign the
// strains are compressive, never exceed the threshold and stay linear.
func cubicSweep(axis int, sign float64) *Sweep {
	n := len(sweepStrains)
	s := &Sweep{Strain: thermo.NewTensor(n), Pressure: thermo.NewTensor(n)}
	for i, e := range sweepStrains {
		e *= sign
		k := 1.0
		if e > DefaultThreshold {
			k = 2
		}
		s.Strain[axis][i] = e
		s.Strain[axis+3][i] = e / 2
		for p := 0; p < 3; p++ {
			c := c12
			if p == axis {
				c = c11
			}
			s.Pressure[p][i] = k * c * e
		}
		s.Pressure[axis+3][i] = k * c44 * e / 2
	}
	return s
}

func writeSweep(t *testing.T, dir string, load Load) string {
	t.Helper()
	sign := 1.0
	if load.Reverse {
		sign = -1
	}
	s := cubicSweep(int(load.Axis), sign)

	var b strings.Builder
	for i := range sweepStrains {
		var fields []string
		for c := 0; c < thermo.Components; c++ {
			fields = append(fields, fmt.Sprintf("%g", s.Strain[c][i]))
		}
		for c := 0; c < thermo.Components; c++ {
			fields = append(fields, fmt.Sprintf("%g", s.Pressure[c][i]))
		}
		b.WriteString(strings.Join(fields, " "))
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, load.Identifier()+".txt")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func allLoads() []Load {
	var loads []Load
	for _, rev := range []bool{false, true} {
		for a := AxisX; a <= AxisZ; a++ {
			loads = append(loads, Load{Axis: a, Reverse: rev})
		}
	}
	return loads
}

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		want    Load
		wantErr bool
	}{
		{"c1144.txt", Load{Axis: AxisX}, false},
		{"/data/run/c2255r.txt", Load{Axis: AxisY, Reverse: true}, false},
		{"C3366.txt.gz", Load{Axis: AxisZ}, false},
		{"c3366r", Load{Axis: AxisZ, Reverse: true}, false},
		{"c4477.txt", Load{}, true},
		{"log.lammps", Load{}, true},
	}

	for _, tt := range tests {
		got, err := ParseIdentifier(tt.name)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
		if base := strings.ToLower(tt.name); !strings.Contains(base, got.Identifier()) {
			t.Errorf("%s: identifier %s does not round trip", tt.name, got.Identifier())
		}
	}
}

func TestFit_FiltersAboveThreshold(t *testing.T) {
	eng := New()
	fit, err := eng.Fit(Load{Axis: AxisY}, cubicSweep(1, 1), "c2255")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fit.Rows != 4 {
		t.Errorf("expected 4 rows below threshold, got %d", fit.Rows)
	}

	want := map[string]float64{
		"C1122": c12, "C2222": c11, "C3322": c12, "C5555": c44,
	}
	if len(fit.Slopes) != len(want) {
		t.Fatalf("expected %d slopes, got %v", len(want), fit.Slopes)
	}
	for name, v := range want {
		if !near(fit.Slopes[name], v, 1e-9) {
			t.Errorf("%s: expected %g, got %g", name, v, fit.Slopes[name])
		}
		if !near(fit.RSquared[name], 1, 1e-9) {
			t.Errorf("%s: expected perfect fit, got R²=%g", name, fit.RSquared[name])
		}
	}
}

func TestFit_KeepsCompressiveRowsBeyondThreshold(t *testing.T) {
	s := cubicSweep(0, -1)
	var sxx, sxy float64
	for i := range sweepStrains {
		e := s.Strain[0][i]
		if e < -DefaultThreshold {
			s.Pressure[0][i] *= 2
		}
		sxx += e * e
		sxy += e * s.Pressure[0][i]
	}

	fit, err := New().Fit(Load{Axis: AxisX, Reverse: true}, s, "c1144r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fit.Rows != len(sweepStrains) {
		t.Errorf("expected all %d compressive rows kept, got %d", len(sweepStrains), fit.Rows)
	}
	if want := sxy / sxx; !near(fit.Slopes["C1111"], want, 1e-9) {
		t.Errorf("expected slope %g over every row, got %g", want, fit.Slopes["C1111"])
	}
	if near(fit.Slopes["C1111"], c11, 1e-6) {
		t.Error("expected the stiffened compressive rows to bias the slope")
	}
}

func TestFit_ThresholdOption(t *testing.T) {
	eng := New(WithThreshold(0.01))
	fit, err := eng.Fit(Load{Axis: AxisX}, cubicSweep(0, 1), "c1144")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fit.Rows != len(sweepStrains) {
		t.Errorf("expected all %d rows, got %d", len(sweepStrains), fit.Rows)
	}
	if near(fit.Slopes["C1111"], c11, 1e-6) {
		t.Error("expected the stiffened tail to bias the slope")
	}
}

func TestFit_ZeroStrain(t *testing.T) {
	s := &Sweep{Strain: thermo.NewTensor(3), Pressure: thermo.NewTensor(3)}
	_, err := New().Fit(Load{Axis: AxisZ}, s, "c3366")
	if !errors.Is(err, thermo.ErrNumeric) {
		t.Fatalf("expected numeric error, got %v", err)
	}
}

func TestSweepFromColumns_Missing(t *testing.T) {
	cols := mapColumns{"delta_exx": {1}, "delta_pxx": {1}}
	_, err := SweepFromColumns(cols, "c1144.txt")
	var cfgErr *thermo.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected config error, got %v", err)
	}
	if len(cfgErr.Columns) != 10 {
		t.Errorf("expected 10 missing columns, got %v", cfgErr.Columns)
	}
}

func TestAnalyze(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, l := range allLoads() {
		paths = append(paths, writeSweep(t, dir, l))
	}

	res, err := New(WithWorkers(3)).Analyze(paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}
	for i, o := range res.Outcomes {
		if o.Source != paths[i] {
			t.Errorf("outcome %d: expected source %s, got %s", i, paths[i], o.Source)
		}
	}

	if !near(res.C11, c11, 1e-9) || !near(res.C12, c12, 1e-9) || !near(res.C44, c44, 1e-9) {
		t.Errorf("unexpected cubic constants: %g %g %g", res.C11, res.C12, res.C44)
	}

	det := (c11 - c12) * (c11 + 2*c12)
	want := thermo.Compliance{S11: (c11 + c12) / det, S12: -c12 / det, S44: 1 / c44}
	if !near(res.Params.S11, want.S11, 1e-9) || !near(res.Params.S12, want.S12, 1e-9) || !near(res.Params.S44, want.S44, 1e-9) {
		t.Errorf("expected %v, got %v", want, res.Params)
	}
}

func TestRigidity_RoundTrip(t *testing.T) {
	c := Constants{
		"C1111": 108, "C2222": 110, "C3333": 109,
		"C1122": 61, "C2211": 63, "C1133": 60, "C3311": 60, "C2233": 62, "C3322": 62,
		"C4444": 28, "C5555": 29, "C6666": 30,
	}
	r := Rigidity(c)
	if r.At(0, 1) != 62 || r.At(1, 0) != 62 {
		t.Errorf("expected symmetrised C12 of 62, got %g/%g", r.At(0, 1), r.At(1, 0))
	}
	if r.At(0, 3) != 0 || r.At(4, 5) != 0 {
		t.Error("expected zero shear couplings")
	}

	s, err := ComplianceMatrix(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	back, err := ComplianceMatrix(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.EqualApprox(back, r, 1e-9) {
		t.Errorf("round trip mismatch:\n%v\n%v", mat.Formatted(back), mat.Formatted(r))
	}
}

func TestComplianceMatrix_Singular(t *testing.T) {
	c := Constants{}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			c[ConstantName(i, j)] = 50
		}
	}
	c["C4444"], c["C5555"], c["C6666"] = 10, 10, 10

	_, err := ComplianceMatrix(Rigidity(c))
	if !errors.Is(err, thermo.ErrNumeric) {
		t.Fatalf("expected numeric error, got %v", err)
	}
	if !strings.Contains(err.Error(), "non-invertible") {
		t.Errorf("expected non-invertible in %q", err)
	}
}

func TestAnalyze_MissingReverse(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for a := AxisX; a <= AxisZ; a++ {
		paths = append(paths, writeSweep(t, dir, Load{Axis: a}))
	}

	res, err := New().Analyze(paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Warnings) != 12 {
		t.Errorf("expected one warning per constant, got %d", len(res.Warnings))
	}
	if !near(res.C11, c11, 1e-9) {
		t.Errorf("expected forward-only C11 %g, got %g", c11, res.C11)
	}
}

func TestAnalyze_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for _, l := range allLoads() {
		paths = append(paths, writeSweep(t, dir, l))
	}
	bad := filepath.Join(dir, "c1144r.txt")
	if err := os.WriteFile(bad, []byte("not numbers\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	paths = append(paths, filepath.Join(dir, "notes.txt"))

	res, err := New().Analyze(paths)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	failed := res.Failed()
	if len(failed) != 2 {
		t.Fatalf("expected 2 failed outcomes, got %d", len(failed))
	}
	if failed[0].Source != bad {
		t.Errorf("expected %s to fail first, got %s", bad, failed[0].Source)
	}
	if !near(res.C11, c11, 1e-9) {
		t.Errorf("expected C11 %g from remaining sweeps, got %g", c11, res.C11)
	}
}

func TestCombine_DuplicateLoad(t *testing.T) {
	load := Load{Axis: AxisX}
	outcome := func(src string, c float64) Outcome {
		return Outcome{Source: src, Load: load, Fit: &Fit{
			Load:   load,
			Slopes: map[string]float64{"C1111": c},
		}}
	}

	got, warnings := New().Combine([]Outcome{
		outcome("c1144.txt", 100),
		outcome("c1144.txt.gz", 200),
	})
	if got["C1111"] != 100 {
		t.Errorf("expected the first sweep to win, got C1111=%g", got["C1111"])
	}
	var dup bool
	for _, w := range warnings {
		if strings.Contains(w, "c1144.txt.gz: duplicate c1144 sweep") {
			dup = true
		}
	}
	if !dup {
		t.Errorf("expected a duplicate warning, got %v", warnings)
	}
}

func TestAnalyze_NothingUsable(t *testing.T) {
	_, err := New().Analyze([]string{filepath.Join(t.TempDir(), "c1144.txt")})
	if !errors.Is(err, thermo.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestWriteRaw(t *testing.T) {
	res := &Result{C11: 1, C12: 2, C44: 3, Params: thermo.Compliance{S11: 4e-11, S12: -5e-12, S44: 6e-11}}
	var buf bytes.Buffer
	if err := WriteRaw(&buf, res); err != nil {
		t.Fatal(err)
	}
	want := "C11=1\nC12=2\nC44=3\nS11=4e-11\nS12=-5e-12\nS44=6e-11\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

type mapColumns map[string][]float64

func (m mapColumns) Column(name string) ([]float64, bool) {
	v, ok := m[name]
	return v, ok
}

func (m mapColumns) Names() []string {
	var names []string
	for k := range m {
		names = append(names, k)
	}
	return names
}
