package thermo

import (
	"fmt"
	"math"
)

// Column names of a simulation table.
const (
	ColStep    = "step"
	ColVolume  = "vol"
	ColEp      = "ep"
	ColEk      = "ek"
	ColU       = "u"
	ColTemp    = "t"
	ColRho     = "rho"
	ColEntropy = "entropy"
	ColEtally  = "etally"
)

// LengthColumns and PressureColumns list the six Voigt columns in order.
var (
	LengthColumns   = [Components]string{"l_1", "l_2", "l_3", "l_4", "l_5", "l_6"}
	PressureColumns = [Components]string{"p_1", "p_2", "p_3", "p_4", "p_5", "p_6"}
)

// NVEHeaders and NVTHeaders are the column layouts written by the LAMMPS
// input decks; NVT adds the thermostat tally.
var (
	NVEHeaders = []string{
		"step", "l_1", "l_2", "l_3", "l_4", "l_5", "l_6",
		"p_1", "p_2", "p_3", "p_4", "p_5", "p_6",
		"vol", "ep", "ek", "u", "t", "rho", "entropy",
	}
	NVTHeaders = append(append([]string{}, NVEHeaders...), ColEtally)
)

// RequiredColumns lists the columns every series must carry.
func RequiredColumns() []string {
	return NVEHeaders
}

// Series is one loaded simulation run, ordered by step.
type Series struct {
	Step    []float64
	L       Tensor
	P       Tensor
	Vol     []float64
	Ep      []float64
	Ek      []float64
	U       []float64
	T       []float64
	Rho     []float64
	Entropy []float64
	// Etally is nil for microcanonical runs.
	Etally []float64
}

// ColumnSource is satisfied by tables that expose named float columns.
type ColumnSource interface {
	Column(name string) ([]float64, bool)
	Names() []string
}

// SeriesFromColumns builds and validates a Series. Every missing required
// column is named in the returned ConfigError.
func SeriesFromColumns(src ColumnSource, source string) (*Series, error) {
	has := func(name string) bool {
		_, ok := src.Column(name)
		return ok
	}
	if missing := MissingColumns(has, RequiredColumns()); len(missing) > 0 {
		return nil, &ConfigError{Source: source, Columns: missing, Reason: "missing required columns"}
	}

	col := func(name string) []float64 {
		v, _ := src.Column(name)
		return v
	}

	s := &Series{
		Step:    col(ColStep),
		Vol:     col(ColVolume),
		Ep:      col(ColEp),
		Ek:      col(ColEk),
		U:       col(ColU),
		T:       col(ColTemp),
		Rho:     col(ColRho),
		Entropy: col(ColEntropy),
	}
	for i := 0; i < Components; i++ {
		s.L[i] = col(LengthColumns[i])
		s.P[i] = col(PressureColumns[i])
	}
	if v, ok := src.Column(ColEtally); ok {
		s.Etally = v
	}

	if err := s.Validate(source); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Series) Len() int {
	return len(s.Step)
}

func (s *Series) Ensemble() Ensemble {
	if s.Etally != nil {
		return NVT
	}
	return NVE
}

// StepSize returns the constant step spacing used as the time unit.
func (s *Series) StepSize() float64 {
	if len(s.Step) < 2 {
		return 0
	}
	return s.Step[1] - s.Step[0]
}

// Validate checks lengths and the strictly increasing, uniform step spacing.
func (s *Series) Validate(source string) error {
	n := len(s.Step)
	if n < 2 {
		return &ConfigError{Source: source, Reason: fmt.Sprintf("need at least 2 samples, got %d", n)}
	}

	scalars := map[string][]float64{
		ColVolume: s.Vol, ColEp: s.Ep, ColEk: s.Ek, ColU: s.U,
		ColTemp: s.T, ColRho: s.Rho, ColEntropy: s.Entropy,
	}
	if s.Etally != nil {
		scalars[ColEtally] = s.Etally
	}
	for name, v := range scalars {
		if len(v) != n {
			return withSource(source, shapeError(name, n, len(v)))
		}
	}
	if err := s.L.CheckLen("box lengths", n); err != nil {
		return withSource(source, err)
	}
	if err := s.P.CheckLen("pressures", n); err != nil {
		return withSource(source, err)
	}

	for i, v := range s.Step {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ConfigError{Source: source, Columns: []string{ColStep},
				Reason: fmt.Sprintf("non-finite step at row %d", i)}
		}
	}

	dt := s.StepSize()
	if dt <= 0 {
		return &ConfigError{Source: source, Columns: []string{ColStep}, Reason: "steps must be strictly increasing"}
	}
	tol := 1e-9 * math.Max(1, math.Abs(dt))
	for i := 1; i < n; i++ {
		d := s.Step[i] - s.Step[i-1]
		if d <= 0 {
			return &ConfigError{Source: source, Columns: []string{ColStep},
				Reason: fmt.Sprintf("steps must be strictly increasing (row %d)", i)}
		}
		if math.Abs(d-dt) > tol {
			return &ConfigError{Source: source, Columns: []string{ColStep},
				Reason: fmt.Sprintf("non-uniform step spacing at row %d: %g != %g", i, d, dt)}
		}
	}
	return nil
}

func withSource(source string, err error) error {
	if source == "" {
		return err
	}
	return fmt.Errorf("%s: %w", source, err)
}
