package elastic

import (
	"fmt"

	"github.com/san-kum/tqcsim/internal/thermo"
	"gonum.org/v1/gonum/stat"
)

// DefaultThreshold keeps only the small-strain, linear-elastic part of a sweep.
const DefaultThreshold = 0.002

// ConstantName returns the four-index name of the stiffness component
// probed by pressure component p under strain component s, e.g. C2211.
func ConstantName(p, s int) string {
	return fmt.Sprintf("C%d%d%d%d", p+1, p+1, s+1, s+1)
}

// Fit is the set of slopes extracted from one sweep.
type Fit struct {
	Load Load
	// Rows is the number of samples kept below the strain threshold.
	Rows int
	// Slopes maps constant names to zero-intercept regression slopes.
	Slopes map[string]float64
	// RSquared maps constant names to the coefficient of determination.
	RSquared map[string]float64
}

// Fit regresses the sweep of one loading direction. Rows whose signed
// governing normal strain exceeds the threshold are dropped before fitting,
// so compressive rows are always kept.
func (e *Engine) Fit(load Load, s *Sweep, source string) (*Fit, error) {
	axis := int(load.Axis)
	shear := axis + 3

	governing := s.Strain[axis]
	n := len(governing)
	if err := s.Strain.CheckLen(source, n); err != nil {
		return nil, err
	}
	if err := s.Pressure.CheckLen(source, n); err != nil {
		return nil, err
	}

	keep := make([]int, 0, n)
	for i, v := range governing {
		if v <= e.threshold {
			keep = append(keep, i)
		}
	}

	fit := &Fit{
		Load:     load,
		Rows:     len(keep),
		Slopes:   make(map[string]float64, 4),
		RSquared: make(map[string]float64, 4),
	}

	pairs := []struct{ strain, pressure int }{
		{axis, 0}, {axis, 1}, {axis, 2}, {shear, shear},
	}
	for _, p := range pairs {
		x := pick(s.Strain[p.strain], keep)
		y := pick(s.Pressure[p.pressure], keep)
		slope, r2, err := originFit(x, y)
		if err != nil {
			return nil, &thermo.NumericError{
				Source: source,
				Op:     fmt.Sprintf("fit %s vs %s", PressureColumns[p.pressure], StrainColumns[p.strain]),
				Reason: err.Error(),
			}
		}
		name := ConstantName(p.pressure, p.strain)
		fit.Slopes[name] = slope
		fit.RSquared[name] = r2
	}
	return fit, nil
}

// originFit is ordinary least squares with the line forced through the
// origin: zero strain carries zero incremental stress.
func originFit(x, y []float64) (slope, r2 float64, err error) {
	var sxx float64
	for _, v := range x {
		sxx += v * v
	}
	if sxx == 0 {
		return 0, 0, fmt.Errorf("zero variance in strain over %d samples", len(x))
	}
	_, slope = stat.LinearRegression(x, y, nil, true)
	if len(x) > 1 {
		r2 = stat.RSquared(x, y, nil, 0, slope)
	}
	return slope, r2, nil
}

func pick(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for j, i := range idx {
		out[j] = v[i]
	}
	return out
}
