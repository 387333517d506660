package thermo

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Increments returns the first difference of x with a leading zero, so the
// result has the same length as x.
func Increments(x []float64) []float64 {
	d := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		d[i] = x[i] - x[i-1]
	}
	return d
}

// Cumulative returns the running sum of x (forward-Euler integration of
// per-step increments).
func Cumulative(x []float64) []float64 {
	if len(x) == 0 {
		return []float64{}
	}
	return floats.CumSum(make([]float64, len(x)), x)
}

// Relative returns x - x[0].
func Relative(x []float64) []float64 {
	r := make([]float64, len(x))
	if len(x) == 0 {
		return r
	}
	copy(r, x)
	floats.AddConst(-x[0], r)
	return r
}

// Mean is the arithmetic mean; it returns 0 for an empty slice.
func Mean(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return stat.Mean(x, nil)
}

// Product returns the elementwise product a·b.
func Product(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, shapeError("product", len(a), len(b))
	}
	return floats.MulTo(make([]float64, len(a)), a, b), nil
}

// Difference returns a - b elementwise.
func Difference(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, shapeError("difference", len(a), len(b))
	}
	return floats.SubTo(make([]float64, len(a)), a, b), nil
}

// CheckLen returns ErrShapeMismatch unless every slice has n samples.
func CheckLen(op string, n int, xs ...[]float64) error {
	for _, x := range xs {
		if len(x) != n {
			return shapeError(op, n, len(x))
		}
	}
	return nil
}
