package elastic

import (
	"bufio"
	"fmt"
	"io"

	"github.com/san-kum/tqcsim/internal/thermo"
	"gonum.org/v1/gonum/mat"
)

// Rigidity assembles the 6x6 stiffness matrix. The normal block is
// symmetrised by averaging each measured pair Cij/Cji; the shear block is
// diagonal. Constants that were never measured are left at zero.
func Rigidity(c Constants) *mat.SymDense {
	r := mat.NewSymDense(thermo.Components, nil)
	for i := 0; i < 3; i++ {
		for j := i; j < 3; j++ {
			a, okA := c[ConstantName(i, j)]
			b, okB := c[ConstantName(j, i)]
			var v float64
			switch {
			case okA && okB:
				v = (a + b) / 2
			case okA:
				v = a
			case okB:
				v = b
			}
			r.SetSym(i, j, v)
		}
	}
	for k := 3; k < thermo.Components; k++ {
		r.SetSym(k, k, c[ConstantName(k, k)])
	}
	return r
}

// ComplianceMatrix inverts the rigidity matrix.
func ComplianceMatrix(r mat.Matrix) (*mat.Dense, error) {
	var s mat.Dense
	if err := s.Inverse(r); err != nil {
		return nil, &thermo.NumericError{Op: "invert rigidity matrix", Reason: "non-invertible: " + err.Error()}
	}
	return &s, nil
}

// Cubic averages a 6x6 matrix down to its three cubic invariants: the
// normal diagonal, the normal off-diagonal and the shear diagonal.
func Cubic(m mat.Matrix) (diag, off, shear float64) {
	for i := 0; i < 3; i++ {
		diag += m.At(i, i)
		shear += m.At(i+3, i+3)
		for j := 0; j < 3; j++ {
			if i != j {
				off += m.At(i, j)
			}
		}
	}
	return diag / 3, off / 6, shear / 3
}

// Result is the full output of an elastic analysis.
type Result struct {
	Constants  Constants
	Rigidity   *mat.SymDense
	Compliance *mat.Dense

	// Cubic averages of the rigidity matrix.
	C11, C12, C44 float64
	Params        thermo.Compliance

	Outcomes []Outcome
	Warnings []string
}

// Failed returns the outcomes that could not be fitted.
func (r *Result) Failed() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// Analyze fits every file, combines the directions and derives the
// compliance parameters. It fails only when no file could be fitted or
// the rigidity matrix is singular.
func (e *Engine) Analyze(paths []string) (*Result, error) {
	outcomes := e.FitFiles(paths)
	return e.Assemble(outcomes)
}

// Assemble builds a Result from already fitted outcomes.
func (e *Engine) Assemble(outcomes []Outcome) (*Result, error) {
	ok := 0
	for _, o := range outcomes {
		if o.OK() {
			ok++
		}
	}
	if ok == 0 {
		return nil, &thermo.ConfigError{Reason: fmt.Sprintf("no usable stress-strain sweeps among %d files", len(outcomes))}
	}

	constants, warnings := e.Combine(outcomes)
	res := &Result{
		Constants: constants,
		Rigidity:  Rigidity(constants),
		Outcomes:  outcomes,
		Warnings:  warnings,
	}
	res.C11, res.C12, res.C44 = Cubic(res.Rigidity)

	s, err := ComplianceMatrix(res.Rigidity)
	if err != nil {
		return nil, err
	}
	res.Compliance = s
	res.Params.S11, res.Params.S12, res.Params.S44 = Cubic(s)

	e.logger.Info("elastic constants", "C11", res.C11, "C12", res.C12, "C44", res.C44,
		"S11", res.Params.S11, "S12", res.Params.S12, "S44", res.Params.S44)
	return res, nil
}

// WriteRaw writes the averaged constants as name=value lines.
func WriteRaw(w io.Writer, r *Result) error {
	bw := bufio.NewWriter(w)
	for _, kv := range []struct {
		name string
		v    float64
	}{
		{"C11", r.C11}, {"C12", r.C12}, {"C44", r.C44},
		{"S11", r.Params.S11}, {"S12", r.Params.S12}, {"S44", r.Params.S44},
	} {
		fmt.Fprintf(bw, "%s=%g\n", kv.name, kv.v)
	}
	return bw.Flush()
}
