// Package kinematics turns box geometry and pressure logs into strain and
// stress tensors.
package kinematics

import (
	"fmt"
	"math"

	"github.com/san-kum/tqcsim/internal/thermo"
)

// Result holds the derived tensor series of one run. Every increment and
// rate series starts with a zero.
type Result struct {
	StrainIncrement thermo.Tensor
	Strain          thermo.Tensor
	// StrainRate is the increment divided by the step spacing.
	StrainRate thermo.Tensor
	Stress     thermo.Tensor
	StressRate thermo.Tensor
	Volume     []float64
	VolumeRate []float64
	StepSize   float64
}

func (r *Result) Len() int {
	return len(r.Volume)
}

// Compute derives strains and stresses from a validated series.
// Normal components use logarithmic strain, shear components engineering
// strain; stress is the LAMMPS pressure converted to Pa with its sign flipped.
func Compute(s *thermo.Series) (*Result, error) {
	if err := s.Validate(""); err != nil {
		return nil, err
	}
	n := s.Len()

	r := &Result{
		StrainIncrement: thermo.NewTensor(n),
		StrainRate:      thermo.NewTensor(n),
		Stress:          thermo.NewTensor(n),
		StepSize:        s.StepSize(),
	}

	for c := 0; c < 3; c++ {
		inc, err := LogStrainIncrements(s.L[c])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", thermo.LengthColumns[c], err)
		}
		r.StrainIncrement[c] = inc
	}
	for c := 3; c < thermo.Components; c++ {
		r.StrainIncrement[c] = thermo.Increments(s.L[c])
	}

	for c := 0; c < thermo.Components; c++ {
		r.Strain[c] = thermo.Cumulative(r.StrainIncrement[c])
		for i, v := range r.StrainIncrement[c] {
			r.StrainRate[c][i] = v / r.StepSize
		}
		for i, p := range s.P[c] {
			r.Stress[c][i] = p * thermo.PressureToStress
		}
		r.StressRate[c] = thermo.Increments(r.Stress[c])
	}

	r.Volume = append([]float64(nil), s.Vol...)
	r.VolumeRate = thermo.Increments(s.Vol)
	return r, nil
}

// LogStrainIncrements returns ln(l[t]/l[t-1]) with a leading zero.
func LogStrainIncrements(l []float64) ([]float64, error) {
	inc := make([]float64, len(l))
	for i := range l {
		if l[i] <= 0 {
			return nil, &thermo.NumericError{Op: "log strain", Reason: fmt.Sprintf("non-positive length %g at sample %d", l[i], i)}
		}
		if i > 0 {
			inc[i] = math.Log(l[i] / l[i-1])
		}
	}
	return inc, nil
}
