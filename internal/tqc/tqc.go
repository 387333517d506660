// Package tqc computes Taylor-Quinney coefficients: the fraction of
// plastic work converted to heat.
package tqc

import (
	"fmt"

	"github.com/san-kum/tqcsim/internal/thermo"
)

// Input holds the cumulative series the coefficients are built from.
type Input struct {
	PlasticWork    []float64
	ElasticWork    []float64
	HeatFlow       []float64
	InternalEnergy []float64
}

// Coefficients are the Beta series. "diff" variants use per-step
// differences, "int" variants use the cumulative values.
type Coefficients struct {
	Beta0Diff []float64
	Beta0Int  []float64
	Beta1Diff []float64
	Beta1Int  []float64
}

// Compute evaluates the coefficients with thermo.SmallNumber added to every
// plastic-work denominator. Steps with no plastic work are not special
// cased; the guard keeps them finite but large.
//
//	Beta_0 = Q / Wp
//	Beta_1 = 1 − (U − We) / Wp          (NVT)
//	Beta_1 = 1 − (U − We − Q) / Wp      (NVE)
func Compute(in Input, ens thermo.Ensemble) (*Coefficients, error) {
	n := len(in.PlasticWork)
	if err := thermo.CheckLen("tqc", n, in.ElasticWork, in.HeatFlow, in.InternalEnergy); err != nil {
		return nil, err
	}
	var nve bool
	switch ens {
	case thermo.NVE:
		nve = true
	case thermo.NVT:
	default:
		return nil, &thermo.ConfigError{Reason: fmt.Sprintf("unsupported ensemble %v", ens)}
	}

	dWp := thermo.Increments(in.PlasticWork)
	dWe := thermo.Increments(in.ElasticWork)
	dQ := thermo.Increments(in.HeatFlow)
	dU := thermo.Increments(in.InternalEnergy)

	c := &Coefficients{
		Beta0Diff: make([]float64, n),
		Beta0Int:  make([]float64, n),
		Beta1Diff: make([]float64, n),
		Beta1Int:  make([]float64, n),
	}
	const eps = thermo.SmallNumber
	for i := 0; i < n; i++ {
		c.Beta0Diff[i] = dQ[i] / (dWp[i] + eps)
		c.Beta0Int[i] = in.HeatFlow[i] / (in.PlasticWork[i] + eps)

		storedDiff := dU[i] - dWe[i]
		stored := in.InternalEnergy[i] - in.ElasticWork[i]
		if nve {
			storedDiff -= dQ[i]
			stored -= in.HeatFlow[i]
		}
		c.Beta1Diff[i] = 1 - storedDiff/(dWp[i]+eps)
		c.Beta1Int[i] = 1 - stored/(in.PlasticWork[i]+eps)
	}
	return c, nil
}

// Names lists the output column names in Coefficients field order.
var Names = []string{"Beta_0_diff", "Beta_0_int", "Beta_1_diff", "Beta_1_int"}

// Columns returns the series in the order of Names.
func (c *Coefficients) Columns() [][]float64 {
	return [][]float64{c.Beta0Diff, c.Beta0Int, c.Beta1Diff, c.Beta1Int}
}
