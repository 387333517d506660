// Package energy computes the mechanical work and thermal energy balance
// of a deformation run.
//
// Work is accumulated as Σ σi·dεi scaled by the instantaneous volume in m³.
// Energies logged in eV are scaled by the same volume factor, and the heat
// flow depends on the thermodynamic ensemble: NVT runs read it from the
// thermostat tally, NVE runs infer it from kinetic-energy drift.
package energy

import (
	"fmt"

	"github.com/san-kum/tqcsim/internal/thermo"
)

// Input gathers everything the balance needs. Etally may be nil for NVE.
type Input struct {
	Stress           thermo.Tensor
	StrainIncrement  thermo.Tensor
	ElasticIncrement thermo.Tensor
	PlasticIncrement thermo.Tensor

	Volume []float64
	Ep     []float64
	Ek     []float64
	U      []float64
	T      []float64
	Rho    []float64
	Etally []float64

	// SpecificHeat in J/(kg·K); zero selects thermo.SpecificHeat.
	SpecificHeat float64
}

// Balance holds the work and energy series. Cumulative series start at zero.
type Balance struct {
	WorkIncrement        []float64
	ElasticWorkIncrement []float64
	PlasticWorkIncrement []float64
	Work                 []float64
	ElasticWork          []float64
	PlasticWork          []float64

	InternalEnergy []float64
	HeatFlow       []float64

	DeltaEp     []float64
	DeltaEk     []float64
	DeltaT      []float64
	DeltaEtot   []float64
	DeltaTtally []float64
}

func (in *Input) validate(ens thermo.Ensemble) error {
	n := len(in.Volume)
	for name, t := range map[string]thermo.Tensor{
		"stress":            in.Stress,
		"strain increment":  in.StrainIncrement,
		"elastic increment": in.ElasticIncrement,
		"plastic increment": in.PlasticIncrement,
	} {
		if err := t.CheckLen(name, n); err != nil {
			return err
		}
	}
	if err := thermo.CheckLen("energy columns", n, in.Ep, in.Ek, in.U, in.T, in.Rho); err != nil {
		return err
	}
	if ens == thermo.NVT {
		if in.Etally == nil {
			return &thermo.ConfigError{Columns: []string{thermo.ColEtally}, Reason: "nvt heat flow needs the thermostat tally"}
		}
		if err := thermo.CheckLen(thermo.ColEtally, n, in.Etally); err != nil {
			return err
		}
	}
	return nil
}

// Compute evaluates the balance for the given ensemble.
func Compute(in *Input, ens thermo.Ensemble) (*Balance, error) {
	if err := in.validate(ens); err != nil {
		return nil, err
	}

	b := &Balance{}
	var err error
	if b.WorkIncrement, err = WorkIncrements(in.Stress, in.StrainIncrement, in.Volume); err != nil {
		return nil, err
	}
	if b.ElasticWorkIncrement, err = WorkIncrements(in.Stress, in.ElasticIncrement, in.Volume); err != nil {
		return nil, err
	}
	if b.PlasticWorkIncrement, err = WorkIncrements(in.Stress, in.PlasticIncrement, in.Volume); err != nil {
		return nil, err
	}
	b.Work = thermo.Cumulative(b.WorkIncrement)
	b.ElasticWork = thermo.Cumulative(b.ElasticWorkIncrement)
	b.PlasticWork = thermo.Cumulative(b.PlasticWorkIncrement)

	scale := Scale(in.Volume)
	b.InternalEnergy = scaledChange(in.U, scale)
	b.DeltaEp = scaledChange(in.Ep, scale)
	b.DeltaEk = scaledChange(in.Ek, scale)
	b.DeltaT = thermo.Relative(in.T)

	if b.HeatFlow, err = HeatFlow(ens, in.Ek, in.Etally, scale); err != nil {
		return nil, err
	}

	cp := in.SpecificHeat
	if cp == 0 {
		cp = thermo.SpecificHeat
	}
	n := len(in.Volume)
	b.DeltaEtot = make([]float64, n)
	b.DeltaTtally = make([]float64, n)
	for i := 0; i < n; i++ {
		b.DeltaEtot[i] = b.InternalEnergy[i] + b.HeatFlow[i]
		b.DeltaTtally[i] = b.HeatFlow[i] / (in.Rho[i] * thermo.DensityScale * cp)
	}
	return b, nil
}

// WorkIncrements returns Σi σi·dεi per step, scaled by volume in m³.
func WorkIncrements(stress, strainIncrement thermo.Tensor, volume []float64) ([]float64, error) {
	n := len(volume)
	if err := stress.CheckLen("work stress", n); err != nil {
		return nil, err
	}
	if err := strainIncrement.CheckLen("work strain", n); err != nil {
		return nil, err
	}
	w := make([]float64, n)
	for c := 0; c < thermo.Components; c++ {
		for i := 0; i < n; i++ {
			w[i] += thermo.WorkUnitScale * stress[c][i] * strainIncrement[c][i]
		}
	}
	for i := range w {
		w[i] *= volume[i] * thermo.Angstrom3ToM3
	}
	return w, nil
}

// Scale converts eV per cell to the work units: EVToJ · V · 1e-30.
func Scale(volume []float64) []float64 {
	s := make([]float64, len(volume))
	for i, v := range volume {
		s[i] = thermo.EVToJ * v * thermo.Angstrom3ToM3
	}
	return s
}

// HeatFlow returns the heat exchanged since the first sample:
// etally·scale for NVT and −(ek·scale − ek0·scale0) for NVE.
func HeatFlow(ens thermo.Ensemble, ek, etally, scale []float64) ([]float64, error) {
	n := len(scale)
	q := make([]float64, n)
	switch ens {
	case thermo.NVT:
		if err := thermo.CheckLen("heat flow", n, etally); err != nil {
			return nil, err
		}
		for i := range q {
			q[i] = etally[i] * scale[i]
		}
	case thermo.NVE:
		if err := thermo.CheckLen("heat flow", n, ek); err != nil {
			return nil, err
		}
		if n == 0 {
			return q, nil
		}
		ek0 := ek[0] * scale[0]
		for i := range q {
			q[i] = -(ek[i]*scale[i] - ek0)
		}
	default:
		return nil, &thermo.ConfigError{Reason: fmt.Sprintf("unsupported ensemble %v", ens)}
	}
	return q, nil
}

func scaledChange(x, scale []float64) []float64 {
	out := make([]float64, len(x))
	if len(x) == 0 {
		return out
	}
	for i := range x {
		out[i] = (x[i] - x[0]) * scale[i]
	}
	return out
}
