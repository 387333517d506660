// Package thermotest builds synthetic simulation series for tests.
package thermotest

import "github.com/san-kum/tqcsim/internal/thermo"

// Uniaxial returns an NVE series stretched along x through the given box
// lengths, with unit transverse lengths, zero tilt and zero pressure.
// Volume is 1000 Å³ and every energy column is constant.
func Uniaxial(lx []float64) *thermo.Series {
	n := len(lx)
	s := &thermo.Series{
		Step:    make([]float64, n),
		L:       thermo.NewTensor(n),
		P:       thermo.NewTensor(n),
		Vol:     Constant(n, 1000),
		Ep:      Constant(n, -3.36),
		Ek:      Constant(n, 0.04),
		U:       Constant(n, -3.32),
		T:       Constant(n, 300),
		Rho:     Constant(n, 2.7),
		Entropy: Constant(n, 0),
	}
	for i := range s.Step {
		s.Step[i] = float64(i * 100)
	}
	copy(s.L[0], lx)
	for i := 0; i < n; i++ {
		s.L[1][i] = 1
		s.L[2][i] = 1
	}
	return s
}

func Constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// Ramp returns start, start+step, ... with n samples.
func Ramp(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

// Columns is a map-backed thermo.ColumnSource.
type Columns map[string][]float64

func (c Columns) Column(name string) ([]float64, bool) {
	v, ok := c[name]
	return v, ok
}

func (c Columns) Names() []string {
	names := make([]string, 0, len(c))
	for k := range c {
		names = append(names, k)
	}
	return names
}

// ToColumns flattens a series back into named columns.
func ToColumns(s *thermo.Series) Columns {
	c := Columns{
		thermo.ColStep:    s.Step,
		thermo.ColVolume:  s.Vol,
		thermo.ColEp:      s.Ep,
		thermo.ColEk:      s.Ek,
		thermo.ColU:       s.U,
		thermo.ColTemp:    s.T,
		thermo.ColRho:     s.Rho,
		thermo.ColEntropy: s.Entropy,
	}
	for i := 0; i < thermo.Components; i++ {
		c[thermo.LengthColumns[i]] = s.L[i]
		c[thermo.PressureColumns[i]] = s.P[i]
	}
	if s.Etally != nil {
		c[thermo.ColEtally] = s.Etally
	}
	return c
}
