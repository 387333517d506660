// Package plasticity splits total strain into elastic and plastic parts
// using a cubic compliance.
package plasticity

import (
	"github.com/san-kum/tqcsim/internal/thermo"
)

// Decomposition holds the elastic and plastic strain series. At every
// step and component Elastic + Plastic equals the total cumulative strain.
type Decomposition struct {
	ElasticIncrement thermo.Tensor
	Elastic          thermo.Tensor
	PlasticIncrement thermo.Tensor
	Plastic          thermo.Tensor
}

type Splitter struct {
	compliance *thermo.Compliance
}

// NewSplitter fails with a configuration error when c is nil; there is no
// default material.
func NewSplitter(c *thermo.Compliance) (*Splitter, error) {
	if c == nil {
		return nil, &thermo.ConfigError{Reason: "compliance parameters (S11, S12, S44) not set"}
	}
	cc := *c
	return &Splitter{compliance: &cc}, nil
}

func (s *Splitter) Compliance() thermo.Compliance {
	return *s.compliance
}

// ElasticIncrements applies Hooke's law to the stress increments:
//
//	dεe1 = S11·dσ1 + S12·(dσ2 + dσ3)   (and cyclic for 2, 3)
//	dεe4 = S44·dσ4                      (and 5, 6)
func (s *Splitter) ElasticIncrements(stressRate thermo.Tensor) (thermo.Tensor, error) {
	n := stressRate.Len()
	if n < 0 {
		return thermo.Tensor{}, stressRate.CheckLen("stress rate", len(stressRate[0]))
	}
	c := s.compliance
	out := thermo.NewTensor(n)
	for i := 0; i < n; i++ {
		d1, d2, d3 := stressRate[0][i], stressRate[1][i], stressRate[2][i]
		out[0][i] = c.S11*d1 + c.S12*(d2+d3)
		out[1][i] = c.S11*d2 + c.S12*(d1+d3)
		out[2][i] = c.S11*d3 + c.S12*(d1+d2)
		for k := 3; k < thermo.Components; k++ {
			out[k][i] = c.S44 * stressRate[k][i]
		}
	}
	return out, nil
}

// Split integrates the elastic increments by forward Euler and assigns the
// remainder of the total strain to plasticity.
func (s *Splitter) Split(strainIncrement, strain, stressRate thermo.Tensor) (*Decomposition, error) {
	n := len(strain[0])
	if err := strain.CheckLen("total strain", n); err != nil {
		return nil, err
	}
	if err := strainIncrement.CheckLen("strain increment", n); err != nil {
		return nil, err
	}
	if err := stressRate.CheckLen("stress rate", n); err != nil {
		return nil, err
	}

	ei, err := s.ElasticIncrements(stressRate)
	if err != nil {
		return nil, err
	}

	d := &Decomposition{
		ElasticIncrement: ei,
		PlasticIncrement: thermo.NewTensor(n),
		Plastic:          thermo.NewTensor(n),
	}
	for c := 0; c < thermo.Components; c++ {
		d.Elastic[c] = thermo.Cumulative(ei[c])
		for i := 0; i < n; i++ {
			d.Plastic[c][i] = strain[c][i] - d.Elastic[c][i]
			d.PlasticIncrement[c][i] = strainIncrement[c][i] - ei[c][i]
		}
	}
	return d, nil
}
