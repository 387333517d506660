package thermo

import (
	"fmt"
	"math"
	"strings"
)

// Ensemble selects the heat-flow formula and the Beta_1 variant.
type Ensemble int

const (
	// NVE is the microcanonical ensemble; heat is inferred from kinetic-energy drift.
	NVE Ensemble = iota
	// NVT is the canonical ensemble; heat is read from the thermostat tally.
	NVT
)

func (e Ensemble) String() string {
	switch e {
	case NVE:
		return "nve"
	case NVT:
		return "nvt"
	default:
		return fmt.Sprintf("ensemble(%d)", int(e))
	}
}

// ParseEnsemble accepts nve/microcanonical and nvt/canonical, case-insensitive.
func ParseEnsemble(s string) (Ensemble, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nve", "microcanonical":
		return NVE, nil
	case "nvt", "canonical":
		return NVT, nil
	}
	return NVE, &ConfigError{Reason: fmt.Sprintf("unknown ensemble %q (want nve or nvt)", s)}
}

// DetectEnsemble reports NVT when the thermostat tally column is present.
func DetectEnsemble(columns []string) Ensemble {
	for _, c := range columns {
		if strings.EqualFold(c, ColEtally) {
			return NVT
		}
	}
	return NVE
}

// Compliance holds the three independent entries of a cubic compliance matrix, in Pa⁻¹.
type Compliance struct {
	S11 float64 `json:"s11" yaml:"s11"`
	S12 float64 `json:"s12" yaml:"s12"`
	S44 float64 `json:"s44" yaml:"s44"`
}

func (c Compliance) String() string {
	return fmt.Sprintf("S11=%.3e S12=%.3e S44=%.3e", c.S11, c.S12, c.S44)
}

// Components is the number of Voigt components.
const Components = 6

// Tensor stores the six Voigt components of a symmetric tensor over time.
// Components 0-2 are normal (xx, yy, zz), 3-5 are shear.
type Tensor [Components][]float64

func NewTensor(n int) Tensor {
	var t Tensor
	for i := range t {
		t[i] = make([]float64, n)
	}
	return t
}

// Len returns the number of samples, or -1 when components disagree.
func (t Tensor) Len() int {
	n := len(t[0])
	for _, c := range t[1:] {
		if len(c) != n {
			return -1
		}
	}
	return n
}

func (t Tensor) Clone() Tensor {
	var c Tensor
	for i := range t {
		c[i] = make([]float64, len(t[i]))
		copy(c[i], t[i])
	}
	return c
}

func (t Tensor) IsValid() bool {
	for _, comp := range t {
		for _, v := range comp {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

// At returns the six components at sample i.
func (t Tensor) At(i int) [Components]float64 {
	var v [Components]float64
	for c := range t {
		v[c] = t[c][i]
	}
	return v
}

// CheckLen returns ErrShapeMismatch unless every component has n samples.
func (t Tensor) CheckLen(op string, n int) error {
	for _, c := range t {
		if len(c) != n {
			return shapeError(op, n, len(c))
		}
	}
	return nil
}
