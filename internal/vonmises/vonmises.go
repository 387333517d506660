// Package vonmises reduces Voigt tensor series to scalar Von Mises
// equivalents.
package vonmises

import (
	"math"

	"github.com/san-kum/tqcsim/internal/thermo"
)

// Strain returns the equivalent strain of a Voigt strain series:
//
//	εvM = (√2/3)·√[(ε1−ε2)² + (ε2−ε3)² + (ε1−ε3)² + 1.5(ε4² + ε5² + ε6²)]
func Strain(e thermo.Tensor) ([]float64, error) {
	return reduce("von mises strain", e, strainAt)
}

// Stress returns the equivalent stress of a Voigt stress series:
//
//	σvM = √[0.5((σ1−σ2)² + (σ2−σ3)² + (σ1−σ3)²) + 3(σ4² + σ5² + σ6²)]
func Stress(s thermo.Tensor) ([]float64, error) {
	return reduce("von mises stress", s, stressAt)
}

func strainAt(v [thermo.Components]float64) float64 {
	normal := sq(v[0]-v[1]) + sq(v[1]-v[2]) + sq(v[0]-v[2])
	shear := sq(v[3]) + sq(v[4]) + sq(v[5])
	return math.Sqrt2 / 3 * math.Sqrt(normal+1.5*shear)
}

func stressAt(v [thermo.Components]float64) float64 {
	normal := sq(v[0]-v[1]) + sq(v[1]-v[2]) + sq(v[0]-v[2])
	shear := sq(v[3]) + sq(v[4]) + sq(v[5])
	return math.Sqrt(0.5*normal + 3*shear)
}

func reduce(op string, t thermo.Tensor, f func([thermo.Components]float64) float64) ([]float64, error) {
	n := len(t[0])
	if err := t.CheckLen(op, n); err != nil {
		return nil, err
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = f(t.At(i))
	}
	return out, nil
}

func sq(x float64) float64 { return x * x }
