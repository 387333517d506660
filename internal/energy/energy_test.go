package energy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tqcsim/internal/energy"
	"github.com/san-kum/tqcsim/internal/thermo"
	"github.com/san-kum/tqcsim/internal/thermo/thermotest"
)

var _ = Describe("Balance", func() {
	const n = 3
	var in *energy.Input

	BeforeEach(func() {
		in = &energy.Input{
			Stress:           thermo.NewTensor(n),
			StrainIncrement:  thermo.NewTensor(n),
			ElasticIncrement: thermo.NewTensor(n),
			PlasticIncrement: thermo.NewTensor(n),
			Volume:           thermotest.Constant(n, 1000),
			Ep:               []float64{-3.0, -2.9, -2.7},
			Ek:               []float64{0.04, 0.05, 0.07},
			U:                []float64{-2.96, -2.85, -2.63},
			T:                []float64{300, 310, 330},
			Rho:              thermotest.Constant(n, 2.7),
		}
		for i := 0; i < n; i++ {
			in.Stress[0][i] = 1e8
			if i > 0 {
				in.StrainIncrement[0][i] = 0.01
				in.ElasticIncrement[0][i] = 0.004
				in.PlasticIncrement[0][i] = 0.006
			}
		}
	})

	It("accumulates volume-scaled work from zero", func() {
		b, err := energy.Compute(in, thermo.NVE)
		Expect(err).NotTo(HaveOccurred())

		Expect(b.WorkIncrement[0]).To(BeZero())
		Expect(b.WorkIncrement[1]).To(BeNumerically("~", 1e-21, 1e-33))
		Expect(b.Work).To(HaveLen(n))
		Expect(b.Work[0]).To(BeZero())
		Expect(b.Work[2]).To(BeNumerically("~", 2e-21, 1e-33))
		Expect(b.ElasticWork[2]).To(BeNumerically("~", 0.8e-21, 1e-33))
		Expect(b.PlasticWork[2]).To(BeNumerically("~", 1.2e-21, 1e-33))
	})

	It("scales energy changes relative to the first sample", func() {
		b, err := energy.Compute(in, thermo.NVE)
		Expect(err).NotTo(HaveOccurred())

		scale := thermo.EVToJ * 1000 * thermo.Angstrom3ToM3
		tol := scale * 1e-12
		Expect(b.InternalEnergy[0]).To(BeZero())
		Expect(b.InternalEnergy[2]).To(BeNumerically("~", 0.33*scale, tol))
		Expect(b.DeltaEp[1]).To(BeNumerically("~", 0.1*scale, tol))
		Expect(b.DeltaEk[2]).To(BeNumerically("~", 0.03*scale, tol))
		Expect(b.DeltaT).To(Equal([]float64{0, 10, 30}))
	})

	It("infers NVE heat from kinetic-energy drift", func() {
		b, err := energy.Compute(in, thermo.NVE)
		Expect(err).NotTo(HaveOccurred())

		scale := thermo.EVToJ * 1000 * thermo.Angstrom3ToM3
		tol := scale * 1e-12
		Expect(b.HeatFlow[0]).To(BeZero())
		Expect(b.HeatFlow[2]).To(BeNumerically("~", -0.03*scale, tol))
		Expect(b.HeatFlow[2]).To(BeNumerically("<", 0))
		Expect(b.DeltaEtot[2]).To(BeNumerically("~", b.InternalEnergy[2]+b.HeatFlow[2], tol))

		ttally := b.HeatFlow[2] / (2.7 * 1000 * 903)
		Expect(b.DeltaTtally[2]).To(BeNumerically("~", ttally, -ttally*1e-12))
	})

	It("reads NVT heat from the thermostat tally", func() {
		in.Etally = []float64{0, 0.5, 1.5}
		b, err := energy.Compute(in, thermo.NVT)
		Expect(err).NotTo(HaveOccurred())

		scale := energy.Scale(in.Volume)
		Expect(b.HeatFlow[1]).To(Equal(0.5 * scale[1]))
		Expect(b.HeatFlow[2]).To(Equal(1.5 * scale[2]))
	})

	It("honours a custom specific heat", func() {
		in.Etally = []float64{0, 0.5, 1.5}
		in.SpecificHeat = 385
		b, err := energy.Compute(in, thermo.NVT)
		Expect(err).NotTo(HaveOccurred())
		ttally := b.HeatFlow[2] / (2.7 * 1000 * 385)
		Expect(b.DeltaTtally[2]).To(BeNumerically("~", ttally, ttally*1e-12))
	})

	It("rejects NVT without a tally", func() {
		_, err := energy.Compute(in, thermo.NVT)
		Expect(err).To(MatchError(thermo.ErrConfiguration))
	})

	It("rejects mismatched series", func() {
		in.U = in.U[:2]
		_, err := energy.Compute(in, thermo.NVE)
		Expect(err).To(MatchError(thermo.ErrShapeMismatch))
	})
})

var _ = Describe("WorkIncrements", func() {
	It("sums all six components", func() {
		stress := thermo.NewTensor(2)
		inc := thermo.NewTensor(2)
		for c := 0; c < thermo.Components; c++ {
			stress[c][1] = float64(c + 1)
			inc[c][1] = 1
		}
		w, err := energy.WorkIncrements(stress, inc, []float64{1e30, 1e30})
		Expect(err).NotTo(HaveOccurred())
		Expect(w[0]).To(BeZero())
		Expect(w[1]).To(BeNumerically("~", 21, 1e-12))
	})
})
