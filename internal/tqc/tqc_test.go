package tqc_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tqcsim/internal/thermo"
	"github.com/san-kum/tqcsim/internal/tqc"
)

var _ = Describe("Compute", func() {
	var in tqc.Input

	BeforeEach(func() {
		in = tqc.Input{
			PlasticWork:    []float64{0, 1e-15, 3e-15, 6e-15},
			ElasticWork:    []float64{0, 2e-16, 3e-16, 3.5e-16},
			HeatFlow:       []float64{0, 8e-16, 2.5e-15, 5.2e-15},
			InternalEnergy: []float64{0, 4e-16, 8e-16, 1.4e-15},
		}
	})

	It("produces one value per step", func() {
		c, err := tqc.Compute(in, thermo.NVT)
		Expect(err).NotTo(HaveOccurred())
		for _, col := range c.Columns() {
			Expect(col).To(HaveLen(4))
		}
		Expect(tqc.Names).To(HaveLen(len(c.Columns())))
	})

	It("computes the heat fraction of plastic work", func() {
		c, err := tqc.Compute(in, thermo.NVT)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Beta0Int[3]).To(BeNumerically("~", 5.2/6, 1e-9))
		Expect(c.Beta0Diff[3]).To(BeNumerically("~", 2.7/3, 1e-9))
		Expect(c.Beta1Int[3]).To(BeNumerically("~", 1-(1.4-0.35)/6, 1e-9))
	})

	It("divides by the guard alone when there is no plastic work", func() {
		in.PlasticWork = []float64{0, 0, 0, 0}
		c, err := tqc.Compute(in, thermo.NVE)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Beta0Int[2]).To(BeNumerically("~", 2.5e10, 1e-3))
		Expect(c.Beta0Diff[0]).To(BeZero())
	})

	It("differs between ensembles only by the heat term in Beta_1", func() {
		nvt, err := tqc.Compute(in, thermo.NVT)
		Expect(err).NotTo(HaveOccurred())
		nve, err := tqc.Compute(in, thermo.NVE)
		Expect(err).NotTo(HaveOccurred())

		Expect(nve.Beta0Diff).To(Equal(nvt.Beta0Diff))
		Expect(nve.Beta0Int).To(Equal(nvt.Beta0Int))

		dQ := thermo.Increments(in.HeatFlow)
		dWp := thermo.Increments(in.PlasticWork)
		for i := range in.PlasticWork {
			Expect(nve.Beta1Diff[i] - nvt.Beta1Diff[i]).To(
				BeNumerically("~", dQ[i]/(dWp[i]+thermo.SmallNumber), 1e-9))
			Expect(nve.Beta1Int[i] - nvt.Beta1Int[i]).To(
				BeNumerically("~", in.HeatFlow[i]/(in.PlasticWork[i]+thermo.SmallNumber), 1e-9))
		}
	})

	It("fails on mismatched lengths", func() {
		in.HeatFlow = in.HeatFlow[:3]
		_, err := tqc.Compute(in, thermo.NVE)
		Expect(err).To(MatchError(thermo.ErrShapeMismatch))
	})

	It("rejects an unknown ensemble", func() {
		_, err := tqc.Compute(in, thermo.Ensemble(7))
		Expect(err).To(MatchError(thermo.ErrConfiguration))
	})
})
