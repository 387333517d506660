package experiment_test

import (
	"context"
	"math"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/tqcsim/internal/experiment"
	"github.com/san-kum/tqcsim/internal/table"
	"github.com/san-kum/tqcsim/internal/thermo"
	"github.com/san-kum/tqcsim/internal/thermo/thermotest"
)

var compliance = thermo.Compliance{S11: 1e-11, S12: -2e-12, S44: 3e-11}

func triaxial() *thermo.Series {
	l := []float64{1, 1.01, 1.02, 1.03, 1.04}
	s := thermotest.Uniaxial(l)
	copy(s.L[1], l)
	copy(s.L[2], l)
	for c := 0; c < thermo.Components; c++ {
		s.P[c] = thermotest.Constant(5, -100)
	}
	return s
}

var _ = Describe("Experiment", func() {
	var (
		ctx    context.Context
		series *thermo.Series
		cfg    experiment.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		series = triaxial()
		c := compliance
		cfg = experiment.Config{Source: "synthetic", Compliance: &c}
	})

	Context("with constant pressures", func() {
		It("computes logarithmic strain and attributes all of it to plasticity", func() {
			res, err := experiment.New(cfg).Run(ctx, series)
			Expect(err).NotTo(HaveOccurred())

			e1, _ := res.Table.Column("e1")
			Expect(e1[1]).To(Equal(math.Log(1.01 / 1.00)))

			p1, _ := res.Table.Column("e1_plastic")
			for i := range e1 {
				Expect(p1[i]).To(Equal(e1[i]))
			}
		})

		It("leaves no rows above the threshold under hydrostatic strain", func() {
			res, err := experiment.New(cfg).Run(ctx, series)
			Expect(err).NotTo(HaveOccurred())

			vm, _ := res.Table.Column("von_mises_strain")
			for _, v := range vm {
				Expect(v).To(BeNumerically("<", 1e-12))
			}
			Expect(res.Threshold.Averages).NotTo(BeNil())
			Expect(res.Threshold.Averages).To(BeEmpty())
			Expect(res.Threshold.Below.Len()).To(Equal(5))
		})
	})

	Context("with varying pressures", func() {
		BeforeEach(func() {
			series.P[0] = []float64{0, -500, -900, -1200, -1400}
			series.P[1] = []float64{0, -100, -150, -180, -200}
			series.P[3] = []float64{0, -10, -15, -18, -20}
		})

		It("subtracts the Hooke's-law elastic strain exactly", func() {
			res, err := experiment.New(cfg).Run(ctx, series)
			Expect(err).NotTo(HaveOccurred())

			e1, _ := res.Table.Column("e1")
			p1, _ := res.Table.Column("e1_plastic")
			var elastic float64
			for i := range e1 {
				if i > 0 {
					d := func(c int) float64 {
						return (series.P[c][i] - series.P[c][i-1]) * thermo.PressureToStress
					}
					elastic += compliance.S11*d(0) + compliance.S12*(d(1)+d(2))
				}
				Expect(p1[i]).To(BeNumerically("~", e1[i]-elastic, 1e-15))
			}

			for c := 1; c <= thermo.Components; c++ {
				tot := res.Kinematics.Strain[c-1]
				el := res.Decomposition.Elastic[c-1]
				pl := res.Decomposition.Plastic[c-1]
				for i := range tot {
					Expect(el[i] + pl[i]).To(BeNumerically("~", tot[i], 1e-15))
				}
			}
		})

		It("starts every increment series at zero", func() {
			res, err := experiment.New(cfg).Run(ctx, series)
			Expect(err).NotTo(HaveOccurred())

			for c := 0; c < thermo.Components; c++ {
				Expect(res.Kinematics.StrainIncrement[c][0]).To(BeZero())
				Expect(res.Kinematics.StressRate[c][0]).To(BeZero())
				Expect(res.Decomposition.ElasticIncrement[c][0]).To(BeZero())
			}
			Expect(res.Balance.WorkIncrement[0]).To(BeZero())
			Expect(res.Balance.PlasticWorkIncrement[0]).To(BeZero())
			Expect(res.Balance.InternalEnergy[0]).To(BeZero())
			Expect(res.Balance.HeatFlow[0]).To(BeZero())
		})
	})

	It("lays out the table in registry order", func() {
		res, err := experiment.New(cfg).Run(ctx, series)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Table.Names()).To(Equal(experiment.NewRegistry().ListColumns()))
		Expect(res.Table.Len()).To(Equal(5))
		Expect(res.Table.Names()).To(ContainElements("Beta_0_diff", "Beta_1_int", "heat_flow", "work_plastic"))
	})

	Describe("ensemble selection", func() {
		It("detects NVT from the thermostat tally", func() {
			series.Etally = thermotest.Ramp(5, 0, 0.1)
			res, err := experiment.New(cfg).Run(ctx, series)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ensemble).To(Equal(thermo.NVT))
		})

		It("defaults to NVE without a tally", func() {
			res, err := experiment.New(cfg).Run(ctx, series)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ensemble).To(Equal(thermo.NVE))
		})

		It("honours an explicit NVE request on NVT data", func() {
			series.Etally = thermotest.Ramp(5, 0, 0.1)
			cfg.Ensemble = "microcanonical"
			res, err := experiment.New(cfg).Run(ctx, series)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Ensemble).To(Equal(thermo.NVE))
		})

		It("rejects NVT without a tally", func() {
			cfg.Ensemble = "nvt"
			_, err := experiment.New(cfg).Run(ctx, series)
			Expect(err).To(MatchError(thermo.ErrConfiguration))
		})

		It("rejects unknown ensembles", func() {
			cfg.Ensemble = "npt"
			_, err := experiment.New(cfg).Run(ctx, series)
			Expect(err).To(MatchError(thermo.ErrConfiguration))
		})
	})

	It("requires compliance parameters", func() {
		cfg.Compliance = nil
		_, err := experiment.New(cfg).Run(ctx, series)
		Expect(err).To(MatchError(thermo.ErrConfiguration))
		Expect(err.Error()).To(ContainSubstring("synthetic"))
	})

	It("requires at least two samples", func() {
		_, err := experiment.New(cfg).Run(ctx, thermotest.Uniaxial([]float64{1}))
		Expect(err).To(MatchError(thermo.ErrConfiguration))
	})

	It("stops when the context is cancelled", func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := experiment.New(cfg).Run(cctx, series)
		Expect(err).To(MatchError(context.Canceled))
	})
})

var _ = Describe("LoadSeries", func() {
	It("reads an NVT table written by the table package", func() {
		s := triaxial()
		s.Etally = thermotest.Ramp(5, 0, 0.5)
		cols := thermotest.ToColumns(s)

		t := table.New()
		for _, name := range thermo.NVTHeaders {
			t.MustAdd(name, cols[name])
		}
		path := filepath.Join(GinkgoT().TempDir(), "run.txt")
		Expect(table.WriteFile(path, t)).To(Succeed())

		loaded, _, err := experiment.LoadSeries(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Ensemble()).To(Equal(thermo.NVT))
		Expect(loaded.L[0]).To(Equal(s.L[0]))
		Expect(loaded.Etally).To(Equal(s.Etally))
	})

	It("names missing columns", func() {
		t := table.New()
		t.MustAdd("step", []float64{0, 1})
		t.MustAdd("vol", []float64{1, 1})
		path := filepath.Join(GinkgoT().TempDir(), "short.csv")
		Expect(table.WriteFile(path, t)).To(Succeed())

		_, _, err := experiment.LoadSeries(path)
		Expect(err).To(MatchError(thermo.ErrConfiguration))
		Expect(err.Error()).To(ContainSubstring("l_1"))
	})
})
