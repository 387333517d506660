// Package experiment runs the full thermomechanical analysis of one
// simulation series and assembles the result table.
package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/tqcsim/internal/energy"
	"github.com/san-kum/tqcsim/internal/kinematics"
	"github.com/san-kum/tqcsim/internal/metrics"
	"github.com/san-kum/tqcsim/internal/plasticity"
	"github.com/san-kum/tqcsim/internal/table"
	"github.com/san-kum/tqcsim/internal/thermo"
	"github.com/san-kum/tqcsim/internal/tqc"
	"github.com/san-kum/tqcsim/internal/vonmises"
)

type Config struct {
	// Source names the input in errors and logs.
	Source string
	// Ensemble is "auto", "nve" or "nvt". Auto detects NVT from the
	// presence of the thermostat tally.
	Ensemble   string
	Compliance *thermo.Compliance
	Threshold  metrics.ThresholdConfig
	// SpecificHeat in J/(kg·K); zero selects the aluminium default.
	SpecificHeat float64
	Logger       *slog.Logger
}

type Experiment struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config) *Experiment {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Experiment{cfg: cfg, logger: logger}
}

// Result carries every intermediate stage plus the assembled table.
type Result struct {
	Ensemble      thermo.Ensemble
	Kinematics    *kinematics.Result
	Decomposition *plasticity.Decomposition
	VonMises      VonMises
	Balance       *energy.Balance
	Coefficients  *tqc.Coefficients
	Table         *table.Table
	Threshold     *metrics.ThresholdResult
}

type VonMises struct {
	Strain  []float64
	Stress  []float64
	Elastic []float64
	Plastic []float64
}

// Ensemble resolves the configured ensemble against the series.
func (e *Experiment) Ensemble(s *thermo.Series) (thermo.Ensemble, error) {
	switch e.cfg.Ensemble {
	case "", "auto":
		return s.Ensemble(), nil
	}
	ens, err := thermo.ParseEnsemble(e.cfg.Ensemble)
	if err != nil {
		return ens, err
	}
	if ens == thermo.NVT && s.Etally == nil {
		return ens, &thermo.ConfigError{Source: e.cfg.Source, Columns: []string{thermo.ColEtally},
			Reason: "nvt requested but the series has no thermostat tally"}
	}
	return ens, nil
}

// Run executes kinematics, decomposition, equivalent measures, energy
// balance, dissipation and threshold analysis in order. The context is
// checked between stages.
func (e *Experiment) Run(ctx context.Context, s *thermo.Series) (*Result, error) {
	src := e.cfg.Source
	if err := s.Validate(src); err != nil {
		return nil, err
	}
	splitter, err := plasticity.NewSplitter(e.cfg.Compliance)
	if err != nil {
		return nil, withSource(src, err)
	}

	res := &Result{}
	if res.Ensemble, err = e.Ensemble(s); err != nil {
		return nil, err
	}
	e.logger.Info("analysis started", "source", src, "steps", s.Len(), "ensemble", res.Ensemble,
		"compliance", splitter.Compliance().String())

	stages := []struct {
		name string
		run  func() error
	}{
		{"kinematics", func() (err error) {
			res.Kinematics, err = kinematics.Compute(s)
			return err
		}},
		{"decomposition", func() (err error) {
			k := res.Kinematics
			res.Decomposition, err = splitter.Split(k.StrainIncrement, k.Strain, k.StressRate)
			return err
		}},
		{"von mises", func() error {
			return res.computeVonMises()
		}},
		{"energy", func() (err error) {
			res.Balance, err = energy.Compute(e.energyInput(s, res), res.Ensemble)
			return err
		}},
		{"tqc", func() (err error) {
			b := res.Balance
			res.Coefficients, err = tqc.Compute(tqc.Input{
				PlasticWork:    b.PlasticWork,
				ElasticWork:    b.ElasticWork,
				HeatFlow:       b.HeatFlow,
				InternalEnergy: b.InternalEnergy,
			}, res.Ensemble)
			return err
		}},
		{"table", func() (err error) {
			res.Table, err = Assemble(s, res)
			return err
		}},
		{"threshold", func() (err error) {
			res.Threshold, err = metrics.AnalyzeThreshold(res.Table, e.cfg.Threshold)
			return err
		}},
	}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := st.run(); err != nil {
			return nil, fmt.Errorf("%s: %w", st.name, withSource(src, err))
		}
		e.logger.Debug("stage done", "stage", st.name)
	}

	if len(res.Threshold.Skipped) > 0 {
		e.logger.Warn("average columns not found", "columns", res.Threshold.Skipped)
	}
	e.logger.Info("analysis finished", "source", src, "rows_above_threshold", res.Threshold.RowsAbove)
	return res, nil
}

func (r *Result) computeVonMises() error {
	var err error
	k, d := r.Kinematics, r.Decomposition
	if r.VonMises.Strain, err = vonmises.Strain(k.Strain); err != nil {
		return err
	}
	if r.VonMises.Stress, err = vonmises.Stress(k.Stress); err != nil {
		return err
	}
	if r.VonMises.Elastic, err = vonmises.Strain(d.Elastic); err != nil {
		return err
	}
	r.VonMises.Plastic, err = vonmises.Strain(d.Plastic)
	return err
}

func (e *Experiment) energyInput(s *thermo.Series, r *Result) *energy.Input {
	return &energy.Input{
		Stress:           r.Kinematics.Stress,
		StrainIncrement:  r.Kinematics.StrainIncrement,
		ElasticIncrement: r.Decomposition.ElasticIncrement,
		PlasticIncrement: r.Decomposition.PlasticIncrement,
		Volume:           r.Kinematics.Volume,
		Ep:               s.Ep,
		Ek:               s.Ek,
		U:                s.U,
		T:                s.T,
		Rho:              s.Rho,
		Etally:           s.Etally,
		SpecificHeat:     e.cfg.SpecificHeat,
	}
}

func withSource(src string, err error) error {
	if src == "" {
		return err
	}
	return fmt.Errorf("%s: %w", src, err)
}
