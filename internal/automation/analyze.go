package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/tqcsim/internal/config"
	"github.com/san-kum/tqcsim/internal/elastic"
	"github.com/san-kum/tqcsim/internal/experiment"
	"github.com/san-kum/tqcsim/internal/storage"
	"github.com/san-kum/tqcsim/internal/table"
	"github.com/san-kum/tqcsim/internal/thermo"
)

// Run is a finished analysis together with how its compliance was chosen.
type Run struct {
	Result  *experiment.Result
	Elastic *elastic.Result
	Meta    storage.RunMetadata
}

// ResolveCompliance returns the compliance for cfg and a label naming its
// origin. Explicit values and presets win; otherwise the elastic sweeps
// are fitted.
func ResolveCompliance(cfg *config.Config, logger *slog.Logger) (*thermo.Compliance, string, *elastic.Result, error) {
	if c := cfg.PresetCompliance(); c != nil {
		if cfg.Compliance != nil {
			return c, "config", nil, nil
		}
		return c, "preset:" + cfg.Material, nil, nil
	}

	paths, err := cfg.ElasticPaths()
	if err != nil {
		return nil, "", nil, err
	}
	eng := elastic.New(
		elastic.WithThreshold(cfg.FitThreshold),
		elastic.WithWorkers(cfg.Workers),
		elastic.WithLogger(logger),
	)
	res, err := eng.Analyze(paths)
	if err != nil {
		return nil, "", nil, err
	}
	c := res.Params
	return &c, "elastic", res, nil
}

// Analyze loads cfg.Input, resolves the compliance and runs the pipeline.
func Analyze(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Run, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Input == "" {
		return nil, &thermo.ConfigError{Reason: "no input file configured"}
	}

	compliance, source, el, err := ResolveCompliance(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("compliance: %w", err)
	}

	series, _, err := experiment.LoadSeries(cfg.Input)
	if err != nil {
		return nil, err
	}

	exp := experiment.New(experiment.Config{
		Source:       cfg.Input,
		Ensemble:     cfg.Ensemble,
		Compliance:   compliance,
		Threshold:    cfg.ThresholdConfig(),
		SpecificHeat: cfg.HeatCapacity(),
		Logger:       logger,
	})
	res, err := exp.Run(ctx, series)
	if err != nil {
		return nil, err
	}

	th := res.Threshold
	run := &Run{
		Result:  res,
		Elastic: el,
		Meta: storage.RunMetadata{
			Input:            cfg.Input,
			Ensemble:         res.Ensemble.String(),
			Steps:            series.Len(),
			Compliance:       *compliance,
			ComplianceSource: source,
			ThresholdColumn:  th.Column,
			Threshold:        th.Threshold,
			RowsAbove:        th.RowsAbove,
			Averages:         th.Averages,
			AverageOrder:     th.Order,
		},
	}

	if cfg.Output != "" {
		if err := table.WriteFile(cfg.Output, res.Table); err != nil {
			return nil, fmt.Errorf("write output: %w", err)
		}
		logger.Info("results written", "path", cfg.Output)
	}
	return run, nil
}
