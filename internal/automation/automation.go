// Package automation runs analyses described by configuration: single
// runs, batch scenarios and threshold sweeps.
package automation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/san-kum/tqcsim/internal/config"
	"github.com/san-kum/tqcsim/internal/metrics"
	"github.com/san-kum/tqcsim/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a batch of analyses sharing default settings.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Defaults    config.Config  `yaml:"defaults"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep overrides the defaults for one input.
type ScenarioStep struct {
	Name            string   `yaml:"name"`
	Input           string   `yaml:"input"`
	Output          string   `yaml:"output"`
	Ensemble        string   `yaml:"ensemble"`
	Material        string   `yaml:"material"`
	ElasticDir      string   `yaml:"elastic_dir"`
	StrainThreshold float64  `yaml:"strain_threshold"`
	AverageColumns  []string `yaml:"average_columns"`
	Save            bool     `yaml:"save"`
}

// LoadScenario reads a scenario; unset defaults take config.DefaultConfig values.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	scenario := Scenario{Defaults: *config.DefaultConfig()}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// Config merges the step into the scenario defaults.
func (s *Scenario) Config(step ScenarioStep) *config.Config {
	cfg := s.Defaults
	cfg.Input = step.Input
	cfg.Output = step.Output
	if step.Ensemble != "" {
		cfg.Ensemble = step.Ensemble
	}
	if step.Material != "" {
		cfg.Material = step.Material
		cfg.Compliance = nil
	}
	if step.ElasticDir != "" {
		cfg.ElasticDir = step.ElasticDir
	}
	if step.StrainThreshold > 0 {
		cfg.StrainThreshold = step.StrainThreshold
	}
	if len(step.AverageColumns) > 0 {
		cfg.AverageColumns = step.AverageColumns
	}
	return &cfg
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name  string
	Run   *Run
	RunID string
	Err   error
}

// RunScenario executes every step in order. A failing step is recorded and
// the batch continues; cancellation stops it.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, logger *slog.Logger) ([]StepResult, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		fmt.Printf("Running %s (%d/%d): %s\n", name, i+1, len(scenario.Steps), step.Input)

		r := StepResult{Name: name}
		r.Run, r.Err = Analyze(ctx, scenario.Config(step), logger)
		if r.Err == nil && step.Save && st != nil {
			r.RunID, r.Err = st.Save(r.Run.Meta, r.Run.Result.Table)
		}
		if r.Err != nil {
			logger.Warn("scenario step failed", "step", name, "err", r.Err)
		}
		results = append(results, r)
	}
	return results, nil
}

// Failed counts the steps that returned an error.
func Failed(results []StepResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// ThresholdSweep re-averages one analysis over a range of strain thresholds.
type ThresholdSweep struct {
	Min      float64
	Max      float64
	NumSteps int
}

type SweepResult struct {
	Threshold float64
	RowsAbove int
	Averages  map[string]float64
	Order     []string
}

// RunSweep evaluates the threshold analysis of run at each threshold.
func RunSweep(run *Run, sweep ThresholdSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	if sweep.Min <= 0 || sweep.Max < sweep.Min {
		return nil, fmt.Errorf("sweep range [%g, %g] must be positive and ordered", sweep.Min, sweep.Max)
	}
	step := 0.0
	if sweep.NumSteps > 1 {
		step = (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
	}

	base := run.Result.Threshold
	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		thr := sweep.Min + float64(i)*step
		res, err := metrics.AnalyzeThreshold(run.Result.Table, metrics.ThresholdConfig{
			Column:    base.Column,
			Threshold: thr,
			Exact:     true,
			Targets:   base.Order,
		})
		if err != nil {
			return nil, err
		}
		results = append(results, SweepResult{
			Threshold: thr,
			RowsAbove: res.RowsAbove,
			Averages:  res.Averages,
			Order:     res.Order,
		})
	}
	return results, nil
}
