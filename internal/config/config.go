// Package config loads analysis settings from yaml and resolves the
// compliance parameters a run should use.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/san-kum/tqcsim/internal/elastic"
	"github.com/san-kum/tqcsim/internal/metrics"
	"github.com/san-kum/tqcsim/internal/thermo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultEnsemble        = "auto"
	DefaultFitThreshold    = elastic.DefaultThreshold
	DefaultStrainThreshold = metrics.DefaultThreshold
	DefaultThresholdColumn = metrics.DefaultColumn
	DefaultWorkers         = 1
	DefaultDataDir         = ".tqcsim"
)

type Config struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output,omitempty"`
	Ensemble string `yaml:"ensemble"`

	// Compliance parameters are taken from, in order: the explicit
	// compliance block, the material preset, the elastic sweep files.
	Compliance   *thermo.Compliance `yaml:"compliance,omitempty"`
	Material     string             `yaml:"material,omitempty"`
	ElasticDir   string             `yaml:"elastic_dir,omitempty"`
	ElasticFiles []string           `yaml:"elastic_files,omitempty"`
	FitThreshold float64            `yaml:"fit_threshold"`
	Workers      int                `yaml:"workers"`

	StrainThreshold float64  `yaml:"strain_threshold"`
	ThresholdColumn string   `yaml:"threshold_column"`
	AverageColumns  []string `yaml:"average_columns,omitempty"`

	SpecificHeat float64 `yaml:"specific_heat,omitempty"`
	DataDir      string  `yaml:"data_dir"`
}

func DefaultConfig() *Config {
	return &Config{
		Ensemble:        DefaultEnsemble,
		FitThreshold:    DefaultFitThreshold,
		Workers:         DefaultWorkers,
		StrainThreshold: DefaultStrainThreshold,
		ThresholdColumn: DefaultThresholdColumn,
		DataDir:         DefaultDataDir,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks the settings that do not depend on input files.
func (c *Config) Validate() error {
	if c.Ensemble != "" && c.Ensemble != "auto" {
		if _, err := thermo.ParseEnsemble(c.Ensemble); err != nil {
			return err
		}
	}
	if c.Material != "" && GetPreset(c.Material) == nil {
		return &thermo.ConfigError{Reason: fmt.Sprintf("unknown material preset %q", c.Material)}
	}
	if c.FitThreshold <= 0 || c.StrainThreshold <= 0 {
		return &thermo.ConfigError{Reason: "thresholds must be positive"}
	}
	return nil
}

// PresetCompliance returns the explicit compliance or the material preset's,
// or nil when the elastic sweeps must be fitted.
func (c *Config) PresetCompliance() *thermo.Compliance {
	if c.Compliance != nil {
		cc := *c.Compliance
		return &cc
	}
	if m := GetPreset(c.Material); m != nil {
		cc := m.Compliance
		return &cc
	}
	return nil
}

// HeatCapacity returns the configured specific heat, falling back to the
// material preset and then to zero (the analysis default).
func (c *Config) HeatCapacity() float64 {
	if c.SpecificHeat > 0 {
		return c.SpecificHeat
	}
	if m := GetPreset(c.Material); m != nil {
		return m.SpecificHeat
	}
	return 0
}

// ElasticPaths lists the sweep files: ElasticFiles if given, otherwise the
// standard c1144..c3366r names present in ElasticDir.
func (c *Config) ElasticPaths() ([]string, error) {
	if len(c.ElasticFiles) > 0 {
		return c.ElasticFiles, nil
	}
	if c.ElasticDir == "" {
		return nil, &thermo.ConfigError{Reason: "no compliance, material or elastic sweeps configured"}
	}

	var paths []string
	for _, rev := range []bool{false, true} {
		for a := elastic.AxisX; a <= elastic.AxisZ; a++ {
			name := elastic.Load{Axis: a, Reverse: rev}.Identifier()
			matches, err := filepath.Glob(filepath.Join(c.ElasticDir, name+".*"))
			if err != nil {
				return nil, err
			}
			paths = append(paths, matches...)
		}
	}
	if len(paths) == 0 {
		return nil, &thermo.ConfigError{Source: c.ElasticDir, Reason: "no elastic sweep files (c1144.txt ...) found"}
	}
	return paths, nil
}

// ThresholdConfig converts the threshold settings for the metrics package.
func (c *Config) ThresholdConfig() metrics.ThresholdConfig {
	return metrics.ThresholdConfig{
		Column:    c.ThresholdColumn,
		Threshold: c.StrainThreshold,
		Targets:   c.AverageColumns,
	}
}
