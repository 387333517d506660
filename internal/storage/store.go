// Package storage keeps analysis runs on disk, one directory per run.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/tqcsim/internal/table"
	"github.com/san-kum/tqcsim/internal/thermo"
)

const (
	metadataFile = "metadata.json"
	resultsFile  = "results.tsv"
	summaryFile  = "summary.txt"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string            `json:"id"`
	Input      string            `json:"input"`
	Timestamp  time.Time         `json:"timestamp"`
	Ensemble   string            `json:"ensemble"`
	Steps      int               `json:"steps"`
	Compliance thermo.Compliance `json:"compliance"`
	// ComplianceSource is "config", "preset:<name>" or "elastic".
	ComplianceSource string             `json:"compliance_source"`
	ThresholdColumn  string             `json:"threshold_column"`
	Threshold        float64            `json:"threshold"`
	RowsAbove        int                `json:"rows_above"`
	Averages         map[string]float64 `json:"averages"`
	AverageOrder     []string           `json:"average_order,omitempty"`
}

// Save writes metadata, the result table and the summary into a new run
// directory and returns the run ID.
func (s *Store) Save(meta RunMetadata, results *table.Table) (string, error) {
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d", runStem(meta.Input), meta.Timestamp.UnixNano())
	}
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := table.WriteFile(filepath.Join(runDir, resultsFile), results); err != nil {
		return "", err
	}

	sum, err := os.Create(filepath.Join(runDir, summaryFile))
	if err != nil {
		return "", err
	}
	defer sum.Close()
	heading := fmt.Sprintf("Averages for %s > %g", meta.ThresholdColumn, meta.Threshold)
	if err := WriteSummary(sum, heading, meta.AverageOrder, meta.Averages); err != nil {
		return "", err
	}
	return meta.ID, sum.Close()
}

// List returns every readable run, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.After(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTable reads the stored result table of a run.
func (s *Store) LoadTable(runID string) (*table.Table, error) {
	return table.ReadFile(filepath.Join(s.baseDir, runID, resultsFile), table.ReadOptions{})
}

// SummaryPath returns the location of a run's summary file.
func (s *Store) SummaryPath(runID string) string {
	return filepath.Join(s.baseDir, runID, summaryFile)
}

func runStem(input string) string {
	stem := filepath.Base(input)
	if i := strings.Index(stem, "."); i > 0 {
		stem = stem[:i]
	}
	if stem == "" || stem == "." || stem == string(filepath.Separator) {
		return "run"
	}
	return stem
}
