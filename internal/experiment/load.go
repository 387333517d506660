package experiment

import (
	"github.com/san-kum/tqcsim/internal/table"
	"github.com/san-kum/tqcsim/internal/thermo"
)

// LoadSeries reads a simulation table. Files without a header line are
// matched to the NVE or NVT column layout by field count.
func LoadSeries(path string) (*thermo.Series, *table.Table, error) {
	t, err := table.ReadFile(path, table.ReadOptions{
		Headers: [][]string{thermo.NVEHeaders, thermo.NVTHeaders},
	})
	if err != nil {
		return nil, nil, err
	}
	s, err := thermo.SeriesFromColumns(t, path)
	if err != nil {
		return nil, nil, err
	}
	return s, t, nil
}
