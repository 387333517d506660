package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/tqcsim/internal/table"
)

type ExportData struct {
	Run     RunMetadata          `json:"run"`
	Rows    int                  `json:"rows"`
	Columns []string             `json:"columns"`
	Data    map[string][]float64 `json:"data"`
}

// ExportJSON writes a run and the selected columns (all when cols is empty).
func ExportJSON(w io.Writer, meta RunMetadata, t *table.Table, cols []string) error {
	if len(cols) == 0 {
		cols = t.Names()
	}
	data := ExportData{
		Run:  meta,
		Rows: t.Len(),
		Data: make(map[string][]float64, len(cols)),
	}
	for _, name := range cols {
		v, ok := t.Column(name)
		if !ok {
			continue
		}
		data.Columns = append(data.Columns, name)
		data.Data[name] = v
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
