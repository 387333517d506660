// Package table holds named float columns and reads or writes them as
// whitespace- or comma-separated text, optionally compressed.
package table

import (
	"fmt"
)

// Table is an ordered set of equally long float columns.
type Table struct {
	names []string
	cols  map[string][]float64
	n     int
}

func New() *Table {
	return &Table{cols: make(map[string][]float64), n: -1}
}

// Add appends a column. All columns must have the same length and unique names.
func (t *Table) Add(name string, values []float64) error {
	if _, ok := t.cols[name]; ok {
		return fmt.Errorf("table: duplicate column %q", name)
	}
	if t.n >= 0 && len(values) != t.n {
		return fmt.Errorf("table: column %q has %d rows, want %d", name, len(values), t.n)
	}
	t.n = len(values)
	t.names = append(t.names, name)
	t.cols[name] = values
	return nil
}

// MustAdd is Add for columns built by the caller with known lengths.
func (t *Table) MustAdd(name string, values []float64) {
	if err := t.Add(name, values); err != nil {
		panic(err)
	}
}

func (t *Table) Column(name string) ([]float64, bool) {
	v, ok := t.cols[name]
	return v, ok
}

func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Names returns the column names in insertion order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t.n < 0 {
		return 0
	}
	return t.n
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []float64 {
	row := make([]float64, len(t.names))
	for j, name := range t.names {
		row[j] = t.cols[name][i]
	}
	return row
}

// Filter returns a new table holding the rows for which keep returns true.
func (t *Table) Filter(keep func(row int) bool) *Table {
	idx := make([]int, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	out := New()
	for _, name := range t.names {
		src := t.cols[name]
		dst := make([]float64, len(idx))
		for j, i := range idx {
			dst[j] = src[i]
		}
		out.MustAdd(name, dst)
	}
	return out
}
