package experiment

import (
	"fmt"

	"github.com/san-kum/tqcsim/internal/table"
	"github.com/san-kum/tqcsim/internal/thermo"
	"github.com/san-kum/tqcsim/internal/tqc"
)

// ColumnInfo describes one column of the result table.
type ColumnInfo struct {
	Name  string
	Unit  string
	Label string
}

type Registry struct {
	columns []ColumnInfo
	index   map[string]int
}

// NewRegistry lists the result columns in output order.
func NewRegistry() *Registry {
	r := &Registry{index: make(map[string]int)}

	r.add("step", "", "Step")
	for i := 1; i <= thermo.Components; i++ {
		r.add(fmt.Sprintf("l_%d", i), "Å", fmt.Sprintf("Box length %d", i))
	}
	r.add("volume", "Å³", "Volume")
	r.add("volume_rate", "Å³/step", "Volume increment")
	for i := 1; i <= thermo.Components; i++ {
		r.add(fmt.Sprintf("e%d", i), "", fmt.Sprintf("Strain %d", i))
	}
	for i := 1; i <= thermo.Components; i++ {
		r.add(fmt.Sprintf("s%d", i), "Pa", fmt.Sprintf("Stress %d", i))
	}
	for i := 1; i <= thermo.Components; i++ {
		r.add(fmt.Sprintf("e%d_elastic", i), "", fmt.Sprintf("Elastic strain %d", i))
	}
	for i := 1; i <= thermo.Components; i++ {
		r.add(fmt.Sprintf("e%d_plastic", i), "", fmt.Sprintf("Plastic strain %d", i))
	}
	r.add("von_mises_strain", "", "Von Mises strain")
	r.add("von_mises_stress", "Pa", "Von Mises stress")
	r.add("von_mises_elastic", "", "Von Mises elastic strain")
	r.add("von_mises_plastic", "", "Von Mises plastic strain")
	r.add("work", "J", "Total work")
	r.add("work_elastic", "J", "Elastic work")
	r.add("work_plastic", "J", "Plastic work")
	r.add("internal_energy", "J", "Internal energy change")
	r.add("heat_flow", "J", "Heat flow")
	r.add("delta_ep", "J", "Potential energy change")
	r.add("delta_ek", "J", "Kinetic energy change")
	r.add("delta_t", "K", "Temperature change")
	r.add("delta_etot", "J", "Total energy change")
	r.add("delta_ttally", "K", "Tally temperature rise")
	for _, name := range tqc.Names {
		r.add(name, "", name)
	}
	return r
}

func (r *Registry) add(name, unit, label string) {
	r.index[name] = len(r.columns)
	r.columns = append(r.columns, ColumnInfo{Name: name, Unit: unit, Label: label})
}

func (r *Registry) Get(name string) (ColumnInfo, bool) {
	i, ok := r.index[name]
	if !ok {
		return ColumnInfo{}, false
	}
	return r.columns[i], true
}

// Label returns "Label [unit]" for known columns and the name otherwise.
func (r *Registry) Label(name string) string {
	c, ok := r.Get(name)
	if !ok {
		return name
	}
	if c.Unit == "" {
		return c.Label
	}
	return c.Label + " [" + c.Unit + "]"
}

func (r *Registry) ListColumns() []string {
	names := make([]string, len(r.columns))
	for i, c := range r.columns {
		names[i] = c.Name
	}
	return names
}

// Assemble builds the result table in registry order.
func Assemble(s *thermo.Series, r *Result) (*table.Table, error) {
	k, d, b := r.Kinematics, r.Decomposition, r.Balance
	values := map[string][]float64{
		"step":              s.Step,
		"volume":            k.Volume,
		"volume_rate":       k.VolumeRate,
		"von_mises_strain":  r.VonMises.Strain,
		"von_mises_stress":  r.VonMises.Stress,
		"von_mises_elastic": r.VonMises.Elastic,
		"von_mises_plastic": r.VonMises.Plastic,
		"work":              b.Work,
		"work_elastic":      b.ElasticWork,
		"work_plastic":      b.PlasticWork,
		"internal_energy":   b.InternalEnergy,
		"heat_flow":         b.HeatFlow,
		"delta_ep":          b.DeltaEp,
		"delta_ek":          b.DeltaEk,
		"delta_t":           b.DeltaT,
		"delta_etot":        b.DeltaEtot,
		"delta_ttally":      b.DeltaTtally,
	}
	for i := 0; i < thermo.Components; i++ {
		values[fmt.Sprintf("l_%d", i+1)] = s.L[i]
		values[fmt.Sprintf("e%d", i+1)] = k.Strain[i]
		values[fmt.Sprintf("s%d", i+1)] = k.Stress[i]
		values[fmt.Sprintf("e%d_elastic", i+1)] = d.Elastic[i]
		values[fmt.Sprintf("e%d_plastic", i+1)] = d.Plastic[i]
	}
	for i, col := range r.Coefficients.Columns() {
		values[tqc.Names[i]] = col
	}

	t := table.New()
	for _, name := range NewRegistry().ListColumns() {
		if err := t.Add(name, values[name]); err != nil {
			return nil, err
		}
	}
	return t, nil
}
