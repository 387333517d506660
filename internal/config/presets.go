package config

import (
	"sort"
	"strings"

	"github.com/san-kum/tqcsim/internal/thermo"
)

// Material is a cubic metal with room-temperature single-crystal
// compliance (Pa⁻¹) and specific heat (J/(kg·K)).
type Material struct {
	Name         string
	Lattice      string
	Compliance   thermo.Compliance
	SpecificHeat float64
}

var Presets = map[string]*Material{
	"al": {
		Name: "aluminium", Lattice: "fcc", SpecificHeat: 903,
		Compliance: thermo.Compliance{S11: 1.57e-11, S12: -5.7e-12, S44: 3.51e-11},
	},
	"cu": {
		Name: "copper", Lattice: "fcc", SpecificHeat: 385,
		Compliance: thermo.Compliance{S11: 1.50e-11, S12: -6.3e-12, S44: 1.33e-11},
	},
	"ni": {
		Name: "nickel", Lattice: "fcc", SpecificHeat: 444,
		Compliance: thermo.Compliance{S11: 7.34e-12, S12: -2.74e-12, S44: 8.02e-12},
	},
	"fe": {
		Name: "alpha iron", Lattice: "bcc", SpecificHeat: 449,
		Compliance: thermo.Compliance{S11: 7.56e-12, S12: -2.78e-12, S44: 8.59e-12},
	},
}

func GetPreset(name string) *Material {
	m, ok := Presets[strings.ToLower(name)]
	if !ok {
		return nil
	}
	return m
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
