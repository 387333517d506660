package elastic

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/san-kum/tqcsim/internal/thermo"
)

// Axis is the loading direction of a stress-strain sweep.
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

// Load identifies one sweep: an axis and whether it was loaded in reverse.
type Load struct {
	Axis    Axis
	Reverse bool
}

var axisStems = [3]string{"c1144", "c2255", "c3366"}

// Identifier returns the file stem, e.g. "c2255r".
func (l Load) Identifier() string {
	id := axisStems[l.Axis]
	if l.Reverse {
		id += "r"
	}
	return id
}

// ParseIdentifier maps a file name such as "c1144r.txt" to its Load.
func ParseIdentifier(name string) (Load, error) {
	stem := strings.ToLower(filepath.Base(name))
	for {
		ext := filepath.Ext(stem)
		if ext == "" {
			break
		}
		stem = strings.TrimSuffix(stem, ext)
	}
	reverse := strings.HasSuffix(stem, "r")
	stem = strings.TrimSuffix(stem, "r")
	for i, s := range axisStems {
		if s == stem {
			return Load{Axis: Axis(i), Reverse: reverse}, nil
		}
	}
	return Load{}, fmt.Errorf("elastic: %s: not a recognised sweep (want c1144, c2255 or c3366 with optional r suffix)", name)
}

// Column names of a stress-strain sweep file.
var (
	StrainColumns   = [thermo.Components]string{"delta_exx", "delta_eyy", "delta_ezz", "delta_exy", "delta_eyz", "delta_exz"}
	PressureColumns = [thermo.Components]string{"delta_pxx", "delta_pyy", "delta_pzz", "delta_pxy", "delta_pyz", "delta_pxz"}
)

// Headers is the column layout of a sweep file without a header line.
func Headers() []string {
	h := make([]string, 0, 2*thermo.Components)
	h = append(h, StrainColumns[:]...)
	return append(h, PressureColumns[:]...)
}

// Sweep holds the delta strain and delta pressure columns of one file.
type Sweep struct {
	Strain   thermo.Tensor
	Pressure thermo.Tensor
}

// SweepFromColumns extracts a Sweep, naming every missing column on failure.
func SweepFromColumns(src thermo.ColumnSource, source string) (*Sweep, error) {
	has := func(name string) bool {
		_, ok := src.Column(name)
		return ok
	}
	if missing := thermo.MissingColumns(has, Headers()); len(missing) > 0 {
		return nil, &thermo.ConfigError{Source: source, Columns: missing, Reason: "missing stress-strain columns"}
	}

	var s Sweep
	for i := 0; i < thermo.Components; i++ {
		s.Strain[i], _ = src.Column(StrainColumns[i])
		s.Pressure[i], _ = src.Column(PressureColumns[i])
	}
	return &s, nil
}
