package thermo

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors for analysis operations.
var (
	// ErrConfiguration indicates missing inputs: compliance parameters,
	// required columns or too few samples.
	ErrConfiguration = errors.New("thermo: configuration error")

	// ErrNumeric indicates a numerically impossible operation such as
	// inverting a singular rigidity matrix.
	ErrNumeric = errors.New("thermo: numeric error")

	// ErrShapeMismatch indicates parallel series of different lengths.
	ErrShapeMismatch = errors.New("thermo: series length mismatch")
)

// ConfigError wraps ErrConfiguration with the offending source and columns.
type ConfigError struct {
	Source  string
	Columns []string
	Reason  string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConfiguration.Error())
	if e.Source != "" {
		b.WriteString(": ")
		b.WriteString(e.Source)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	if len(e.Columns) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Columns, ", "))
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}

// NumericError wraps ErrNumeric with the operation that failed.
type NumericError struct {
	Source string
	Op     string
	Reason string
}

func (e *NumericError) Error() string {
	msg := ErrNumeric.Error() + ": " + e.Op
	if e.Source != "" {
		msg += " (" + e.Source + ")"
	}
	return msg + ": " + e.Reason
}

func (e *NumericError) Unwrap() error {
	return ErrNumeric
}

// MissingColumns returns the names in want for which has reports false.
func MissingColumns(has func(string) bool, want []string) []string {
	var missing []string
	for _, name := range want {
		if !has(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

func shapeError(op string, want, got int) error {
	return fmt.Errorf("%w: %s: expected %d samples, got %d", ErrShapeMismatch, op, want, got)
}
