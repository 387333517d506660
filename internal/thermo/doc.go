// Package thermo provides the core types shared by the thermomechanical
// post-processing stages.
//
// The package defines the data every stage consumes or produces:
//
//   - [Series]: per-step simulation columns (box lengths, pressures, energies)
//   - [Tensor]: six Voigt components stored as parallel per-step arrays
//   - [Compliance]: the (S11, S12, S44) triple of a cubic material
//   - [Ensemble]: microcanonical (NVE) or canonical (NVT) run
//
// # Units
//
// Inputs are expected in LAMMPS metal units: lengths in Å, pressures in
// atm, energies in eV. Stresses are reported in Pa with the LAMMPS sign
// convention (stress = -pressure).
//
// # Errors
//
// Failures are reported as [*ConfigError] or [*NumericError]; both unwrap to
// the [ErrConfiguration] and [ErrNumeric] sentinels for use with errors.Is.
package thermo
