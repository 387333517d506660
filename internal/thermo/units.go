package thermo

const (
	// AtmToPa converts LAMMPS metal-unit pressures to Pa.
	AtmToPa = 101325.0
	// PressureToStress converts pressure in atm to stress in Pa (stress = -pressure).
	PressureToStress = -AtmToPa
	// EVToJ converts electron-volts to joules.
	EVToJ = 1.602e-19
	// Angstrom3ToM3 converts Å³ to m³.
	Angstrom3ToM3 = 1e-30
	// SmallNumber guards every Beta denominator.
	SmallNumber = 1e-25
	// WorkUnitScale multiplies component work before the volume scaling.
	WorkUnitScale = 1.0

	// DensityScale converts g/cm³ to kg/m³.
	DensityScale = 1000.0
	// SpecificHeat is the default specific heat (aluminium), J/(kg·K).
	SpecificHeat = 903.0
)
