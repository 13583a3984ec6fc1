package derive

import (
	"math"

	"github.com/ajitpratap0/astropipe/pkg/table"
	"github.com/ajitpratap0/astropipe/pkg/unit"
)

// Input and output column names for the equilibrium temperature formula,
// matching the Exoplanet Archive planetary systems schema.
const (
	ColStellarTeff   = "st_teff"
	ColStellarRadius = "st_rad"
	ColSemiMajorAxis = "pl_orbsmax"
	ColEquilibriumT  = "pl_eqt_calc"
)

// EquilibriumTemperature computes the theoretical planetary equilibrium
// temperature
//
//	T_eq = T_eff * sqrt(R_star / (2 a)) * (1 - A_B)^(1/4)
//
// from stellar effective temperature, stellar radius, and orbital
// semi-major axis. The Bond albedo A_B defaults to 0 and is configurable
// with WithAlbedo. Stellar radius and semi-major axis are converted to a
// common length unit before the ratio, so catalogs mixing Rsun and au
// are handled; a column that cannot be converted fails with
// incompatible_units. Rows with missing inputs produce NaN outputs.
type EquilibriumTemperature struct {
	albedo float64
	output string
}

// Option configures an EquilibriumTemperature formula.
type Option func(*EquilibriumTemperature)

// WithAlbedo sets the Bond albedo (0 <= a < 1).
func WithAlbedo(albedo float64) Option {
	return func(f *EquilibriumTemperature) {
		f.albedo = albedo
	}
}

// WithOutputColumn overrides the output column name.
func WithOutputColumn(name string) Option {
	return func(f *EquilibriumTemperature) {
		f.output = name
	}
}

// NewEquilibriumTemperature creates the formula with the given options.
func NewEquilibriumTemperature(opts ...Option) *EquilibriumTemperature {
	f := &EquilibriumTemperature{
		albedo: 0,
		output: ColEquilibriumT,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the output column name, which identifies the formula.
func (f *EquilibriumTemperature) Name() string { return f.output }

// Inputs lists the required columns and their dimensions.
func (f *EquilibriumTemperature) Inputs() []InputSpec {
	return []InputSpec{
		{Column: ColStellarTeff, Dim: unit.Dim(0, 0, 0, 1)},
		{Column: ColStellarRadius, Dim: unit.Dim(1, 0, 0, 0)},
		{Column: ColSemiMajorAxis, Dim: unit.Dim(1, 0, 0, 0)},
	}
}

// OutputDim declares the temperature dimension of the result.
func (f *EquilibriumTemperature) OutputDim() unit.Dimension {
	return unit.Dim(0, 0, 0, 1)
}

// Compute evaluates the formula row by row. The output column carries
// the same temperature unit as st_teff, since the orbital factor is
// dimensionless once both lengths are expressed in meters.
func (f *EquilibriumTemperature) Compute(inputs map[string]*table.Column) (*table.Column, error) {
	teff := inputs[ColStellarTeff]
	radius := inputs[ColStellarRadius]
	axis := inputs[ColSemiMajorAxis]

	radiusM, err := radius.Float64s(unit.Meter)
	if err != nil {
		return nil, err
	}
	axisM, err := axis.Float64s(unit.Meter)
	if err != nil {
		return nil, err
	}
	teffVals, err := teff.Float64s(teff.Unit())
	if err != nil {
		return nil, err
	}

	albedoFactor := math.Pow(1-f.albedo, 0.25)

	out := make([]float64, len(teffVals))
	for i := range out {
		// NaN and Inf inputs flow straight through the arithmetic.
		out[i] = teffVals[i] * math.Sqrt(radiusM[i]/(2*axisM[i])) * albedoFactor
	}
	return table.NewNumeric(f.output, teff.Unit(), out), nil
}

func init() {
	// The default engine always offers the zero-albedo formula.
	_ = Register(NewEquilibriumTemperature())
}
