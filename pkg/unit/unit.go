// Package unit provides dimension-checked physical quantities for catalog
// columns. A Unit pairs a symbol and an SI scale factor with a dimension
// vector; a Value pairs a magnitude with a Unit. All arithmetic is pure:
// there is no global registry and no mutation of existing units.
//
// Dimension exponents are tracked in half-integer steps so that square
// roots of even-exponent dimensions (e.g. sqrt of an area) stay
// representable. A root that would leave a quarter-integer exponent fails
// with a fractional_dimension error.
package unit

import (
	"fmt"

	"github.com/ajitpratap0/astropipe/pkg/errors"
)

// Dimension is the exponent vector over the base physical dimensions
// used by catalog data: length, mass, time, temperature. Each field
// stores twice the exponent, so Length=2 means length^1 and Length=1
// means length^(1/2).
type Dimension struct {
	Length      int8
	Mass        int8
	Time        int8
	Temperature int8
}

// Dim builds a Dimension from whole exponents.
func Dim(length, mass, time, temperature int) Dimension {
	return Dimension{
		Length:      int8(2 * length),
		Mass:        int8(2 * mass),
		Time:        int8(2 * time),
		Temperature: int8(2 * temperature),
	}
}

// IsDimensionless reports whether all exponents are zero.
func (d Dimension) IsDimensionless() bool {
	return d == Dimension{}
}

// Compatible reports whether two dimensions are identical, i.e. whether
// values carrying them may be added, subtracted, or converted.
func (d Dimension) Compatible(other Dimension) bool {
	return d == other
}

// Add returns the dimension of a product.
func (d Dimension) Add(other Dimension) Dimension {
	return Dimension{
		Length:      d.Length + other.Length,
		Mass:        d.Mass + other.Mass,
		Time:        d.Time + other.Time,
		Temperature: d.Temperature + other.Temperature,
	}
}

// Sub returns the dimension of a quotient.
func (d Dimension) Sub(other Dimension) Dimension {
	return Dimension{
		Length:      d.Length - other.Length,
		Mass:        d.Mass - other.Mass,
		Time:        d.Time - other.Time,
		Temperature: d.Temperature - other.Temperature,
	}
}

// Scale returns the dimension of an integer power.
func (d Dimension) Scale(n int) Dimension {
	return Dimension{
		Length:      d.Length * int8(n),
		Mass:        d.Mass * int8(n),
		Time:        d.Time * int8(n),
		Temperature: d.Temperature * int8(n),
	}
}

// Halve returns the dimension of a square root. It fails when any
// exponent is an odd number of halves, since the result would need
// quarter-integer exponents.
func (d Dimension) Halve() (Dimension, error) {
	if d.Length%2 != 0 || d.Mass%2 != 0 || d.Time%2 != 0 || d.Temperature%2 != 0 {
		return Dimension{}, errors.Newf(errors.ErrorTypeFractionalDimension,
			"square root of dimension %v is not representable", d)
	}
	return Dimension{
		Length:      d.Length / 2,
		Mass:        d.Mass / 2,
		Time:        d.Time / 2,
		Temperature: d.Temperature / 2,
	}, nil
}

// String renders the dimension as half-exponent tuples for error messages.
func (d Dimension) String() string {
	return fmt.Sprintf("[L^%d/2 M^%d/2 T^%d/2 Th^%d/2]", d.Length, d.Mass, d.Time, d.Temperature)
}

// Unit is a symbolic physical unit: a symbol, a scale factor relative to
// the SI base unit of its dimension, and the dimension itself.
type Unit struct {
	Symbol string
	Scale  float64
	Dim    Dimension
}

// Named units. Scale factors for astronomical units follow the IAU
// nominal values used by catalog services.
var (
	Dimensionless = Unit{Symbol: "", Scale: 1}

	Meter            = Unit{Symbol: "m", Scale: 1, Dim: Dim(1, 0, 0, 0)}
	Kilometer        = Unit{Symbol: "km", Scale: 1e3, Dim: Dim(1, 0, 0, 0)}
	SolarRadius      = Unit{Symbol: "Rsun", Scale: 6.957e8, Dim: Dim(1, 0, 0, 0)}
	JupiterRadius    = Unit{Symbol: "Rjup", Scale: 7.1492e7, Dim: Dim(1, 0, 0, 0)}
	EarthRadius      = Unit{Symbol: "Rearth", Scale: 6.3781e6, Dim: Dim(1, 0, 0, 0)}
	AstronomicalUnit = Unit{Symbol: "au", Scale: 1.495978707e11, Dim: Dim(1, 0, 0, 0)}
	Parsec           = Unit{Symbol: "pc", Scale: 3.0856775814913673e16, Dim: Dim(1, 0, 0, 0)}

	Kilogram    = Unit{Symbol: "kg", Scale: 1, Dim: Dim(0, 1, 0, 0)}
	SolarMass   = Unit{Symbol: "Msun", Scale: 1.98892e30, Dim: Dim(0, 1, 0, 0)}
	JupiterMass = Unit{Symbol: "Mjup", Scale: 1.89813e27, Dim: Dim(0, 1, 0, 0)}
	EarthMass   = Unit{Symbol: "Mearth", Scale: 5.97217e24, Dim: Dim(0, 1, 0, 0)}

	Second = Unit{Symbol: "s", Scale: 1, Dim: Dim(0, 0, 1, 0)}
	Day    = Unit{Symbol: "d", Scale: 86400, Dim: Dim(0, 0, 1, 0)}
	Year   = Unit{Symbol: "yr", Scale: 3.15576e7, Dim: Dim(0, 0, 1, 0)}

	Kelvin = Unit{Symbol: "K", Scale: 1, Dim: Dim(0, 0, 0, 1)}
)

// symbolTable maps the unit strings that appear in catalog column
// metadata to Units. The Exoplanet Archive is inconsistent about case
// and pluralization, so common variants are listed explicitly.
var symbolTable = map[string]Unit{
	"":             Dimensionless,
	"m":            Meter,
	"km":           Kilometer,
	"Rsun":         SolarRadius,
	"R_sun":        SolarRadius,
	"Solar Radius": SolarRadius,
	"Rjup":         JupiterRadius,
	"R_jup":        JupiterRadius,
	"Rearth":       EarthRadius,
	"R_earth":      EarthRadius,
	"au":           AstronomicalUnit,
	"AU":           AstronomicalUnit,
	"pc":           Parsec,
	"kg":           Kilogram,
	"Msun":         SolarMass,
	"M_sun":        SolarMass,
	"Mjup":         JupiterMass,
	"Mearth":       EarthMass,
	"s":            Second,
	"d":            Day,
	"day":          Day,
	"days":         Day,
	"yr":           Year,
	"year":         Year,
	"K":            Kelvin,
	"Kelvin":       Kelvin,
}

// Parse resolves a catalog metadata unit string to a Unit. An unknown
// symbol is a schema error: it means the remote catalog is labeling
// columns with units this pipeline cannot convert.
func Parse(symbol string) (Unit, error) {
	u, ok := symbolTable[symbol]
	if !ok {
		return Unit{}, errors.Newf(errors.ErrorTypeSchema, "unknown unit symbol %q", symbol)
	}
	return u, nil
}

// Compatible reports whether two units share a dimension.
func (u Unit) Compatible(other Unit) bool {
	return u.Dim.Compatible(other.Dim)
}

// Mul returns the product unit.
func (u Unit) Mul(other Unit) Unit {
	return Unit{
		Symbol: composeSymbol(u.Symbol, other.Symbol, "*"),
		Scale:  u.Scale * other.Scale,
		Dim:    u.Dim.Add(other.Dim),
	}
}

// Div returns the quotient unit.
func (u Unit) Div(other Unit) Unit {
	return Unit{
		Symbol: composeSymbol(u.Symbol, other.Symbol, "/"),
		Scale:  u.Scale / other.Scale,
		Dim:    u.Dim.Sub(other.Dim),
	}
}

func composeSymbol(a, b, op string) string {
	switch {
	case a == "" && b == "":
		return ""
	case b == "":
		return a
	case a == "":
		if op == "/" {
			return "1/" + b
		}
		return b
	default:
		return a + op + b
	}
}
