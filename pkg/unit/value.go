package unit

import (
	"fmt"
	"math"

	"github.com/ajitpratap0/astropipe/pkg/errors"
)

// Value is a scalar magnitude tagged with a Unit. Non-finite magnitudes
// (NaN, ±Inf) are legal and propagate through every operation; they are
// data, never errors.
type Value struct {
	Magnitude float64
	Unit      Unit
}

// V is shorthand for constructing a Value.
func V(magnitude float64, u Unit) Value {
	return Value{Magnitude: magnitude, Unit: u}
}

// String renders the value with its unit symbol.
func (v Value) String() string {
	if v.Unit.Symbol == "" {
		return fmt.Sprintf("%g", v.Magnitude)
	}
	return fmt.Sprintf("%g %s", v.Magnitude, v.Unit.Symbol)
}

// IsFinite reports whether the magnitude is neither NaN nor infinite.
func (v Value) IsFinite() bool {
	return !math.IsNaN(v.Magnitude) && !math.IsInf(v.Magnitude, 0)
}

// ConvertTo rescales the value into the target unit. The dimensions must
// match or the conversion fails with incompatible_units.
func (v Value) ConvertTo(target Unit) (Value, error) {
	if !v.Unit.Compatible(target) {
		return Value{}, errors.Newf(errors.ErrorTypeIncompatibleUnits,
			"cannot convert %s to %s: dimensions differ", symbolOrDim(v.Unit), symbolOrDim(target))
	}
	return Value{Magnitude: v.Magnitude * (v.Unit.Scale / target.Scale), Unit: target}, nil
}

// Add returns v + other. The operands must share a dimension; when the
// scales differ, other is converted into v's unit first.
func (v Value) Add(other Value) (Value, error) {
	if !v.Unit.Compatible(other.Unit) {
		return Value{}, errors.Newf(errors.ErrorTypeIncompatibleUnits,
			"cannot add %s and %s", symbolOrDim(v.Unit), symbolOrDim(other.Unit))
	}
	converted, err := other.ConvertTo(v.Unit)
	if err != nil {
		return Value{}, err
	}
	return Value{Magnitude: v.Magnitude + converted.Magnitude, Unit: v.Unit}, nil
}

// Sub returns v - other under the same compatibility rules as Add.
func (v Value) Sub(other Value) (Value, error) {
	if !v.Unit.Compatible(other.Unit) {
		return Value{}, errors.Newf(errors.ErrorTypeIncompatibleUnits,
			"cannot subtract %s from %s", symbolOrDim(other.Unit), symbolOrDim(v.Unit))
	}
	converted, err := other.ConvertTo(v.Unit)
	if err != nil {
		return Value{}, err
	}
	return Value{Magnitude: v.Magnitude - converted.Magnitude, Unit: v.Unit}, nil
}

// Mul returns the product; units compose by dimension-vector addition.
func (v Value) Mul(other Value) Value {
	return Value{
		Magnitude: v.Magnitude * other.Magnitude,
		Unit:      v.Unit.Mul(other.Unit),
	}
}

// Div returns the quotient; units compose by dimension-vector subtraction.
func (v Value) Div(other Value) Value {
	return Value{
		Magnitude: v.Magnitude / other.Magnitude,
		Unit:      v.Unit.Div(other.Unit),
	}
}

// Pow raises the value to an integer power.
func (v Value) Pow(n int) Value {
	return Value{
		Magnitude: math.Pow(v.Magnitude, float64(n)),
		Unit: Unit{
			Symbol: powSymbol(v.Unit.Symbol, n),
			Scale:  math.Pow(v.Unit.Scale, float64(n)),
			Dim:    v.Unit.Dim.Scale(n),
		},
	}
}

// Sqrt returns the square root. The unit's dimension exponents are
// halved; exponents that cannot be halved fail with fractional_dimension.
// A negative magnitude yields NaN, which propagates as data.
func (v Value) Sqrt() (Value, error) {
	halved, err := v.Unit.Dim.Halve()
	if err != nil {
		return Value{}, err
	}
	return Value{
		Magnitude: math.Sqrt(v.Magnitude),
		Unit: Unit{
			Symbol: sqrtSymbol(v.Unit.Symbol),
			Scale:  math.Sqrt(v.Unit.Scale),
			Dim:    halved,
		},
	}, nil
}

func symbolOrDim(u Unit) string {
	if u.Symbol != "" {
		return u.Symbol
	}
	return u.Dim.String()
}

func powSymbol(symbol string, n int) string {
	if symbol == "" {
		return ""
	}
	return fmt.Sprintf("%s^%d", symbol, n)
}

func sqrtSymbol(symbol string) string {
	if symbol == "" {
		return ""
	}
	return fmt.Sprintf("sqrt(%s)", symbol)
}
