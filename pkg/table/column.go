// Package table provides the typed tabular data model for catalog
// pipelines: immutable Columns of homogeneous unit and dtype, Tables of
// equal-length Columns, and boolean row masks. Tables are never mutated
// in place; adding or filtering columns always yields a new Table that
// shares the untouched Column values.
package table

import (
	"math"

	"github.com/ajitpratap0/astropipe/pkg/errors"
	"github.com/ajitpratap0/astropipe/pkg/unit"
)

// DType is the semantic type of a column.
type DType string

const (
	DTypeNumeric     DType = "numeric"
	DTypeCategorical DType = "categorical"
	DTypeBoolean     DType = "boolean"
)

// Column is a named, fixed-length sequence of values sharing one unit
// and one dtype. Columns are immutable after construction.
type Column struct {
	name  string
	dtype DType
	unit  unit.Unit

	floats []float64
	cats   []string
	bools  []bool
}

// NewNumeric creates a numeric column. The values slice is copied so the
// column cannot be mutated through the caller's slice.
func NewNumeric(name string, u unit.Unit, values []float64) *Column {
	return &Column{
		name:   name,
		dtype:  DTypeNumeric,
		unit:   u,
		floats: append([]float64(nil), values...),
	}
}

// NewCategorical creates a categorical column. Categorical columns are
// dimensionless.
func NewCategorical(name string, values []string) *Column {
	return &Column{
		name:  name,
		dtype: DTypeCategorical,
		unit:  unit.Dimensionless,
		cats:  append([]string(nil), values...),
	}
}

// NewBoolean creates a boolean column.
func NewBoolean(name string, values []bool) *Column {
	return &Column{
		name:  name,
		dtype: DTypeBoolean,
		unit:  unit.Dimensionless,
		bools: append([]bool(nil), values...),
	}
}

// Name returns the column name.
func (c *Column) Name() string { return c.name }

// DType returns the semantic type.
func (c *Column) DType() DType { return c.dtype }

// Unit returns the unit shared by all entries.
func (c *Column) Unit() unit.Unit { return c.unit }

// Len returns the number of entries.
func (c *Column) Len() int {
	switch c.dtype {
	case DTypeNumeric:
		return len(c.floats)
	case DTypeCategorical:
		return len(c.cats)
	default:
		return len(c.bools)
	}
}

// Value returns entry i as a unit-tagged value. Fails with type_mismatch
// on non-numeric columns.
func (c *Column) Value(i int) (unit.Value, error) {
	if c.dtype != DTypeNumeric {
		return unit.Value{}, errors.Newf(errors.ErrorTypeTypeMismatch,
			"column %q is %s, not numeric", c.name, c.dtype)
	}
	return unit.V(c.floats[i], c.unit), nil
}

// Category returns entry i of a categorical column.
func (c *Column) Category(i int) (string, error) {
	if c.dtype != DTypeCategorical {
		return "", errors.Newf(errors.ErrorTypeTypeMismatch,
			"column %q is %s, not categorical", c.name, c.dtype)
	}
	return c.cats[i], nil
}

// Bool returns entry i of a boolean column.
func (c *Column) Bool(i int) (bool, error) {
	if c.dtype != DTypeBoolean {
		return false, errors.Newf(errors.ErrorTypeTypeMismatch,
			"column %q is %s, not boolean", c.name, c.dtype)
	}
	return c.bools[i], nil
}

// Slice returns a new column holding the entries where mask is true.
// Unit and dtype are preserved; the output length is the mask popcount.
func (c *Column) Slice(mask Mask) (*Column, error) {
	if len(mask) != c.Len() {
		return nil, errors.Newf(errors.ErrorTypeLengthMismatch,
			"mask length %d does not match column %q length %d", len(mask), c.name, c.Len())
	}

	out := &Column{name: c.name, dtype: c.dtype, unit: c.unit}
	switch c.dtype {
	case DTypeNumeric:
		out.floats = make([]float64, 0, mask.Count())
		for i, keep := range mask {
			if keep {
				out.floats = append(out.floats, c.floats[i])
			}
		}
	case DTypeCategorical:
		out.cats = make([]string, 0, mask.Count())
		for i, keep := range mask {
			if keep {
				out.cats = append(out.cats, c.cats[i])
			}
		}
	default:
		out.bools = make([]bool, 0, mask.Count())
		for i, keep := range mask {
			if keep {
				out.bools = append(out.bools, c.bools[i])
			}
		}
	}
	return out, nil
}

// Map applies fn to every entry of a numeric column and collects the
// results into a new column named name. The output unit is taken from
// outUnit, never assumed to match the input: fn declares its own unit
// transform and every result is converted into outUnit.
func (c *Column) Map(name string, outUnit unit.Unit, fn func(unit.Value) (unit.Value, error)) (*Column, error) {
	if c.dtype != DTypeNumeric {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"column %q is %s, not numeric", c.name, c.dtype)
	}

	out := make([]float64, len(c.floats))
	for i, m := range c.floats {
		v, err := fn(unit.V(m, c.unit))
		if err != nil {
			return nil, err
		}
		converted, err := v.ConvertTo(outUnit)
		if err != nil {
			return nil, err
		}
		out[i] = converted.Magnitude
	}
	return NewNumeric(name, outUnit, out), nil
}

// Finite returns a mask that is true where the magnitude is finite.
// Fails with type_mismatch on non-numeric columns.
func (c *Column) Finite() (Mask, error) {
	if c.dtype != DTypeNumeric {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"column %q is %s, not numeric", c.name, c.dtype)
	}
	mask := make(Mask, len(c.floats))
	for i, m := range c.floats {
		mask[i] = !math.IsNaN(m) && !math.IsInf(m, 0)
	}
	return mask, nil
}

// Float64s converts a numeric column into bare magnitudes in the target
// unit. This is the projection boundary for plotting collaborators: the
// conversion happens here and the unit tag is stripped.
func (c *Column) Float64s(target unit.Unit) ([]float64, error) {
	if c.dtype != DTypeNumeric {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"column %q is %s, not numeric", c.name, c.dtype)
	}
	if !c.unit.Compatible(target) {
		return nil, errors.Newf(errors.ErrorTypeIncompatibleUnits,
			"cannot project column %q from %q to %q", c.name, c.unit.Symbol, target.Symbol)
	}

	ratio := c.unit.Scale / target.Scale
	out := make([]float64, len(c.floats))
	for i, m := range c.floats {
		out[i] = m * ratio
	}
	return out, nil
}

// Categories returns a copy of the entries of a categorical column.
func (c *Column) Categories() ([]string, error) {
	if c.dtype != DTypeCategorical {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"column %q is %s, not categorical", c.name, c.dtype)
	}
	return append([]string(nil), c.cats...), nil
}

// Bools returns a copy of the entries of a boolean column.
func (c *Column) Bools() ([]bool, error) {
	if c.dtype != DTypeBoolean {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"column %q is %s, not boolean", c.name, c.dtype)
	}
	return append([]bool(nil), c.bools...), nil
}
