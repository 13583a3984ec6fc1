package table

import (
	"github.com/ajitpratap0/astropipe/pkg/errors"
)

// Mask is a boolean row selector. A mask never owns table data; it is a
// logical row subset applied through Table.Filter or Column.Slice.
type Mask []bool

// Count returns the number of true entries.
func (m Mask) Count() int {
	n := 0
	for _, b := range m {
		if b {
			n++
		}
	}
	return n
}

// And returns the element-wise conjunction of two masks.
func (m Mask) And(other Mask) (Mask, error) {
	if len(m) != len(other) {
		return nil, errors.Newf(errors.ErrorTypeLengthMismatch,
			"mask lengths differ: %d vs %d", len(m), len(other))
	}
	out := make(Mask, len(m))
	for i := range m {
		out[i] = m[i] && other[i]
	}
	return out, nil
}

// CategoryMask returns a mask that is true where the named categorical
// column equals value. This is how discovery-method subsets are built
// without copying the table.
func CategoryMask(t *Table, column, value string) (Mask, error) {
	col, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if col.DType() != DTypeCategorical {
		return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
			"column %q is %s, not categorical", column, col.DType())
	}

	mask := make(Mask, col.Len())
	for i := range mask {
		mask[i] = col.cats[i] == value
	}
	return mask, nil
}
