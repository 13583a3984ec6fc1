package table

import (
	"github.com/ajitpratap0/astropipe/pkg/errors"
)

// Table is an ordered collection of equal-length Columns with unique
// names, one row per catalog entry. A Table is immutable once observable:
// AddColumn and Filter return new Tables that share unchanged Column
// values with the source.
type Table struct {
	names []string
	cols  map[string]*Column
	rows  int
}

// New creates a table from columns. All columns must have the same
// length and unique names.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		names: make([]string, 0, len(columns)),
		cols:  make(map[string]*Column, len(columns)),
	}

	for i, col := range columns {
		if _, exists := t.cols[col.Name()]; exists {
			return nil, errors.Newf(errors.ErrorTypeDuplicateColumn,
				"column %q appears more than once", col.Name())
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, errors.Newf(errors.ErrorTypeLengthMismatch,
				"column %q has %d rows, table has %d", col.Name(), col.Len(), t.rows)
		}
		t.names = append(t.names, col.Name())
		t.cols[col.Name()] = col
	}
	return t, nil
}

// RowCount returns the number of rows.
func (t *Table) RowCount() int { return t.rows }

// ColumnNames returns the column names in insertion order.
func (t *Table) ColumnNames() []string {
	return append([]string(nil), t.names...)
}

// Column returns the named column. An absent name fails with
// column_not_found; there is no default or empty column fallback.
func (t *Table) Column(name string) (*Column, error) {
	col, ok := t.cols[name]
	if !ok {
		return nil, errors.Newf(errors.ErrorTypeColumnNotFound, "column %q not found", name)
	}
	return col, nil
}

// AddColumn returns a new table with col appended. The receiver is left
// unchanged. Fails with duplicate_column if the name is taken and with
// length_mismatch if the column length differs from the row count.
func (t *Table) AddColumn(col *Column) (*Table, error) {
	if _, exists := t.cols[col.Name()]; exists {
		return nil, errors.Newf(errors.ErrorTypeDuplicateColumn,
			"column %q already exists", col.Name())
	}
	if len(t.names) > 0 && col.Len() != t.rows {
		return nil, errors.Newf(errors.ErrorTypeLengthMismatch,
			"column %q has %d rows, table has %d", col.Name(), col.Len(), t.rows)
	}

	out := &Table{
		names: append(append([]string(nil), t.names...), col.Name()),
		cols:  make(map[string]*Column, len(t.cols)+1),
		rows:  col.Len(),
	}
	for name, existing := range t.cols {
		out.cols[name] = existing
	}
	out.cols[col.Name()] = col
	return out, nil
}

// Filter returns a new table containing the rows where mask is true.
// Every column is sliced with the same mask.
func (t *Table) Filter(mask Mask) (*Table, error) {
	if len(mask) != t.rows {
		return nil, errors.Newf(errors.ErrorTypeLengthMismatch,
			"mask length %d does not match row count %d", len(mask), t.rows)
	}

	out := &Table{
		names: append([]string(nil), t.names...),
		cols:  make(map[string]*Column, len(t.cols)),
		rows:  mask.Count(),
	}
	for _, name := range t.names {
		sliced, err := t.cols[name].Slice(mask)
		if err != nil {
			return nil, err
		}
		out.cols[name] = sliced
	}
	return out, nil
}
