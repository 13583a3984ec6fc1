// Package arrowconv converts pipeline tables into Apache Arrow record
// batches for downstream plotting and analysis collaborators. Numeric
// columns become float64 arrays in their own unit; the unit symbol and
// dtype travel as Arrow field metadata so consumers can label axes
// without re-deriving units.
package arrowconv

import (
	"io"

	"github.com/ajitpratap0/astropipe/pkg/errors"
	"github.com/ajitpratap0/astropipe/pkg/table"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Metadata keys attached to every exported field.
const (
	MetadataKeyUnit  = "unit"
	MetadataKeyDType = "dtype"
)

// ToRecord converts a table into a single Arrow record batch. The caller
// owns the returned record and must Release it.
func ToRecord(t *table.Table) (arrow.Record, error) {
	schema, err := toSchema(t)
	if err != nil {
		return nil, err
	}

	builder := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer builder.Release()

	for i, name := range t.ColumnNames() {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if err := appendColumn(builder.Field(i), col); err != nil {
			return nil, err
		}
	}

	return builder.NewRecord(), nil
}

// WriteIPC writes the table to w as an Arrow IPC file with one record
// batch.
func WriteIPC(w io.Writer, t *table.Table) error {
	record, err := ToRecord(t)
	if err != nil {
		return err
	}
	defer record.Release()

	writer, err := ipc.NewFileWriter(w, ipc.WithSchema(record.Schema()))
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to create Arrow writer")
	}
	if err := writer.Write(record); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to write record batch")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to close Arrow writer")
	}
	return nil
}

func toSchema(t *table.Table) (*arrow.Schema, error) {
	fields := make([]arrow.Field, 0, len(t.ColumnNames()))
	for _, name := range t.ColumnNames() {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}

		var dt arrow.DataType
		switch col.DType() {
		case table.DTypeNumeric:
			dt = arrow.PrimitiveTypes.Float64
		case table.DTypeCategorical:
			dt = arrow.BinaryTypes.String
		case table.DTypeBoolean:
			dt = arrow.FixedWidthTypes.Boolean
		default:
			return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
				"column %q has unsupported dtype %s", name, col.DType())
		}

		fields = append(fields, arrow.Field{
			Name: name,
			Type: dt,
			Metadata: arrow.NewMetadata(
				[]string{MetadataKeyUnit, MetadataKeyDType},
				[]string{col.Unit().Symbol, string(col.DType())},
			),
		})
	}
	return arrow.NewSchema(fields, nil), nil
}

func appendColumn(builder array.Builder, col *table.Column) error {
	switch b := builder.(type) {
	case *array.Float64Builder:
		values, err := col.Float64s(col.Unit())
		if err != nil {
			return err
		}
		b.AppendValues(values, nil)

	case *array.StringBuilder:
		values, err := col.Categories()
		if err != nil {
			return err
		}
		b.AppendValues(values, nil)

	case *array.BooleanBuilder:
		values, err := col.Bools()
		if err != nil {
			return err
		}
		b.AppendValues(values, nil)

	default:
		return errors.Newf(errors.ErrorTypeInternal, "unsupported builder type %T", builder)
	}
	return nil
}
