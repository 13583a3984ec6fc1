package table

import (
	"math"
	"testing"

	"github.com/ajitpratap0/astropipe/pkg/errors"
	"github.com/ajitpratap0/astropipe/pkg/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New(
		NewCategorical("pl_name", []string{"Kepler-22 b", "51 Peg b", "TRAPPIST-1 e"}),
		NewNumeric("st_teff", unit.Kelvin, []float64{5518, 5793, 2566}),
		NewNumeric("pl_orbsmax", unit.AstronomicalUnit, []float64{0.849, 0.0527, 0.02925}),
	)
	require.NoError(t, err)
	return tbl
}

func TestNewRejectsMismatchedLengths(t *testing.T) {
	_, err := New(
		NewNumeric("st_teff", unit.Kelvin, []float64{5518, 5793}),
		NewNumeric("st_rad", unit.SolarRadius, []float64{0.979}),
	)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeLengthMismatch))
}

func TestNewRejectsDuplicateNames(t *testing.T) {
	_, err := New(
		NewNumeric("st_teff", unit.Kelvin, []float64{5518}),
		NewNumeric("st_teff", unit.Kelvin, []float64{5793}),
	)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicateColumn))
}

func TestColumnNotFound(t *testing.T) {
	tbl := sampleTable(t)

	col, err := tbl.Column("nonexistent")
	require.Error(t, err)
	assert.Nil(t, col)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))
}

func TestAddColumnReturnsNewTable(t *testing.T) {
	tbl := sampleTable(t)

	extended, err := tbl.AddColumn(NewNumeric("st_rad", unit.SolarRadius, []float64{0.979, 1.237, 0.1192}))
	require.NoError(t, err)

	assert.Len(t, extended.ColumnNames(), 4)
	// The source table is untouched.
	assert.Len(t, tbl.ColumnNames(), 3)
	_, err = tbl.Column("st_rad")
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))
}

func TestAddColumnDuplicate(t *testing.T) {
	tbl := sampleTable(t)

	extended, err := tbl.AddColumn(NewNumeric("pl_eqt_calc", unit.Kelvin, []float64{262, 1260, 250}))
	require.NoError(t, err)

	// Adding the same name twice fails and leaves the table unchanged.
	_, err = extended.AddColumn(NewNumeric("pl_eqt_calc", unit.Kelvin, []float64{0, 0, 0}))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeDuplicateColumn))
	assert.Len(t, extended.ColumnNames(), 4)

	col, err := extended.Column("pl_eqt_calc")
	require.NoError(t, err)
	v, err := col.Value(0)
	require.NoError(t, err)
	assert.InDelta(t, 262, v.Magnitude, 1e-12)
}

func TestAddColumnLengthMismatch(t *testing.T) {
	tbl := sampleTable(t)

	_, err := tbl.AddColumn(NewNumeric("st_rad", unit.SolarRadius, []float64{0.979}))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeLengthMismatch))
}

func TestFilter(t *testing.T) {
	tbl := sampleTable(t)
	mask := Mask{true, false, true}

	filtered, err := tbl.Filter(mask)
	require.NoError(t, err)
	assert.Equal(t, mask.Count(), filtered.RowCount())
	assert.Equal(t, tbl.ColumnNames(), filtered.ColumnNames())

	// Every column equals the element-wise slice of the original.
	names, err := filtered.Column("pl_name")
	require.NoError(t, err)
	cats, err := names.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Kepler-22 b", "TRAPPIST-1 e"}, cats)

	teff, err := filtered.Column("st_teff")
	require.NoError(t, err)
	vals, err := teff.Float64s(unit.Kelvin)
	require.NoError(t, err)
	assert.Equal(t, []float64{5518, 2566}, vals)

	// The source table keeps all rows.
	assert.Equal(t, 3, tbl.RowCount())
}

func TestFilterMaskLengthMismatch(t *testing.T) {
	tbl := sampleTable(t)

	_, err := tbl.Filter(Mask{true})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeLengthMismatch))
}

func TestColumnMap(t *testing.T) {
	col := NewNumeric("pl_orbsmax", unit.AstronomicalUnit, []float64{1, 2})

	// Map declares its own output unit; it is not assumed preserved.
	doubled, err := col.Map("pl_orbsmax_m", unit.Meter, func(v unit.Value) (unit.Value, error) {
		return v.Mul(unit.V(2, unit.Dimensionless)), nil
	})
	require.NoError(t, err)
	assert.Equal(t, unit.Meter, doubled.Unit())

	vals, err := doubled.Float64s(unit.Meter)
	require.NoError(t, err)
	assert.InEpsilon(t, 2*1.495978707e11, vals[0], 1e-12)
}

func TestColumnFloat64sConverts(t *testing.T) {
	col := NewNumeric("st_rad", unit.SolarRadius, []float64{1, 2})

	vals, err := col.Float64s(unit.Meter)
	require.NoError(t, err)
	assert.InEpsilon(t, 6.957e8, vals[0], 1e-12)
	assert.InEpsilon(t, 2*6.957e8, vals[1], 1e-12)

	_, err = col.Float64s(unit.Kelvin)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeIncompatibleUnits))
}

func TestColumnImmutableFromCallerSlice(t *testing.T) {
	values := []float64{1, 2, 3}
	col := NewNumeric("x", unit.Meter, values)

	values[0] = 99
	v, err := col.Value(0)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, v.Magnitude, 1e-12)
}

func TestColumnTypeMismatch(t *testing.T) {
	col := NewCategorical("pl_discmethod", []string{"Transit"})

	_, err := col.Value(0)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
	_, err = col.Finite()
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
	_, err = col.Float64s(unit.Meter)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
}

func TestFiniteMaskPropagation(t *testing.T) {
	col := NewNumeric("st_rad", unit.SolarRadius, []float64{1.0, math.NaN(), 3.0})

	mask, err := col.Finite()
	require.NoError(t, err)
	assert.Equal(t, Mask{true, false, true}, mask)
}
