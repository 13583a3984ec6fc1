package table

import (
	"testing"

	"github.com/ajitpratap0/astropipe/pkg/errors"
	"github.com/ajitpratap0/astropipe/pkg/unit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryMask(t *testing.T) {
	tbl, err := New(
		NewCategorical("pl_discmethod", []string{"Transit", "Radial Velocity", "Transit"}),
		NewNumeric("st_teff", unit.Kelvin, []float64{5518, 5793, 2566}),
	)
	require.NoError(t, err)

	mask, err := CategoryMask(tbl, "pl_discmethod", "Transit")
	require.NoError(t, err)
	assert.Equal(t, Mask{true, false, true}, mask)
	assert.Equal(t, 2, mask.Count())
}

func TestCategoryMaskColumnNotFound(t *testing.T) {
	tbl, err := New(NewCategorical("pl_discmethod", []string{"Transit"}))
	require.NoError(t, err)

	_, err = CategoryMask(tbl, "missing", "Transit")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeColumnNotFound))
}

func TestCategoryMaskTypeMismatch(t *testing.T) {
	tbl, err := New(NewNumeric("st_teff", unit.Kelvin, []float64{5518}))
	require.NoError(t, err)

	_, err = CategoryMask(tbl, "st_teff", "Transit")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeTypeMismatch))
}

func TestMaskAnd(t *testing.T) {
	a := Mask{true, true, false}
	b := Mask{true, false, true}

	both, err := a.And(b)
	require.NoError(t, err)
	assert.Equal(t, Mask{true, false, false}, both)

	_, err = a.And(Mask{true})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeLengthMismatch))
}
