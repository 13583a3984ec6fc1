package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndIsType(t *testing.T) {
	err := New(ErrorTypeColumnNotFound, "column missing")
	assert.True(t, IsType(err, ErrorTypeColumnNotFound))
	assert.False(t, IsType(err, ErrorTypeSchema))
	assert.Contains(t, err.Error(), "column_not_found")
	assert.NotEmpty(t, err.Stack)
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(cause, ErrorTypeConnection, "fetch failed")

	require.NotNil(t, err)
	assert.True(t, IsType(err, ErrorTypeConnection))
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeConnection, "no-op"))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(New(ErrorTypeConnection, "timeout")))

	// Everything else fails fast.
	assert.False(t, IsRetryable(New(ErrorTypeCancelled, "ctx done")))
	assert.False(t, IsRetryable(New(ErrorTypeSchema, "column gone")))
	assert.False(t, IsRetryable(New(ErrorTypeParse, "bad body")))
	assert.False(t, IsRetryable(New(ErrorTypeIncompatibleUnits, "K vs m")))
	assert.False(t, IsRetryable(stderrors.New("plain error")))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeSchema, "column absent").
		WithDetail("column", "st_teff").
		WithDetail("table", "pscomppars")

	assert.Equal(t, "st_teff", err.Details["column"])
	assert.Equal(t, "pscomppars", err.Details["table"])
}
