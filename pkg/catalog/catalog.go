// Package catalog defines the fetch boundary of the pipeline: the
// Fetcher contract that remote catalog sources implement, the Query that
// names the catalog table and columns to materialize, and a registry of
// source factories.
//
// Network policy (retry, backoff, encoding) belongs to the individual
// source; the core only requires that a Fetch either returns a complete
// typed Table or an error from the taxonomy in pkg/errors. Partial
// tables are never returned.
package catalog

import (
	"context"

	"github.com/ajitpratap0/astropipe/pkg/table"
	"github.com/ajitpratap0/astropipe/pkg/unit"
)

// ColumnSpec names a column to select and what the caller expects of it.
// The expectations are checked when the response is materialized: a
// dtype or dimension mismatch is a schema error, surfaced immediately.
type ColumnSpec struct {
	// Name is the catalog column name (e.g., "st_teff")
	Name string `yaml:"name" json:"name"`
	// DType is the expected semantic type
	DType table.DType `yaml:"dtype" json:"dtype"`
	// Dim is the expected physical dimension for numeric columns.
	// The zero value means no expectation.
	Dim unit.Dimension `yaml:"-" json:"-"`
}

// Query describes one catalog fetch.
type Query struct {
	// Table is the remote catalog table (e.g., "pscomppars")
	Table string `yaml:"table" json:"table"`
	// Columns are the columns to select, in order
	Columns []ColumnSpec `yaml:"columns" json:"columns"`
	// Where is an optional row predicate passed through to the service
	Where string `yaml:"where" json:"where"`
	// Limit caps the row count (0 = no cap)
	Limit int `yaml:"limit" json:"limit"`
}

// Fetcher retrieves raw records from a remote catalog and materializes
// them as a typed Table. Fetch blocks until the response is materialized,
// the context is cancelled, or the source gives up; cancellation
// surfaces as a cancelled error.
type Fetcher interface {
	// Name identifies the source instance
	Name() string

	// Fetch executes the query and returns a complete Table
	Fetch(ctx context.Context, q Query) (*table.Table, error)

	// Close releases any resources held by the source
	Close(ctx context.Context) error
}
