// Package astropipe provides a typed, unit-aware pipeline for fetching
// tabular astronomical catalog data, deriving physical quantities from
// it, and exporting the result for downstream analysis.
//
// Astropipe is built around three ideas:
//
// 1. Units are part of the type system. Every numeric value carries a
// physical unit, and every unit carries its dimension as exponents of
// the SI base dimensions. Arithmetic between incompatible dimensions
// fails with a typed error instead of silently producing garbage.
//
// 2. Tables are immutable. Adding a derived column or filtering rows
// produces a new Table that shares column storage with the original,
// so intermediate results stay cheap and prior views stay valid.
//
// 3. Missing data flows, bad schemas fail. Null catalog values become
// NaN and propagate through arithmetic; a missing column or an unknown
// unit in a catalog response is a schema error that stops the fetch.
//
// # Quick Start
//
// Fetch exoplanet data, compute equilibrium temperatures, and keep
// only transit detections:
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/astropipe/pkg/catalog"
//	    _ "github.com/ajitpratap0/astropipe/pkg/catalog/exoarchive"
//	    "github.com/ajitpratap0/astropipe/pkg/config"
//	    "github.com/ajitpratap0/astropipe/pkg/derive"
//	    "github.com/ajitpratap0/astropipe/pkg/table"
//	)
//
//	cfg := config.NewBaseConfig("primary", "exoarchive")
//	cfg.Source.Endpoint = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"
//
//	src, _ := catalog.CreateSource("exoarchive", cfg)
//	defer src.Close(context.Background())
//
//	tbl, _ := src.Fetch(context.Background(), catalog.Query{
//	    Table: "pscomppars",
//	    Columns: []catalog.ColumnSpec{
//	        {Name: "pl_name", DType: table.DTypeCategorical},
//	        {Name: "st_teff", DType: table.DTypeNumeric},
//	        {Name: "st_rad", DType: table.DTypeNumeric},
//	        {Name: "pl_orbsmax", DType: table.DTypeNumeric},
//	    },
//	})
//
//	tbl, _ = derive.Derive(context.Background(), tbl, derive.ColEquilibriumT)
//
// # Key Packages
//
//	pkg/unit              - Physical units, dimensions, and unit-aware values
//	pkg/table             - Immutable typed columns, tables, and row masks
//	pkg/catalog           - Catalog fetcher interface and source registry
//	pkg/catalog/exoarchive - NASA Exoplanet Archive TAP source
//	pkg/derive            - Derived-quantity engine and built-in formulas
//	pkg/formats/arrowconv - Arrow record conversion and IPC export
//	pkg/config            - Unified configuration management
//	pkg/errors            - Structured error handling
//	pkg/logger            - Structured logging
//	pkg/metrics           - Prometheus metrics collection
//
// # Configuration
//
// Sources share a unified configuration structure:
//
//	type BaseConfig struct {
//	    Source        SourceConfig        // Endpoint, row caps, gzip
//	    Timeouts      TimeoutConfig       // Connection, request timeouts
//	    Reliability   ReliabilityConfig   // Retries and backoff
//	    Observability ObservabilityConfig // Logging, metrics
//	}
//
// Configuration files are YAML, and environment variables are
// supported with ${VAR_NAME} syntax. See examples/pipeline.yaml.
package astropipe
