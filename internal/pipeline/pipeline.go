// Package pipeline composes the catalog workflow into an explicit
// sequence: fetch, derive, filter, project. Each stage is a pure
// function over immutable tables, so the composition replaces
// notebook-style implicit ordering with independently testable steps.
package pipeline

import (
	"context"

	"github.com/ajitpratap0/astropipe/pkg/catalog"
	"github.com/ajitpratap0/astropipe/pkg/config"
	"github.com/ajitpratap0/astropipe/pkg/derive"
	"github.com/ajitpratap0/astropipe/pkg/metrics"
	"github.com/ajitpratap0/astropipe/pkg/table"
	"go.uber.org/zap"
)

// Config describes one pipeline run, typically loaded from YAML.
type Config struct {
	// Source configures the catalog source to fetch from
	Source config.BaseConfig `yaml:"source"`
	// Query selects the catalog table and columns
	Query catalog.Query `yaml:"query"`
	// Formulas are derived-quantity formulas applied in order
	Formulas []string `yaml:"formulas"`
	// Filter optionally restricts the rows handed to the collaborator
	Filter *FilterConfig `yaml:"filter"`
}

// FilterConfig describes the row filtering stage.
type FilterConfig struct {
	// Column and Value select rows where the categorical column equals
	// the value (e.g., pl_discmethod == Transit)
	Column string `yaml:"column"`
	Value  string `yaml:"value"`
	// FiniteOnly drops rows where any of the listed numeric columns is
	// NaN or infinite
	FiniteOnly []string `yaml:"finite_only"`
}

// Pipeline runs a fetch-derive-filter sequence against one source.
type Pipeline struct {
	source catalog.Fetcher
	engine *derive.Engine
	cfg    *Config
	logger *zap.Logger
}

// New creates a pipeline. A nil engine uses the default formula engine.
func New(source catalog.Fetcher, engine *derive.Engine, cfg *Config, logger *zap.Logger) *Pipeline {
	if engine == nil {
		engine = derive.Default()
	}
	return &Pipeline{
		source: source,
		engine: engine,
		cfg:    cfg,
		logger: logger,
	}
}

// Run executes the pipeline and returns the final table. The fetch is
// the only blocking stage; everything after it operates on immutable
// in-memory tables.
func (p *Pipeline) Run(ctx context.Context) (*table.Table, error) {
	timer := metrics.NewTimer("pipeline")

	tbl, err := p.source.Fetch(ctx, p.cfg.Query)
	if err != nil {
		return nil, err
	}
	p.logger.Info("fetch stage complete", zap.Int("rows", tbl.RowCount()))

	for _, formula := range p.cfg.Formulas {
		tbl, err = p.engine.Derive(tbl, formula)
		if err != nil {
			return nil, err
		}
		p.logger.Info("derive stage complete", zap.String("formula", formula))
	}

	tbl, err = p.applyFilter(tbl)
	if err != nil {
		return nil, err
	}

	p.logger.Info("pipeline complete",
		zap.Int("rows", tbl.RowCount()),
		zap.Int("columns", len(tbl.ColumnNames())),
		zap.Duration("duration", timer.Stop()))
	return tbl, nil
}

// applyFilter builds the configured row mask and filters the table.
func (p *Pipeline) applyFilter(tbl *table.Table) (*table.Table, error) {
	if p.cfg.Filter == nil {
		return tbl, nil
	}

	mask := make(table.Mask, tbl.RowCount())
	for i := range mask {
		mask[i] = true
	}

	if p.cfg.Filter.Column != "" {
		catMask, err := table.CategoryMask(tbl, p.cfg.Filter.Column, p.cfg.Filter.Value)
		if err != nil {
			return nil, err
		}
		mask, err = mask.And(catMask)
		if err != nil {
			return nil, err
		}
	}

	for _, name := range p.cfg.Filter.FiniteOnly {
		col, err := tbl.Column(name)
		if err != nil {
			return nil, err
		}
		finite, err := col.Finite()
		if err != nil {
			return nil, err
		}
		mask, err = mask.And(finite)
		if err != nil {
			return nil, err
		}
	}

	before := tbl.RowCount()
	filtered, err := tbl.Filter(mask)
	if err != nil {
		return nil, err
	}

	removed := before - filtered.RowCount()
	if p.cfg.Filter.Column != "" {
		metrics.RowsFiltered.WithLabelValues(p.cfg.Filter.Column).Add(float64(removed))
	}
	p.logger.Info("filter stage complete",
		zap.Int("rows_before", before),
		zap.Int("rows_after", filtered.RowCount()))
	return filtered, nil
}
