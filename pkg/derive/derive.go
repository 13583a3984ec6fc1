// Package derive computes new table columns from existing ones via
// unit-checked formulas. Formulas are registered by name in an Engine;
// adding a formula never requires modifying existing ones. A derivation
// reads its input columns and appends one new column, so independent
// derivations over the same table are safe to run concurrently.
package derive

import (
	"fmt"
	"sync"

	"github.com/ajitpratap0/astropipe/pkg/errors"
	"github.com/ajitpratap0/astropipe/pkg/logger"
	"github.com/ajitpratap0/astropipe/pkg/metrics"
	"github.com/ajitpratap0/astropipe/pkg/table"
	"github.com/ajitpratap0/astropipe/pkg/unit"
	"go.uber.org/zap"
)

// InputSpec declares one required input column of a formula.
type InputSpec struct {
	// Column is the required column name
	Column string
	// Dim is the required physical dimension
	Dim unit.Dimension
}

// Formula computes one derived column from validated input columns.
// Compute receives the inputs keyed by column name; the Engine has
// already checked presence, dtype, and dimension by the time it runs.
type Formula interface {
	// Name identifies the formula and doubles as the default output
	// column name
	Name() string
	// Inputs lists the required input columns
	Inputs() []InputSpec
	// OutputDim declares the physical dimension of the derived column.
	// The concrete unit may depend on the inputs, but the dimension is
	// fixed per formula and verified by the Engine after Compute.
	OutputDim() unit.Dimension
	// Compute produces the derived column. Rows with non-finite inputs
	// must yield non-finite outputs, never errors.
	Compute(inputs map[string]*table.Column) (*table.Column, error)
}

// Engine is a registry of named formulas.
type Engine struct {
	formulas map[string]Formula
	mu       sync.RWMutex
	logger   *zap.Logger
}

// NewEngine creates an empty formula engine.
func NewEngine() *Engine {
	return &Engine{
		formulas: make(map[string]Formula),
		logger:   logger.Get().With(zap.String("component", "derive_engine")),
	}
}

// Register adds a formula to the engine.
func (e *Engine) Register(f Formula) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.formulas[f.Name()]; exists {
		return errors.New(errors.ErrorTypeConfig, fmt.Sprintf("formula %s already registered", f.Name()))
	}
	e.formulas[f.Name()] = f
	e.logger.Info("formula registered", zap.String("name", f.Name()))
	return nil
}

// Formulas returns the registered formula names.
func (e *Engine) Formulas() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.formulas))
	for name := range e.formulas {
		names = append(names, name)
	}
	return names
}

// Derive runs the named formula against t and returns a new table with
// the derived column appended. The source table is unchanged. A missing
// input column fails with column_not_found and an input of the wrong
// dimension fails with incompatible_units, before any computation runs.
func (e *Engine) Derive(t *table.Table, name string) (*table.Table, error) {
	e.mu.RLock()
	f, exists := e.formulas[name]
	e.mu.RUnlock()

	if !exists {
		return nil, errors.New(errors.ErrorTypeConfig, fmt.Sprintf("formula %s not registered", name))
	}

	timer := metrics.NewTimer(name)
	inputs, err := e.collectInputs(t, f)
	if err != nil {
		metrics.FormulasComputed.WithLabelValues(name, "failure").Inc()
		return nil, err
	}

	col, err := f.Compute(inputs)
	if err != nil {
		metrics.FormulasComputed.WithLabelValues(name, "failure").Inc()
		return nil, err
	}
	if !col.Unit().Dim.Compatible(f.OutputDim()) {
		metrics.FormulasComputed.WithLabelValues(name, "failure").Inc()
		return nil, errors.Newf(errors.ErrorTypeInternal,
			"formula %s produced unit %q, declared dimension %v",
			name, col.Unit().Symbol, f.OutputDim())
	}

	out, err := t.AddColumn(col)
	if err != nil {
		metrics.FormulasComputed.WithLabelValues(name, "failure").Inc()
		return nil, err
	}

	metrics.FormulasComputed.WithLabelValues(name, "success").Inc()
	metrics.DeriveLatency.WithLabelValues(name).Observe(timer.Stop().Seconds())
	e.logger.Debug("derived column appended",
		zap.String("formula", name),
		zap.String("column", col.Name()),
		zap.Int("rows", col.Len()))

	return out, nil
}

// collectInputs resolves and validates the formula's input columns.
func (e *Engine) collectInputs(t *table.Table, f Formula) (map[string]*table.Column, error) {
	inputs := make(map[string]*table.Column, len(f.Inputs()))
	for _, spec := range f.Inputs() {
		col, err := t.Column(spec.Column)
		if err != nil {
			return nil, err
		}
		if col.DType() != table.DTypeNumeric {
			return nil, errors.Newf(errors.ErrorTypeTypeMismatch,
				"formula %s input %q is %s, not numeric", f.Name(), spec.Column, col.DType())
		}
		if !col.Unit().Dim.Compatible(spec.Dim) {
			return nil, errors.Newf(errors.ErrorTypeIncompatibleUnits,
				"formula %s input %q has unit %q, expected dimension %v",
				f.Name(), spec.Column, col.Unit().Symbol, spec.Dim)
		}
		inputs[spec.Column] = col
	}
	return inputs, nil
}

// Default engine with the built-in formulas registered.
var defaultEngine = NewEngine()

// Default returns the default engine.
func Default() *Engine {
	return defaultEngine
}

// Register adds a formula to the default engine.
func Register(f Formula) error {
	return defaultEngine.Register(f)
}

// Derive runs a formula from the default engine.
func Derive(t *table.Table, name string) (*table.Table, error) {
	return defaultEngine.Derive(t, name)
}
