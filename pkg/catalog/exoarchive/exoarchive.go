// Package exoarchive implements a catalog.Fetcher for the NASA Exoplanet
// Archive TAP service. Queries are issued synchronously against the
// TAP sync endpoint as ADQL; the JSON response carries per-column unit
// metadata which is mapped onto unit tags during materialization.
package exoarchive

import (
	"context"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ajitpratap0/astropipe/pkg/catalog"
	"github.com/ajitpratap0/astropipe/pkg/config"
	"github.com/ajitpratap0/astropipe/pkg/errors"
	"github.com/ajitpratap0/astropipe/pkg/logger"
	"github.com/ajitpratap0/astropipe/pkg/metrics"
	"github.com/ajitpratap0/astropipe/pkg/table"
	"github.com/ajitpratap0/astropipe/pkg/unit"
	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// DefaultEndpoint is the public TAP sync endpoint of the archive.
const DefaultEndpoint = "https://exoplanetarchive.ipac.caltech.edu/TAP/sync"

// Source is a synchronous TAP catalog source.
type Source struct {
	name   string
	cfg    *config.BaseConfig
	client *http.Client
	logger *zap.Logger
}

// tapResponse is the tabular TAP JSON response: column metadata followed
// by row-major data.
type tapResponse struct {
	Metadata []tapColumnMeta `json:"metadata"`
	Data     [][]interface{} `json:"data"`
}

// tapColumnMeta describes one response column.
type tapColumnMeta struct {
	Name     string `json:"name"`
	Datatype string `json:"datatype"`
	Unit     string `json:"unit"`
}

// New creates a TAP source from the given configuration.
func New(cfg *config.BaseConfig) (catalog.Fetcher, error) {
	if cfg == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "configuration is required")
	}
	if cfg.Source.Endpoint == "" {
		cfg.Source.Endpoint = DefaultEndpoint
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid exoarchive configuration")
	}

	return &Source{
		name: cfg.Name,
		cfg:  cfg,
		client: &http.Client{
			Timeout: cfg.Timeouts.Request,
			Transport: &http.Transport{
				// Content-Encoding is handled explicitly so gzip bodies
				// can be decoded with klauspost/compress.
				DisableCompression: true,
				DialContext: (&net.Dialer{
					Timeout: cfg.Timeouts.Connection,
				}).DialContext,
			},
		},
		logger: logger.Get().With(
			zap.String("component", "exoarchive_source"),
			zap.String("name", cfg.Name)),
	}, nil
}

// Name returns the source instance name.
func (s *Source) Name() string { return s.name }

// Close releases source resources. The TAP client is stateless.
func (s *Source) Close(_ context.Context) error {
	s.client.CloseIdleConnections()
	return nil
}

// Fetch executes the query against the TAP endpoint and materializes a
// typed table. Transient connection failures are retried with
// exponential backoff per the reliability configuration; schema and
// parse errors fail fast. No partial table is ever returned.
func (s *Source) Fetch(ctx context.Context, q catalog.Query) (*table.Table, error) {
	if err := validateQuery(q); err != nil {
		return nil, err
	}

	adql := buildADQL(q, s.cfg.Source.MaxRows)
	timer := metrics.NewTimer("fetch")

	s.logger.Debug("executing TAP query", zap.String("adql", adql))

	var resp *tapResponse
	var err error
	delay := s.cfg.Reliability.RetryDelay
	for attempt := 0; ; attempt++ {
		resp, err = s.doRequest(ctx, adql)
		if err == nil || !errors.IsRetryable(err) || attempt >= s.cfg.Reliability.RetryAttempts {
			break
		}

		metrics.FetchRetries.WithLabelValues(s.name).Inc()
		s.logger.Warn("transient fetch failure, retrying",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(ctx.Err(), errors.ErrorTypeCancelled, "fetch cancelled during backoff")
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * s.cfg.Reliability.RetryMultiplier)
		if delay > s.cfg.Reliability.MaxRetryDelay {
			delay = s.cfg.Reliability.MaxRetryDelay
		}
	}
	if err != nil {
		metrics.RowsFetched.WithLabelValues(s.name, "failure").Add(0)
		return nil, err
	}

	tbl, err := materialize(q, resp)
	if err != nil {
		metrics.RowsFetched.WithLabelValues(s.name, "failure").Add(0)
		return nil, err
	}

	metrics.FetchLatency.WithLabelValues(s.name).Observe(timer.Stop().Seconds())
	metrics.RowsFetched.WithLabelValues(s.name, "success").Add(float64(tbl.RowCount()))
	s.logger.Info("catalog fetch complete",
		zap.String("table", q.Table),
		zap.Int("rows", tbl.RowCount()),
		zap.Int("columns", len(q.Columns)))

	return tbl, nil
}

func validateQuery(q catalog.Query) error {
	if q.Table == "" {
		return errors.New(errors.ErrorTypeConfig, "query table is required")
	}
	if len(q.Columns) == 0 {
		return errors.New(errors.ErrorTypeConfig, "query must select at least one column")
	}
	return nil
}

// buildADQL assembles the ADQL statement sent to the TAP service.
func buildADQL(q catalog.Query, maxRows int) string {
	names := make([]string, len(q.Columns))
	for i, c := range q.Columns {
		names[i] = c.Name
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	limit := q.Limit
	if limit == 0 {
		limit = maxRows
	}
	if limit > 0 {
		fmt.Fprintf(&b, "TOP %d ", limit)
	}
	b.WriteString(strings.Join(names, ","))
	b.WriteString(" FROM ")
	b.WriteString(q.Table)
	if q.Where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(q.Where)
	}
	return b.String()
}

// doRequest performs one HTTP round trip and decodes the response body.
func (s *Source) doRequest(ctx context.Context, adql string) (*tapResponse, error) {
	params := url.Values{}
	params.Set("query", adql)
	params.Set("format", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		s.cfg.Source.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to build TAP request")
	}
	if s.cfg.Source.AcceptGzip {
		req.Header.Set("Accept-Encoding", "gzip")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Wrap(ctx.Err(), errors.ErrorTypeCancelled, "fetch cancelled")
		}
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "TAP request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, errors.Newf(errors.ErrorTypeConnection, "TAP service error: %s", resp.Status)
	case resp.StatusCode == http.StatusBadRequest:
		// The service rejects queries naming unknown tables or columns
		// with 400; that is schema drift, not a transient failure.
		return nil, errors.Newf(errors.ErrorTypeSchema, "TAP service rejected query: %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, errors.Newf(errors.ErrorTypeParse, "unexpected TAP status: %s", resp.Status)
	}

	body := io.Reader(resp.Body)
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeParse, "failed to open gzip body")
		}
		defer gz.Close()
		body = gz
	}

	var parsed tapResponse
	if err := gojson.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeParse, "malformed TAP response")
	}
	return &parsed, nil
}

// materialize converts a decoded TAP response into a typed table,
// honoring the dtype and dimension expectations declared in the query.
func materialize(q catalog.Query, resp *tapResponse) (*table.Table, error) {
	metaIndex := make(map[string]int, len(resp.Metadata))
	for i, m := range resp.Metadata {
		metaIndex[m.Name] = i
	}

	for _, row := range resp.Data {
		if len(row) != len(resp.Metadata) {
			return nil, errors.Newf(errors.ErrorTypeParse,
				"row has %d values, metadata describes %d columns", len(row), len(resp.Metadata))
		}
	}

	columns := make([]*table.Column, 0, len(q.Columns))
	for _, spec := range q.Columns {
		idx, ok := metaIndex[spec.Name]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeSchema,
				"column %q absent from catalog response", spec.Name)
		}
		meta := resp.Metadata[idx]

		dtype, err := mapDatatype(meta)
		if err != nil {
			return nil, err
		}
		if spec.DType != "" && spec.DType != dtype {
			return nil, errors.Newf(errors.ErrorTypeSchema,
				"column %q is %s, expected %s", spec.Name, dtype, spec.DType)
		}

		col, err := buildColumn(spec, meta, dtype, idx, resp.Data)
		if err != nil {
			return nil, err
		}
		columns = append(columns, col)
	}

	tbl, err := table.New(columns...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSchema, "inconsistent catalog response")
	}
	return tbl, nil
}

func mapDatatype(meta tapColumnMeta) (table.DType, error) {
	switch meta.Datatype {
	case "double", "float", "real", "int", "long", "short":
		return table.DTypeNumeric, nil
	case "char", "varchar", "string":
		return table.DTypeCategorical, nil
	case "boolean", "bool":
		return table.DTypeBoolean, nil
	default:
		return "", errors.Newf(errors.ErrorTypeSchema,
			"column %q has unsupported datatype %q", meta.Name, meta.Datatype)
	}
}

func buildColumn(spec catalog.ColumnSpec, meta tapColumnMeta, dtype table.DType, idx int, rows [][]interface{}) (*table.Column, error) {
	switch dtype {
	case table.DTypeNumeric:
		u, err := unit.Parse(meta.Unit)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeSchema,
				fmt.Sprintf("column %q carries an unconvertible unit", spec.Name))
		}
		if spec.Dim != (unit.Dimension{}) && !u.Dim.Compatible(spec.Dim) {
			return nil, errors.Newf(errors.ErrorTypeSchema,
				"column %q has unit %q, expected dimension %v", spec.Name, meta.Unit, spec.Dim)
		}

		values := make([]float64, len(rows))
		for i, row := range rows {
			switch v := row[idx].(type) {
			case nil:
				// Missing catalog values are data, not errors.
				values[i] = math.NaN()
			case float64:
				values[i] = v
			default:
				return nil, errors.Newf(errors.ErrorTypeParse,
					"column %q row %d: expected number, got %T", spec.Name, i, row[idx])
			}
		}
		return table.NewNumeric(spec.Name, u, values), nil

	case table.DTypeCategorical:
		values := make([]string, len(rows))
		for i, row := range rows {
			switch v := row[idx].(type) {
			case nil:
				values[i] = ""
			case string:
				values[i] = v
			default:
				return nil, errors.Newf(errors.ErrorTypeParse,
					"column %q row %d: expected string, got %T", spec.Name, i, row[idx])
			}
		}
		return table.NewCategorical(spec.Name, values), nil

	default:
		values := make([]bool, len(rows))
		for i, row := range rows {
			switch v := row[idx].(type) {
			case nil:
				values[i] = false
			case bool:
				values[i] = v
			default:
				return nil, errors.Newf(errors.ErrorTypeParse,
					"column %q row %d: expected boolean, got %T", spec.Name, i, row[idx])
			}
		}
		return table.NewBoolean(spec.Name, values), nil
	}
}
