package exoarchive

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ajitpratap0/astropipe/pkg/catalog"
	"github.com/ajitpratap0/astropipe/pkg/config"
	"github.com/ajitpratap0/astropipe/pkg/errors"
	"github.com/ajitpratap0/astropipe/pkg/table"
	"github.com/ajitpratap0/astropipe/pkg/unit"
	gojson "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
	"metadata": [
		{"name": "pl_name", "datatype": "char", "unit": ""},
		{"name": "pl_discmethod", "datatype": "char", "unit": ""},
		{"name": "st_teff", "datatype": "double", "unit": "K"},
		{"name": "st_rad", "datatype": "double", "unit": "Rsun"},
		{"name": "pl_orbsmax", "datatype": "double", "unit": "au"}
	],
	"data": [
		["Kepler-22 b", "Transit", 5518, 0.979, 0.849],
		["51 Peg b", "Radial Velocity", 5793, 1.237, 0.0527],
		["TRAPPIST-1 e", "Transit", 2566, null, 0.02925]
	]
}`

func testConfig(endpoint string) *config.BaseConfig {
	cfg := config.NewBaseConfig("test", "exoarchive")
	cfg.Source.Endpoint = endpoint
	cfg.Reliability.RetryAttempts = 2
	cfg.Reliability.RetryDelay = time.Millisecond
	cfg.Reliability.MaxRetryDelay = 5 * time.Millisecond
	return cfg
}

func testQuery() catalog.Query {
	return catalog.Query{
		Table: "pscomppars",
		Columns: []catalog.ColumnSpec{
			{Name: "pl_name", DType: table.DTypeCategorical},
			{Name: "pl_discmethod", DType: table.DTypeCategorical},
			{Name: "st_teff", DType: table.DTypeNumeric, Dim: unit.Dim(0, 0, 0, 1)},
			{Name: "st_rad", DType: table.DTypeNumeric, Dim: unit.Dim(1, 0, 0, 0)},
			{Name: "pl_orbsmax", DType: table.DTypeNumeric, Dim: unit.Dim(1, 0, 0, 0)},
		},
	}
}

func newTestSource(t *testing.T, endpoint string) catalog.Fetcher {
	t.Helper()
	src, err := New(testConfig(endpoint))
	require.NoError(t, err)
	return src
}

func TestFetchMaterializesTable(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	ctx := context.Background()

	tbl, err := src.Fetch(ctx, testQuery())
	require.NoError(t, err)
	require.NoError(t, src.Close(ctx))

	assert.Contains(t, gotQuery, "SELECT pl_name,pl_discmethod,st_teff,st_rad,pl_orbsmax FROM pscomppars")
	assert.Equal(t, 3, tbl.RowCount())

	rad, err := tbl.Column("st_rad")
	require.NoError(t, err)
	assert.Equal(t, "Rsun", rad.Unit().Symbol)

	// Null catalog values materialize as NaN, not as errors.
	v, err := rad.Value(2)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v.Magnitude))

	method, err := tbl.Column("pl_discmethod")
	require.NoError(t, err)
	cats, err := method.Categories()
	require.NoError(t, err)
	assert.Equal(t, []string{"Transit", "Radial Velocity", "Transit"}, cats)
}

func TestFetchGzipResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept-Encoding"), "gzip")
		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		_, _ = gz.Write([]byte(sampleResponse))
		_ = gz.Close()
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	tbl, err := src.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.RowCount())
}

func TestFetchLimitBecomesTop(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	q := testQuery()
	q.Limit = 100
	q.Where = "st_teff > 3000"

	src := newTestSource(t, srv.URL)
	_, err := src.Fetch(context.Background(), q)
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "SELECT TOP 100 ")
	assert.Contains(t, gotQuery, " WHERE st_teff > 3000")
}

func TestFetchRetriesServerErrors(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	_, err := src.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConnection))
	assert.True(t, errors.IsRetryable(err))
	// Initial attempt plus two retries.
	assert.Equal(t, 3, requests)
}

func TestFetchRecoversAfterTransientError(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	tbl, err := src.Fetch(context.Background(), testQuery())
	require.NoError(t, err)
	assert.Equal(t, 3, tbl.RowCount())
	assert.Equal(t, 2, requests)
}

func TestFetchSchemaRejection(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.Error(w, "unknown column", http.StatusBadRequest)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	_, err := src.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
	// Schema errors fail fast, no retries.
	assert.Equal(t, 1, requests)
}

func TestFetchMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"metadata": [`))
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	_, err := src.Fetch(context.Background(), testQuery())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
	assert.False(t, errors.IsRetryable(err))
}

func TestFetchMissingExpectedColumn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	q := testQuery()
	q.Columns = append(q.Columns, catalog.ColumnSpec{
		Name: "pl_bmassj", DType: table.DTypeNumeric,
	})

	src := newTestSource(t, srv.URL)
	_, err := src.Fetch(context.Background(), q)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
}

func TestFetchUnknownUnitIsSchemaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := tapResponse{
			Metadata: []tapColumnMeta{{Name: "st_teff", Datatype: "double", Unit: "furlong"}},
			Data:     [][]interface{}{{5778.0}},
		}
		_ = gojson.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	q := catalog.Query{
		Table:   "pscomppars",
		Columns: []catalog.ColumnSpec{{Name: "st_teff", DType: table.DTypeNumeric}},
	}

	src := newTestSource(t, srv.URL)
	_, err := src.Fetch(context.Background(), q)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
}

func TestFetchCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := src.Fetch(ctx, testQuery())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeCancelled))
	assert.False(t, errors.IsRetryable(err))
}

func TestBuildADQL(t *testing.T) {
	q := catalog.Query{
		Table: "pscomppars",
		Columns: []catalog.ColumnSpec{
			{Name: "st_teff"}, {Name: "st_rad"},
		},
	}
	assert.Equal(t, "SELECT st_teff,st_rad FROM pscomppars", buildADQL(q, 0))
	assert.Equal(t, "SELECT TOP 50 st_teff,st_rad FROM pscomppars", buildADQL(q, 50))

	q.Limit = 10
	q.Where = "default_flag = 1"
	assert.Equal(t, "SELECT TOP 10 st_teff,st_rad FROM pscomppars WHERE default_flag = 1", buildADQL(q, 50))
}

func TestSourceRegistered(t *testing.T) {
	assert.True(t, catalog.HasSource("exoarchive"))
}
