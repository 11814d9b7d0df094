package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/utafrali/FreshMarket/pkg/httpclient"
	"github.com/utafrali/FreshMarket/pkg/logger"
	"github.com/utafrali/FreshMarket/services/storefront/internal/classify"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	cb := httpclient.NewCircuitBreakerClient(
		httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("test-"+t.Name()),
		logger.Discard(),
	)
	return New(baseURL, cb, logger.Discard())
}

func failureRaw(t *testing.T, err error) classify.RawError {
	t.Helper()
	var f *classify.Failure
	require.ErrorAs(t, err, &f)
	return f.Raw
}

func TestGetListing_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/listings/p1", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.Equal(t, "corr-9", r.Header.Get("X-Correlation-ID"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"p1","name":"Tomatoes","vendor_id":"v1","market_id":"m1","pricing_mode":"unit","unit_price":"25.50"}`)
	}))
	defer srv.Close()

	ctx := WithToken(logger.WithCorrelationID(context.Background(), "corr-9"), "tok-1")
	listing, err := newTestClient(t, srv.URL+"/api/").GetListing(ctx, "p1")

	require.NoError(t, err)
	assert.Equal(t, "p1", listing.ID)
	assert.Equal(t, "m1", listing.MarketID)
	assert.True(t, decimal.RequireFromString("25.50").Equal(listing.UnitPrice))
}

func TestGetListing_DataEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":{"id":"L3","pricing_mode":"pack","pack_size":12,"price_per_pack":120}}`)
	}))
	defer srv.Close()

	listing, err := newTestClient(t, srv.URL).GetListing(context.Background(), "L3")

	require.NoError(t, err)
	assert.Equal(t, "L3", listing.ID)
	assert.True(t, listing.IsPack())
	require.NotNil(t, listing.PricePerPack)
	assert.True(t, decimal.NewFromInt(120).Equal(*listing.PricePerPack))
}

func TestGetListing_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"listing not found"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GetListing(context.Background(), "missing")

	raw := failureRaw(t, err)
	httpErr, ok := raw.(classify.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.JSONEq(t, `{"message":"listing not found"}`, string(httpErr.Body))
}

func TestGetListing_MissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"name":"nameless"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GetListing(context.Background(), "x")

	assert.IsType(t, classify.UnknownError{}, failureRaw(t, err))
}

func TestGetListing_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GetListing(context.Background(), "x")

	assert.IsType(t, classify.UnknownError{}, failureRaw(t, err))
}

func TestGetListing_ServerErrorKeepsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"message":"maintenance"}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GetListing(context.Background(), "x")

	raw := failureRaw(t, err)
	httpErr, ok := raw.(classify.HTTPError)
	require.True(t, ok, "got %T", raw)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)

	rec := classify.Classify(raw)
	assert.Equal(t, domain.ErrorKindServer, rec.Kind)
	assert.True(t, rec.Retriable)
}

func TestGetListing_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	addr := srv.URL
	srv.Close()

	_, err := newTestClient(t, addr).GetListing(context.Background(), "x")

	raw := failureRaw(t, err)
	assert.IsType(t, classify.TransportError{}, raw)
	assert.Equal(t, domain.ErrorKindNetwork, classify.Classify(raw).Kind)
}

func TestSubmitOrder_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body OrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "m1", body.MarketID)
		require.Len(t, body.Items, 1)
		assert.Equal(t, "L3", body.Items[0].ListingID)
		assert.Equal(t, 2, body.Items[0].NumberOfPacks)
		assert.True(t, decimal.NewFromInt(240).Equal(body.Total))

		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"data":{"id":"ord-1","status":"pending"}}`)
	}))
	defer srv.Close()

	conf, err := newTestClient(t, srv.URL).SubmitOrder(context.Background(), OrderRequest{
		MarketID: "m1",
		Items:    []OrderLine{{ListingID: "L3", Quantity: 24, NumberOfPacks: 2}},
		Total:    decimal.NewFromInt(240),
	})

	require.NoError(t, err)
	assert.Equal(t, "ord-1", conf.OrderID)
	assert.Equal(t, "pending", conf.Status)
}

func TestSubmitOrder_ValidationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"errors":[{"field":"items","message":"listing L3 is sold out"}]}`)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).SubmitOrder(context.Background(), OrderRequest{})

	rec := classify.Classify(classify.FromError(err))
	assert.Equal(t, domain.ErrorKindValidation, rec.Kind)
	assert.Equal(t, "listing L3 is sold out", rec.Message)
}

func TestHealthy_TracksBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.Healthy(context.Background()))

	for i := 0; i < 5; i++ {
		_, err := c.GetListing(context.Background(), "L1")
		require.Error(t, err)
	}
	assert.ErrorIs(t, c.Healthy(context.Background()), ErrUnavailable)

	_, err := c.GetListing(context.Background(), "L1")
	rec := classify.Classify(classify.FromError(err))
	assert.Equal(t, domain.ErrorKindNetwork, rec.Kind)
	assert.ErrorIs(t, err, httpclient.ErrCircuitOpen)
}

func TestDo_RecordsClientSpan(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(t, srv.URL).GetListing(context.Background(), "L404")
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "marketplace get listing", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}
