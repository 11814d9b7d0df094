package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/FreshMarket/pkg/logger"
)

func testCBConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:         name,
		MaxRequests:  1,
		Interval:     60 * time.Second,
		Timeout:      5 * time.Second,
		FailureRatio: 0.5,
		MinRequests:  3,
	}
}

func newTestBreaker(name string, mutate func(*CircuitBreakerConfig)) *CircuitBreakerClient {
	cfg := testCBConfig(name)
	if mutate != nil {
		mutate(&cfg)
	}
	client := New(Config{Timeout: 5 * time.Second, MaxRetries: 0, MaxConnsPerHost: 10})
	return NewCircuitBreakerClient(client, cfg, logger.Discard())
}

func trip(t *testing.T, cb *CircuitBreakerClient, url string) {
	t.Helper()
	for i := 0; i < 3; i++ {
		_, _ = get(context.Background(), cb, url)
	}
	require.Equal(t, gobreaker.StateOpen, cb.State())
}

func failingServer(hits *atomic.Int32) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"database down"}`))
	}))
}

func TestCircuitBreaker_ClosedState_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cb := newTestBreaker("test-closed", nil)

	resp, err := get(context.Background(), cb, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, gobreaker.StateClosed, cb.State())
	assert.False(t, cb.IsOpen())
}

func TestCircuitBreaker_5xxReturnsResponseError(t *testing.T) {
	server := failingServer(nil)
	defer server.Close()

	cb := newTestBreaker("test-5xx-body", nil)

	_, err := get(context.Background(), cb, server.URL)
	require.Error(t, err)

	var respErr *ResponseError
	require.True(t, errors.As(err, &respErr))
	assert.Equal(t, http.StatusInternalServerError, respErr.StatusCode)
	assert.JSONEq(t, `{"message":"database down"}`, string(respErr.Body))
}

func TestCircuitBreaker_TripsAndRejects(t *testing.T) {
	var hits atomic.Int32
	server := failingServer(&hits)
	defer server.Close()

	cb := newTestBreaker("test-trip", nil)
	trip(t, cb, server.URL)

	assert.True(t, cb.IsOpen())

	rejected := testutil.ToFloat64(breakerRejections.WithLabelValues("test-trip"))
	before := hits.Load()
	for i := 0; i < 3; i++ {
		_, err := get(context.Background(), cb, server.URL)
		assert.ErrorIs(t, err, ErrCircuitOpen)
	}
	assert.Equal(t, before, hits.Load())
	assert.Equal(t, rejected+3, testutil.ToFloat64(breakerRejections.WithLabelValues("test-trip")))
	assert.Equal(t, 2.0, testutil.ToFloat64(breakerState.WithLabelValues("test-trip")))
}

func TestCircuitBreaker_HalfOpenToClosedRecovery(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	cb := newTestBreaker("test-recovery", func(c *CircuitBreakerConfig) {
		c.Timeout = 100 * time.Millisecond
	})
	trip(t, cb, server.URL)

	time.Sleep(150 * time.Millisecond)
	failing.Store(false)

	resp, err := get(context.Background(), cb, server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_4xxNotCountedAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"errors":[{"field":"email","message":"invalid"}]}`))
	}))
	defer server.Close()

	cb := newTestBreaker("test-4xx", nil)

	for i := 0; i < 5; i++ {
		resp, err := get(context.Background(), cb, server.URL)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

func TestCircuitBreaker_DefaultConfig(t *testing.T) {
	cfg := DefaultCircuitBreakerConfig("marketplace-api")
	assert.Equal(t, "marketplace-api", cfg.Name)
	assert.Equal(t, uint32(1), cfg.MaxRequests)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 0.5, cfg.FailureRatio)
	assert.Equal(t, uint32(5), cfg.MinRequests)
}

func TestCircuitBreaker_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	cb := newTestBreaker("test-ctx", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := get(ctx, cb, server.URL)
	require.Error(t, err)
}

func TestCircuitBreaker_CanceledCallerNotCountedAsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	cb := newTestBreaker("test-canceled", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 5; i++ {
		_, err := get(ctx, cb, server.URL)
		require.Error(t, err)
	}
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}
