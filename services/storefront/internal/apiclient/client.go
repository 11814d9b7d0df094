// Package apiclient talks to the remote marketplace REST API. Every failure
// is returned as a *classify.Failure so callers can classify it.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/FreshMarket/pkg/httpclient"
	"github.com/utafrali/FreshMarket/pkg/logger"
	"github.com/utafrali/FreshMarket/pkg/middleware"
	"github.com/utafrali/FreshMarket/pkg/tracing"
	"github.com/utafrali/FreshMarket/services/storefront/internal/classify"
	"github.com/utafrali/FreshMarket/services/storefront/internal/domain"
)

const tracerName = "github.com/utafrali/FreshMarket/services/storefront/apiclient"

// maxResponseBody bounds how much of a success response is read.
const maxResponseBody = 4 << 20

type contextKey string

const tokenKey contextKey = "bearer_token"

// WithToken returns a context whose outgoing API calls carry token as a
// bearer credential.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func tokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

// OrderLine is one line of an order submission.
type OrderLine struct {
	ListingID     string `json:"listing_id"`
	Quantity      int    `json:"quantity"`
	NumberOfPacks int    `json:"number_of_packs,omitempty"`
}

// OrderRequest is the body of an order submission.
type OrderRequest struct {
	MarketID string          `json:"market_id,omitempty"`
	Items    []OrderLine     `json:"items"`
	Total    decimal.Decimal `json:"total"`
}

// OrderConfirmation is the marketplace's answer to an accepted order.
type OrderConfirmation struct {
	OrderID string `json:"id"`
	Status  string `json:"status"`
}

// Client is a thin wrapper over the marketplace API.
type Client struct {
	http    *httpclient.CircuitBreakerClient
	baseURL string
	logger  *slog.Logger
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, cb *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	return &Client{
		http:    cb,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// ErrUnavailable is reported by Healthy while the circuit breaker is open.
var ErrUnavailable = errors.New("marketplace api unavailable: circuit breaker open")

// Healthy reports whether the marketplace is currently reachable from the
// breaker's point of view. It never calls the API.
func (c *Client) Healthy(context.Context) error {
	if c.http.IsOpen() {
		return ErrUnavailable
	}
	return nil
}

// GetListing fetches a single listing.
func (c *Client) GetListing(ctx context.Context, id string) (*domain.Listing, error) {
	const op = "get listing"

	var listing domain.Listing
	if err := c.do(ctx, op, http.MethodGet, "/listings/"+url.PathEscape(id), nil, &listing); err != nil {
		return nil, err
	}
	if listing.ID == "" {
		return nil, &classify.Failure{Op: op, Raw: classify.UnknownError{Raw: errors.New("listing payload has no id")}}
	}
	return &listing, nil
}

// SubmitOrder places an order for the given lines.
func (c *Client) SubmitOrder(ctx context.Context, order OrderRequest) (*OrderConfirmation, error) {
	var conf OrderConfirmation
	if err := c.do(ctx, "submit order", http.MethodPost, "/orders", order, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &classify.Failure{Op: op, Raw: classify.UnknownError{Raw: fmt.Errorf("encode request: %w", err)}}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &classify.Failure{Op: op, Raw: classify.UnknownError{Raw: fmt.Errorf("create request: %w", err)}}
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := tokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set(middleware.CorrelationIDHeader, id)
	}

	ctx, span := tracing.Tracer(tracerName).Start(ctx, "marketplace "+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.HTTPMethod(method),
			attribute.String("marketplace.path", path),
		),
	)
	defer span.End()
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		c.logger.WarnContext(ctx, "marketplace request failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)
		return &classify.Failure{Op: op, Raw: rawFromError(err)}
	}
	defer func() { _ = resp.Body.Close() }()
	span.SetAttributes(semconv.HTTPStatusCode(resp.StatusCode))

	if !httpclient.IsSuccess(resp.StatusCode) {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
		re := httpclient.ReadResponseError(resp)
		c.logger.WarnContext(ctx, "marketplace request rejected",
			slog.String("op", op),
			slog.Int("status", re.StatusCode),
		)
		return &classify.Failure{Op: op, Raw: classify.HTTPError{Status: re.StatusCode, Body: re.Body}}
	}

	if err := decode(resp.Body, out); err != nil {
		return &classify.Failure{Op: op, Raw: classify.UnknownError{Raw: err}}
	}

	c.logger.DebugContext(ctx, "marketplace request completed",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
	)
	return nil
}

// rawFromError maps errors from the resilient client. Breaker-counted 5xx
// responses keep their status and body; everything else never produced a
// usable response.
func rawFromError(err error) classify.RawError {
	var re *httpclient.ResponseError
	if errors.As(err, &re) {
		return classify.HTTPError{Status: re.StatusCode, Body: re.Body}
	}
	return classify.TransportError{Err: err}
}

// decode reads a JSON body into out. Payloads wrapped in a {"data": ...}
// envelope are unwrapped.
func decode(r io.Reader, out any) error {
	data, err := io.ReadAll(io.LimitReader(r, maxResponseBody))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(data, &envelope) == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		data = envelope.Data
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
