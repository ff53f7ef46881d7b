package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Client talks to the analytics API. It never retries; every call issues
// exactly one HTTP request.
type Client struct {
	rc  *resty.Client
	log *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

type clientOptions struct {
	timeout   time.Duration
	logger    *zap.Logger
	transport http.RoundTripper
	otel      []otelhttp.Option
}

// WithTimeout bounds each request. Zero (the default) leaves the request
// unbounded apart from its context.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) { o.timeout = d }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = l }
}

// WithTransport replaces the base round tripper. It is still wrapped for
// tracing.
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(o *clientOptions) { o.transport = rt }
}

// WithTracing records a client span per request with tp and injects the
// trace context into the outgoing headers with p.
func WithTracing(tp trace.TracerProvider, p propagation.TextMapPropagator) ClientOption {
	return func(o *clientOptions) {
		o.otel = append(o.otel, otelhttp.WithTracerProvider(tp), otelhttp.WithPropagators(p))
	}
}

// NewClient creates a client for the API rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	o := clientOptions{
		logger:    zap.NewNop(),
		transport: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(&o)
	}

	rc := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTransport(otelhttp.NewTransport(o.transport, o.otel...)).
		SetHeader("Accept", "application/json").
		SetRetryCount(0).
		SetLogger(o.logger.Sugar())
	if o.timeout > 0 {
		rc.SetTimeout(o.timeout)
	}

	return &Client{rc: rc, log: o.logger}
}

// Stats fetches aggregate statistics for q.
func (c *Client) Stats(ctx context.Context, q StatsQuery) (*StatsResult, error) {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetQueryParamsFromValues(q.Params()).
		Get("/stats")
	if err != nil {
		return nil, &TransportError{Op: "get stats", Err: err}
	}
	c.log.Debug("stats response",
		zap.String("site_id", q.SiteID),
		zap.Int("status", resp.StatusCode()),
		zap.Duration("latency", resp.Time()),
	)
	if !resp.IsSuccess() {
		return nil, newAPIError(resp)
	}

	var res StatsResult
	if err := json.Unmarshal(resp.Body(), &res); err != nil {
		return nil, &DecodeError{Op: "stats", Err: err}
	}
	return &res, nil
}

// SendEvent records one event. The response body of a successful call is
// ignored.
func (c *Client) SendEvent(ctx context.Context, ev EventSubmission) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("analytics: encode event: %w", err)
	}

	resp, err := c.rc.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		Post("/event")
	if err != nil {
		return &TransportError{Op: "post event", Err: err}
	}
	c.log.Debug("event response",
		zap.String("site_id", ev.SiteID),
		zap.String("event_type", ev.EventType),
		zap.Int("status", resp.StatusCode()),
	)
	if !resp.IsSuccess() {
		return newAPIError(resp)
	}
	return nil
}

// newAPIError extracts the "error" field of a failed response. Bodies that
// are not JSON leave the message empty.
func newAPIError(resp *resty.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	var body errorBody
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Message = body.Error
	}
	return apiErr
}
