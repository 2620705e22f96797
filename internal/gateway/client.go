// Package gateway is the HTTP client for the remote recipe API
// (dummyjson-compatible).
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/hammamikhairi/recipedesk/internal/domain"
	"github.com/hammamikhairi/recipedesk/internal/logger"
	"github.com/hammamikhairi/recipedesk/internal/telemetry"
)

// DefaultBaseURL is the public dummyjson instance.
const DefaultBaseURL = "https://dummyjson.com"

const tracerName = "github.com/hammamikhairi/recipedesk/gateway"

// Compile-time interface check.
var _ domain.Gateway = (*Client)(nil)

// listEnvelope is the GET /recipes response body.
type listEnvelope struct {
	Recipes []domain.Recipe `json:"recipes"`
	Total   int             `json:"total"`
	Skip    int             `json:"skip"`
	Limit   int             `json:"limit"`
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPTimeout sets the per-request timeout.
func WithHTTPTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry retries idempotent reads on transient failures for up to
// maxElapsed. Zero disables retries.
func WithRetry(maxElapsed time.Duration) Option {
	return func(c *Client) {
		if maxElapsed <= 0 {
			c.newBackoff = nil
			return
		}
		c.newBackoff = func() backoff.BackOff { return NewBackoff(maxElapsed) }
	}
}

// WithTracer overrides the tracer used for request spans.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// Client talks to the remote record API.
type Client struct {
	baseURL    string
	http       *http.Client
	newBackoff func() backoff.BackOff
	tracer     trace.Tracer
	log        *logger.Logger
}

// NewClient creates a gateway client rooted at baseURL (DefaultBaseURL
// when empty).
func NewClient(baseURL string, log *logger.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		tracer:  telemetry.Tracer(tracerName),
		log:     log,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// FetchMany returns up to limit records starting at skip.
func (c *Client) FetchMany(ctx context.Context, limit, skip int) ([]domain.Recipe, error) {
	env, err := c.fetchPage(ctx, limit, skip)
	if err != nil {
		return nil, err
	}
	return env.Recipes, nil
}

// Create submits a draft. The remote assigns the id.
func (c *Client) Create(ctx context.Context, draft domain.Draft) (domain.Recipe, error) {
	var out domain.Recipe
	if err := c.do(ctx, http.MethodPost, "/recipes/add", draft, &out); err != nil {
		return domain.Recipe{}, fmt.Errorf("gateway: create: %w", err)
	}
	return out, nil
}

// Update sends a partial update. Only the fields set in patch are sent.
func (c *Client) Update(ctx context.Context, id int, patch domain.Patch) (domain.Recipe, error) {
	var out domain.Recipe
	if err := c.do(ctx, http.MethodPatch, recipePath(id), patch, &out); err != nil {
		return domain.Recipe{}, fmt.Errorf("gateway: update %d: %w", id, err)
	}
	return out, nil
}

// Delete removes the record. Any 2xx, including 204, is success.
func (c *Client) Delete(ctx context.Context, id int) error {
	if err := c.do(ctx, http.MethodDelete, recipePath(id), nil, nil); err != nil {
		return fmt.Errorf("gateway: delete %d: %w", id, err)
	}
	return nil
}

func (c *Client) fetchPage(ctx context.Context, limit, skip int) (listEnvelope, error) {
	path := "/recipes?limit=" + strconv.Itoa(limit) + "&skip=" + strconv.Itoa(skip)

	var env listEnvelope
	op := func() error {
		env = listEnvelope{}
		return c.do(ctx, http.MethodGet, path, nil, &env)
	}

	var err error
	if c.newBackoff != nil {
		err = RetryTransient(ctx, c.newBackoff(), op)
	} else {
		err = op()
	}
	if err != nil {
		return listEnvelope{}, fmt.Errorf("gateway: fetch limit=%d skip=%d: %w", limit, skip, err)
	}
	return env, nil
}

// do performs one request. body is JSON-encoded when non-nil; the response
// is decoded into out when out is non-nil and the response has a body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, "gateway "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	err := c.roundTrip(ctx, span, method, path, body, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, span trace.Span, method, path string, body, out any) error {
	var reader io.Reader
	size := 0
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
		size = len(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	reqID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	span.SetAttributes(attribute.String("http.request.id", reqID))

	c.log.Debug("%s %s (%d bytes) id=%s", method, path, size, reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		herr := newHTTPError(resp, respBody)
		c.log.Warn("%s %s -> %s", method, path, herr)
		return herr
	}
	if resp.StatusCode == http.StatusNoContent || out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

func recipePath(id int) string {
	return "/recipes/" + strconv.Itoa(id)
}
