// Package apiclient is the single configured transport for the blog API.
// Every outbound request picks up the current bearer credential, and every
// failure is classified exactly once into the apierrors taxonomy.
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
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"inkwell/internal/apierrors"
	"inkwell/internal/session/store"
)

const tracerName = "inkwell/apiclient"

// CredentialSource is the read-only view of the credential store. The client
// reads the latest committed credential on every request and never writes.
type CredentialSource interface {
	Load(ctx context.Context) (string, error)
}

// Client performs JSON requests against the blog API.
type Client struct {
	baseURL string
	http    *http.Client
	creds   CredentialSource
	log     *slog.Logger
	metrics *Metrics
	tracer  trace.Tracer

	mu           sync.Mutex
	onInvalidate func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport. Tests use this; production
// keeps http.DefaultClient's transport defaults (no extra timeout, per the
// resource model).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger attaches a structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithMetrics attaches request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New builds a client for the API at baseURL, reading credentials from creds.
func New(baseURL string, creds CredentialSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		creds:   creds,
		log:     slog.Default(),
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// OnInvalidate registers the credential-invalidation listener. The session
// manager is the intended single subscriber; registering again replaces the
// previous listener. The client never calls into the session layer directly,
// keeping the dependency direction leaf-ward.
func (c *Client) OnInvalidate(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onInvalidate = fn
}

func (c *Client) invalidate() {
	c.mu.Lock()
	fn := c.onInvalidate
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Get performs a GET and decodes the JSON response into out (may be nil).
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put performs a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete performs a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// errorBody is the error payload shape the API uses: {"detail": "..."}.
type errorBody struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	start := time.Now()

	ctx, span := c.tracer.Start(ctx, method+" "+path, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apierrors.Wrap(apierrors.KindUnknown, apierrors.MsgUnknown, fmt.Errorf("encode request body: %w", err))
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return apierrors.Wrap(apierrors.KindUnknown, apierrors.MsgUnknown, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	credential, err := c.creds.Load(ctx)
	hasCredential := err == nil && credential != ""
	if err != nil && !errors.Is(err, store.ErrNoCredential) {
		// A broken store reads as "no credential"; the request still goes out
		// unauthenticated and the server decides.
		c.log.Warn("credential load failed", "error", err)
	}
	if hasCredential {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.SetStatus(codes.Error, "transport failure")
		c.observe(method, apierrors.KindNetwork, start)
		return apierrors.Wrap(apierrors.KindNetwork, apierrors.MsgNetworkError, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(method, apierrors.KindNetwork, start)
		return apierrors.Wrap(apierrors.KindNetwork, apierrors.MsgNetworkError, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.observe(method, "", start)
		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return apierrors.Wrap(apierrors.KindUnknown, apierrors.MsgUnknown, fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	normalized := c.classify(resp.StatusCode, respBody, hasCredential)
	span.SetStatus(codes.Error, string(normalized.Kind))
	c.observe(method, normalized.Kind, start)
	c.log.Debug("request failed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"kind", normalized.Kind,
	)
	return normalized
}

// classify maps a non-2xx response to the taxonomy. Precedence is fixed and
// first-match-wins; a 401 that arrives on an authenticated request means the
// session itself is dead, so the invalidation listener fires as a side effect.
func (c *Client) classify(status int, body []byte, hadCredential bool) *apierrors.Error {
	var detail errorBody
	_ = json.Unmarshal(body, &detail)

	switch {
	case status == http.StatusUnauthorized && hadCredential:
		c.invalidate()
		return apierrors.New(apierrors.KindUnauthorized, apierrors.MsgSessionExpired)
	case status == http.StatusUnauthorized:
		return apierrors.New(apierrors.KindUnauthorized, apierrors.MsgLoginRequired)
	case status == http.StatusForbidden:
		return apierrors.New(apierrors.KindForbidden, apierrors.MsgForbidden)
	case status == http.StatusNotFound:
		return apierrors.New(apierrors.KindNotFound, apierrors.MsgNotFound)
	case status >= 500 && status <= 599:
		return apierrors.New(apierrors.KindServerError, apierrors.MsgServerError)
	case detail.Detail != "":
		return apierrors.New(apierrors.KindValidation, detail.Detail)
	default:
		return apierrors.New(apierrors.KindUnknown, apierrors.MsgUnknown)
	}
}

func (c *Client) observe(method string, kind apierrors.Kind, start time.Time) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if kind != "" {
		outcome = string(kind)
	}
	c.metrics.IncRequest(method, outcome)
	c.metrics.ObserveDuration(method, time.Since(start))
}
