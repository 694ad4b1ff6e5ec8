// Package saleor talks to a Saleor GraphQL API: it logs in, runs queries and
// mutations, and reports failures as typed errors.
package saleor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Khan/genqlient/graphql"
	"github.com/gojektech/heimdall/v6/httpclient"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

const (
	// AuthHeader carries the bearer token on every authenticated request.
	AuthHeader = "Authorization-Bearer"
	// RequestIDHeader carries the run id so server logs can be correlated.
	RequestIDHeader = "X-Request-ID"

	// DefaultTimeout bounds a single HTTP round trip.
	DefaultTimeout = 30 * time.Second

	// maxErrorBody limits how much of a non-2xx body ends up in an error.
	maxErrorBody = 512
)

// ErrOperationKind is returned when a mutation is sent through Query or a
// query through Mutate.
var ErrOperationKind = errors.New("operation kind mismatch")

// Options configures a Client.
type Options struct {
	// Endpoint is the GraphQL URL. Required.
	Endpoint string
	// Token is the bearer credential. Empty means anonymous.
	Token string
	// HTTPTimeout bounds each request. Defaults to DefaultTimeout.
	HTTPTimeout time.Duration
	// Transport is the base round tripper, e.g. the API-call logger.
	Transport http.RoundTripper
	// RunID is sent as X-Request-ID when set.
	RunID string
}

// Client runs GraphQL operations against a single endpoint. Responses are
// never cached and failed requests are never retried.
type Client struct {
	opts Options
	gql  graphql.Client
}

// NewClient creates a Client for the given options.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Endpoint) == "" {
		return nil, fmt.Errorf("endpoint cannot be empty")
	}
	if opts.HTTPTimeout <= 0 {
		opts.HTTPTimeout = DefaultTimeout
	}

	return newClient(opts), nil
}

func newClient(opts Options) *Client {
	base := opts.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	httpClient := &http.Client{
		Timeout: opts.HTTPTimeout,
		Transport: &headerTransport{
			token:   opts.Token,
			runID:   opts.RunID,
			wrapped: base,
		},
	}

	// heimdall with zero retries: a transient failure surfaces as is
	hc := httpclient.NewClient(
		httpclient.WithHTTPClient(httpClient),
		httpclient.WithRetryCount(0),
	)
	capture := &errorCapture{errs: make(map[*http.Request]error)}
	hc.AddPlugin(capture)

	doer := &statusDoer{client: hc, capture: capture}

	return &Client{
		opts: opts,
		gql:  graphql.NewClient(opts.Endpoint, doer),
	}
}

// WithToken returns a copy of the client that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	opts := c.opts
	opts.Token = token
	return newClient(opts)
}

// Endpoint returns the GraphQL URL the client talks to.
func (c *Client) Endpoint() string {
	return c.opts.Endpoint
}

// Authenticated reports whether requests carry a bearer token.
func (c *Client) Authenticated() bool {
	return c.opts.Token != ""
}

// Query runs a query operation and decodes its data payload into data.
func (c *Client) Query(ctx context.Context, op Operation, variables map[string]any, data any) error {
	if op.Kind != KindQuery {
		return fmt.Errorf("%w: %s is a %s, not a query", ErrOperationKind, op.Name, op.Kind)
	}
	return c.run(ctx, op, variables, data)
}

// Mutate runs a mutation operation and decodes its data payload into data.
func (c *Client) Mutate(ctx context.Context, op Operation, variables map[string]any, data any) error {
	if op.Kind != KindMutation {
		return fmt.Errorf("%w: %s is a %s, not a mutation", ErrOperationKind, op.Name, op.Kind)
	}
	return c.run(ctx, op, variables, data)
}

func (c *Client) run(ctx context.Context, op Operation, variables map[string]any, data any) error {
	req := &graphql.Request{
		Query:     op.Document,
		Variables: variables,
		OpName:    op.Name,
	}
	resp := &graphql.Response{Data: data}

	err := c.gql.MakeRequest(ctx, req, resp)
	if err == nil {
		return nil
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return &HTTPStatusError{
			Operation:  op.Name,
			StatusCode: statusErr.StatusCode,
			Body:       statusErr.Body,
		}
	}

	var list gqlerror.List
	if errors.As(err, &list) {
		return &GraphQLError{Operation: op.Name, Errors: list}
	}

	return fmt.Errorf("%s: %w", op.Name, err)
}

// headerTransport stamps every request with the auth, cache and run headers.
type headerTransport struct {
	token   string
	runID   string
	wrapped http.RoundTripper
}

// RoundTrip implements http.RoundTripper
func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Cache-Control", "no-cache")
	if t.token != "" {
		req.Header.Set(AuthHeader, t.token)
	}
	if t.runID != "" {
		req.Header.Set(RequestIDHeader, t.runID)
	}
	return t.wrapped.RoundTrip(req)
}

// statusDoer turns non-2xx responses into *HTTPStatusError before the
// GraphQL layer tries to decode them.
type statusDoer struct {
	client  *httpclient.Client
	capture *errorCapture
}

func (d *statusDoer) Do(req *http.Request) (*http.Response, error) {
	resp, err := d.client.Do(req)
	if original := d.capture.take(req); err != nil {
		// heimdall flattens errors into strings; hand back the real one
		if original != nil {
			return nil, original
		}
		return nil, err
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := strings.TrimSpace(string(body))
	if err != nil {
		msg += " [body truncated: " + err.Error() + "]"
	}
	return nil, &HTTPStatusError{
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(msg),
	}
}

// errorCapture is a heimdall plugin remembering the transport error of each
// request so errors.Is keeps working on context and network failures.
type errorCapture struct {
	mu   sync.Mutex
	errs map[*http.Request]error
}

func (p *errorCapture) OnRequestStart(*http.Request) {}

func (p *errorCapture) OnRequestEnd(*http.Request, *http.Response) {}

func (p *errorCapture) OnError(req *http.Request, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[req] = err
}

func (p *errorCapture) take(req *http.Request) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	err := p.errs[req]
	delete(p.errs, req)
	return err
}
