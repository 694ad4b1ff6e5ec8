package saleor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticServer answers every request with the same status and body and
// remembers the headers of the last request.
type staticServer struct {
	mu     sync.Mutex
	header http.Header
	body   map[string]any
}

func newStaticServer(t *testing.T, status int, response string) (*httptest.Server, *staticServer) {
	t.Helper()
	s := &staticServer{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.header = r.Header.Clone()
		_ = json.NewDecoder(r.Body).Decode(&s.body)
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server, s
}

func (s *staticServer) lastHeader() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header
}

func (s *staticServer) lastBody() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.body
}

func TestNewClient(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		endpoint  string
		wantError bool
		errorMsg  string
	}{
		{
			name:     "valid endpoint",
			endpoint: "http://localhost:8000/graphql/",
		},
		{
			name:      "empty endpoint",
			endpoint:  "",
			wantError: true,
			errorMsg:  "endpoint cannot be empty",
		},
		{
			name:      "whitespace endpoint",
			endpoint:  "   ",
			wantError: true,
			errorMsg:  "endpoint cannot be empty",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client, err := NewClient(Options{Endpoint: tt.endpoint})

			if tt.wantError {
				require.Error(t, err)
				assert.EqualError(t, err, tt.errorMsg)
				assert.Nil(t, client)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.endpoint, client.Endpoint())
			assert.False(t, client.Authenticated())
			assert.Equal(t, DefaultTimeout, client.opts.HTTPTimeout)
		})
	}
}

func TestClientSendsHeaders(t *testing.T) {
	t.Parallel()
	server, state := newStaticServer(t, http.StatusOK, `{"data":{"products":null}}`)

	client, err := NewClient(Options{Endpoint: server.URL, RunID: "run-123"})
	require.NoError(t, err)
	authed := client.WithToken("tok")
	assert.True(t, authed.Authenticated())

	var data map[string]any
	require.NoError(t, authed.Query(context.Background(), ProductsInitial, map[string]any{"first": 1}, &data))

	header := state.lastHeader()
	assert.Equal(t, "tok", header.Get(AuthHeader))
	assert.Equal(t, "no-cache", header.Get("Cache-Control"))
	assert.Equal(t, "run-123", header.Get(RequestIDHeader))
	assert.Contains(t, header.Get("Content-Type"), "application/json")

	body := state.lastBody()
	assert.Equal(t, "products_initial", body["operationName"])
	assert.Equal(t, ProductsInitial.Document, body["query"])
}

func TestAnonymousClientSendsNoAuthHeader(t *testing.T) {
	t.Parallel()
	server, state := newStaticServer(t, http.StatusOK, `{"data":{}}`)

	client, err := NewClient(Options{Endpoint: server.URL})
	require.NoError(t, err)

	var data map[string]any
	require.NoError(t, client.Query(context.Background(), ProductsInitial, nil, &data))

	header := state.lastHeader()
	assert.Empty(t, header.Values(AuthHeader))
	assert.Equal(t, "no-cache", header.Get("Cache-Control"))
	assert.Empty(t, header.Get(RequestIDHeader))
}

func TestOperationKindMismatch(t *testing.T) {
	t.Parallel()
	client, err := NewClient(Options{Endpoint: "http://127.0.0.1:1/graphql/"})
	require.NoError(t, err)

	err = client.Query(context.Background(), DeleteAllProducts, nil, nil)
	assert.ErrorIs(t, err, ErrOperationKind)

	err = client.Mutate(context.Background(), ProductsNext, nil, nil)
	assert.ErrorIs(t, err, ErrOperationKind)
}

func TestGraphQLErrorList(t *testing.T) {
	t.Parallel()
	server, _ := newStaticServer(t, http.StatusOK,
		`{"data":null,"errors":[{"message":"boom"},{"message":"bang","path":["products"]}]}`)

	client, err := NewClient(Options{Endpoint: server.URL})
	require.NoError(t, err)

	var data map[string]any
	err = client.Query(context.Background(), ProductsInitial, nil, &data)
	require.Error(t, err)

	var gqlErr *GraphQLError
	require.True(t, errors.As(err, &gqlErr), "expected *GraphQLError, got %T", err)
	assert.Equal(t, "products_initial", gqlErr.Operation)
	assert.Equal(t, []string{"boom", "bang"}, gqlErr.Messages())
	assert.Contains(t, err.Error(), "boom; bang")
}

func TestNon2xxStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
	}{
		{name: "bad request", status: http.StatusBadRequest},
		{name: "unauthorized", status: http.StatusUnauthorized},
		{name: "server error", status: http.StatusInternalServerError},
		{name: "bad gateway", status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server, _ := newStaticServer(t, tt.status, `upstream says no`)

			client, err := NewClient(Options{Endpoint: server.URL})
			require.NoError(t, err)

			var data map[string]any
			err = client.Mutate(context.Background(), DeleteAllProducts, map[string]any{"ids": []string{"a"}}, &data)
			require.Error(t, err)

			var statusErr *HTTPStatusError
			require.True(t, errors.As(err, &statusErr), "expected *HTTPStatusError, got %T", err)
			assert.Equal(t, tt.status, statusErr.StatusCode)
			assert.Equal(t, "deleteAllProducts", statusErr.Operation)
			assert.Equal(t, "upstream says no", statusErr.Body)
		})
	}
}

type brokenBodyTransport struct{}

func (brokenBodyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusBadGateway,
		Header:     make(http.Header),
		Body:       io.NopCloser(io.MultiReader(strings.NewReader("upstream"), iotest.ErrReader(errors.New("connection reset")))),
		Request:    req,
	}, nil
}

func TestNon2xxStatusWithUnreadableBody(t *testing.T) {
	t.Parallel()
	client, err := NewClient(Options{Endpoint: "http://saleor.invalid/graphql/", Transport: brokenBodyTransport{}})
	require.NoError(t, err)

	var data map[string]any
	err = client.Query(context.Background(), ProductsInitial, nil, &data)

	var statusErr *HTTPStatusError
	require.True(t, errors.As(err, &statusErr), "expected *HTTPStatusError, got %T", err)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, "upstream [body truncated: connection reset]", statusErr.Body)
}

func TestTransportErrorIsNotRewritten(t *testing.T) {
	t.Parallel()
	server, _ := newStaticServer(t, http.StatusOK, `{"data":{}}`)

	client, err := NewClient(Options{Endpoint: server.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var data map[string]any
	err = client.Query(ctx, ProductsInitial, nil, &data)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPStatusErrorMessage(t *testing.T) {
	t.Parallel()
	err := &HTTPStatusError{Operation: "login", StatusCode: 503, Body: "maintenance"}
	assert.Equal(t, "login: unexpected HTTP status 503: maintenance", err.Error())

	err = &HTTPStatusError{StatusCode: 500}
	assert.Equal(t, "unexpected HTTP status 500", err.Error())
}
