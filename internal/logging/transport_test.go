package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggingRoundTripper(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		responseStatus int
		responseBody   string
		wantCategory   string
		wantOperation  string
	}{
		{
			name:           "login",
			body:           `{"query":"mutation login($email: String!, $pass: String!) { tokenCreate(email: $email, password: $pass) { token } }","operationName":"login","variables":{"email":"a","pass":"b"}}`,
			responseStatus: 200,
			responseBody:   `{"data":{"tokenCreate":{"token":"t"}}}`,
			wantCategory:   CategoryAuth,
			wantOperation:  "login",
		},
		{
			name:           "products page",
			body:           `{"query":"query products_next($after: String!) { products(first: 100, after: $after) { edges { node { id } } } }","operationName":"products_next"}`,
			responseStatus: 200,
			responseBody:   `{"data":{"products":null}}`,
			wantCategory:   CategoryQuery,
			wantOperation:  "products_next",
		},
		{
			name:           "bulk delete",
			body:           `{"query":"mutation deleteAllProducts($ids: [ID!]!) { productBulkDelete(ids: $ids) { count } }","operationName":"deleteAllProducts"}`,
			responseStatus: 500,
			responseBody:   `oops`,
			wantCategory:   CategoryMutation,
			wantOperation:  "deleteAllProducts",
		},
		{
			name:           "not graphql",
			body:           `hello`,
			responseStatus: 200,
			wantCategory:   CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var received string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				b, _ := io.ReadAll(r.Body)
				received = string(b)
				w.WriteHeader(tt.responseStatus)
				w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			var logBuf bytes.Buffer
			client := &http.Client{Transport: NewLoggingRoundTripper(nil, &logBuf)}

			req, err := http.NewRequest(http.MethodPost, server.URL+"/graphql/", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Failed to create request: %v", err)
			}
			req.Header.Set("X-Request-ID", "run-42")

			resp, err := client.Do(req)
			if err != nil {
				t.Fatalf("Request failed: %v", err)
			}
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)

			if received != tt.body {
				t.Errorf("server received %q, want the original body", received)
			}

			var entry logEntry
			if err := json.Unmarshal(logBuf.Bytes(), &entry); err != nil {
				t.Fatalf("Failed to parse log output: %v\nOutput: %s", err, logBuf.String())
			}

			if entry.Category != tt.wantCategory {
				t.Errorf("Expected category %q, got %q", tt.wantCategory, entry.Category)
			}
			if entry.Operation != tt.wantOperation {
				t.Errorf("Expected operation %q, got %q", tt.wantOperation, entry.Operation)
			}
			if entry.Status != tt.responseStatus {
				t.Errorf("Expected status %d, got %d", tt.responseStatus, entry.Status)
			}
			if entry.RequestBytes != int64(len(tt.body)) {
				t.Errorf("Expected %d request bytes, got %d", len(tt.body), entry.RequestBytes)
			}
			if entry.RequestID != "run-42" {
				t.Errorf("Expected request id run-42, got %q", entry.RequestID)
			}
			if entry.DurationMs <= 0 {
				t.Error("Expected positive duration")
			}
			if entry.Timestamp.IsZero() {
				t.Error("Expected non-zero timestamp")
			}
		})
	}
}

func TestLoggingRoundTripperError(t *testing.T) {
	failingTransport := &errorTransport{err: io.EOF}

	var logBuf bytes.Buffer
	client := &http.Client{Transport: NewLoggingRoundTripper(failingTransport, &logBuf)}
	req, _ := http.NewRequest(http.MethodPost, "http://example.com/graphql/", strings.NewReader(`{}`))

	_, err := client.Do(req)
	if err == nil {
		t.Fatal("Expected error but got none")
	}

	var entry logEntry
	if err := json.Unmarshal(logBuf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse log output: %v", err)
	}

	if !strings.Contains(entry.Error, "EOF") {
		t.Errorf("Expected error to contain 'EOF', got %q", entry.Error)
	}
	if entry.Category != CategoryOther {
		t.Errorf("Expected category %q, got %q", CategoryOther, entry.Category)
	}
}

func TestCategorizeGraphQLCall(t *testing.T) {
	tests := []struct {
		name          string
		body          string
		wantCategory  string
		wantOperation string
	}{
		{
			name:          "operation name taken from document",
			body:          `{"query":"query products_initial { products(first: 1) { edges { node { id } } } }"}`,
			wantCategory:  CategoryQuery,
			wantOperation: "products_initial",
		},
		{
			name:          "operationName selects among several",
			body:          `{"query":"query a { x } mutation b { y }","operationName":"b"}`,
			wantCategory:  CategoryMutation,
			wantOperation: "b",
		},
		{
			name:          "unparsable document keeps operation name",
			body:          `{"query":"mutation {","operationName":"broken"}`,
			wantCategory:  CategoryOther,
			wantOperation: "broken",
		},
		{
			name:         "empty body",
			body:         ``,
			wantCategory: CategoryOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			category, operation := categorizeGraphQLCall([]byte(tt.body))
			if category != tt.wantCategory {
				t.Errorf("Expected category %q, got %q", tt.wantCategory, category)
			}
			if operation != tt.wantOperation {
				t.Errorf("Expected operation %q, got %q", tt.wantOperation, operation)
			}
		})
	}
}

func TestCallerInfo(t *testing.T) {
	caller := getCallerInfo()

	if caller == "unknown" {
		t.Error("Expected caller info but got 'unknown'")
	}

	parts := strings.Split(caller, ":")
	if len(parts) < 3 {
		t.Errorf("Expected caller format 'file:line:function', got %q", caller)
	}
}

// errorTransport is a test helper that always returns an error
type errorTransport struct {
	err error
}

func (t *errorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return nil, t.err
}

func TestLoggingDisabledByDefault(t *testing.T) {
	if IsLoggingEnabled(context.Background()) {
		t.Error("Expected logging to be disabled by default")
	}
}

func TestEnableLogging(t *testing.T) {
	ctx := EnableLogging(context.Background())

	if !IsLoggingEnabled(ctx) {
		t.Error("Expected logging to be enabled")
	}
}

func TestQuiet(t *testing.T) {
	if IsQuiet(context.Background()) {
		t.Error("Expected quiet to be disabled initially")
	}
	if !IsQuiet(EnableQuiet(context.Background())) {
		t.Error("Expected quiet to be enabled")
	}
}
