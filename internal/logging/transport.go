package logging

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// API call categories
const (
	CategoryAuth     = "auth"
	CategoryQuery    = "query"
	CategoryMutation = "mutation"
	CategoryOther    = "other"
)

// logEntry represents a single API call log entry
type logEntry struct {
	Timestamp     time.Time `json:"timestamp"`
	Category      string    `json:"category"`
	Operation     string    `json:"operation,omitempty"`
	Method        string    `json:"method"`
	URL           string    `json:"url"`
	Status        int       `json:"status"`
	DurationMs    int64     `json:"duration_ms"`
	RequestBytes  int64     `json:"request_bytes"`
	ResponseBytes int64     `json:"response_bytes"`
	RequestID     string    `json:"request_id,omitempty"`
	Caller        string    `json:"caller"`
	Error         string    `json:"error,omitempty"`
}

// loggingRoundTripper is an http.RoundTripper that logs API calls
type loggingRoundTripper struct {
	transport http.RoundTripper
	output    io.Writer
}

// NewLoggingRoundTripper creates a new logging transport. A nil transport
// means http.DefaultTransport.
func NewLoggingRoundTripper(transport http.RoundTripper, output io.Writer) *loggingRoundTripper {
	if transport == nil {
		transport = http.DefaultTransport
	}
	return &loggingRoundTripper{
		transport: transport,
		output:    output,
	}
}

// RoundTrip implements http.RoundTripper
func (t *loggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	body, err := readBody(req)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req = req.Clone(req.Context())
		req.Body = io.NopCloser(bytes.NewReader(body))
		req.ContentLength = int64(len(body))
	}

	caller := getCallerInfo()

	resp, err := t.transport.RoundTrip(req)

	duration := time.Since(start)
	category, operation := categorizeGraphQLCall(body)

	entry := logEntry{
		Timestamp:    start,
		Category:     category,
		Operation:    operation,
		Method:       req.Method,
		URL:          req.URL.String(),
		DurationMs:   duration.Microseconds() / 1000,
		RequestBytes: int64(len(body)),
		RequestID:    req.Header.Get("X-Request-ID"),
		Caller:       caller,
	}

	// Ensure we always have at least 1ms if request completed
	if entry.DurationMs == 0 && err == nil {
		entry.DurationMs = 1
	}

	if err != nil {
		entry.Error = err.Error()
	} else {
		entry.Status = resp.StatusCode
		if resp.ContentLength > 0 {
			entry.ResponseBytes = resp.ContentLength
		}
	}

	data, _ := json.Marshal(entry)
	fmt.Fprintln(t.output, string(data))

	return resp, err
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	defer req.Body.Close()
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

// categorizeGraphQLCall determines the category and operation name of a
// GraphQL request body. Logins are reported as auth so credentials traffic
// is easy to find.
func categorizeGraphQLCall(body []byte) (category, operation string) {
	var payload struct {
		Query         string `json:"query"`
		OperationName string `json:"operationName"`
	}
	if len(body) == 0 || json.Unmarshal(body, &payload) != nil || payload.Query == "" {
		return CategoryOther, ""
	}
	operation = payload.OperationName

	doc, err := parser.ParseQuery(&ast.Source{Input: payload.Query})
	if err != nil || len(doc.Operations) == 0 {
		return CategoryOther, operation
	}

	op := doc.Operations[0]
	if operation != "" {
		if named := doc.Operations.ForName(operation); named != nil {
			op = named
		}
	} else {
		operation = op.Name
	}

	switch op.Operation {
	case ast.Mutation:
		for _, sel := range op.SelectionSet {
			if field, ok := sel.(*ast.Field); ok && field.Name == "tokenCreate" {
				return CategoryAuth, operation
			}
		}
		return CategoryMutation, operation
	case ast.Query:
		return CategoryQuery, operation
	}
	return CategoryOther, operation
}

// getCallerInfo returns the caller information (file:line:function)
func getCallerInfo() string {
	// Look for the first frame outside of the HTTP and GraphQL plumbing
	for i := 2; i < 25; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		funcName := fn.Name()

		if strings.Contains(funcName, "net/http") ||
			strings.Contains(funcName, "internal/logging") ||
			strings.Contains(funcName, "internal/saleor") ||
			strings.Contains(funcName, "heimdall") ||
			strings.Contains(funcName, "genqlient") ||
			strings.Contains(file, "net/http") {
			continue
		}

		if idx := strings.LastIndex(file, "/"); idx >= 0 {
			file = file[idx+1:]
		}

		if idx := strings.LastIndex(funcName, "/"); idx >= 0 {
			funcName = funcName[idx+1:]
		}
		if idx := strings.LastIndex(funcName, "."); idx >= 0 {
			funcName = funcName[idx+1:]
		}

		return fmt.Sprintf("%s:%d:%s", file, line, funcName)
	}

	return "unknown"
}
