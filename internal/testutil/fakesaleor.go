// Package testutil provides an in-process Saleor API for tests
package testutil

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/graphql-go/graphql"
)

// Fake credentials accepted by FakeSaleor.
const (
	FakeEmail    = "admin@example.com"
	FakePassword = "s3cret"
	FakeToken    = "fake-access-token"
	FakeRefresh  = "fake-refresh-token"

	authHeader = "Authorization-Bearer"
)

// RecordedRequest is one GraphQL request seen by the fake.
type RecordedRequest struct {
	OperationName string
	Variables     map[string]any
	Header        http.Header
}

type contextKey int

const (
	tokenKey contextKey = iota
	operationKey
)

// FakeSaleor serves tokenCreate, products and productBulkDelete over HTTP.
// Products are kept in insertion order and paged with cursors "c<offset>".
type FakeSaleor struct {
	URL string

	mu        sync.Mutex
	products  []string
	requests  []RecordedRequest
	failures  map[string]int
	malformed map[string]bool
	rejected  map[string]string
	schema    graphql.Schema
	server    *httptest.Server
}

// NewFakeSaleor starts a fake API seeded with products. The server is
// closed when the test finishes.
func NewFakeSaleor(t testing.TB, products ...string) *FakeSaleor {
	t.Helper()

	f := &FakeSaleor{
		products:  append([]string(nil), products...),
		failures:  make(map[string]int),
		malformed: make(map[string]bool),
		rejected:  make(map[string]string),
	}

	schema, err := f.buildSchema()
	if err != nil {
		t.Fatalf("failed to build fake schema: %v", err)
	}
	f.schema = schema

	f.server = httptest.NewServer(f)
	f.URL = f.server.URL + "/graphql/"
	t.Cleanup(f.server.Close)

	return f
}

// ProductIDs returns n Saleor style product ids.
func ProductIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("Product:%d", i+1)))
	}
	return ids
}

// Products returns the ids still present.
func (f *FakeSaleor) Products() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.products...)
}

// Requests returns every request seen so far.
func (f *FakeSaleor) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest(nil), f.requests...)
}

// RequestsFor returns the requests for one operation name.
func (f *FakeSaleor) RequestsFor(operation string) []RecordedRequest {
	var out []RecordedRequest
	for _, r := range f.Requests() {
		if r.OperationName == operation {
			out = append(out, r)
		}
	}
	return out
}

// FailOperation makes every request for operation answer with status.
func (f *FakeSaleor) FailOperation(operation string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[operation] = status
}

// MalformProducts makes the products field resolve to null for operation.
func (f *FakeSaleor) MalformProducts(operation string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.malformed[operation] = true
}

// RejectDelete makes productBulkDelete keep id and report message for it.
func (f *FakeSaleor) RejectDelete(id, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected[id] = message
}

// ServeHTTP implements http.Handler
func (f *FakeSaleor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Query         string         `json:"query"`
		Variables     map[string]any `json:"variables"`
		OperationName string         `json:"operationName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, RecordedRequest{
		OperationName: body.OperationName,
		Variables:     body.Variables,
		Header:        r.Header.Clone(),
	})
	status := f.failures[body.OperationName]
	f.mu.Unlock()

	if status != 0 {
		http.Error(w, http.StatusText(status), status)
		return
	}

	ctx := context.WithValue(r.Context(), tokenKey, r.Header.Get(authHeader))
	ctx = context.WithValue(ctx, operationKey, body.OperationName)

	result := graphql.Do(graphql.Params{
		Schema:         f.schema,
		RequestString:  body.Query,
		VariableValues: body.Variables,
		OperationName:  body.OperationName,
		Context:        ctx,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (f *FakeSaleor) buildSchema() (graphql.Schema, error) {
	fieldErrorFields := graphql.Fields{
		"field":   &graphql.Field{Type: graphql.String},
		"message": &graphql.Field{Type: graphql.String},
	}
	accountError := graphql.NewObject(graphql.ObjectConfig{Name: "AccountError", Fields: fieldErrorFields})
	productError := graphql.NewObject(graphql.ObjectConfig{Name: "ProductError", Fields: fieldErrorFields})

	createToken := graphql.NewObject(graphql.ObjectConfig{
		Name: "CreateToken",
		Fields: graphql.Fields{
			"token":        &graphql.Field{Type: graphql.String},
			"refreshToken": &graphql.Field{Type: graphql.String},
			"errors":       &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(accountError)))},
		},
	})

	product := graphql.NewObject(graphql.ObjectConfig{
		Name: "Product",
		Fields: graphql.Fields{
			"id": &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		},
	})
	edge := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductCountableEdge",
		Fields: graphql.Fields{
			"node":   &graphql.Field{Type: graphql.NewNonNull(product)},
			"cursor": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		},
	})
	pageInfo := graphql.NewObject(graphql.ObjectConfig{
		Name: "PageInfo",
		Fields: graphql.Fields{
			"hasNextPage":     &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"hasPreviousPage": &graphql.Field{Type: graphql.NewNonNull(graphql.Boolean)},
			"startCursor":     &graphql.Field{Type: graphql.String},
			"endCursor":       &graphql.Field{Type: graphql.String},
		},
	})
	connection := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductCountableConnection",
		Fields: graphql.Fields{
			"pageInfo":   &graphql.Field{Type: graphql.NewNonNull(pageInfo)},
			"edges":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(edge)))},
			"totalCount": &graphql.Field{Type: graphql.Int},
		},
	})
	bulkDelete := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProductBulkDelete",
		Fields: graphql.Fields{
			"count":  &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
			"errors": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(productError)))},
		},
	})

	query := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"products": &graphql.Field{
				Type: connection,
				Args: graphql.FieldConfigArgument{
					"first":   &graphql.ArgumentConfig{Type: graphql.Int},
					"after":   &graphql.ArgumentConfig{Type: graphql.String},
					"channel": &graphql.ArgumentConfig{Type: graphql.String},
				},
				Resolve: f.resolveProducts,
			},
		},
	})

	mutation := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"tokenCreate": &graphql.Field{
				Type: graphql.NewNonNull(createToken),
				Args: graphql.FieldConfigArgument{
					"email":    &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"password": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: f.resolveTokenCreate,
			},
			"productBulkDelete": &graphql.Field{
				Type: bulkDelete,
				Args: graphql.FieldConfigArgument{
					"ids": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.ID)))},
				},
				Resolve: f.resolveBulkDelete,
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{Query: query, Mutation: mutation})
}

var errPermission = errors.New("You need one of the following permissions: MANAGE_PRODUCTS")

func authorized(p graphql.ResolveParams) bool {
	token, _ := p.Context.Value(tokenKey).(string)
	return token == FakeToken
}

func (f *FakeSaleor) resolveTokenCreate(p graphql.ResolveParams) (interface{}, error) {
	email, _ := p.Args["email"].(string)
	password, _ := p.Args["password"].(string)

	if email != FakeEmail || password != FakePassword {
		return map[string]interface{}{
			"token":        nil,
			"refreshToken": nil,
			"errors": []interface{}{
				map[string]interface{}{"field": "email", "message": "Please, enter valid credentials"},
			},
		}, nil
	}

	return map[string]interface{}{
		"token":        FakeToken,
		"refreshToken": FakeRefresh,
		"errors":       []interface{}{},
	}, nil
}

func (f *FakeSaleor) resolveProducts(p graphql.ResolveParams) (interface{}, error) {
	if !authorized(p) {
		return nil, errPermission
	}

	operation, _ := p.Context.Value(operationKey).(string)

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.malformed[operation] {
		return nil, nil
	}

	first, ok := p.Args["first"].(int)
	if !ok || first <= 0 {
		first = 100
	}

	start := 0
	if after, ok := p.Args["after"].(string); ok && after != "" {
		offset, err := strconv.Atoi(strings.TrimPrefix(after, "c"))
		if err != nil || !strings.HasPrefix(after, "c") || offset < 0 || offset > len(f.products) {
			return nil, fmt.Errorf("invalid cursor %q", after)
		}
		start = offset
	}

	end := start + first
	if end > len(f.products) {
		end = len(f.products)
	}

	edges := make([]interface{}, 0, end-start)
	for i := start; i < end; i++ {
		edges = append(edges, map[string]interface{}{
			"cursor": fmt.Sprintf("c%d", i+1),
			"node":   map[string]interface{}{"id": f.products[i]},
		})
	}

	var endCursor interface{}
	if end > start {
		endCursor = fmt.Sprintf("c%d", end)
	}

	return map[string]interface{}{
		"pageInfo": map[string]interface{}{
			"hasNextPage":     end < len(f.products),
			"hasPreviousPage": start > 0,
			"startCursor":     nil,
			"endCursor":       endCursor,
		},
		"edges":      edges,
		"totalCount": len(f.products),
	}, nil
}

func (f *FakeSaleor) resolveBulkDelete(p graphql.ResolveParams) (interface{}, error) {
	if !authorized(p) {
		return nil, errPermission
	}

	rawIDs, _ := p.Args["ids"].([]interface{})

	f.mu.Lock()
	defer f.mu.Unlock()

	remove := make(map[string]bool, len(rawIDs))
	fieldErrors := []interface{}{}
	for _, raw := range rawIDs {
		id := fmt.Sprint(raw)
		if message, ok := f.rejected[id]; ok {
			fieldErrors = append(fieldErrors, map[string]interface{}{"field": "ids", "message": message})
			continue
		}
		remove[id] = true
	}

	kept := make([]string, 0, len(f.products))
	count := 0
	for _, id := range f.products {
		if remove[id] {
			count++
			continue
		}
		kept = append(kept, id)
	}
	f.products = kept

	return map[string]interface{}{
		"count":  count,
		"errors": fieldErrors,
	}, nil
}
