package saleor

import (
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// GraphQLError is returned when the server answers with a GraphQL error list.
type GraphQLError struct {
	Operation string
	Errors    gqlerror.List
}

func (e *GraphQLError) Error() string {
	return fmt.Sprintf("%s: graphql errors: %s", e.Operation, strings.Join(e.Messages(), "; "))
}

// Messages returns the plain messages of the error list.
func (e *GraphQLError) Messages() []string {
	messages := make([]string, 0, len(e.Errors))
	for _, err := range e.Errors {
		if err != nil {
			messages = append(messages, err.Message)
		}
	}
	return messages
}

// HTTPStatusError is returned for any non-2xx response.
type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	msg := fmt.Sprintf("unexpected HTTP status %d", e.StatusCode)
	if e.Operation != "" {
		msg = e.Operation + ": " + msg
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// AccountError is a per-field error reported by tokenCreate.
type AccountError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AuthError wraps every failure to obtain a token. Nothing destructive may
// run after it.
type AuthError struct {
	Reason        string
	AccountErrors []AccountError
	Err           error
}

func (e *AuthError) Error() string {
	msg := "authentication failed"
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if len(e.AccountErrors) > 0 {
		parts := make([]string, 0, len(e.AccountErrors))
		for _, ae := range e.AccountErrors {
			if ae.Field != "" {
				parts = append(parts, fmt.Sprintf("%s: %s", ae.Field, ae.Message))
			} else {
				parts = append(parts, ae.Message)
			}
		}
		msg += " (" + strings.Join(parts, "; ") + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}
