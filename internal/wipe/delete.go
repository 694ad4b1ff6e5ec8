package wipe

import (
	"context"
	"fmt"

	"github.com/wipeworks/saleorwipe/internal/saleor"
)

// Mutator runs GraphQL mutations.
type Mutator interface {
	Mutate(ctx context.Context, op saleor.Operation, variables map[string]any, data any) error
}

// FieldError is a per-field failure reported by productBulkDelete.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// DeleteResult is the outcome of one bulk delete.
type DeleteResult struct {
	Requested int          `json:"requested"`
	Count     int          `json:"count"`
	Errors    []FieldError `json:"errors,omitempty"`
	// Skipped is set when there was nothing to delete and no request was made.
	Skipped bool `json:"skipped,omitempty"`
}

type bulkDeleteData struct {
	ProductBulkDelete *struct {
		Count  int          `json:"count"`
		Errors []FieldError `json:"errors"`
	} `json:"productBulkDelete"`
}

// BulkDelete removes all ids with a single productBulkDelete mutation. An
// empty list is a successful no-op. Field errors are returned in the result
// and are not an error of the call.
func BulkDelete(ctx context.Context, m Mutator, ids []string) (DeleteResult, error) {
	if len(ids) == 0 {
		return DeleteResult{Skipped: true}, nil
	}

	snapshot := append([]string(nil), ids...)

	var data bulkDeleteData
	if err := m.Mutate(ctx, saleor.DeleteAllProducts, map[string]any{"ids": snapshot}, &data); err != nil {
		return DeleteResult{}, fmt.Errorf("bulk delete failed: %w", err)
	}
	if data.ProductBulkDelete == nil {
		return DeleteResult{}, fmt.Errorf("bulk delete: %w: productBulkDelete field missing", ErrMalformedResponse)
	}

	return DeleteResult{
		Requested: len(snapshot),
		Count:     data.ProductBulkDelete.Count,
		Errors:    data.ProductBulkDelete.Errors,
	}, nil
}
