// Package wipe collects every product of a channel and deletes them in one
// bulk mutation.
package wipe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wipeworks/saleorwipe/internal/saleor"
)

const (
	// DefaultPageSize is the largest page Saleor hands out.
	DefaultPageSize = 100
	// DefaultChannel is the sales channel wiped when none is configured.
	DefaultChannel = "zakladny"
)

var (
	// ErrMalformedResponse means a page did not have the expected shape.
	// It is never treated as the end of pagination.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrCursorLoop means the server handed out a cursor it already gave.
	ErrCursorLoop = errors.New("pagination cursor repeated")
	// ErrPageLimit means MaxPages was reached while more pages remained.
	ErrPageLimit = errors.New("page limit reached")
)

// Querier runs GraphQL queries.
type Querier interface {
	Query(ctx context.Context, op saleor.Operation, variables map[string]any, data any) error
}

// PageOptions controls how products are listed.
type PageOptions struct {
	PageSize int
	Channel  string
	// MaxPages aborts with ErrPageLimit once exceeded. 0 means no limit.
	MaxPages int
}

func (o PageOptions) withDefaults() PageOptions {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if strings.TrimSpace(o.Channel) == "" {
		o.Channel = DefaultChannel
	}
	return o
}

// Page describes one fetched page, passed to the progress callback.
type Page struct {
	Number      int
	Size        int
	Total       int
	HasNextPage bool
	EndCursor   string
}

// Collection is the result of listing every product.
type Collection struct {
	IDs        []string
	Pages      int
	Duplicates int
}

type productsData struct {
	Products *struct {
		PageInfo *struct {
			HasNextPage *bool   `json:"hasNextPage"`
			EndCursor   *string `json:"endCursor"`
		} `json:"pageInfo"`
		Edges []struct {
			Node *struct {
				ID string `json:"id"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

// page validates the payload and returns its ids and the next cursor. An
// empty cursor means this was the last page.
func (d productsData) page() ([]string, string, error) {
	if d.Products == nil {
		return nil, "", fmt.Errorf("%w: products field missing", ErrMalformedResponse)
	}
	info := d.Products.PageInfo
	if info == nil || info.HasNextPage == nil {
		return nil, "", fmt.Errorf("%w: pageInfo missing", ErrMalformedResponse)
	}
	if d.Products.Edges == nil {
		return nil, "", fmt.Errorf("%w: edges missing", ErrMalformedResponse)
	}

	ids := make([]string, 0, len(d.Products.Edges))
	for i, edge := range d.Products.Edges {
		if edge.Node == nil || strings.TrimSpace(edge.Node.ID) == "" {
			return nil, "", fmt.Errorf("%w: edge %d has no node id", ErrMalformedResponse, i)
		}
		ids = append(ids, edge.Node.ID)
	}

	if !*info.HasNextPage {
		return ids, "", nil
	}
	if info.EndCursor == nil || *info.EndCursor == "" {
		return nil, "", fmt.Errorf("%w: hasNextPage is true but endCursor is empty", ErrMalformedResponse)
	}
	return ids, *info.EndCursor, nil
}

// CollectProductIDs walks every page of products in the channel and returns
// their ids in server order. progress, if set, is called after each page.
func CollectProductIDs(ctx context.Context, q Querier, opts PageOptions, progress func(Page)) (*Collection, error) {
	opts = opts.withDefaults()

	var (
		ids     []string
		seen    = make(map[string]struct{})
		cursors = make(map[string]struct{})
		dups    int
	)

	// first and channel go out as variables on every page instead of being
	// inlined in the documents; otherwise the requests are unchanged.
	op := saleor.ProductsInitial
	variables := map[string]any{
		"first":   opts.PageSize,
		"channel": opts.Channel,
	}

	for number := 1; ; number++ {
		if opts.MaxPages > 0 && number > opts.MaxPages {
			return nil, fmt.Errorf("%w: more than %d pages", ErrPageLimit, opts.MaxPages)
		}

		var data productsData
		if err := q.Query(ctx, op, variables, &data); err != nil {
			return nil, fmt.Errorf("failed to fetch page %d: %w", number, err)
		}

		pageIDs, next, err := data.page()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", number, err)
		}

		for _, id := range pageIDs {
			if _, ok := seen[id]; ok {
				dups++
			}
			seen[id] = struct{}{}
		}
		ids = append(ids, pageIDs...)

		if progress != nil {
			progress(Page{
				Number:      number,
				Size:        len(pageIDs),
				Total:       len(ids),
				HasNextPage: next != "",
				EndCursor:   next,
			})
		}

		if next == "" {
			return &Collection{IDs: ids, Pages: number, Duplicates: dups}, nil
		}
		if _, ok := cursors[next]; ok {
			return nil, fmt.Errorf("%w: %q on page %d", ErrCursorLoop, next, number)
		}
		cursors[next] = struct{}{}

		op = saleor.ProductsNext
		variables = map[string]any{
			"first":   opts.PageSize,
			"channel": opts.Channel,
			"after":   next,
		}
	}
}
