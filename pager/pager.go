// Package pager walks offset-paged endpoints until they run dry.
package pager

import (
	"context"
	"fmt"
)

// Page is one page of results, with whether the upstream claims there is
// another one after it.
type Page[T any] struct {
	Items   []T
	HasNext bool
}

// FetchFunc fetches the given 1-based page.
type FetchFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// Walk calls fetch for pages 1, 2, ... and accumulates their items. It stops
// at the first empty page, the first page without a next page, or after
// maxPages pages, whichever comes first. Errors are returned as-is, with no
// retry.
func Walk[T any](ctx context.Context, maxPages int, fetch FetchFunc[T]) ([]T, error) {
	var all []T
	for page := 1; page <= maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("canceled: %w", err)
		}
		p, err := fetch(ctx, page)
		if err != nil {
			return nil, fmt.Errorf("error fetching page %d: %w", page, err)
		}
		if len(p.Items) == 0 {
			break
		}
		all = append(all, p.Items...)
		if !p.HasNext {
			break
		}
	}
	return all, nil
}

// Offset converts a 1-based page into an offset for a page size of limit.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
