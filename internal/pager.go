package internal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is how many pages we fetch at once. The upstream is rate
// sensitive so this should stay small.
const DefaultConcurrency = 10

// Page is one page of a paginated upstream response.
type Page[T any] struct {
	Items      []T
	PageSize   int
	TotalCount int
}

// PageFunc fetches a single page by its zero-based index.
type PageFunc[T any] func(ctx context.Context, pageIndex int) (Page[T], error)

// pageWindow is read from the first page and treated as constant for the rest
// of the fetch.
type pageWindow struct {
	pageSize   int
	totalCount int
}

func (w pageWindow) pageCount() int {
	return (w.totalCount + w.pageSize - 1) / w.pageSize
}

// FetchAll loads every page of a paginated resource. The first page is
// fetched on its own to learn the page size and total count; the rest are
// fetched with at most concurrency requests in flight.
//
// Results are concatenated in page order regardless of which pages finish
// first. Any failed page fails the whole fetch.
//
// If the upstream's count changes while we're fetching, the result reflects
// whatever the individual pages returned and may not match a fresh fetch.
func FetchAll[T any](ctx context.Context, fetch PageFunc[T], concurrency int) ([]T, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	start := time.Now()

	first, err := fetch(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching first page: %w", err)
	}

	window := pageWindow{pageSize: first.PageSize, totalCount: first.TotalCount}
	if window.totalCount <= 0 {
		return []T{}, nil
	}
	if window.pageSize <= 0 {
		return nil, errors.Join(
			fmt.Errorf("upstream reported page size %d for %d items", window.pageSize, window.totalCount),
			ErrUpstream,
		)
	}

	pageCount := window.pageCount()
	if pageCount <= 1 {
		return first.Items, nil
	}

	Log(ctx).Debug("fetching remaining pages", "pages", pageCount, "total", window.totalCount, "concurrency", concurrency)

	// Each page writes only to its own slot, so no locking is needed.
	pages := make([][]T, pageCount)
	pages[0] = first.Items

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for idx := 1; idx < pageCount; idx++ {
		g.Go(func() error {
			page, err := fetch(gctx, idx)
			if err != nil {
				return fmt.Errorf("fetching page %d: %w", idx, err)
			}
			pages[idx] = page.Items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		Log(ctx).Warn("problem fetching pages", "err", err, "pages", pageCount)
		return nil, err
	}

	out := slices.Concat(pages...)

	Log(ctx).Debug("fetched all pages", "pages", pageCount, "items", len(out), "duration", time.Since(start).String())

	return out, nil
}
