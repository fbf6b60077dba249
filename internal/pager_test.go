package internal

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePages serves total sequential ints in pages of size.
func fakePages(total, size int) PageFunc[int] {
	return func(_ context.Context, idx int) (Page[int], error) {
		var items []int
		for i := idx * size; i < min(total, (idx+1)*size); i++ {
			items = append(items, i)
		}
		return Page[int]{Items: items, PageSize: size, TotalCount: total}, nil
	}
}

func TestFetchAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("multiple pages", func(t *testing.T) {
		t.Parallel()

		var mu sync.Mutex
		var requested []int
		pages := fakePages(25, 10)
		fetch := func(ctx context.Context, idx int) (Page[int], error) {
			mu.Lock()
			requested = append(requested, idx)
			mu.Unlock()
			return pages(ctx, idx)
		}

		out, err := FetchAll(ctx, fetch, 10)
		require.NoError(t, err)

		assert.Len(t, out, 25)
		for i, v := range out {
			assert.Equal(t, i, v)
		}
		assert.ElementsMatch(t, []int{0, 1, 2}, requested)
		assert.Equal(t, 0, requested[0], "first page is fetched first")
	})

	t.Run("order survives out of order completion", func(t *testing.T) {
		t.Parallel()

		pages := fakePages(100, 10)
		fetch := func(ctx context.Context, idx int) (Page[int], error) {
			// Earlier pages take longer.
			time.Sleep(time.Duration(10-idx) * 5 * time.Millisecond)
			return pages(ctx, idx)
		}

		out, err := FetchAll(ctx, fetch, 10)
		require.NoError(t, err)
		require.Len(t, out, 100)
		for i, v := range out {
			assert.Equal(t, i, v)
		}
	})

	t.Run("single page", func(t *testing.T) {
		t.Parallel()

		calls := 0
		pages := fakePages(7, 10)
		fetch := func(ctx context.Context, idx int) (Page[int], error) {
			calls++
			return pages(ctx, idx)
		}

		out, err := FetchAll(ctx, fetch, 10)
		require.NoError(t, err)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, out)
		assert.Equal(t, 1, calls)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, int) (Page[int], error) {
			calls++
			return Page[int]{PageSize: 10}, nil
		}

		out, err := FetchAll(ctx, fetch, 10)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
		assert.Equal(t, 1, calls)
	})

	t.Run("zero page size", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, int) (Page[int], error) {
			calls++
			return Page[int]{Items: []int{1}, TotalCount: 5}, nil
		}

		_, err := FetchAll(ctx, fetch, 10)
		assert.ErrorIs(t, err, ErrUpstream)
		assert.Equal(t, 1, calls)
	})

	t.Run("first page fails", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("boom")
		_, err := FetchAll(ctx, func(context.Context, int) (Page[int], error) {
			return Page[int]{}, boom
		}, 10)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("later page fails", func(t *testing.T) {
		t.Parallel()

		pages := fakePages(50, 10)
		fetch := func(ctx context.Context, idx int) (Page[int], error) {
			if idx == 3 {
				return Page[int]{}, errors.Join(errors.New("page 3"), ErrNotFound)
			}
			return pages(ctx, idx)
		}

		out, err := FetchAll(ctx, fetch, 10)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, out)
	})

	t.Run("concurrency is bounded", func(t *testing.T) {
		t.Parallel()

		var inflight, peak atomic.Int32
		pages := fakePages(200, 10)
		fetch := func(ctx context.Context, idx int) (Page[int], error) {
			n := inflight.Add(1)
			defer inflight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			return pages(ctx, idx)
		}

		out, err := FetchAll(ctx, fetch, 3)
		require.NoError(t, err)
		assert.Len(t, out, 200)
		assert.LessOrEqual(t, peak.Load(), int32(3))
	})
}
