package internal

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostgres(t *testing.T) *PostgresBackend {
	t.Helper()
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	pg, err := NewPostgresBackend(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Close() })
	return pg
}

func TestPostgres(t *testing.T) {
	ctx := context.Background()
	pg := newTestPostgres(t)

	prefix := fmt.Sprintf("test-%d/", time.Now().UnixNano())
	t.Cleanup(func() {
		_, _ = pg.db.ExecContext(ctx, `DELETE FROM objects WHERE path LIKE $1;`, prefix+"%")
	})

	missing, err := pg.ReadBytes(ctx, prefix+"missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Nil(t, missing)

	_, ok, err := pg.LastModified(ctx, prefix+"missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, pg.WriteBytes(ctx, prefix+"cached", []byte{2}))
	cached, err := pg.ReadBytes(ctx, prefix+"cached")
	assert.NoError(t, err)
	assert.Equal(t, []byte{2}, cached)

	first, ok, err := pg.LastModified(ctx, prefix+"cached")
	assert.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, pg.WriteText(ctx, prefix+"cached", "updated"))
	updated, err := pg.ReadText(ctx, prefix+"cached")
	assert.NoError(t, err)
	assert.Equal(t, "updated", updated)

	second, _, err := pg.LastModified(ctx, prefix+"cached")
	assert.NoError(t, err)
	assert.False(t, second.Before(first))
}

// TestPostgresConcurrency randomly writes and reads values concurrently to
// confirm things like our buffer pooling work correctly under load.
func TestPostgresConcurrency(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pg := newTestPostgres(t)
	prefix := fmt.Sprintf("load-%d/", time.Now().UnixNano())

	n := 200
	wg := sync.WaitGroup{}

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()

			s := strings.Repeat(fmt.Sprint(i), i+1)
			sleep := time.Duration(rand.Float64() / 10.0 * float64(time.Second))
			time.Sleep(sleep)
			assert.NoError(t, pg.WriteText(ctx, prefix+fmt.Sprint(i), s))
		}()
	}
	wg.Wait()

	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()

			actual, err := pg.ReadText(ctx, prefix+fmt.Sprint(i))
			assert.NoError(t, err)
			assert.Equal(t, strings.Repeat(fmt.Sprint(i), i+1), actual)
		}()
	}
	wg.Wait()

	t.Cleanup(func() {
		_, _ = pg.db.ExecContext(ctx, `DELETE FROM objects WHERE path LIKE $1;`, prefix+"%")
	})
}

func TestCompressRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	in := strings.Repeat("bookshelf ", 1000)

	compressed := _buffers.Get()
	defer compressed.Free()
	require.NoError(t, compress(strings.NewReader(in), compressed))
	assert.Less(t, compressed.Len(), len(in))

	out := _buffers.Get()
	defer out.Free()
	require.NoError(t, decompress(ctx, strings.NewReader(compressed.String()), out))
	assert.Equal(t, in, out.String())

	assert.Error(t, decompress(ctx, strings.NewReader("not gzip"), _buffers.Get()))
}
