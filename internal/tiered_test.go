package internal

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenBackend fails every operation.
type brokenBackend struct{}

var _errBroken = errors.Join(errors.New("broken"), ErrIO)

func (brokenBackend) Exists(context.Context, string) (bool, error) { return false, _errBroken }
func (brokenBackend) LastModified(context.Context, string) (time.Time, bool, error) {
	return time.Time{}, false, _errBroken
}
func (brokenBackend) WriteText(context.Context, string, string) error { return _errBroken }
func (brokenBackend) WriteBytes(context.Context, string, []byte) error { return _errBroken }
func (brokenBackend) ReadText(context.Context, string) (string, error) { return "", _errBroken }
func (brokenBackend) ReadBytes(context.Context, string) ([]byte, error) { return nil, _errBroken }

func newTestLocal(t *testing.T) *LocalBackend {
	t.Helper()
	l, err := NewLocalBackend(t.TempDir())
	require.NoError(t, err)
	return l
}

func TestTieredBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := newTestLocal(t)
	remote := newTestLocal(t)
	tb := NewTieredBackend(local, remote, nil)

	t.Run("miss", func(t *testing.T) {
		_, err := tb.ReadBytes(ctx, "miss")
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err := tb.Exists(ctx, "miss")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("percolation", func(t *testing.T) {
		path := "image-cache/pe/percolation.bin"
		val := []byte("percolation")

		// Only remote starts with the object.
		require.NoError(t, remote.WriteBytes(ctx, path, val))

		ok, err := tb.Exists(ctx, path)
		assert.NoError(t, err)
		assert.True(t, ok)

		out, err := tb.ReadBytes(ctx, path)
		assert.NoError(t, err)
		assert.Equal(t, val, out)

		// Local now has it.
		out, err = local.ReadBytes(ctx, path)
		assert.NoError(t, err)
		assert.Equal(t, val, out)
		assert.Equal(t, float64(1), testutil.ToFloat64(tb.metrics.promotions))
	})

	t.Run("write-read", func(t *testing.T) {
		path := "books.json"
		val := `{"1":{}}`

		require.NoError(t, tb.WriteText(ctx, path, val))

		out, err := local.ReadText(ctx, path)
		assert.NoError(t, err)
		assert.Equal(t, val, out)

		out, err = remote.ReadText(ctx, path)
		assert.NoError(t, err)
		assert.Equal(t, val, out)

		out, err = tb.ReadText(ctx, path)
		assert.NoError(t, err)
		assert.Equal(t, val, out)

		_, ok, err := tb.LastModified(ctx, path)
		assert.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestTieredBackendLocalFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	local, err := NewLocalBackend(dir)
	require.NoError(t, err)
	remote := newTestLocal(t)
	tb := NewTieredBackend(local, remote, nil)

	path := "broken.bin"
	require.NoError(t, remote.WriteBytes(ctx, path, []byte{1}))

	// Make the local copy unreadable. Promotion will fail too.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, path), 0o755))

	out, err := tb.ReadBytes(ctx, path)
	assert.NoError(t, err)
	assert.Equal(t, []byte{1}, out)
	assert.Equal(t, float64(1), testutil.ToFloat64(tb.metrics.promotionFailures))
}

func TestTieredBackendWriteFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	local := newTestLocal(t)
	tb := NewTieredBackend(local, brokenBackend{}, nil)

	err := tb.WriteBytes(ctx, "x.bin", []byte{1})
	assert.ErrorIs(t, err, ErrIO)

	// Local isn't rolled back.
	out, err := local.ReadBytes(ctx, "x.bin")
	assert.NoError(t, err)
	assert.Equal(t, []byte{1}, out)

	// Reads still work from local.
	out, err = tb.ReadBytes(ctx, "x.bin")
	assert.NoError(t, err)
	assert.Equal(t, []byte{1}, out)

	// A remote failure surfaces when local misses.
	_, err = tb.ReadBytes(ctx, "missing.bin")
	assert.ErrorIs(t, err, ErrIO)
}

func TestTieredBackendLocalOnly(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tb := NewTieredBackend(newTestLocal(t), nil, nil)

	require.NoError(t, tb.WriteText(ctx, "a", "b"))
	out, err := tb.ReadText(ctx, "a")
	assert.NoError(t, err)
	assert.Equal(t, "b", out)

	_, err = tb.ReadText(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, float64(0), testutil.ToFloat64(tb.metrics.remoteReads))
}
