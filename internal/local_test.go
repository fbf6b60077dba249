package internal

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBackend(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	l, err := NewLocalBackend(filepath.Join(dir, "cache"))
	require.NoError(t, err)

	t.Run("missing", func(t *testing.T) {
		ok, err := l.Exists(ctx, "missing")
		assert.NoError(t, err)
		assert.False(t, ok)

		_, ok, err = l.LastModified(ctx, "missing")
		assert.NoError(t, err)
		assert.False(t, ok)

		_, err = l.ReadBytes(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("nested write", func(t *testing.T) {
		before := time.Now().Add(-time.Second)
		require.NoError(t, l.WriteBytes(ctx, "image-cache/ab/ab.bin", []byte{1, 2, 3}))

		ok, err := l.Exists(ctx, "image-cache/ab/ab.bin")
		assert.NoError(t, err)
		assert.True(t, ok)

		ts, ok, err := l.LastModified(ctx, "image-cache/ab/ab.bin")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, ts.After(before))

		out, err := l.ReadBytes(ctx, "image-cache/ab/ab.bin")
		assert.NoError(t, err)
		assert.Equal(t, []byte{1, 2, 3}, out)
	})

	t.Run("overwrite text", func(t *testing.T) {
		require.NoError(t, l.WriteText(ctx, "books.json", "{}"))
		require.NoError(t, l.WriteText(ctx, "books.json", `{"1":{}}`))

		out, err := l.ReadText(ctx, "books.json")
		assert.NoError(t, err)
		assert.Equal(t, `{"1":{}}`, out)

		// No temp files left behind.
		entries, err := os.ReadDir(filepath.Join(dir, "cache"))
		require.NoError(t, err)
		for _, e := range entries {
			assert.NotContains(t, e.Name(), ".tmp-")
		}
	})

	t.Run("unreadable", func(t *testing.T) {
		// A directory where a file should be is an I/O error, not a miss.
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "cache", "dir.bin"), 0o755))
		_, err := l.ReadBytes(ctx, "dir.bin")
		assert.ErrorIs(t, err, ErrIO)
		assert.NotErrorIs(t, err, ErrNotFound)
	})
}
