package internal

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("test-%d:", time.Now().UnixNano())
	r, err := NewRedisBackend(ctx, redis.NewClient(&redis.Options{Addr: addr}), prefix)
	require.NoError(t, err)

	t.Cleanup(func() {
		keys, _ := r.client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			_ = r.client.Del(ctx, keys...).Err()
		}
		_ = r.Close()
	})

	_, err = r.ReadBytes(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := r.Exists(ctx, "missing")
	assert.NoError(t, err)
	assert.False(t, ok)

	before := time.Now().Add(-time.Second)
	require.NoError(t, r.WriteBytes(ctx, "image-cache/ab/ab.bin", []byte{1, 2}))

	out, err := r.ReadBytes(ctx, "image-cache/ab/ab.bin")
	assert.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, out)

	ts, ok, err := r.LastModified(ctx, "image-cache/ab/ab.bin")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, ts.After(before))

	n, err := r.client.Exists(ctx, prefix+"image-cache/ab/ab.bin").Result()
	assert.NoError(t, err)
	assert.Equal(t, int64(1), n, "keys are prefixed")
}

func TestRedisRequiresClient(t *testing.T) {
	t.Parallel()

	_, err := NewRedisBackend(context.Background(), nil, "")
	assert.Error(t, err)
}
