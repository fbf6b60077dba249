package internal

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is a remote tier which keeps each object in a hash holding its
// payload and modification time.
type RedisBackend struct {
	textAdapter
	client *redis.Client
	prefix string
}

var _ Backend = (*RedisBackend)(nil)

// NewRedisBackend wraps an existing client. Keys are namespaced with prefix.
func NewRedisBackend(ctx context.Context, client *redis.Client, prefix string) (*RedisBackend, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, ioErr("connecting to", client.Options().Addr, err)
	}
	r := &RedisBackend{client: client, prefix: prefix}
	r.textAdapter = textAdapter{b: redisstore{r}}
	return r, nil
}

// Close releases the underlying client.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}

type redisstore struct {
	*RedisBackend
}

func (r redisstore) key(path string) string {
	return r.prefix + path
}

func (r redisstore) exists(ctx context.Context, path string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(path)).Result()
	if err != nil {
		return false, ioErr("stat", path, err)
	}
	return n > 0, nil
}

func (r redisstore) lastModified(ctx context.Context, path string) (time.Time, bool, error) {
	raw, err := r.client.HGet(ctx, r.key(path), "modified").Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, ioErr("stat", path, err)
	}
	micros, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, ioErr("parsing modified time of", path, err)
	}
	return time.UnixMicro(micros), true, nil
}

func (r redisstore) write(ctx context.Context, path string, content []byte) error {
	err := r.client.HSet(ctx, r.key(path),
		"data", content,
		"modified", time.Now().UnixMicro(),
	).Err()
	if err != nil {
		return ioErr("writing", path, err)
	}
	return nil
}

func (r redisstore) read(ctx context.Context, path string) ([]byte, error) {
	out, err := r.client.HGet(ctx, r.key(path), "data").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, notFound(path)
	}
	if err != nil {
		return nil, ioErr("reading", path, err)
	}
	return out, nil
}
