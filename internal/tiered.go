package internal

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// TieredBackend implements a simple two-layer store: a fast local tier and an
// optional durable remote tier. Writes go to both. Reads prefer local, and
// hits on the remote tier are percolated back into local.
//
// Local is authoritative. A failed dual write is reported to the caller but
// never rolled back, so the tiers can diverge until the next successful write
// of the same path.
type TieredBackend struct {
	local  Backend
	remote Backend // Optional.

	metrics *storeMetrics
}

var _ Backend = (*TieredBackend)(nil)

// NewTieredBackend composes local and remote. A nil remote degrades to a pure
// local backend.
func NewTieredBackend(local, remote Backend, reg prometheus.Registerer) *TieredBackend {
	return &TieredBackend{
		local:   local,
		remote:  remote,
		metrics: newStoreMetrics(reg),
	}
}

// Exists checks local first and then remote.
func (t *TieredBackend) Exists(ctx context.Context, path string) (bool, error) {
	ok, err := t.local.Exists(ctx, path)
	if ok || t.remote == nil {
		return ok, err
	}
	if err != nil {
		Log(ctx).Warn("problem checking local tier", "err", err, "path", path)
	}
	return t.remote.Exists(ctx, path)
}

// LastModified reports the local timestamp if present, else the remote one.
func (t *TieredBackend) LastModified(ctx context.Context, path string) (time.Time, bool, error) {
	ts, ok, err := t.local.LastModified(ctx, path)
	if ok || t.remote == nil {
		return ts, ok, err
	}
	if err != nil {
		Log(ctx).Warn("problem checking local tier", "err", err, "path", path)
	}
	return t.remote.LastModified(ctx, path)
}

// WriteText writes content to both tiers.
func (t *TieredBackend) WriteText(ctx context.Context, path string, content string) error {
	return t.write(func(b Backend) error { return b.WriteText(ctx, path, content) })
}

// WriteBytes writes content to both tiers.
func (t *TieredBackend) WriteBytes(ctx context.Context, path string, content []byte) error {
	return t.write(func(b Backend) error { return b.WriteBytes(ctx, path, content) })
}

// write issues fn against both tiers concurrently and waits for both. Unlike
// errgroup.Wait we want every failure, not just the first.
func (t *TieredBackend) write(fn func(Backend) error) error {
	if t.remote == nil {
		return fn(t.local)
	}

	var localErr, remoteErr error
	var g errgroup.Group
	g.Go(func() error {
		localErr = fn(t.local)
		return nil
	})
	g.Go(func() error {
		remoteErr = fn(t.remote)
		return nil
	})
	_ = g.Wait()

	if err := errors.Join(localErr, remoteErr); err != nil {
		return errors.Join(err, ErrIO)
	}
	return nil
}

// ReadText reads from local, falling back to (and promoting from) remote.
func (t *TieredBackend) ReadText(ctx context.Context, path string) (string, error) {
	return read(ctx, t, path, Backend.ReadText, Backend.WriteText)
}

// ReadBytes reads from local, falling back to (and promoting from) remote.
func (t *TieredBackend) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	return read(ctx, t, path, Backend.ReadBytes, Backend.WriteBytes)
}

func read[T string | []byte](
	ctx context.Context,
	t *TieredBackend,
	path string,
	get func(Backend, context.Context, string) (T, error),
	set func(Backend, context.Context, string, T) error,
) (T, error) {
	out, err := get(t.local, ctx, path)
	if err == nil || t.remote == nil {
		return out, err
	}
	if !errors.Is(err, ErrNotFound) {
		// Treat a broken local copy like a miss.
		Log(ctx).Warn("problem reading local tier", "err", err, "path", path)
	}

	t.metrics.remoteReads.Inc()
	out, err = get(t.remote, ctx, path)
	if err != nil {
		return out, err
	}

	// Percolate the value back up. This never fails the read.
	if perr := set(t.local, ctx, path, out); perr != nil {
		t.metrics.promotionFailures.Inc()
		Log(ctx).Warn("problem promoting to local tier", "err", perr, "path", path)
	} else {
		t.metrics.promotions.Inc()
		Log(ctx).Debug("promoted to local tier", "path", path, "size", len(out))
	}

	return out, nil
}
