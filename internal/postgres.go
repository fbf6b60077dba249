package internal

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed" // For schema.
	"errors"
	"fmt"
	"io"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap/buffer"
)

//go:embed schema.sql
var _schema string

// _buffers reduces GC.
var _buffers = buffer.NewPool()

// PostgresBackend is a durable remote tier. Objects are gzipped at rest and
// the database assigns modification times.
type PostgresBackend struct {
	textAdapter
	db *sql.DB
}

var _ Backend = (*PostgresBackend)(nil)

// NewPostgresBackend connects to the given DSN and ensures our schema.
func NewPostgresBackend(ctx context.Context, dsn string) (*PostgresBackend, error) {
	db, err := newDB(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating db: %w", err)
	}
	pg := &PostgresBackend{db: db}
	pg.textAdapter = textAdapter{b: pgstore{pg}}
	return pg, nil
}

// newDB connects to our DB and applies our schema.
func newDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("dbinit: %w", err)
	}
	err = db.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("establishing db connection: %w", err)
	}

	Log(ctx).Info("ensuring DB schema")
	_, err = db.ExecContext(ctx, _schema)
	if err != nil {
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return db, nil
}

// Close releases the connection pool.
func (pg *PostgresBackend) Close() error {
	return pg.db.Close()
}

type pgstore struct {
	*PostgresBackend
}

func (pg pgstore) exists(ctx context.Context, path string) (bool, error) {
	_, ok, err := pg.lastModified(ctx, path)
	return ok, err
}

func (pg pgstore) lastModified(ctx context.Context, path string) (time.Time, bool, error) {
	var modified time.Time
	err := pg.db.QueryRowContext(ctx, `SELECT modified FROM objects WHERE path = $1;`, path).Scan(&modified)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, ioErr("stat", path, err)
	}
	return modified, true, nil
}

func (pg pgstore) write(ctx context.Context, path string, content []byte) error {
	buf := _buffers.Get()
	defer buf.Free()

	if err := compress(bytes.NewReader(content), buf); err != nil {
		Log(ctx).Error("problem compressing value", "err", err, "path", path)
		return ioErr("compressing", path, err)
	}

	_, err := pg.db.ExecContext(ctx,
		`INSERT INTO objects (path, value, modified) VALUES ($1, $2, now()) ON CONFLICT (path) DO UPDATE SET value = $3, modified = now();`,
		path, buf.Bytes(), buf.Bytes(),
	)
	if err != nil {
		return ioErr("writing", path, err)
	}
	return nil
}

func (pg pgstore) read(ctx context.Context, path string) ([]byte, error) {
	var compressed []byte
	err := pg.db.QueryRowContext(ctx, `SELECT value FROM objects WHERE path = $1;`, path).Scan(&compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(path)
	}
	if err != nil {
		return nil, ioErr("reading", path, err)
	}

	buf := _buffers.Get()
	defer buf.Free()

	if err := decompress(ctx, bytes.NewReader(compressed), buf); err != nil {
		return nil, ioErr("decompressing", path, err)
	}

	// We can't return the buffer's underlying byte slice, so make a copy.
	return bytes.Clone(buf.Bytes()), nil
}

func compress(plaintext io.Reader, buf *buffer.Buffer) error {
	zw := gzip.NewWriter(buf)
	_, err := io.Copy(zw, plaintext)
	err = errors.Join(err, zw.Close())
	return err
}

func decompress(ctx context.Context, compressed io.Reader, buf *buffer.Buffer) error {
	zr, err := gzip.NewReader(compressed)
	if err != nil {
		Log(ctx).Warn("problem unzipping", "err", err)
		return err
	}

	_, err = io.Copy(buf, zr)
	if err != nil && !errors.Is(err, io.EOF) {
		Log(ctx).Warn("problem decompressing", "err", err)
		return err
	}
	if err := zr.Close(); err != nil {
		Log(ctx).Warn("problem closing zip reader", "err", err)
	}

	return nil
}
