package internal

import (
	"context"
	"time"
)

// Backend is a uniform view over one physical storage medium. Paths are
// logical, slash-separated keys and mean the same thing on every backend.
//
// Reads return ErrNotFound for missing objects and ErrIO for everything else.
// Writes create any intermediate containers and overwrite existing content.
type Backend interface {
	Exists(ctx context.Context, path string) (bool, error)

	// LastModified reports the backend's own timestamp for the object. The
	// boolean is false if the object doesn't exist.
	LastModified(ctx context.Context, path string) (time.Time, bool, error)

	WriteText(ctx context.Context, path string, content string) error
	WriteBytes(ctx context.Context, path string, content []byte) error

	ReadText(ctx context.Context, path string) (string, error)
	ReadBytes(ctx context.Context, path string) ([]byte, error)
}

// bytesBackend is implemented by backends which store text and bytes the same
// way. asBackend fills in the text methods.
type bytesBackend interface {
	exists(ctx context.Context, path string) (bool, error)
	lastModified(ctx context.Context, path string) (time.Time, bool, error)
	write(ctx context.Context, path string, content []byte) error
	read(ctx context.Context, path string) ([]byte, error)
}

// textAdapter implements Backend on top of a bytesBackend.
type textAdapter struct {
	b bytesBackend
}

func (t textAdapter) Exists(ctx context.Context, path string) (bool, error) {
	return t.b.exists(ctx, path)
}

func (t textAdapter) LastModified(ctx context.Context, path string) (time.Time, bool, error) {
	return t.b.lastModified(ctx, path)
}

func (t textAdapter) WriteText(ctx context.Context, path string, content string) error {
	return t.b.write(ctx, path, []byte(content))
}

func (t textAdapter) WriteBytes(ctx context.Context, path string, content []byte) error {
	return t.b.write(ctx, path, content)
}

func (t textAdapter) ReadText(ctx context.Context, path string) (string, error) {
	out, err := t.b.read(ctx, path)
	return string(out), err
}

func (t textAdapter) ReadBytes(ctx context.Context, path string) ([]byte, error) {
	return t.b.read(ctx, path)
}
