package internal

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocalBackend stores objects as files under a root directory.
type LocalBackend struct {
	textAdapter
	root string
}

var _ Backend = (*LocalBackend)(nil)

// NewLocalBackend creates a filesystem backend rooted at dir. The directory is
// created if it doesn't exist yet.
func NewLocalBackend(dir string) (*LocalBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, ioErr("creating", dir, err)
	}
	l := &LocalBackend{root: dir}
	l.textAdapter = textAdapter{b: localfs{l}}
	return l, nil
}

// localfs holds the unexported bytesBackend methods so they don't leak onto
// LocalBackend's exported surface.
type localfs struct {
	*LocalBackend
}

func (l localfs) filename(p string) string {
	return filepath.Join(l.root, filepath.FromSlash(strings.TrimPrefix(p, "/")))
}

func (l localfs) exists(_ context.Context, p string) (bool, error) {
	_, err := os.Stat(l.filename(p))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, ioErr("stat", p, err)
	}
	return true, nil
}

func (l localfs) lastModified(_ context.Context, p string) (time.Time, bool, error) {
	info, err := os.Stat(l.filename(p))
	if errors.Is(err, fs.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, ioErr("stat", p, err)
	}
	return info.ModTime(), true, nil
}

// write stages content in a temp file next to the target and renames it into
// place, so readers never observe a partial object.
func (l localfs) write(_ context.Context, p string, content []byte) error {
	name := l.filename(p)
	dir := filepath.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioErr("creating", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return ioErr("writing", p, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	_, err = tmp.Write(content)
	err = errors.Join(err, tmp.Close())
	if err != nil {
		return ioErr("writing", p, err)
	}

	if err := os.Rename(tmp.Name(), name); err != nil {
		return ioErr("writing", p, err)
	}
	return nil
}

func (l localfs) read(_ context.Context, p string) ([]byte, error) {
	out, err := os.ReadFile(l.filename(p))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(p)
	}
	if err != nil {
		return nil, ioErr("reading", p, err)
	}
	return out, nil
}
