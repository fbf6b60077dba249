package internal

import (
	"fmt"
	"path"
	"regexp"

	"github.com/cespare/xxhash/v2"
)

// SnapshotPath is where the book-list table is persisted.
const SnapshotPath = "books.json"

// _maxKeyLength bounds escaped keys. Anything longer is truncated and the
// remainder replaced with its hash.
const _maxKeyLength = 150

var _unsafe = regexp.MustCompile(`[^A-Za-z0-9_]`)

// EscapeKey turns an arbitrary string (usually a URL) into a filesystem- and
// object-store-safe name of at most 150+1+16 characters.
func EscapeKey(key string) string {
	escaped := _unsafe.ReplaceAllString(key, "_")
	if len(escaped) <= _maxKeyLength {
		return escaped
	}
	return fmt.Sprintf("%s#%016x", escaped[:_maxKeyLength], xxhash.Sum64String(escaped[_maxKeyLength:]))
}

// BinaryPath returns the storage path for a binary blob. The first two
// characters of the escaped key shard the directory.
func BinaryPath(key string) string {
	escaped := EscapeKey(key)
	shard := escaped
	if len(shard) > 2 {
		shard = shard[:2]
	}
	return path.Join("image-cache", shard, escaped+".bin")
}
