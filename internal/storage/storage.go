package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrObjectNotFound is returned by Stat when the key does not exist.
var ErrObjectNotFound = errors.New("object not found")

// StatError reports a metadata lookup that failed for a reason other
// than the object being absent.
type StatError struct {
	Key    string
	Status int
	Err    error
}

func (e *StatError) Error() string {
	return fmt.Sprintf("stat %s failed with status %d: %v", e.Key, e.Status, e.Err)
}

func (e *StatError) Unwrap() error { return e.Err }

// ObjectStore captures the minimal S3-compatible operations the pipeline needs.
type ObjectStore interface {
	// Stat checks object metadata. Returns nil when the object exists,
	// ErrObjectNotFound when it does not, and *StatError otherwise.
	Stat(ctx context.Context, key string) error
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// PublicURL builds the publicly servable URL for a key.
	PublicURL(key string) string
}

// EncodePath percent-encodes a key for use in a URL path, leaving the
// segment separators unescaped. Unreserved characters (RFC 3986) pass
// through; everything else, including already-encoded sequences, is
// escaped byte-wise.
func EncodePath(key string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		c := key[i]
		switch {
		case c == '/',
			'A' <= c && c <= 'Z',
			'a' <= c && c <= 'z',
			'0' <= c && c <= '9',
			c == '-', c == '.', c == '_', c == '~':
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xf])
		}
	}
	return b.String()
}
