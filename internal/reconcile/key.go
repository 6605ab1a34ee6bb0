package reconcile

import (
	"errors"
	"net/url"
	"path"
	"strings"
)

// ErrInvalidURL marks source values that cannot yield a storage key.
var ErrInvalidURL = errors.New("empty or invalid source URL")

// contentPathAnchor marks the well-known content path segment; when a
// source URL contains it, everything from the anchor onward is the key.
const contentPathAnchor = "/wp-content/"

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpeg": {},
	".jpg":  {},
	".gif":  {},
	".webp": {},
}

// placeholders are catalog values that mean "no URL yet".
var placeholders = map[string]struct{}{
	"":        {},
	"PENDING": {},
	"N/A":     {},
	"NA":      {},
	"NULL":    {},
}

// IsPlaceholder reports whether a raw catalog value is a missing-URL
// marker rather than a real URL.
func IsPlaceholder(raw string) bool {
	_, ok := placeholders[strings.ToUpper(strings.TrimSpace(raw))]
	return ok
}

// DeriveKey maps a source URL to its canonical storage key. Keys are
// normalized to a .jpg suffix so existence checks stay format-agnostic:
// the same origin path always resolves to the same stored object.
func DeriveKey(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", ErrInvalidURL
	}

	// Anchor match: key is the content path with any extension replaced.
	if idx := strings.Index(rawURL, contentPathAnchor); idx != -1 {
		keyPath := rawURL[idx:]
		keyPath = strings.TrimSuffix(keyPath, path.Ext(keyPath))
		return strings.TrimPrefix(keyPath, "/") + ".jpg", nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", ErrInvalidURL
	}

	keyPath := strings.TrimPrefix(parsed.Path, "/")
	ext := path.Ext(keyPath)
	if _, ok := imageExtensions[strings.ToLower(ext)]; ok {
		return strings.TrimSuffix(keyPath, ext) + ".jpg", nil
	}
	return keyPath, nil
}
