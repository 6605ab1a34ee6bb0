package reconcile

import (
	"net/url"

	"github.com/andresuchdata/imagesync/internal/storage"
)

// KeyVariants returns the encoding variants of a key to probe, in order:
// the key as given, its percent-decoded form, and its percent-encoded
// form (slashes preserved). Duplicates are removed keeping the first
// occurrence, so the original key is always first. Catalogs and the
// store frequently disagree on the encoding of spaces and non-ASCII
// characters; probing all three reconciles the common mismatches without
// a bucket listing.
func KeyVariants(key string) []string {
	candidates := []string{key}

	if decoded, err := url.PathUnescape(key); err == nil {
		candidates = append(candidates, decoded)
	}
	candidates = append(candidates, storage.EncodePath(key))

	seen := make(map[string]struct{}, len(candidates))
	variants := make([]string, 0, len(candidates))
	for _, v := range candidates {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		variants = append(variants, v)
	}
	return variants
}
