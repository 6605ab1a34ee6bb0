package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/andresuchdata/imagesync/internal/storage"
	"github.com/andresuchdata/imagesync/pkg/logger"
)

// Classification describes the outcome of an existence probe.
type Classification int

const (
	// ClassAccessible: the object exists and its public URL serves 200.
	ClassAccessible Classification = iota
	// ClassExistsInaccessible: metadata confirms the object but the
	// public URL does not serve it (403 or other non-200).
	ClassExistsInaccessible
	// ClassNotFound: no encoding variant of the key exists.
	ClassNotFound
	// ClassProbeError: the store or the reachability check failed in a
	// way that is neither found nor not-found.
	ClassProbeError
)

// ProbeResult is produced fresh on every probe; results are never cached
// across items because the store may change mid-run.
type ProbeResult struct {
	Found      bool
	HTTPStatus int
	Class      Classification
	// MatchedKey is the variant the result applies to. It is
	// authoritative for every subsequent operation on the item, even
	// when it differs from the derived key.
	MatchedKey string
	// Detail is the status fragment persisted into row labels, e.g.
	// "EXISTS_403" or "NOT_FOUND".
	Detail string
}

// HeadFunc performs an HTTP HEAD and returns the status code.
type HeadFunc func(ctx context.Context, url string) (int, error)

// HTTPHead adapts an http.Client into a HeadFunc.
func HTTPHead(client *http.Client) HeadFunc {
	return func(ctx context.Context, url string) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
		if err != nil {
			return 0, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return 0, err
		}
		resp.Body.Close()
		return resp.StatusCode, nil
	}
}

// Prober decides whether a usable object already exists for a key.
// Metadata existence and public reachability are checked separately: an
// object can be visible to the store yet blocked on the public endpoint,
// and that case must trigger a re-upload rather than a skip.
type Prober struct {
	store storage.ObjectStore
	head  HeadFunc
}

func NewProber(store storage.ObjectStore, head HeadFunc) *Prober {
	return &Prober{store: store, head: head}
}

// Probe tries each encoding variant of key in order. A variant that does
// not exist falls through to the next; any conclusive result (accessible,
// exists-but-blocked, or an error) stops the loop. The first variant
// whose metadata exists is authoritative even when it is not publicly
// reachable; remaining variants are deliberately not probed.
func (p *Prober) Probe(ctx context.Context, key string) ProbeResult {
	for _, variant := range KeyVariants(key) {
		err := p.store.Stat(ctx, variant)
		if errors.Is(err, storage.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			var statErr *storage.StatError
			if errors.As(err, &statErr) {
				logger.Log.Error().Err(err).Str("key", variant).Int("status", statErr.Status).Msg("unexpected store error during probe")
				return ProbeResult{
					HTTPStatus: statErr.Status,
					Class:      ClassProbeError,
					MatchedKey: variant,
					Detail:     fmt.Sprintf("STORE_ERROR_%d", statErr.Status),
				}
			}
			logger.Log.Error().Err(err).Str("key", variant).Msg("probe failed")
			return ProbeResult{Class: ClassProbeError, MatchedKey: variant, Detail: "STORE_ERROR"}
		}

		// Metadata confirms existence; now test public reachability.
		status, err := p.head(ctx, p.store.PublicURL(variant))
		if err != nil {
			logger.Log.Error().Err(err).Str("key", variant).Msg("accessibility check failed")
			return ProbeResult{Found: true, Class: ClassProbeError, MatchedKey: variant, Detail: "ACCESS_TEST_ERROR"}
		}
		if status == http.StatusOK {
			if variant != key {
				logger.Log.Info().Str("key", key).Str("matched", variant).Msg("object found under different encoding")
			}
			return ProbeResult{Found: true, HTTPStatus: status, Class: ClassAccessible, MatchedKey: variant, Detail: "EXISTS_ACCESSIBLE"}
		}

		// Existence is confirmed but the object is not servable; this is
		// conclusive for the item, no further variants are tried.
		logger.Log.Warn().Str("key", variant).Int("status", status).Msg("object exists but is not publicly accessible")
		return ProbeResult{
			Found:      true,
			HTTPStatus: status,
			Class:      ClassExistsInaccessible,
			MatchedKey: variant,
			Detail:     fmt.Sprintf("EXISTS_%d", status),
		}
	}

	return ProbeResult{HTTPStatus: http.StatusNotFound, Class: ClassNotFound, MatchedKey: key, Detail: "NOT_FOUND"}
}
