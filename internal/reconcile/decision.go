package reconcile

import (
	"context"
	"fmt"
	"net/http"
	"path"

	"github.com/andresuchdata/imagesync/internal/storage"
	"github.com/andresuchdata/imagesync/pkg/logger"
)

// Item is one catalog entry: the row it came from and its raw URL value.
type Item struct {
	Row    int
	RawURL string
}

// Outcome is the persisted result of reconciling one item. Every item
// yields exactly one outcome, including failures.
type Outcome struct {
	Key        string
	Status     string
	PublicURL  string
	HTTPStatus int
	// ProbeDetail carries the pre-upload probe classification for
	// summary counting; it is not written back to the catalog.
	ProbeDetail string
}

// Status labels for terminal states.
const (
	StatusSkipped = "SKIPPED_INVALID_URL"
	StatusExists  = "EXISTS_OK"
)

// ImageProcessor fetches a source image and normalizes it to the target
// canvas as a JPEG.
type ImageProcessor interface {
	Process(ctx context.Context, url, debugName string) ([]byte, error)
}

// Decision runs the per-item state machine: skip placeholders, derive the
// key, probe for an existing accessible object, and upload plus re-verify
// when none is found. Re-running it for the same item is always safe; the
// store is the only source of truth consulted.
type Decision struct {
	store  storage.ObjectStore
	prober *Prober
	images ImageProcessor
	dryRun bool
}

func NewDecision(store storage.ObjectStore, prober *Prober, images ImageProcessor, dryRun bool) *Decision {
	return &Decision{store: store, prober: prober, images: images, dryRun: dryRun}
}

// Reconcile classifies one item and performs the decided action.
func (d *Decision) Reconcile(ctx context.Context, item Item) Outcome {
	if IsPlaceholder(item.RawURL) {
		logger.Log.Info().Int("row", item.Row).Str("url", item.RawURL).Msg("skipping placeholder URL")
		return Outcome{Status: StatusSkipped}
	}

	key, err := DeriveKey(item.RawURL)
	if err != nil {
		logger.Log.Error().Err(err).Int("row", item.Row).Str("url", item.RawURL).Msg("failed to derive storage key")
		return Outcome{Status: fmt.Sprintf("ERROR: %v", err)}
	}

	probe := d.prober.Probe(ctx, key)
	if probe.Class == ClassAccessible {
		logger.Log.Info().Int("row", item.Row).Str("key", probe.MatchedKey).Int("status", probe.HTTPStatus).Msg("image exists and is accessible")
		return Outcome{
			Key:         probe.MatchedKey,
			Status:      StatusExists,
			PublicURL:   d.store.PublicURL(probe.MatchedKey),
			HTTPStatus:  probe.HTTPStatus,
			ProbeDetail: probe.Detail,
		}
	}

	// The matched key (the derived key when nothing was found) is the
	// upload target and the URL the row will carry.
	uploadKey := probe.MatchedKey
	publicURL := d.store.PublicURL(uploadKey)
	logger.Log.Info().Int("row", item.Row).Str("key", uploadKey).Str("reason", probe.Detail).Int("status", probe.HTTPStatus).Msg("upload needed")

	if d.dryRun {
		return Outcome{
			Key:         uploadKey,
			Status:      "WOULD_UPLOAD_" + probe.Detail,
			PublicURL:   publicURL,
			HTTPStatus:  probe.HTTPStatus,
			ProbeDetail: probe.Detail,
		}
	}

	data, err := d.images.Process(ctx, item.RawURL, path.Base(uploadKey))
	if err != nil {
		logger.Log.Error().Err(err).Int("row", item.Row).Str("url", item.RawURL).Msg("failed to fetch and normalize image")
		return Outcome{Key: uploadKey, Status: fmt.Sprintf("ERROR: %v", err), PublicURL: publicURL, ProbeDetail: probe.Detail}
	}

	if err := d.store.Put(ctx, uploadKey, data, "image/jpeg"); err != nil {
		logger.Log.Error().Err(err).Int("row", item.Row).Str("key", uploadKey).Msg("upload failed")
		return Outcome{Key: uploadKey, Status: fmt.Sprintf("ERROR: %v", err), PublicURL: publicURL, ProbeDetail: probe.Detail}
	}

	// Single re-check, no retry loop.
	verify := d.prober.Probe(ctx, uploadKey)
	if verify.Class == ClassAccessible && verify.HTTPStatus == http.StatusOK {
		logger.Log.Info().Int("row", item.Row).Str("key", uploadKey).Msg("uploaded and verified")
		return Outcome{
			Key:         uploadKey,
			Status:      "UPLOADED_OK",
			PublicURL:   publicURL,
			HTTPStatus:  verify.HTTPStatus,
			ProbeDetail: probe.Detail,
		}
	}

	logger.Log.Warn().Int("row", item.Row).Str("key", uploadKey).Int("status", verify.HTTPStatus).Msg("upload completed but verification failed")
	return Outcome{
		Key:         uploadKey,
		Status:      fmt.Sprintf("UPLOADED_VERIFY_FAIL_%d", verify.HTTPStatus),
		PublicURL:   publicURL,
		HTTPStatus:  verify.HTTPStatus,
		ProbeDetail: probe.Detail,
	}
}
