package reconcile

import (
	"context"
	"strings"

	"github.com/andresuchdata/imagesync/pkg/logger"
)

// Summary aggregates per-run counts.
type Summary struct {
	Total      int
	Exists     int
	Uploaded   int
	Reuploaded int
	Errors     int
}

// Reconciler drives the per-item decision across a catalog, one row at a
// time. Items are independent: a failure is recorded in its outcome and
// never stops the run.
type Reconciler struct {
	decision *Decision
}

func NewReconciler(decision *Decision) *Reconciler {
	return &Reconciler{decision: decision}
}

// Run reconciles every item in order and returns one outcome per item,
// index-aligned with the input.
func (r *Reconciler) Run(ctx context.Context, items []Item) ([]Outcome, Summary) {
	outcomes := make([]Outcome, 0, len(items))
	var sum Summary

	for _, item := range items {
		outcome := r.decision.Reconcile(ctx, item)
		outcomes = append(outcomes, outcome)
		sum.count(outcome)
	}

	logger.Log.Info().
		Int("total", sum.Total).
		Int("exists", sum.Exists).
		Int("uploaded", sum.Uploaded).
		Int("reuploaded", sum.Reuploaded).
		Int("errors", sum.Errors).
		Msg("reconciliation finished")

	return outcomes, sum
}

func (s *Summary) count(o Outcome) {
	s.Total++
	switch {
	case o.Status == StatusExists:
		s.Exists++
	case strings.HasPrefix(o.Status, "UPLOADED") || strings.HasPrefix(o.Status, "WOULD_UPLOAD"):
		// An upload after the probe confirmed a blocked existing object
		// is a re-upload; everything else is a fresh upload.
		if strings.HasPrefix(o.ProbeDetail, "EXISTS_") {
			s.Reuploaded++
		} else {
			s.Uploaded++
		}
	default:
		s.Errors++
	}
}
