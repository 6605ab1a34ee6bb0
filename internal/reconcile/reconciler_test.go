package reconcile

import (
	"context"
	"testing"
)

func TestRun_SummaryCounts(t *testing.T) {
	store := &stubStore{objects: map[string]error{
		"media/ok.jpg":      nil,
		"media/blocked.jpg": nil,
	}}
	statuses := map[string]int{
		"https://bucket.example.com/media/ok.jpg":      200,
		"https://bucket.example.com/media/blocked.jpg": 403,
	}
	d := newTestDecision(store, statuses, &stubImages{}, true)
	r := NewReconciler(d)

	items := []Item{
		{Row: 1, RawURL: "https://cdn.example.com/media/ok.png"},      // accessible
		{Row: 2, RawURL: "https://cdn.example.com/media/blocked.png"}, // exists, 403
		{Row: 3, RawURL: "https://cdn.example.com/media/new.png"},     // missing
		{Row: 4, RawURL: "PENDING"},                                   // placeholder
		{Row: 5, RawURL: ":bad"},                                      // invalid
	}

	outcomes, sum := r.Run(context.Background(), items)
	if len(outcomes) != len(items) {
		t.Fatalf("Run() returned %d outcomes for %d items", len(outcomes), len(items))
	}

	if sum.Total != 5 {
		t.Fatalf("summary total = %d, want 5", sum.Total)
	}
	if sum.Exists != 1 {
		t.Fatalf("summary exists = %d, want 1", sum.Exists)
	}
	if sum.Uploaded != 1 {
		t.Fatalf("summary uploaded = %d, want 1", sum.Uploaded)
	}
	if sum.Reuploaded != 1 {
		t.Fatalf("summary reuploaded = %d, want 1", sum.Reuploaded)
	}
	if sum.Errors != 2 {
		t.Fatalf("summary errors = %d, want 2", sum.Errors)
	}
}

func TestRun_FailureIsolation(t *testing.T) {
	store := &stubStore{objects: map[string]error{"media/ok.jpg": nil}}
	statuses := map[string]int{"https://bucket.example.com/media/ok.jpg": 200}
	d := newTestDecision(store, statuses, &stubImages{}, true)
	r := NewReconciler(d)

	items := []Item{
		{Row: 1, RawURL: ":bad"},
		{Row: 2, RawURL: "https://cdn.example.com/media/ok.png"},
	}

	outcomes, _ := r.Run(context.Background(), items)
	if outcomes[1].Status != StatusExists {
		t.Fatalf("item after failure not processed: status = %q", outcomes[1].Status)
	}
}
