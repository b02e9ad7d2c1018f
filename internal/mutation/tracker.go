// Package mutation applies local, unconfirmed edits to a displayed result
// set before the server confirms them, and rolls them back on failure. A
// Tracker is scoped to a single store instance; there is no cross-page
// mutation tracking.
package mutation

import (
	"time"

	"nestquery-listings/internal/models"
)

type Kind string

const (
	KindDelete Kind = "delete"
	KindUpdate Kind = "update"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// PendingMutation is one in-flight optimistic operation. For deletes the
// removed record and its original index are captured so a failed
// confirmation can reinsert it exactly where it was.
type PendingMutation struct {
	TargetID  string
	Kind      Kind
	AppliedAt time.Time
	Status    Status

	record models.Listing
	index  int
}

// Tracker holds the pending mutations for one result set, keyed by target
// id so concurrent independent mutations never interfere.
type Tracker struct {
	pending map[string]*PendingMutation
}

func NewTracker() *Tracker {
	return &Tracker{pending: make(map[string]*PendingMutation)}
}

// ApplyDelete removes the target record from the result set immediately and
// records a pending mutation. Returns the updated set and false if the
// record is not present (or already pending).
func (t *Tracker) ApplyDelete(results []models.Listing, id string) ([]models.Listing, *PendingMutation, bool) {
	if _, exists := t.pending[id]; exists {
		return results, nil, false
	}
	idx := -1
	for i, r := range results {
		if r.ListingID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return results, nil, false
	}

	pm := &PendingMutation{
		TargetID:  id,
		Kind:      KindDelete,
		AppliedAt: time.Now(),
		Status:    StatusPending,
		record:    results[idx],
		index:     idx,
	}
	t.pending[id] = pm

	updated := make([]models.Listing, 0, len(results)-1)
	updated = append(updated, results[:idx]...)
	updated = append(updated, results[idx+1:]...)
	return updated, pm, true
}

// Confirm marks the mutation confirmed and discards it. The next natural
// refetch reflects authoritative totals; nothing is forced here.
func (t *Tracker) Confirm(id string) {
	if pm, ok := t.pending[id]; ok {
		pm.Status = StatusConfirmed
		delete(t.pending, id)
	}
}

// Fail rolls back a pending delete: the record is reinserted at its
// original index and the mutation is marked failed. Other pending
// mutations are untouched. Returns false if no mutation is tracked for id.
func (t *Tracker) Fail(results []models.Listing, id string) ([]models.Listing, *PendingMutation, bool) {
	pm, ok := t.pending[id]
	if !ok {
		return results, nil, false
	}
	pm.Status = StatusFailed
	delete(t.pending, id)

	// A refetch may already have restored the record; reinserting again
	// would duplicate it.
	for _, r := range results {
		if r.ListingID == id {
			return results, pm, true
		}
	}

	idx := pm.index
	if idx > len(results) {
		idx = len(results)
	}
	updated := make([]models.Listing, 0, len(results)+1)
	updated = append(updated, results[:idx]...)
	updated = append(updated, pm.record)
	updated = append(updated, results[idx:]...)
	return updated, pm, true
}

// Pending returns a snapshot of the in-flight mutations.
func (t *Tracker) Pending() []PendingMutation {
	out := make([]PendingMutation, 0, len(t.pending))
	for _, pm := range t.pending {
		out = append(out, *pm)
	}
	return out
}

// Reconcile computes the displayed result set from the authoritative one
// and the pending mutations, independent of any rendering concern: records
// with a pending delete are filtered out, totals are left to the server.
func Reconcile(current []models.Listing, pending []PendingMutation) []models.Listing {
	deleted := make(map[string]bool, len(pending))
	for _, pm := range pending {
		if pm.Kind == KindDelete && pm.Status == StatusPending {
			deleted[pm.TargetID] = true
		}
	}
	if len(deleted) == 0 {
		return current
	}
	out := make([]models.Listing, 0, len(current))
	for _, r := range current {
		if !deleted[r.ListingID] {
			out = append(out, r)
		}
	}
	return out
}
