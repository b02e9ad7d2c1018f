// Package controller wires the query builder, gateway, state store, URL
// synchronizer and optimistic mutation tracker into the interface a listing
// page drives. One Controller per page/view; it is never shared across
// concurrent views.
package controller

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"nestquery-listings/internal/gateway"
	"nestquery-listings/internal/models"
	"nestquery-listings/internal/mutation"
	"nestquery-listings/internal/query"
	"nestquery-listings/internal/store"
	"nestquery-listings/internal/urlsync"
)

const defaultLimit = 10

// Notice is a transient, user-visible notification, e.g. a failed delete.
type Notice struct {
	Message  string
	TargetID string
}

// MutationError is the typed failure of a confirming mutation call. The
// optimistic change has already been rolled back when it is returned.
type MutationError struct {
	TargetID string
	Err      error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("mutation failed for %s: %v", e.TargetID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// Controller owns one store instance, one gateway client and one mutation
// tracker. Every fetch it initiates is tagged with a monotonically
// increasing sequence number; the store discards responses from superseded
// requests, so a slow early response never clobbers a faster later one.
type Controller struct {
	mu      sync.Mutex
	state   store.State
	gateway *gateway.Client
	tracker *mutation.Tracker
	limit   int
	sortBy  string
	seq     uint64
	notices []Notice
}

// New constructs a controller over the given gateway. limit <= 0 falls back
// to the default page size; sortBy may be empty for the server default.
func New(gw *gateway.Client, limit int, sortBy string) *Controller {
	if limit <= 0 {
		limit = defaultLimit
	}
	return &Controller{
		state:   store.NewState(),
		gateway: gw,
		tracker: mutation.NewTracker(),
		limit:   limit,
		sortBy:  sortBy,
	}
}

// State returns the current state snapshot.
func (c *Controller) State() store.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Dispatch applies one action to the store.
func (c *Controller) Dispatch(a store.Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = store.Reduce(c.state, a)
}

// LoadPage navigates to the given page (clamped by the store) and fetches
// it. page <= 0 refetches the current page.
func (c *Controller) LoadPage(ctx context.Context, page int) error {
	if page > 0 {
		c.Dispatch(store.SetPage{Page: page})
	}
	return c.fetch(ctx)
}

// HandleSearch promotes the term to the applied search and fetches page 1.
// Keystroke-level draft updates go through Dispatch(SetSearchTerm) instead.
func (c *Controller) HandleSearch(ctx context.Context, term string) error {
	c.Dispatch(store.SetSearchTerm{Term: term})
	c.Dispatch(store.ApplySearch{})
	return c.fetch(ctx)
}

// HandleFilterChange records one filter value without fetching; the change
// is committed by HandleApplyFilters.
func (c *Controller) HandleFilterChange(key string, value models.FilterValue) {
	c.Dispatch(store.SetFilter{Key: key, Value: value})
}

// HandleApplyFilters commits the staged filter changes: closes the filter
// panel and fetches. The page was already reset by any value change.
func (c *Controller) HandleApplyFilters(ctx context.Context) error {
	c.Dispatch(store.SetFilterModalOpen{Open: false})
	return c.fetch(ctx)
}

// HandleClearFilters resets all filters (leaving the applied search term
// alone) and fetches page 1.
func (c *Controller) HandleClearFilters(ctx context.Context) error {
	c.Dispatch(store.ClearFilters{})
	return c.fetch(ctx)
}

// HandleRouterSearch hydrates the state from an address query on initial
// mount and performs the first fetch, so the view never flashes a default
// empty state before showing the URL-derived one.
func (c *Controller) HandleRouterSearch(ctx context.Context, rawQuery string) error {
	filters, search, page := urlsync.ParseQuery(rawQuery)
	c.Dispatch(store.Hydrate{Filters: filters, SearchTerm: search, Page: page})
	return c.fetch(ctx)
}

// DeleteListing removes the record from the displayed results immediately
// and issues the confirming delete. On failure the record is reinserted at
// its original index, a notice is recorded and a MutationError returned;
// other pending mutations are unaffected.
func (c *Controller) DeleteListing(ctx context.Context, id string) error {
	c.mu.Lock()
	results, _, ok := c.tracker.ApplyDelete(c.state.Results, id)
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("listing %s is not in the current results", id)
	}
	c.state = store.Reduce(c.state, store.SetResults{Results: results})
	c.mu.Unlock()

	err := c.gateway.Delete(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		restored, _, _ := c.tracker.Fail(c.state.Results, id)
		c.state = store.Reduce(c.state, store.SetResults{Results: restored})
		c.notices = append(c.notices, Notice{
			Message:  fmt.Sprintf("could not delete listing: %s", userMessage(err)),
			TargetID: id,
		})
		return &MutationError{TargetID: id, Err: err}
	}
	c.tracker.Confirm(id)
	return nil
}

// PendingMutations returns the in-flight optimistic operations.
func (c *Controller) PendingMutations() []mutation.PendingMutation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Pending()
}

// Notices drains and returns the accumulated transient notifications.
func (c *Controller) Notices() []Notice {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notices
	c.notices = nil
	return out
}

// AddressQuery returns the committed state serialized for the address bar.
// Only committed changes belong in history, never per-keystroke drafts.
func (c *Controller) AddressQuery() url.Values {
	c.mu.Lock()
	defer c.mu.Unlock()
	return urlsync.Encode(c.state.Filters, c.state.AppliedSearchTerm, c.state.CurrentPage)
}

// fetch builds the query from the current committed state, tags it with the
// next sequence number and applies the outcome. The gateway call happens
// outside the lock so overlapping fetches race only through the sequence
// check, never through shared request state.
func (c *Controller) fetch(ctx context.Context) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	q := query.Build(c.state.Filters, c.state.AppliedSearchTerm, c.state.CurrentPage, c.limit, c.sortBy)
	c.state = store.Reduce(c.state, store.FetchStart{Seq: seq})
	c.mu.Unlock()

	page, err := c.gateway.FetchPage(ctx, q)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = store.Reduce(c.state, store.FetchError{Seq: seq, Message: userMessage(err)})
		return err
	}
	// A record with an unconfirmed delete must stay out of the displayed set
	// even when the server page still contains it.
	page.Data = mutation.Reconcile(page.Data, c.tracker.Pending())
	c.state = store.Reduce(c.state, store.FetchSuccess{Seq: seq, Page: *page})
	return nil
}

func userMessage(err error) string {
	var fe *gateway.FetchError
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}
