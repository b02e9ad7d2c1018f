package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"nestquery-listings/internal/gateway"
	"nestquery-listings/internal/models"
	"nestquery-listings/internal/store"
)

// listingServer is a scriptable stand-in for the property collection
// endpoint: every GET is answered from pages, every DELETE with deleteStatus.
type listingServer struct {
	mu            sync.Mutex
	queries       []string
	pages         func(r *http.Request) models.ListingPage
	deleteStatus  int
	blocked       map[string]chan struct{} // page number -> release signal
	entered       chan string
	deleteEntered chan struct{}
	deleteRelease chan struct{} // when set, DELETE blocks until closed
}

func newListingServer(pages func(r *http.Request) models.ListingPage) *listingServer {
	return &listingServer{
		pages:         pages,
		deleteStatus:  http.StatusNoContent,
		blocked:       make(map[string]chan struct{}),
		entered:       make(chan string, 16),
		deleteEntered: make(chan struct{}, 16),
	}
}

func (s *listingServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodDelete {
		select {
		case s.deleteEntered <- struct{}{}:
		default:
		}
		if s.deleteRelease != nil {
			<-s.deleteRelease
		}
		if s.deleteStatus >= 400 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(s.deleteStatus)
			w.Write([]byte(`{"error": {"message": "delete rejected", "code": "INTERNAL_ERROR"}}`))
			return
		}
		w.WriteHeader(s.deleteStatus)
		return
	}

	page := r.URL.Query().Get("page")
	s.mu.Lock()
	s.queries = append(s.queries, r.URL.RawQuery)
	release := s.blocked[page]
	s.mu.Unlock()

	select {
	case s.entered <- page:
	default:
	}
	if release != nil {
		<-release
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.pages(r))
}

func (s *listingServer) queryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queries)
}

func (s *listingServer) lastQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}

func pageOf(totalPages, currentPage int, ids ...string) models.ListingPage {
	data := make([]models.Listing, 0, len(ids))
	for _, id := range ids {
		data = append(data, models.Listing{ListingID: id, Title: "listing " + id})
	}
	return models.ListingPage{
		Data: data,
		Meta: models.PageMeta{
			TotalItems:   int64(len(ids)),
			ItemsPerPage: 10,
			TotalPages:   totalPages,
			CurrentPage:  currentPage,
		},
	}
}

func TestRouterHydrationFetchesURLStateDirectly(t *testing.T) {
	srv := newListingServer(func(r *http.Request) models.ListingPage {
		if r.URL.Query().Get("filter.city") != "Berlin" {
			t.Errorf("filter.city = %q, want Berlin", r.URL.Query().Get("filter.city"))
		}
		return pageOf(3, 2, "b1", "b2")
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := New(gateway.New(ts.URL, nil), 10, "")
	if err := c.HandleRouterSearch(context.Background(), "filter.city=Berlin&page=2"); err != nil {
		t.Fatalf("HandleRouterSearch: %v", err)
	}

	// exactly one fetch, issued from the URL-derived state, never a
	// default-state fetch first
	if srv.queryCount() != 1 {
		t.Fatalf("fetch count = %d, want 1", srv.queryCount())
	}
	q := srv.lastQuery()
	for _, want := range []string{"page=2", "limit=10", "filter.city=Berlin"} {
		if !containsParam(q, want) {
			t.Fatalf("query %q missing %q", q, want)
		}
	}

	state := c.State()
	if v, ok := state.Filters.Get("city"); !ok || v.Text != "Berlin" {
		t.Fatalf("filters.city = %+v, %v; want Berlin", v, ok)
	}
	if state.CurrentPage != 2 || state.TotalPages != 3 {
		t.Fatalf("page %d/%d, want 2/3", state.CurrentPage, state.TotalPages)
	}
	if len(state.Results) != 2 || state.IsLoading || state.Error != "" {
		t.Fatalf("state = %+v, want two results, not loading, no error", state)
	}
}

func TestLastRequestWinsAcrossOverlappingFetches(t *testing.T) {
	srv := newListingServer(func(r *http.Request) models.ListingPage {
		switch r.URL.Query().Get("page") {
		case "2":
			return pageOf(5, 2, "slow")
		case "3":
			return pageOf(5, 3, "fast")
		default:
			return pageOf(5, 1, "initial")
		}
	})
	release := make(chan struct{})
	srv.blocked["2"] = release
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := New(gateway.New(ts.URL, nil), 10, "")
	if err := c.LoadPage(context.Background(), 0); err != nil {
		t.Fatalf("initial LoadPage: %v", err)
	}

	// issue the slow page-2 fetch, then a page-3 fetch that resolves first
	done := make(chan error, 1)
	go func() { done <- c.LoadPage(context.Background(), 2) }()
	for p := <-srv.entered; p != "2"; p = <-srv.entered {
		// skip the initial request's signal; wait for page 2 to be in flight
	}

	if err := c.LoadPage(context.Background(), 3); err != nil {
		t.Fatalf("LoadPage(3): %v", err)
	}
	close(release)
	<-done

	state := c.State()
	if len(state.Results) != 1 || state.Results[0].ListingID != "fast" {
		t.Fatalf("results = %+v, want the newer request's page", state.Results)
	}
	if state.CurrentPage != 3 {
		t.Fatalf("CurrentPage = %d, want 3", state.CurrentPage)
	}
}

func TestDeleteListingConfirmed(t *testing.T) {
	srv := newListingServer(func(r *http.Request) models.ListingPage {
		return pageOf(1, 1, "a", "b", "c")
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := New(gateway.New(ts.URL, nil), 10, "")
	if err := c.LoadPage(context.Background(), 0); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}

	if err := c.DeleteListing(context.Background(), "b"); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}

	state := c.State()
	if len(state.Results) != 2 {
		t.Fatalf("results = %d, want b removed", len(state.Results))
	}
	if len(c.PendingMutations()) != 0 {
		t.Fatal("confirmed delete must leave no pending mutation")
	}
	if len(c.Notices()) != 0 {
		t.Fatal("confirmed delete must not raise a notice")
	}
	// totals are server-owned: not recomputed locally after the optimistic cut
	if state.TotalPages != 1 || state.Results[0].ListingID != "a" {
		t.Fatalf("state = %+v, want untouched totals and remaining order", state.Results)
	}
}

func TestDeleteListingRollsBackOnFailure(t *testing.T) {
	srv := newListingServer(func(r *http.Request) models.ListingPage {
		return pageOf(1, 1, "a", "b", "c")
	})
	srv.deleteStatus = http.StatusInternalServerError
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := New(gateway.New(ts.URL, nil), 10, "")
	if err := c.LoadPage(context.Background(), 0); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}

	err := c.DeleteListing(context.Background(), "b")

	var me *MutationError
	if !errors.As(err, &me) || me.TargetID != "b" {
		t.Fatalf("error = %v, want *MutationError for b", err)
	}

	state := c.State()
	if len(state.Results) != 3 || state.Results[1].ListingID != "b" {
		t.Fatalf("results = %+v, want b restored at its original index", state.Results)
	}
	notices := c.Notices()
	if len(notices) != 1 || notices[0].TargetID != "b" {
		t.Fatalf("notices = %+v, want one failed-delete notice for b", notices)
	}
}

func TestFetchDuringPendingDeleteKeepsRecordRemoved(t *testing.T) {
	srv := newListingServer(func(r *http.Request) models.ListingPage {
		return pageOf(1, 1, "a", "b", "c")
	})
	srv.deleteStatus = http.StatusInternalServerError
	release := make(chan struct{})
	srv.deleteRelease = release
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := New(gateway.New(ts.URL, nil), 10, "")
	if err := c.LoadPage(context.Background(), 0); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.DeleteListing(context.Background(), "b") }()
	<-srv.deleteEntered // confirming request is in flight

	// a refetch resolving mid-delete returns the full server page; the
	// unconfirmed delete must stay applied to the displayed set
	if err := c.LoadPage(context.Background(), 0); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	state := c.State()
	if len(state.Results) != 2 || state.Results[0].ListingID != "a" || state.Results[1].ListingID != "c" {
		t.Fatalf("results = %+v, want b removed while its delete is unconfirmed", state.Results)
	}

	close(release)
	if err := <-done; err == nil {
		t.Fatal("DeleteListing should report the failed confirmation")
	}

	// the rollback restores b exactly once, at its original index
	state = c.State()
	if len(state.Results) != 3 ||
		state.Results[0].ListingID != "a" ||
		state.Results[1].ListingID != "b" ||
		state.Results[2].ListingID != "c" {
		t.Fatalf("results = %+v, want [a b c] with no duplicate", state.Results)
	}
}

func TestFetchDuringPendingDeleteConfirmed(t *testing.T) {
	srv := newListingServer(func(r *http.Request) models.ListingPage {
		return pageOf(1, 1, "a", "b", "c")
	})
	release := make(chan struct{})
	srv.deleteRelease = release
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := New(gateway.New(ts.URL, nil), 10, "")
	if err := c.LoadPage(context.Background(), 0); err != nil {
		t.Fatalf("LoadPage: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- c.DeleteListing(context.Background(), "b") }()
	<-srv.deleteEntered

	if err := c.LoadPage(context.Background(), 0); err != nil {
		t.Fatalf("refetch: %v", err)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}

	state := c.State()
	if len(state.Results) != 2 || state.Results[0].ListingID != "a" || state.Results[1].ListingID != "c" {
		t.Fatalf("results = %+v, want b gone after the confirmed delete", state.Results)
	}
	if len(c.PendingMutations()) != 0 {
		t.Fatal("confirmed delete must leave no pending mutation")
	}
}

func TestSearchAndClearFilters(t *testing.T) {
	srv := newListingServer(func(r *http.Request) models.ListingPage {
		return pageOf(4, 1, "x")
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := New(gateway.New(ts.URL, nil), 10, "")
	c.HandleFilterChange("city", models.TextFilter("Berlin"))
	if err := c.HandleApplyFilters(context.Background()); err != nil {
		t.Fatalf("HandleApplyFilters: %v", err)
	}
	if err := c.HandleSearch(context.Background(), "loft"); err != nil {
		t.Fatalf("HandleSearch: %v", err)
	}

	if q := srv.lastQuery(); !containsParam(q, "search=loft") || !containsParam(q, "filter.city=Berlin") {
		t.Fatalf("query %q, want search and filter applied", q)
	}

	// clearing filters keeps the applied search term
	if err := c.HandleClearFilters(context.Background()); err != nil {
		t.Fatalf("HandleClearFilters: %v", err)
	}
	q := srv.lastQuery()
	if containsParam(q, "filter.city=Berlin") {
		t.Fatalf("query %q still carries a cleared filter", q)
	}
	if !containsParam(q, "search=loft") {
		t.Fatalf("query %q dropped the applied search term", q)
	}
}

func TestAddressQueryReflectsCommittedState(t *testing.T) {
	srv := newListingServer(func(r *http.Request) models.ListingPage {
		return pageOf(3, 2, "x")
	})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	c := New(gateway.New(ts.URL, nil), 10, "")
	if err := c.HandleRouterSearch(context.Background(), "filter.city=Berlin&search=loft&page=2"); err != nil {
		t.Fatalf("HandleRouterSearch: %v", err)
	}

	// only committed state lands in the address; the keystroke draft does not
	c.Dispatch(store.SetSearchTerm{Term: "lof"})

	values := c.AddressQuery()
	if values.Get("filter.city") != "Berlin" || values.Get("search") != "loft" || values.Get("page") != "2" {
		t.Fatalf("address query = %v, want committed Berlin/loft/2", values)
	}
}

// containsParam reports whether the raw query contains the exact key=value
// pair.
func containsParam(rawQuery, pair string) bool {
	for start := 0; start <= len(rawQuery); {
		end := start
		for end < len(rawQuery) && rawQuery[end] != '&' {
			end++
		}
		if rawQuery[start:end] == pair {
			return true
		}
		start = end + 1
	}
	return false
}
