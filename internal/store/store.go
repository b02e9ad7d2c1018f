// Package store holds the listing browsing state and its reducer. State is
// owned by exactly one page/view; transitions are pure so a snapshot taken
// before a dispatch stays valid afterwards.
package store

import "nestquery-listings/internal/models"

// State is the full browsing state: the draft search term as typed, the
// applied term as submitted, active filters, pagination, fetch status and
// the current result set.
type State struct {
	SearchTerm        string
	AppliedSearchTerm string
	Filters           models.FilterState
	CurrentPage       int
	TotalPages        int
	IsLoading         bool
	Error             string
	Results           []models.Listing
	FilterModalOpen   bool

	// sequence of the most recently initiated fetch; responses carrying an
	// older sequence are discarded (last-request-wins).
	latestSeq uint64
}

// NewState returns the all-unset default used on page mount.
func NewState() State {
	return State{
		Filters:     models.NewFilterState(),
		CurrentPage: 1,
		TotalPages:  1,
		Results:     []models.Listing{},
	}
}

// Action is a tagged state transition.
type Action interface {
	isAction()
}

// SetSearchTerm updates the draft term on keystroke. It never touches the
// applied term.
type SetSearchTerm struct{ Term string }

// ApplySearch promotes the draft term to the applied term and resets to
// page 1: a changed query invalidates the old page's meaning.
type ApplySearch struct{}

// SetFilter records one filter value. A value change resets to page 1; a
// dispatch with an unchanged value is a no-op.
type SetFilter struct {
	Key   string
	Value models.FilterValue
}

// SetPage navigates to a page, clamped to [1, totalPages].
type SetPage struct{ Page int }

// SetFilterModalOpen toggles the filter panel.
type SetFilterModalOpen struct{ Open bool }

// FetchStart marks a fetch as initiated. Seq is assigned by the issuer at
// issuance time and must increase monotonically per store instance.
type FetchStart struct{ Seq uint64 }

// FetchSuccess delivers a fetched page. Applied only if Seq matches the
// most recently initiated fetch.
type FetchSuccess struct {
	Seq  uint64
	Page models.ListingPage
}

// FetchError delivers a fetch failure, subject to the same sequence check.
type FetchError struct {
	Seq     uint64
	Message string
}

// ClearFilters resets the filter state and page but leaves the applied
// search term alone: clearing filters and clearing search are independent
// user intents.
type ClearFilters struct{}

// SetResults replaces the displayed result set. Used by the optimistic
// mutation layer; authoritative totals are not recomputed locally.
type SetResults struct{ Results []models.Listing }

// Hydrate seeds the state from a parsed address query on initial mount,
// before any fetch. The page is taken as given: total pages are unknown
// until the first response arrives, so no clamping applies here.
type Hydrate struct {
	Filters    models.FilterState
	SearchTerm string
	Page       int
}

func (SetSearchTerm) isAction()      {}
func (ApplySearch) isAction()        {}
func (SetFilter) isAction()          {}
func (SetPage) isAction()            {}
func (SetFilterModalOpen) isAction() {}
func (FetchStart) isAction()         {}
func (FetchSuccess) isAction()       {}
func (FetchError) isAction()         {}
func (ClearFilters) isAction()       {}
func (SetResults) isAction()         {}
func (Hydrate) isAction()            {}

// Reduce applies one action and returns the next state. Pure: the input
// state is never mutated.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case SetSearchTerm:
		s.SearchTerm = act.Term
		return s

	case ApplySearch:
		s.AppliedSearchTerm = s.SearchTerm
		s.CurrentPage = 1
		return s

	case SetFilter:
		if current, ok := s.Filters.Get(act.Key); ok && current.Equal(act.Value) {
			return s
		}
		if _, ok := s.Filters.Get(act.Key); !ok && act.Value.IsZero() {
			return s
		}
		filters := s.Filters.Clone()
		filters.Set(act.Key, act.Value)
		s.Filters = filters
		s.CurrentPage = 1
		return s

	case SetPage:
		s.CurrentPage = clampPage(act.Page, s.TotalPages)
		return s

	case SetFilterModalOpen:
		s.FilterModalOpen = act.Open
		return s

	case FetchStart:
		if act.Seq < s.latestSeq {
			return s
		}
		s.latestSeq = act.Seq
		s.IsLoading = true
		s.Error = ""
		return s

	case FetchSuccess:
		if act.Seq != s.latestSeq {
			// stale response from a superseded request
			return s
		}
		s.IsLoading = false
		s.Error = ""
		s.Results = act.Page.Data
		if s.Results == nil {
			s.Results = []models.Listing{}
		}
		s.TotalPages = act.Page.Meta.TotalPages
		if s.TotalPages < 1 {
			s.TotalPages = 1
		}
		if act.Page.Meta.CurrentPage > 0 {
			s.CurrentPage = clampPage(act.Page.Meta.CurrentPage, s.TotalPages)
		} else {
			s.CurrentPage = clampPage(s.CurrentPage, s.TotalPages)
		}
		return s

	case FetchError:
		if act.Seq != s.latestSeq {
			return s
		}
		s.IsLoading = false
		s.Error = act.Message
		return s

	case ClearFilters:
		s.Filters = models.NewFilterState()
		s.CurrentPage = 1
		return s

	case SetResults:
		s.Results = act.Results
		return s

	case Hydrate:
		s.Filters = act.Filters
		s.SearchTerm = act.SearchTerm
		s.AppliedSearchTerm = act.SearchTerm
		if act.Page < 1 {
			act.Page = 1
		}
		s.CurrentPage = act.Page
		if act.Page > s.TotalPages {
			s.TotalPages = act.Page
		}
		return s
	}

	return s
}

// LatestSeq returns the sequence of the most recently initiated fetch.
func (s State) LatestSeq() uint64 {
	return s.latestSeq
}

func clampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
