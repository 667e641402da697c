package core

import (
	"context"
	"sync"

	"inventoryclient/internal/api"
	"inventoryclient/internal/logging"
	"inventoryclient/pkg/domain"
	"inventoryclient/pkg/signal"
)

// SearchView selects how results are presented.
type SearchView string

// Supported search views.
const (
	ViewList SearchView = "LIST"
	ViewTree SearchView = "TREE"
)

// ActiveResultOptions controls SetActiveResult.
type ActiveResultOptions struct {
	// DefaultToFirstResult substitutes the first buffered result when the
	// requested record is nil.
	DefaultToFirstResult bool
}

// Search composes a fetcher with view-level state: the active result, the
// multi-select set, the view mode, and the structural eligibility predicate.
//
// Selection never contains a key absent from the union of the result buffer
// and the explicitly pinned active result; the set is pruned whenever the
// buffer changes.
type Search struct {
	fetcher *Fetcher
	log     *logging.Logger

	mu           sync.Mutex
	view         SearchView
	active       domain.Record
	activePinned bool
	selected     map[string]domain.Record
	eligible     func(domain.Record) bool
	// listParams remembers the list-view search arguments while the tree
	// view runs its container-scoped fetches, so returning to LIST
	// restores the user's original scope.
	listParams api.SearchParams

	tree *Tree

	// Changed fires after every view-state mutation.
	Changed signal.Signal[struct{}]
}

// SearchOption configures a Search at construction.
type SearchOption func(*Search)

// WithEligibility installs the structural eligibility predicate backing
// AlwaysFilterOut. When absent, every record is eligible.
func WithEligibility(eligible func(domain.Record) bool) SearchOption {
	return func(s *Search) { s.eligible = eligible }
}

// NewSearch constructs a search over the fetcher. The fetcher's buffer
// changes are observed to keep the selection invariant.
func NewSearch(fetcher *Fetcher, log *logging.Logger, opts ...SearchOption) *Search {
	if log == nil {
		log = logging.Nop()
	}
	s := &Search{
		fetcher:  fetcher,
		log:      log,
		view:     ViewList,
		selected: make(map[string]domain.Record),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.tree = newTree(s)
	fetcher.Changed.Subscribe(func(struct{}) { s.reconcile() })
	return s
}

// Fetcher returns the underlying fetcher.
func (s *Search) Fetcher() *Fetcher { return s.fetcher }

// Tree returns the hierarchical projection used when the view is TREE.
func (s *Search) Tree() *Tree { return s.tree }

// View returns the current view mode.
func (s *Search) View() SearchView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetSearchView switches between LIST and TREE. Switching to TREE re-fetches
// scoped for tree roots (containers); switching back to LIST restores and
// re-runs the pre-tree arguments from the first page, so the tree's container
// scoping never leaks into the user's search.
func (s *Search) SetSearchView(ctx context.Context, view SearchView) error {
	if view != ViewList && view != ViewTree {
		return &domain.ValidationError{Field: "searchView", Reason: "unknown view " + string(view)}
	}
	params := s.fetcher.Params()
	s.mu.Lock()
	prev := s.view
	s.view = view
	if view == ViewTree {
		if prev == ViewList {
			s.listParams = params
		}
		params.ResultType = api.ResultContainer
	} else if prev == ViewTree {
		params = s.listParams
	}
	s.mu.Unlock()
	s.Changed.Emit(struct{}{})

	params.PageNumber = 0
	return s.fetcher.PerformInitialSearch(ctx, params)
}

// SetActiveResult sets the record open for detail view. A nil record with
// DefaultToFirstResult substitutes the first buffered result; a non-nil
// record outside the buffer (e.g. freshly created and unsaved) is pinned.
func (s *Search) SetActiveResult(r domain.Record, opts ActiveResultOptions) error {
	if r == nil {
		if !opts.DefaultToFirstResult {
			s.mu.Lock()
			s.active = nil
			s.activePinned = false
			s.mu.Unlock()
			s.Changed.Emit(struct{}{})
			return nil
		}
		results := s.fetcher.Results()
		if len(results) == 0 {
			s.mu.Lock()
			s.active = nil
			s.activePinned = false
			s.mu.Unlock()
			s.Changed.Emit(struct{}{})
			return nil
		}
		r = results[0]
	}
	inBuffer := s.fetcher.Contains(r)
	s.mu.Lock()
	s.active = r
	s.activePinned = !inBuffer
	s.mu.Unlock()
	s.Changed.Emit(struct{}{})
	return nil
}

// ActiveResult returns the record currently open for detail view, or nil.
func (s *Search) ActiveResult() domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SelectResult adds a record to the multi-select set. The record must be in
// the result buffer or be the pinned active result.
func (s *Search) SelectResult(r domain.Record) error {
	if r == nil {
		return &domain.ValidationError{Field: "selectedResults", Reason: "nil record"}
	}
	key := r.Core().Key()
	inBuffer := s.fetcher.Contains(r)
	s.mu.Lock()
	pinned := s.activePinned && s.active != nil && s.active.Core().Key() == key
	if !inBuffer && !pinned {
		s.mu.Unlock()
		return &domain.ValidationError{Field: "selectedResults", Reason: key + " not in current results"}
	}
	s.selected[key] = r
	s.mu.Unlock()
	s.Changed.Emit(struct{}{})
	return nil
}

// DeselectResult removes a record from the multi-select set.
func (s *Search) DeselectResult(r domain.Record) {
	if r == nil {
		return
	}
	s.mu.Lock()
	delete(s.selected, r.Core().Key())
	s.mu.Unlock()
	s.Changed.Emit(struct{}{})
}

// ClearSelection empties the multi-select set.
func (s *Search) ClearSelection() {
	s.mu.Lock()
	s.selected = make(map[string]domain.Record)
	s.mu.Unlock()
	s.Changed.Emit(struct{}{})
}

// SelectedResults returns the selection in result-buffer order, with the
// pinned active result (when selected) appended last.
func (s *Search) SelectedResults() []domain.Record {
	results := s.fetcher.Results()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Record, 0, len(s.selected))
	seen := make(map[string]struct{}, len(s.selected))
	for _, r := range results {
		key := r.Core().Key()
		if _, ok := s.selected[key]; ok {
			out = append(out, r)
			seen[key] = struct{}{}
		}
	}
	for key, r := range s.selected {
		if _, ok := seen[key]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// IsSelected reports multi-select membership.
func (s *Search) IsSelected(r domain.Record) bool {
	if r == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.selected[r.Core().Key()]
	return ok
}

// AlwaysFilterOut reports whether the record is structurally ineligible for
// this search's scope (e.g. a sample offered to a containers-only picker).
// Callers grey out such entries rather than removing them: disabled is not
// absent.
func (s *Search) AlwaysFilterOut(r domain.Record) bool {
	s.mu.Lock()
	eligible := s.eligible
	s.mu.Unlock()
	if eligible == nil || r == nil {
		return false
	}
	return !eligible(r)
}

// Refresh re-runs the last search arguments.
func (s *Search) Refresh(ctx context.Context) error {
	return s.fetcher.Refresh(ctx)
}

// reconcile restores the selection and active-result invariants after the
// buffer changed: selected keys absent from the buffer are dropped (unless
// pinned), and a vanished, unpinned active result is cleared.
func (s *Search) reconcile() {
	results := s.fetcher.Results()
	inBuffer := make(map[string]struct{}, len(results))
	for _, r := range results {
		inBuffer[r.Core().Key()] = struct{}{}
	}
	s.mu.Lock()
	var pinnedKey string
	if s.activePinned && s.active != nil {
		pinnedKey = s.active.Core().Key()
	}
	changed := false
	for key := range s.selected {
		if _, ok := inBuffer[key]; ok || key == pinnedKey {
			continue
		}
		delete(s.selected, key)
		changed = true
	}
	if s.active != nil && !s.activePinned {
		if _, ok := inBuffer[s.active.Core().Key()]; !ok {
			s.active = nil
			changed = true
		}
	}
	s.mu.Unlock()
	if changed {
		s.Changed.Emit(struct{}{})
	}
}
