package core

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"inventoryclient/internal/api"
	"inventoryclient/pkg/domain"
	"inventoryclient/pkg/signal"
)

// Tree is the lazily populated hierarchical projection of a Search used when
// viewing containers as a navigable tree. Children are fetched on first
// expansion and cached on the record: an InfoLoaded record with zero children
// is a terminal node, not an unloaded one. Type filtering is render-time only
// and never fetches.
type Tree struct {
	search *Search

	mu       sync.Mutex
	expanded map[domain.GlobalID]struct{}
	selected *domain.GlobalID
	filtered map[domain.RecordType]struct{}

	// loads collapses concurrent expansions of the same node into one fetch.
	loads singleflight.Group

	// Changed fires after every expansion/selection/filter mutation.
	Changed signal.Signal[struct{}]
}

func newTree(search *Search) *Tree {
	return &Tree{
		search:   search,
		expanded: make(map[domain.GlobalID]struct{}),
		filtered: make(map[domain.RecordType]struct{}),
	}
}

// SetExpanded replaces the expanded node set. Newly expanded nodes whose
// children have not been loaded trigger a lazy fetch; already-loaded nodes
// (including ones that turned out empty) are not re-fetched.
func (t *Tree) SetExpanded(ctx context.Context, ids []domain.GlobalID) error {
	t.mu.Lock()
	next := make(map[domain.GlobalID]struct{}, len(ids))
	var fresh []domain.GlobalID
	for _, id := range ids {
		next[id] = struct{}{}
		if _, was := t.expanded[id]; !was {
			fresh = append(fresh, id)
		}
	}
	t.expanded = next
	t.mu.Unlock()
	t.Changed.Emit(struct{}{})

	for _, id := range fresh {
		rec, ok := t.search.fetcher.factory.Lookup(id)
		if !ok {
			continue
		}
		if rec.Core().InfoLoaded() {
			continue
		}
		if err := t.LoadChildren(ctx, rec); err != nil {
			return err
		}
	}
	return nil
}

// Expanded returns the expanded node identifiers.
func (t *Tree) Expanded() []domain.GlobalID {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.GlobalID, 0, len(t.expanded))
	for id := range t.expanded {
		out = append(out, id)
	}
	return out
}

// IsExpanded reports whether the node is expanded.
func (t *Tree) IsExpanded(id domain.GlobalID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.expanded[id]
	return ok
}

// SetSelected marks one node as selected; the empty identifier clears the
// selection.
func (t *Tree) SetSelected(id domain.GlobalID) {
	t.mu.Lock()
	if id == "" {
		t.selected = nil
	} else {
		t.selected = &id
	}
	t.mu.Unlock()
	t.Changed.Emit(struct{}{})
}

// Selected returns the selected node identifier, if any.
func (t *Tree) Selected() (domain.GlobalID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.selected == nil {
		return "", false
	}
	return *t.selected, true
}

// SetFilteredTypes replaces the set of record types visible in the tree. An
// empty set shows everything. Filtering is applied when reading children and
// never triggers a fetch or touches InfoLoaded.
func (t *Tree) SetFilteredTypes(types []domain.RecordType) {
	t.mu.Lock()
	t.filtered = make(map[domain.RecordType]struct{}, len(types))
	for _, rt := range types {
		t.filtered[rt] = struct{}{}
	}
	t.mu.Unlock()
	t.Changed.Emit(struct{}{})
}

// VisibleChildren returns the record's loaded children, filtered by the
// current type set.
func (t *Tree) VisibleChildren(r domain.Record) []domain.Record {
	if r == nil {
		return nil
	}
	children := r.Core().Children()
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.filtered) == 0 {
		return children
	}
	out := make([]domain.Record, 0, len(children))
	for _, child := range children {
		if _, ok := t.filtered[child.Type()]; ok {
			out = append(out, child)
		}
	}
	return out
}

// LoadChildren fetches the record's children and caches them on the record,
// setting InfoLoaded regardless of whether any were returned. Concurrent
// loads for the same identifier share one request.
func (t *Tree) LoadChildren(ctx context.Context, r domain.Record) error {
	core := r.Core()
	gid, saved := core.GlobalID()
	if !saved {
		return &domain.ValidationError{Field: "globalId", Reason: "cannot load children of an unsaved record"}
	}
	fetcher := t.search.fetcher
	_, err, _ := t.loads.Do(string(gid), func() (any, error) {
		started := time.Now()
		payloads, err := t.fetchChildren(ctx, r, gid)
		if err != nil {
			fetcher.metrics.Observe(ctx, "load_children", false, time.Since(started))
			return nil, err
		}
		fetcher.metrics.Observe(ctx, "load_children", true, time.Since(started))
		children, err := fetcher.hydrate(payloads)
		if err != nil {
			return nil, err
		}
		core.SetChildren(children)
		t.Changed.Emit(struct{}{})
		return nil, nil
	})
	return err
}

// fetchChildren picks the endpoint per variant: containers have a dedicated
// children listing, everything else scopes a search by parentGlobalId.
func (t *Tree) fetchChildren(ctx context.Context, r domain.Record, gid domain.GlobalID) ([]api.RecordPayload, error) {
	client := t.search.fetcher.api
	if _, isContainer := r.(*domain.Container); isContainer {
		return client.ContainerChildren(ctx, string(gid))
	}
	res, err := client.Search(ctx, api.SearchParams{
		ParentGlobalID: string(gid),
		PageSize:       DefaultPageSize,
	})
	if err != nil {
		return nil, err
	}
	return res.Results, nil
}
