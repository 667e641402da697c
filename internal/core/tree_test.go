package core

import (
	"context"
	"testing"

	"inventoryclient/internal/api"
	"inventoryclient/pkg/domain"
)

func treeFixture(t *testing.T, client *fakeClient) (*Search, *Tree) {
	t.Helper()
	s := newTestSearch(client)
	return s, s.Tree()
}

func TestSetExpandedLoadsChildrenLazily(t *testing.T) {
	childrenCalls := 0
	client := &fakeClient{
		searchFunc: func(context.Context, api.SearchParams) (*api.SearchResultPayload, error) {
			return searchPage(1, 0, listContainerPayload(1, "IC1", "freezer")), nil
		},
		containerChildrenFunc: func(_ context.Context, globalID string) ([]api.RecordPayload, error) {
			childrenCalls++
			if globalID != "IC1" {
				t.Errorf("children requested for %s", globalID)
			}
			return []api.RecordPayload{listContainerPayload(2, "IC2", "shelf")}, nil
		},
	}
	s, tree := treeFixture(t, client)
	ctx := context.Background()
	if err := s.Fetcher().PerformInitialSearch(ctx, api.SearchParams{}); err != nil {
		t.Fatalf("PerformInitialSearch: %v", err)
	}
	root := s.Fetcher().Results()[0]
	if root.Core().InfoLoaded() {
		t.Fatalf("children marked loaded before any expansion")
	}

	if err := tree.SetExpanded(ctx, []domain.GlobalID{"IC1"}); err != nil {
		t.Fatalf("SetExpanded: %v", err)
	}
	if childrenCalls != 1 {
		t.Fatalf("children calls: %d", childrenCalls)
	}
	if !tree.IsExpanded("IC1") {
		t.Fatalf("node not expanded")
	}
	children := tree.VisibleChildren(root)
	if len(children) != 1 || children[0].Core().Key() != "IC2" {
		t.Fatalf("children: %v", children)
	}

	// Collapsing and re-expanding serves from the record's cache.
	if err := tree.SetExpanded(ctx, nil); err != nil {
		t.Fatalf("SetExpanded: %v", err)
	}
	if err := tree.SetExpanded(ctx, []domain.GlobalID{"IC1"}); err != nil {
		t.Fatalf("SetExpanded: %v", err)
	}
	if childrenCalls != 1 {
		t.Fatalf("re-expansion re-fetched children: %d calls", childrenCalls)
	}
}

func TestEmptyChildrenIsTerminalNotUnloaded(t *testing.T) {
	childrenCalls := 0
	client := &fakeClient{
		searchFunc: func(context.Context, api.SearchParams) (*api.SearchResultPayload, error) {
			return searchPage(1, 0, listContainerPayload(1, "IC1", "empty box")), nil
		},
		containerChildrenFunc: func(context.Context, string) ([]api.RecordPayload, error) {
			childrenCalls++
			return nil, nil
		},
	}
	s, tree := treeFixture(t, client)
	ctx := context.Background()
	if err := s.Fetcher().PerformInitialSearch(ctx, api.SearchParams{}); err != nil {
		t.Fatalf("PerformInitialSearch: %v", err)
	}
	root := s.Fetcher().Results()[0]
	if err := tree.SetExpanded(ctx, []domain.GlobalID{"IC1"}); err != nil {
		t.Fatalf("SetExpanded: %v", err)
	}
	if !root.Core().InfoLoaded() {
		t.Fatalf("empty fetch did not mark children loaded")
	}
	if root.Core().Children() == nil {
		t.Fatalf("terminal node has nil children")
	}

	if err := tree.SetExpanded(ctx, nil); err != nil {
		t.Fatalf("SetExpanded: %v", err)
	}
	if err := tree.SetExpanded(ctx, []domain.GlobalID{"IC1"}); err != nil {
		t.Fatalf("SetExpanded: %v", err)
	}
	if childrenCalls != 1 {
		t.Fatalf("terminal node re-fetched: %d calls", childrenCalls)
	}
}

func TestNonContainerChildrenLoadViaScopedSearch(t *testing.T) {
	client := &fakeClient{}
	var scopedParent string
	client.searchFunc = func(_ context.Context, params api.SearchParams) (*api.SearchResultPayload, error) {
		if params.ParentGlobalID != "" {
			scopedParent = params.ParentGlobalID
			return searchPage(1, 0, subSamplePayload(7, "SS7", "aliquot")), nil
		}
		return searchPage(1, 0, samplePayload(3, "SA3", "lysate")), nil
	}
	s, tree := treeFixture(t, client)
	ctx := context.Background()
	if err := s.Fetcher().PerformInitialSearch(ctx, api.SearchParams{}); err != nil {
		t.Fatalf("PerformInitialSearch: %v", err)
	}
	sample := s.Fetcher().Results()[0]
	if err := tree.LoadChildren(ctx, sample); err != nil {
		t.Fatalf("LoadChildren: %v", err)
	}
	if scopedParent != "SA3" {
		t.Fatalf("search not scoped by parent: %q", scopedParent)
	}
	children := sample.Core().Children()
	if len(children) != 1 || children[0].Core().Key() != "SS7" {
		t.Fatalf("children: %v", children)
	}
}

func TestLoadChildrenRejectsUnsavedRecord(t *testing.T) {
	_, tree := treeFixture(t, &fakeClient{})
	draft := &domain.Sample{RecordCore: domain.NewRecordCore("draft")}
	if err := tree.LoadChildren(context.Background(), draft); err == nil {
		t.Fatalf("expected error for unsaved record")
	}
}

func TestTypeFilterIsRenderOnly(t *testing.T) {
	childrenCalls := 0
	client := &fakeClient{
		searchFunc: func(context.Context, api.SearchParams) (*api.SearchResultPayload, error) {
			return searchPage(1, 0, listContainerPayload(1, "IC1", "freezer")), nil
		},
		containerChildrenFunc: func(context.Context, string) ([]api.RecordPayload, error) {
			childrenCalls++
			return []api.RecordPayload{
				listContainerPayload(2, "IC2", "shelf"),
				subSamplePayload(3, "SS3", "aliquot"),
			}, nil
		},
	}
	s, tree := treeFixture(t, client)
	ctx := context.Background()
	if err := s.Fetcher().PerformInitialSearch(ctx, api.SearchParams{}); err != nil {
		t.Fatalf("PerformInitialSearch: %v", err)
	}
	root := s.Fetcher().Results()[0]
	if err := tree.SetExpanded(ctx, []domain.GlobalID{"IC1"}); err != nil {
		t.Fatalf("SetExpanded: %v", err)
	}

	tree.SetFilteredTypes([]domain.RecordType{domain.RecordTypeContainer})
	visible := tree.VisibleChildren(root)
	if len(visible) != 1 || visible[0].Core().Key() != "IC2" {
		t.Fatalf("filtered children: %v", visible)
	}
	// The hidden child is filtered, not unloaded.
	if len(root.Core().Children()) != 2 {
		t.Fatalf("filter mutated cached children")
	}
	if childrenCalls != 1 {
		t.Fatalf("filter change triggered a fetch")
	}

	tree.SetFilteredTypes(nil)
	if len(tree.VisibleChildren(root)) != 2 {
		t.Fatalf("clearing the filter did not restore children")
	}
}

func TestTreeSelection(t *testing.T) {
	_, tree := treeFixture(t, &fakeClient{})
	if _, ok := tree.Selected(); ok {
		t.Fatalf("fresh tree has a selection")
	}
	tree.SetSelected("IC1")
	if got, ok := tree.Selected(); !ok || got != "IC1" {
		t.Fatalf("Selected: %s ok=%v", got, ok)
	}
	tree.SetSelected("")
	if _, ok := tree.Selected(); ok {
		t.Fatalf("empty identifier did not clear the selection")
	}
}
