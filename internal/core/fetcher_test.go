package core

import (
	"context"
	"errors"
	"testing"

	"inventoryclient/internal/api"
)

func newTestFetcher(client api.Client, metrics MetricsRecorder) *Fetcher {
	return NewFetcher(client, NewFactory(Memoised), nil, metrics)
}

func TestPerformInitialSearchPopulatesBuffer(t *testing.T) {
	client := &fakeClient{
		searchFunc: func(_ context.Context, params api.SearchParams) (*api.SearchResultPayload, error) {
			if params.PageNumber != 0 {
				t.Errorf("initial search requested page %d", params.PageNumber)
			}
			if params.PageSize != DefaultPageSize {
				t.Errorf("page size not defaulted: %d", params.PageSize)
			}
			return searchPage(2, 0, samplePayload(1, "SA1", "one"), samplePayload(2, "SA2", "two")), nil
		},
	}
	f := newTestFetcher(client, nil)
	notified := 0
	f.Changed.Subscribe(func(struct{}) { notified++ })

	if err := f.PerformInitialSearch(context.Background(), api.SearchParams{Query: "x"}); err != nil {
		t.Fatalf("PerformInitialSearch: %v", err)
	}
	results := f.Results()
	if len(results) != 2 || results[0].Core().Key() != "SA1" {
		t.Fatalf("results: %v", results)
	}
	if f.TotalHits() != 2 {
		t.Fatalf("total hits: %d", f.TotalHits())
	}
	if notified != 1 {
		t.Fatalf("Changed emissions: %d", notified)
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	alphaEntered := make(chan struct{})
	alphaRelease := make(chan struct{})
	client := &fakeClient{
		searchFunc: func(_ context.Context, params api.SearchParams) (*api.SearchResultPayload, error) {
			switch params.Query {
			case "alpha":
				close(alphaEntered)
				<-alphaRelease
				return searchPage(1, 0, samplePayload(1, "SA1", "alpha hit")), nil
			case "beta":
				return searchPage(2, 0, samplePayload(2, "SA2", "beta hit"), samplePayload(3, "SA3", "beta hit 2")), nil
			default:
				t.Errorf("unexpected query %q", params.Query)
				return searchPage(0, 0), nil
			}
		},
	}
	metrics := newCountingMetrics()
	f := newTestFetcher(client, metrics)

	done := make(chan error, 1)
	go func() {
		done <- f.PerformInitialSearch(context.Background(), api.SearchParams{Query: "alpha"})
	}()
	<-alphaEntered

	// A newer search completes while the first response is still in flight.
	if err := f.PerformInitialSearch(context.Background(), api.SearchParams{Query: "beta"}); err != nil {
		t.Fatalf("beta search: %v", err)
	}
	close(alphaRelease)
	if err := <-done; err != nil {
		t.Fatalf("alpha search: %v", err)
	}

	results := f.Results()
	if len(results) != 2 || results[0].Core().Name() != "beta hit" {
		t.Fatalf("stale response overwrote newer results: %v", results)
	}
	if metrics.staleCount("search") != 1 {
		t.Fatalf("stale drops: %d", metrics.staleCount("search"))
	}
}

func TestLoadNextPageAppends(t *testing.T) {
	client := &fakeClient{
		searchFunc: func(_ context.Context, params api.SearchParams) (*api.SearchResultPayload, error) {
			switch params.PageNumber {
			case 0:
				return searchPage(3, 0, samplePayload(1, "SA1", "one"), samplePayload(2, "SA2", "two")), nil
			case 1:
				return searchPage(3, 1, samplePayload(3, "SA3", "three")), nil
			default:
				t.Errorf("unexpected page %d", params.PageNumber)
				return searchPage(3, params.PageNumber), nil
			}
		},
	}
	f := newTestFetcher(client, nil)
	ctx := context.Background()
	if err := f.PerformInitialSearch(ctx, api.SearchParams{PageSize: 2}); err != nil {
		t.Fatalf("PerformInitialSearch: %v", err)
	}
	if err := f.LoadNextPage(ctx); err != nil {
		t.Fatalf("LoadNextPage: %v", err)
	}
	results := f.Results()
	if len(results) != 3 || results[2].Core().Key() != "SA3" {
		t.Fatalf("results after next page: %v", results)
	}
	if f.PageNumber() != 1 {
		t.Fatalf("page number: %d", f.PageNumber())
	}

	// Everything is loaded; a further call must not hit the API.
	client.searchFunc = func(context.Context, api.SearchParams) (*api.SearchResultPayload, error) {
		t.Errorf("LoadNextPage fetched past the last hit")
		return searchPage(3, 2), nil
	}
	if err := f.LoadNextPage(ctx); err != nil {
		t.Fatalf("LoadNextPage at end: %v", err)
	}
}

func TestFailedSearchLeavesBufferUntouched(t *testing.T) {
	calls := 0
	client := &fakeClient{
		searchFunc: func(context.Context, api.SearchParams) (*api.SearchResultPayload, error) {
			calls++
			if calls == 1 {
				return searchPage(1, 0, samplePayload(1, "SA1", "kept")), nil
			}
			return nil, errors.New("boom")
		},
	}
	metrics := newCountingMetrics()
	f := newTestFetcher(client, metrics)
	ctx := context.Background()
	if err := f.PerformInitialSearch(ctx, api.SearchParams{}); err != nil {
		t.Fatalf("PerformInitialSearch: %v", err)
	}
	if err := f.PerformInitialSearch(ctx, api.SearchParams{}); err == nil {
		t.Fatalf("expected error from second search")
	}
	results := f.Results()
	if len(results) != 1 || results[0].Core().Name() != "kept" {
		t.Fatalf("failed search disturbed the buffer: %v", results)
	}
	metrics.mu.Lock()
	failed := metrics.failures["search"]
	metrics.mu.Unlock()
	if failed != 1 {
		t.Fatalf("failure observations: %d", failed)
	}
}

func TestReplaceInstanceSwapsByKey(t *testing.T) {
	client := &fakeClient{
		searchFunc: func(context.Context, api.SearchParams) (*api.SearchResultPayload, error) {
			return searchPage(1, 0, subSamplePayload(5, "SS5", "aliquot")), nil
		},
	}
	f := newTestFetcher(client, nil)
	if err := f.PerformInitialSearch(context.Background(), api.SearchParams{}); err != nil {
		t.Fatalf("PerformInitialSearch: %v", err)
	}
	old := f.Results()[0]

	fresh, err := f.factory.Reinstantiate(subSamplePayload(5, "SS5", "aliquot moved"))
	if err != nil {
		t.Fatalf("Reinstantiate: %v", err)
	}
	f.ReplaceInstance(fresh)
	got := f.Results()[0]
	if got == old {
		t.Fatalf("buffer still holds the old instance")
	}
	if got != fresh {
		t.Fatalf("buffer does not hold the replacement")
	}
}

func TestRefreshReusesLastParams(t *testing.T) {
	var lastQuery string
	client := &fakeClient{
		searchFunc: func(_ context.Context, params api.SearchParams) (*api.SearchResultPayload, error) {
			lastQuery = params.Query
			return searchPage(0, 0), nil
		},
	}
	f := newTestFetcher(client, nil)
	ctx := context.Background()
	if err := f.PerformInitialSearch(ctx, api.SearchParams{Query: "plasmid"}); err != nil {
		t.Fatalf("PerformInitialSearch: %v", err)
	}
	lastQuery = ""
	if err := f.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if lastQuery != "plasmid" {
		t.Fatalf("refresh query: %q", lastQuery)
	}
}
