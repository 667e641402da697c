package core

import (
	"context"
	"sync"
	"time"

	"inventoryclient/internal/api"
)

// fakeClient implements api.Client with pluggable behaviour per endpoint.
// Unconfigured endpoints return empty results.
type fakeClient struct {
	searchFunc            func(ctx context.Context, params api.SearchParams) (*api.SearchResultPayload, error)
	containerChildrenFunc func(ctx context.Context, globalID string) ([]api.RecordPayload, error)
	bulkMoveFunc          func(ctx context.Context, req api.BulkMoveRequest) (*api.BulkResultPayload, error)
	listBasketsFunc       func(ctx context.Context) ([]api.BasketPayload, error)
	createBasketFunc      func(ctx context.Context, req api.CreateBasketRequest) (*api.BasketPayload, error)
	addBasketItemsFunc    func(ctx context.Context, basketID int64, req api.AddBasketItemsRequest) (*api.BasketPayload, error)
}

func (f *fakeClient) Search(ctx context.Context, params api.SearchParams) (*api.SearchResultPayload, error) {
	if f.searchFunc == nil {
		return &api.SearchResultPayload{Results: []api.RecordPayload{}}, nil
	}
	return f.searchFunc(ctx, params)
}

func (f *fakeClient) ContainerChildren(ctx context.Context, globalID string) ([]api.RecordPayload, error) {
	if f.containerChildrenFunc == nil {
		return []api.RecordPayload{}, nil
	}
	return f.containerChildrenFunc(ctx, globalID)
}

func (f *fakeClient) BulkMove(ctx context.Context, req api.BulkMoveRequest) (*api.BulkResultPayload, error) {
	if f.bulkMoveFunc == nil {
		return &api.BulkResultPayload{}, nil
	}
	return f.bulkMoveFunc(ctx, req)
}

func (f *fakeClient) ListBaskets(ctx context.Context) ([]api.BasketPayload, error) {
	if f.listBasketsFunc == nil {
		return []api.BasketPayload{}, nil
	}
	return f.listBasketsFunc(ctx)
}

func (f *fakeClient) CreateBasket(ctx context.Context, req api.CreateBasketRequest) (*api.BasketPayload, error) {
	if f.createBasketFunc == nil {
		return &api.BasketPayload{Name: req.Name}, nil
	}
	return f.createBasketFunc(ctx, req)
}

func (f *fakeClient) AddBasketItems(ctx context.Context, basketID int64, req api.AddBasketItemsRequest) (*api.BasketPayload, error) {
	if f.addBasketItemsFunc == nil {
		return &api.BasketPayload{}, nil
	}
	return f.addBasketItemsFunc(ctx, basketID, req)
}

// countingMetrics records observations for assertion.
type countingMetrics struct {
	mu         sync.Mutex
	observed   map[string]int
	failures   map[string]int
	staleDrops map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{
		observed:   make(map[string]int),
		failures:   make(map[string]int),
		staleDrops: make(map[string]int),
	}
}

func (m *countingMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observed[operation]++
	if !success {
		m.failures[operation]++
	}
}

func (m *countingMetrics) StaleDrop(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staleDrops[operation]++
}

func (m *countingMetrics) staleCount(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.staleDrops[operation]
}

func subSamplePayload(id int64, globalID, name string) api.RecordPayload {
	return api.RecordPayload{ID: &id, GlobalID: globalID, RecordType: "SUBSAMPLE", Name: name}
}

func samplePayload(id int64, globalID, name string) api.RecordPayload {
	return api.RecordPayload{ID: &id, GlobalID: globalID, RecordType: "SAMPLE", Name: name}
}

func listContainerPayload(id int64, globalID, name string) api.RecordPayload {
	return api.RecordPayload{ID: &id, GlobalID: globalID, RecordType: "CONTAINER", Name: name, CType: "LIST"}
}

func gridContainerPayload(id int64, globalID, name string, rows, cols int) api.RecordPayload {
	return api.RecordPayload{
		ID: &id, GlobalID: globalID, RecordType: "CONTAINER", Name: name, CType: "GRID",
		GridLayout: &api.GridLayoutPayload{RowsNumber: rows, ColumnsNumber: cols},
	}
}

func searchPage(totalHits, pageNumber int, results ...api.RecordPayload) *api.SearchResultPayload {
	if results == nil {
		results = []api.RecordPayload{}
	}
	return &api.SearchResultPayload{TotalHits: totalHits, PageNumber: pageNumber, Results: results}
}
