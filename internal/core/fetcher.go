package core

import (
	"context"
	"sync"
	"time"

	"inventoryclient/internal/api"
	"inventoryclient/internal/logging"
	"inventoryclient/pkg/domain"
	"inventoryclient/pkg/signal"
)

// Fetcher performs paginated, filtered searches against the inventory API and
// holds the current page of hydrated results plus paging metadata.
//
// Only the most recently issued search may update the result buffer: each
// request takes a monotonically increasing sequence number, and a response
// whose number is no longer the latest is discarded regardless of arrival
// order. There is no request cancellation beyond context propagation and no
// internal retry; a failed request surfaces once and leaves the buffer
// untouched.
type Fetcher struct {
	api     api.Client
	factory *Factory
	log     *logging.Logger
	metrics MetricsRecorder

	mu         sync.Mutex
	seq        uint64
	params     api.SearchParams
	results    []domain.Record
	totalHits  int
	pageNumber int
	pageSize   int

	// Changed fires after every buffer mutation.
	Changed signal.Signal[struct{}]
}

// DefaultPageSize applies when search params carry no page size.
const DefaultPageSize = 10

// NewFetcher constructs a fetcher over the given transport and factory.
func NewFetcher(client api.Client, factory *Factory, log *logging.Logger, metrics MetricsRecorder) *Fetcher {
	if log == nil {
		log = logging.Nop()
	}
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}
	return &Fetcher{api: client, factory: factory, log: log, metrics: metrics}
}

// PerformInitialSearch issues a fresh search and, if still the latest when
// the response arrives, replaces the result buffer.
func (f *Fetcher) PerformInitialSearch(ctx context.Context, params api.SearchParams) error {
	if params.PageSize <= 0 {
		params.PageSize = DefaultPageSize
	}
	params.PageNumber = 0

	f.mu.Lock()
	f.seq++
	token := f.seq
	f.params = params
	f.mu.Unlock()

	started := time.Now()
	res, err := f.api.Search(ctx, params)
	if err != nil {
		f.metrics.Observe(ctx, "search", false, time.Since(started))
		return err
	}
	f.metrics.Observe(ctx, "search", true, time.Since(started))

	f.mu.Lock()
	if token != f.seq {
		latest := f.seq
		f.mu.Unlock()
		f.metrics.StaleDrop("search")
		f.log.Debug("stale search response discarded", "token", token, "latest", latest)
		return nil
	}
	records, err := f.hydrate(res.Results)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.results = records
	f.totalHits = res.TotalHits
	f.pageNumber = res.PageNumber
	f.pageSize = params.PageSize
	f.mu.Unlock()
	f.Changed.Emit(struct{}{})
	return nil
}

// LoadNextPage fetches the page after the current one and appends it to the
// buffer. It is a no-op when the buffer already covers every hit. A newer
// initial search issued meanwhile invalidates the append.
func (f *Fetcher) LoadNextPage(ctx context.Context) error {
	f.mu.Lock()
	if len(f.results) >= f.totalHits {
		f.mu.Unlock()
		return nil
	}
	f.seq++
	token := f.seq
	params := f.params
	params.PageNumber = f.pageNumber + 1
	f.mu.Unlock()

	started := time.Now()
	res, err := f.api.Search(ctx, params)
	if err != nil {
		f.metrics.Observe(ctx, "search_next_page", false, time.Since(started))
		return err
	}
	f.metrics.Observe(ctx, "search_next_page", true, time.Since(started))

	f.mu.Lock()
	if token != f.seq {
		f.mu.Unlock()
		f.metrics.StaleDrop("search_next_page")
		return nil
	}
	records, err := f.hydrate(res.Results)
	if err != nil {
		f.mu.Unlock()
		return err
	}
	f.results = append(f.results, records...)
	f.totalHits = res.TotalHits
	f.pageNumber = res.PageNumber
	f.mu.Unlock()
	f.Changed.Emit(struct{}{})
	return nil
}

// Refresh re-runs the last-applied search arguments from the first page.
func (f *Fetcher) Refresh(ctx context.Context) error {
	f.mu.Lock()
	params := f.params
	f.mu.Unlock()
	return f.PerformInitialSearch(ctx, params)
}

// hydrate maps payloads through the factory into a fresh slice, leaving the
// buffer untouched when any payload fails to parse.
func (f *Fetcher) hydrate(payloads []api.RecordPayload) ([]domain.Record, error) {
	records := make([]domain.Record, 0, len(payloads))
	for _, p := range payloads {
		rec, err := f.factory.NewRecord(p)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Results returns a copy of the current result buffer.
func (f *Fetcher) Results() []domain.Record {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Record, len(f.results))
	copy(out, f.results)
	return out
}

// Contains reports whether the buffer holds a record with the same key.
func (f *Fetcher) Contains(r domain.Record) bool {
	if r == nil {
		return false
	}
	key := r.Core().Key()
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.results {
		if existing.Core().Key() == key {
			return true
		}
	}
	return false
}

// ReplaceInstance swaps the buffered instance holding the same key as rec,
// used after the factory re-instantiates a record post-move.
func (f *Fetcher) ReplaceInstance(rec domain.Record) {
	if rec == nil {
		return
	}
	key := rec.Core().Key()
	f.mu.Lock()
	replaced := false
	for i, existing := range f.results {
		if existing.Core().Key() == key {
			f.results[i] = rec
			replaced = true
			break
		}
	}
	f.mu.Unlock()
	if replaced {
		f.Changed.Emit(struct{}{})
	}
}

// TotalHits returns the server-reported total for the last applied search.
func (f *Fetcher) TotalHits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totalHits
}

// PageNumber returns the last applied page number.
func (f *Fetcher) PageNumber() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageNumber
}

// PageSize returns the page size of the last applied search.
func (f *Fetcher) PageSize() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pageSize
}

// Params returns the arguments of the most recently issued search.
func (f *Fetcher) Params() api.SearchParams {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.params
}
