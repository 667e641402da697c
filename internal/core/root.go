package core

import (
	"time"

	"inventoryclient/internal/api"
	"inventoryclient/internal/logging"
	"inventoryclient/pkg/domain"
)

// RootConfig carries everything needed to assemble a RootStore.
type RootConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	// Eligible, when set, backs Search.AlwaysFilterOut.
	Eligible func(domain.Record) bool

	Logger  *logging.Logger
	Metrics MetricsRecorder
	Cache   RecordCache
}

// RootStore is the explicitly constructed context object holding every store
// of one client session. It is built once per session and passed by
// reference to whatever front end consumes it; there is no module-level
// shared state.
type RootStore struct {
	Log     *logging.Logger
	Metrics MetricsRecorder
	API     api.Client
	Factory *Factory
	Search  *Search
	Move    *MoveStore
	Baskets *BasketStore

	cache RecordCache
}

// NewRootStore wires the transport, factory, and stores together. When a
// record cache is supplied the factory warm-starts from it and writes every
// memoised payload through.
func NewRootStore(cfg RootConfig) (*RootStore, error) {
	log := cfg.Logger
	if log == nil {
		log = logging.Nop()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = NopMetricsRecorder{}
	}
	client, err := api.New(log, api.Config{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		Timeout: cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}

	factory := NewFactory(Memoised)
	if cfg.Cache != nil {
		factory.AttachCache(cfg.Cache)
		loaded, err := factory.WarmStart()
		if err != nil {
			log.Warn("record cache warm-start failed", "err", err)
		} else if loaded > 0 {
			log.Info("record cache warm-start", "records", loaded)
		}
	}

	fetcher := NewFetcher(client, factory, log, metrics)
	var searchOpts []SearchOption
	if cfg.Eligible != nil {
		searchOpts = append(searchOpts, WithEligibility(cfg.Eligible))
	}
	search := NewSearch(fetcher, log, searchOpts...)
	move := NewMoveStore(client, factory, search, log, metrics)
	baskets := NewBasketStore(client, log)

	return &RootStore{
		Log:     log,
		Metrics: metrics,
		API:     client,
		Factory: factory,
		Search:  search,
		Move:    move,
		Baskets: baskets,
		cache:   cfg.Cache,
	}, nil
}

// Close releases session resources (the record cache, buffered log entries).
func (r *RootStore) Close() error {
	r.Log.Sync()
	if r.cache != nil {
		return r.cache.Close()
	}
	return nil
}
