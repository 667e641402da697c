package core

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"inventoryclient/internal/api"
	"inventoryclient/internal/logging"
	"inventoryclient/pkg/domain"
	"inventoryclient/pkg/signal"
)

// NewBasketName labels the sentinel entry representing "create a new basket"
// in target-basket pickers.
const NewBasketName = "NEW BASKET"

// BasketStore manages the user's baskets: listing, creation with client-side
// validation, and item addition. The server is authoritative on item
// duplicates; the client only validates names.
type BasketStore struct {
	client api.Client
	log    *logging.Logger

	mu      sync.Mutex
	baskets []*domain.Basket
	// sentinel is the distinguished unsaved basket offered as the
	// "create new" option alongside real baskets.
	sentinel *domain.Basket

	// Changed fires after the basket list mutates.
	Changed signal.Signal[struct{}]
}

// NewBasketStore constructs a basket store.
func NewBasketStore(client api.Client, log *logging.Logger) *BasketStore {
	if log == nil {
		log = logging.Nop()
	}
	return &BasketStore{
		client:   client,
		log:      log,
		sentinel: domain.NewBasket(NewBasketName),
	}
}

// Baskets returns the user's baskets from the last refresh.
func (s *BasketStore) Baskets() []*domain.Basket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*domain.Basket(nil), s.baskets...)
}

// Options returns the baskets plus the NEW_BASKET sentinel, for pickers.
func (s *BasketStore) Options() []*domain.Basket {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]*domain.Basket(nil), s.baskets...)
	return append(out, s.sentinel)
}

// IsNewBasketSentinel reports whether b is the "create a new basket" option.
func (s *BasketStore) IsNewBasketSentinel(b *domain.Basket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return b == s.sentinel
}

// GetBaskets refreshes the full basket list.
func (s *BasketStore) GetBaskets(ctx context.Context) error {
	payloads, err := s.client.ListBaskets(ctx)
	if err != nil {
		return err
	}
	baskets := make([]*domain.Basket, 0, len(payloads))
	for _, p := range payloads {
		b, err := hydrateBasket(p)
		if err != nil {
			return err
		}
		baskets = append(baskets, b)
	}
	s.mu.Lock()
	s.baskets = baskets
	s.mu.Unlock()
	s.Changed.Emit(struct{}{})
	return nil
}

// CreateBasket validates the name and creates a basket holding the given
// items. Validation failures are reported synchronously, before any request
// is issued.
func (s *BasketStore) CreateBasket(ctx context.Context, name string, items []domain.GlobalID) (*domain.Basket, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &domain.ValidationError{Field: "name", Reason: "empty basket name"}
	}
	if utf8.RuneCountInString(name) > domain.MaxBasketNameLength {
		return nil, &domain.ValidationError{Field: "name", Reason: "basket name longer than 32 characters"}
	}
	s.mu.Lock()
	for _, existing := range s.baskets {
		if existing.Name() == name {
			s.mu.Unlock()
			return nil, &domain.ValidationError{Field: "name", Reason: "basket " + name + " already exists"}
		}
	}
	s.mu.Unlock()

	req := api.CreateBasketRequest{Name: name}
	for _, id := range items {
		req.ItemIDs = append(req.ItemIDs, string(id))
	}
	created, err := s.client.CreateBasket(ctx, req)
	if err != nil {
		return nil, err
	}
	b, err := hydrateBasket(*created)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.baskets = append(s.baskets, b)
	s.mu.Unlock()
	s.Changed.Emit(struct{}{})
	return b, nil
}

// AddItems appends items to an existing basket. No client-side duplicate
// check is performed; the server response is authoritative for the resulting
// membership.
func (s *BasketStore) AddItems(ctx context.Context, b *domain.Basket, items []domain.GlobalID) error {
	id, saved := b.Core().ID()
	if !saved {
		return &domain.ValidationError{Field: "basket", Reason: "basket has not been created yet"}
	}
	req := api.AddBasketItemsRequest{}
	for _, item := range items {
		req.ItemIDs = append(req.ItemIDs, string(item))
	}
	b.SetLoading(true)
	defer b.SetLoading(false)

	started := time.Now()
	updated, err := s.client.AddBasketItems(ctx, id, req)
	if err != nil {
		s.log.Warn("add basket items failed", "basket", b.Name(), "elapsed", time.Since(started), "err", err)
		return err
	}
	if len(updated.ItemIDs) > 0 {
		ids, err := parseItemIDs(updated.ItemIDs)
		if err != nil {
			return err
		}
		b.SetItems(ids)
	} else {
		b.AddItems(items)
	}
	s.Changed.Emit(struct{}{})
	return nil
}

func hydrateBasket(p api.BasketPayload) (*domain.Basket, error) {
	b := domain.NewBasket(p.Name)
	if p.ID != nil && p.GlobalID != "" {
		gid, err := domain.ParseGlobalID(p.GlobalID)
		if err != nil {
			return nil, err
		}
		b.Core().SetIdentityFromServer(*p.ID, gid)
	}
	if len(p.ItemIDs) > 0 {
		ids, err := parseItemIDs(p.ItemIDs)
		if err != nil {
			return nil, err
		}
		b.SetItems(ids)
	}
	return b, nil
}

func parseItemIDs(raw []string) ([]domain.GlobalID, error) {
	ids := make([]domain.GlobalID, 0, len(raw))
	for _, r := range raw {
		id, err := domain.ParseGlobalID(r)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
