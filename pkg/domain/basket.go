package domain

import "sort"

// MaxBasketNameLength is the longest basket name the server accepts.
const MaxBasketNameLength = 32

// Basket is a named, user-curated set of item references, independent of the
// container hierarchy. Item order is irrelevant; the server is authoritative
// on duplicates.
type Basket struct {
	RecordCore
	items   map[GlobalID]struct{}
	loading bool
}

// NewBasket constructs an unsaved basket (id and global id assigned by the
// server on creation).
func NewBasket(name string) *Basket {
	return &Basket{RecordCore: NewRecordCore(name), items: make(map[GlobalID]struct{})}
}

// Type implements Record.
func (b *Basket) Type() RecordType { return RecordTypeBasket }

// Core implements Record.
func (b *Basket) Core() *RecordCore { return &b.RecordCore }

// Items returns the member identifiers in stable sorted order.
func (b *Basket) Items() []GlobalID {
	ids := make([]GlobalID, 0, len(b.items))
	for id := range b.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ItemCount returns the number of member identifiers.
func (b *Basket) ItemCount() int { return len(b.items) }

// Contains reports membership of one identifier.
func (b *Basket) Contains(id GlobalID) bool {
	_, ok := b.items[id]
	return ok
}

// AddItems records identifiers as members. No client-side duplicate check is
// performed beyond set semantics.
func (b *Basket) AddItems(ids []GlobalID) {
	if b.items == nil {
		b.items = make(map[GlobalID]struct{})
	}
	for _, id := range ids {
		b.items[id] = struct{}{}
	}
}

// SetItems replaces the member set during payload hydration.
func (b *Basket) SetItems(ids []GlobalID) {
	b.items = make(map[GlobalID]struct{}, len(ids))
	for _, id := range ids {
		b.items[id] = struct{}{}
	}
}

// Loading reports whether a network operation for this basket is in flight.
func (b *Basket) Loading() bool { return b.loading }

// SetLoading toggles the in-flight flag.
func (b *Basket) SetLoading(loading bool) { b.loading = loading }
