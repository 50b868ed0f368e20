package memory

import (
	"sync"

	"tradepost/internal/domain/entity"
)

// Store is a concurrency-safe in-memory backend. One mutex guards all state;
// the invariants it protects are the same ones the Firestore repositories
// enforce with document transactions.
type Store struct {
	mu         sync.RWMutex
	listings   map[string]*entity.Listing
	bids       map[string][]*entity.Bid // itemID -> bids in acceptance order
	roomsByKey map[string]*entity.NegotiationRoom
	roomsByID  map[string]*entity.NegotiationRoom
	messages   map[string][]*entity.Message // roomID -> messages in sequence order
	categories []*entity.Category
}

func NewStore() *Store {
	return &Store{
		listings:   make(map[string]*entity.Listing),
		bids:       make(map[string][]*entity.Bid),
		roomsByKey: make(map[string]*entity.NegotiationRoom),
		roomsByID:  make(map[string]*entity.NegotiationRoom),
		messages:   make(map[string][]*entity.Message),
	}
}

// SeedCategories replaces the category list. Intended for dev mode and tests.
func (s *Store) SeedCategories(categories []*entity.Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = categories
}

func cloneListing(l *entity.Listing) *entity.Listing {
	c := *l
	if l.LastClosedPrice != nil {
		price := *l.LastClosedPrice
		c.LastClosedPrice = &price
	}
	return &c
}

func cloneBid(b *entity.Bid) *entity.Bid {
	c := *b
	return &c
}

func cloneRoom(r *entity.NegotiationRoom) *entity.NegotiationRoom {
	c := *r
	return &c
}

func cloneMessage(m *entity.Message) *entity.Message {
	c := *m
	return &c
}
