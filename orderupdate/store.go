package orderupdate

import (
	"sync"
)

// Store holds the latest update per order ID. Updates replace the prior
// state wholesale, mirroring the tick cache: readers see either the previous
// complete update or the new one, never a mix.
type Store struct {
	mu     sync.RWMutex
	orders map[string]*OrderUpdate
}

// NewStore creates an empty order store
func NewStore() *Store {
	return &Store{
		orders: make(map[string]*OrderUpdate),
	}
}

// Apply replaces the stored update for its order ID
func (s *Store) Apply(update *OrderUpdate) {
	s.mu.Lock()
	s.orders[update.ID] = update
	s.mu.Unlock()
}

// Get returns a copy of the latest update for an order ID
func (s *Store) Get(orderID string) (OrderUpdate, bool) {
	s.mu.RLock()
	update, ok := s.orders[orderID]
	s.mu.RUnlock()
	if !ok {
		return OrderUpdate{}, false
	}
	return *update, true
}

// Orders returns copies of all tracked orders
func (s *Store) Orders() []OrderUpdate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]OrderUpdate, 0, len(s.orders))
	for _, update := range s.orders {
		out = append(out, *update)
	}
	return out
}

// Len returns the number of tracked orders
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.orders)
}
