package ticks

import (
	"sync"
)

// Cache maps symbols to their latest Snapshot. Writes normally arrive from a
// single ingestion goroutine, but the guard is an explicit RWMutex rather than
// an assumption: readers may come from arbitrary goroutines, and snapshots are
// swapped wholesale so a reader sees either the prior complete snapshot or the
// new one, never a mix of fields.
type Cache struct {
	mu        sync.RWMutex
	snapshots map[string]*Snapshot
}

// NewCache creates an empty tick cache
func NewCache() *Cache {
	return &Cache{
		snapshots: make(map[string]*Snapshot),
	}
}

// Apply replaces the snapshot for its symbol
func (c *Cache) Apply(snap *Snapshot) {
	c.mu.Lock()
	c.snapshots[snap.Symbol] = snap
	c.mu.Unlock()
}

// ApplyMessage parses a raw decoded tick message and applies it. Malformed
// messages return an error and leave the cache untouched.
func (c *Cache) ApplyMessage(data []byte) (*Snapshot, error) {
	snap, err := ParseSnapshot(data)
	if err != nil {
		return nil, err
	}
	c.Apply(snap)
	return snap, nil
}

// Get returns a copy of the latest snapshot for the symbol
func (c *Cache) Get(symbol string) (Snapshot, bool) {
	c.mu.RLock()
	snap, ok := c.snapshots[symbol]
	c.mu.RUnlock()
	if !ok {
		return Snapshot{}, false
	}
	return *snap, true
}

// LastPrice returns the last traded price of the symbol, or false if the
// symbol has never been observed on the feed
func (c *Cache) LastPrice(symbol string) (float64, bool) {
	c.mu.RLock()
	snap, ok := c.snapshots[symbol]
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	return snap.LastTradedPrice, true
}

// Symbols returns the symbols currently held in the cache
func (c *Cache) Symbols() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.snapshots))
	for symbol := range c.snapshots {
		out = append(out, symbol)
	}
	return out
}

// Len returns the number of cached snapshots
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}
