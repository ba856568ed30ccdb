package telemetry

import "sync"

// Cell holds the one current Snapshot. The poll completion path is its
// only writer; renderers read it. Replacement is always wholesale.
type Cell struct {
	mu      sync.RWMutex
	current Snapshot
	version uint64
}

// NewCell returns a cell seeded with DefaultSnapshot.
func NewCell() *Cell {
	return &Cell{current: DefaultSnapshot()}
}

// Load returns a copy of the current snapshot.
func (c *Cell) Load() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

// Store replaces the current snapshot and returns the new version number.
func (c *Cell) Store(s Snapshot) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = s
	c.version++
	return c.version
}

// Version counts successful replacements; 0 means the default is showing.
func (c *Cell) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}
