package obstacle

import (
	"context"
	"fmt"
	"sync"
)

// Catalog is an in-memory cache of the obstacle classification catalog,
// loaded once at startup and refreshed on demand.
type Catalog struct {
	repo Repository

	mu      sync.RWMutex
	entries map[int]string
}

// NewCatalog creates a classification catalog backed by the given
// repository. Call Refresh before first use.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{
		repo:    repo,
		entries: make(map[int]string),
	}
}

// Refresh reloads the catalog from storage.
func (c *Catalog) Refresh(ctx context.Context) error {
	entries, err := c.repo.ListCatalog(ctx)
	if err != nil {
		return fmt.Errorf("loading obstacle catalog: %w", err)
	}

	next := make(map[int]string, len(entries))
	for _, e := range entries {
		next[e.Code] = e.Text
	}

	c.mu.Lock()
	c.entries = next
	c.mu.Unlock()
	return nil
}

// HasCode reports whether the given classification code exists.
func (c *Catalog) HasCode(code int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[code]
	return ok
}
