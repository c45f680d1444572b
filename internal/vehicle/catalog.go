package vehicle

import (
	"context"
	"fmt"
	"sync"
)

// Catalog is an in-memory cache of the movement operations catalog.
// The catalog is small and effectively static, so it is loaded once at
// startup and refreshed on demand.
type Catalog struct {
	repo Repository

	mu  sync.RWMutex
	ops map[int]string
}

// NewCatalog creates an operations catalog backed by the given repository.
// Call Refresh before first use.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{
		repo: repo,
		ops:  make(map[int]string),
	}
}

// Refresh reloads the catalog from storage.
func (c *Catalog) Refresh(ctx context.Context) error {
	ops, err := c.repo.ListOperations(ctx)
	if err != nil {
		return fmt.Errorf("loading operations catalog: %w", err)
	}

	next := make(map[int]string, len(ops))
	for _, op := range ops {
		next[op.Code] = op.Text
	}

	c.mu.Lock()
	c.ops = next
	c.mu.Unlock()
	return nil
}

// HasOperation reports whether the given code exists in the catalog.
func (c *Catalog) HasOperation(code int) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.ops[code]
	return ok
}

// OperationText returns the catalog text for a code, or "" if unknown.
func (c *Catalog) OperationText(code int) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ops[code]
}
