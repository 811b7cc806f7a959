package artifact

import (
	"context"
	"sync"
	"time"

	"github.com/JorjanDorjan/ML-for-agile-methodology/ml"
)

// Cache holds the last loaded artifact and reloads it whenever the store's
// LastModified stamp differs from the one it was loaded under.
type Cache struct {
	store    Store
	onReload func(*ml.Artifact)

	mu      sync.RWMutex
	current *ml.Artifact
	stamp   time.Time
}

// NewCache wraps store. onReload, when set, is called after every (re)load.
func NewCache(store Store, onReload func(*ml.Artifact)) *Cache {
	return &Cache{store: store, onReload: onReload}
}

// Get returns the latest stored artifact. The returned value is shared and
// must be treated as read-only.
func (c *Cache) Get(ctx context.Context) (*ml.Artifact, error) {
	stamp, err := c.store.LastModified(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	if c.current != nil && c.stamp.Equal(stamp) {
		a := c.current
		c.mu.RUnlock()
		return a, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != nil && c.stamp.Equal(stamp) {
		return c.current, nil
	}
	a, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}
	c.current, c.stamp = a, stamp
	if c.onReload != nil {
		c.onReload(a)
	}
	return a, nil
}
