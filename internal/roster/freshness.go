package roster

import (
	"context"
	"time"
)

// Freshness controller: tracks the last successful LoadAll and decides
// between a full reload and serving the cached projection. Entry
// points declare their staleness tolerance by choosing force:
//   - attendance view navigation: force=true, to surface other
//     devices' recent sign-ins
//   - sign-in/out navigation: force=false, staleness-gated
//   - periodic background tick: force=false

// LastLoad returns the time of the last successful LoadAll, zero if
// the projection has never been loaded.
func (c *Cache) LastLoad() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastLoad
}

// IsStale reports whether the projection is older than the freshness
// window. A never-loaded projection is always stale.
func (c *Cache) IsStale() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isStaleLocked()
}

func (c *Cache) isStaleLocked() bool {
	if c.lastLoad.IsZero() {
		return true
	}
	return c.clock.Now().Sub(c.lastLoad) > c.maxAge
}

// RefreshIfNeeded reloads the projection when forced or stale, and is
// a no-op otherwise. Returns whether a reload happened.
func (c *Cache) RefreshIfNeeded(ctx context.Context, force bool) (bool, error) {
	if !force && !c.IsStale() {
		return false, nil
	}
	if err := c.LoadAll(ctx); err != nil {
		return false, err
	}
	return true, nil
}
