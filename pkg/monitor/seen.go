package monitor

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kasuboski/rollwatch/pkg/cache"
)

const SeenExpiry = 7 * 24 * time.Hour

// SeenCache remembers which next-season searches were triggered recently.
// Expired entries are purged on every check and mark.
type SeenCache struct {
	entries *cache.Cache[string, struct{}]
	expiry  time.Duration
}

func NewSeenCache(opts ...cache.Option) *SeenCache {
	return &SeenCache{
		entries: cache.New[string, struct{}](opts...),
		expiry:  SeenExpiry,
	}
}

// SeenKey builds the cache key for the season after the one being watched
func SeenKey(tvdbID int, title string, season int) string {
	id := title
	if tvdbID > 0 {
		id = strconv.Itoa(tvdbID)
	}
	return fmt.Sprintf("%s_%d", id, season+1)
}

// SeenRecently reports whether key was marked within the expiry
func (c *SeenCache) SeenRecently(key string) bool {
	c.entries.Sweep(c.expiry)
	_, ok := c.entries.Get(key)
	return ok
}

func (c *SeenCache) MarkSeen(key string) {
	c.entries.Sweep(c.expiry)
	c.entries.Set(key, struct{}{})
}

// LastSeen returns when key was marked
func (c *SeenCache) LastSeen(key string) (time.Time, bool) {
	e, ok := c.entries.Entry(key)
	return e.StoredAt, ok
}

func (c *SeenCache) Len() int {
	return c.entries.Size()
}
