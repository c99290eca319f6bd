package monitor

import (
	"testing"
	"time"

	"github.com/kasuboski/rollwatch/pkg/cache"
	"github.com/stretchr/testify/assert"
)

func TestSeenKey(t *testing.T) {
	assert.Equal(t, "371980_3", SeenKey(371980, "Severance", 2))
	assert.Equal(t, "Severance_2", SeenKey(0, "Severance", 1))
}

func TestSeenCache(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewSeenCache(cache.WithClock(func() time.Time { return now }))

	assert.False(t, c.SeenRecently("a_2"))

	c.MarkSeen("a_2")
	assert.True(t, c.SeenRecently("a_2"))

	at, ok := c.LastSeen("a_2")
	assert.True(t, ok)
	assert.Equal(t, now, at)

	now = now.Add(6 * 24 * time.Hour)
	assert.True(t, c.SeenRecently("a_2"))

	now = now.Add(2 * 24 * time.Hour)
	c.MarkSeen("b_2")
	assert.False(t, c.SeenRecently("a_2"), "entries older than a week are purged")
	assert.Equal(t, 1, c.Len())
}
