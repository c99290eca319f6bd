package webhook

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seriesPayload(t *testing.T, body string) Payload {
	t.Helper()
	p, err := Decode([]byte(body))
	require.NoError(t, err)
	return p
}

func TestFingerprint(t *testing.T) {
	download := seriesPayload(t, seriesDownload)

	upgrade := seriesPayload(t, seriesDownload)
	upgrade.IsUpgrade = true
	upgrade.EventType = "Upgrade"

	assert.Equal(t, Fingerprint(download), Fingerprint(upgrade))
	assert.Len(t, Fingerprint(download), 64)

	other := seriesPayload(t, seriesDownload)
	other.Series.Episodes = []EpisodeInfo{{SeasonNumber: 2, EpisodeNumber: 4}}
	assert.NotEqual(t, Fingerprint(download), Fingerprint(other))

	otherInstance := seriesPayload(t, seriesDownload)
	otherInstance.InstanceName = "Sonarr 4K"
	assert.NotEqual(t, Fingerprint(download), Fingerprint(otherInstance))

	movie := Payload{Kind: KindMovie, InstanceName: "Sonarr", Movie: &MovieEvent{Movie: MovieInfo{ID: 12, Title: "Severance"}}}
	assert.NotEqual(t, Fingerprint(download), Fingerprint(movie))
}

func TestDeduplicator_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "test event",
			body: `{"eventType":"Test","series":{"id":1,"title":"Test"},"episodes":[{"seasonNumber":1,"episodeNumber":1}],"episodeFile":{}}`,
		},
		{
			name: "missing series",
			body: `{"eventType":"Download","episodes":[{"seasonNumber":1,"episodeNumber":1}],"episodeFile":{}}`,
		},
		{
			name: "series without id",
			body: `{"eventType":"Download","series":{"title":"X"},"episodes":[{"seasonNumber":1,"episodeNumber":1}],"episodeFile":{}}`,
		},
		{
			name: "empty episodes",
			body: `{"eventType":"Download","series":{"id":1,"title":"X"},"episodes":[],"episodeFile":{}}`,
		},
		{
			name: "grab event",
			body: `{"eventType":"Grab","series":{"id":1,"title":"X"},"episodes":[{"seasonNumber":1,"episodeNumber":1}],"episodeFile":{}}`,
		},
		{
			name: "missing event type",
			body: `{"series":{"id":1,"title":"X"},"episodes":[{"seasonNumber":1,"episodeNumber":1}],"episodeFile":{}}`,
		},
		{
			name: "no file information",
			body: `{"eventType":"Download","series":{"id":1,"title":"X"},"episodes":[{"seasonNumber":1,"episodeNumber":1}]}`,
		},
		{
			name: "unknown shape",
			body: `{"eventType":"Download"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDeduplicator()
			assert.False(t, d.IsWebhookProcessable(context.Background(), seriesPayload(t, tt.body)))
		})
	}
}

func TestDeduplicator_Window(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	d := NewDeduplicator(WithDedupClock(clock.Now))

	download := seriesPayload(t, seriesDownload)
	upgrade := seriesPayload(t, seriesDownload)
	upgrade.IsUpgrade = true

	assert.True(t, d.IsWebhookProcessable(ctx, download))
	assert.False(t, d.IsWebhookProcessable(ctx, download))

	clock.Advance(5 * time.Second)
	assert.False(t, d.IsWebhookProcessable(ctx, upgrade))

	clock.Advance(6 * time.Second)
	assert.True(t, d.IsWebhookProcessable(ctx, upgrade))
}

func TestDeduplicator_Forget(t *testing.T) {
	ctx := context.Background()
	d := NewDeduplicator()

	download := seriesPayload(t, seriesDownload)
	assert.True(t, d.IsWebhookProcessable(ctx, download))
	assert.False(t, d.IsWebhookProcessable(ctx, download))

	d.Forget(download)
	assert.True(t, d.IsWebhookProcessable(ctx, download))
}

func TestDeduplicator_Movie(t *testing.T) {
	ctx := context.Background()
	d := NewDeduplicator(WithSource("radarr"))

	p := seriesPayload(t, `{"instanceName":"Radarr","eventType":"Download","movie":{"id":7,"title":"Dune"}}`)
	assert.True(t, d.IsWebhookProcessable(ctx, p))
	assert.False(t, d.IsWebhookProcessable(ctx, p))
}

func TestDeduplicator_ConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	d := NewDeduplicator()
	p := seriesPayload(t, seriesDownload)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if d.IsWebhookProcessable(ctx, p) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
}
