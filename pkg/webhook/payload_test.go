package webhook

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

const seriesDownload = `{
	"instanceName": "Sonarr",
	"eventType": "Download",
	"isUpgrade": false,
	"series": {"id": 12, "title": "Severance", "tvdbId": 371980, "imdbId": "tt11280740"},
	"episodes": [{"id": 101, "seasonNumber": 2, "episodeNumber": 3, "title": "Who Is Alive?"}],
	"episodeFile": {"id": 55, "relativePath": "Season 02/Severance - S02E03.mkv"}
}`

func TestDecode(t *testing.T) {
	t.Run("series", func(t *testing.T) {
		p, err := Decode([]byte(seriesDownload))
		require.NoError(t, err)

		assert.Equal(t, KindSeries, p.Kind)
		assert.Equal(t, "Sonarr", p.InstanceName)
		assert.Equal(t, EventTypeDownload, p.EventType)
		require.NotNil(t, p.Series)
		assert.Nil(t, p.Movie)
		require.NotNil(t, p.Series.Series)
		assert.Equal(t, int64(12), p.Series.Series.ID)
		assert.Equal(t, 371980, p.Series.Series.TvdbID)
		require.Len(t, p.Series.Episodes, 1)
		assert.Equal(t, 2, p.Series.Episodes[0].SeasonNumber)
		assert.True(t, p.Series.HasFile)
		assert.Equal(t, "Severance S02E03", p.Describe())
	})

	t.Run("series with episode files", func(t *testing.T) {
		p, err := Decode([]byte(`{"eventType":"Download","series":{"id":1,"title":"X"},"episodes":[{"seasonNumber":1,"episodeNumber":1}],"episodeFiles":[{"id":1}]}`))
		require.NoError(t, err)
		assert.Equal(t, KindSeries, p.Kind)
		assert.True(t, p.Series.HasFile)
	})

	t.Run("series without file", func(t *testing.T) {
		p, err := Decode([]byte(`{"eventType":"Download","series":{"id":1,"title":"X"},"episodes":[{"seasonNumber":1,"episodeNumber":1}],"episodeFile":null}`))
		require.NoError(t, err)
		assert.False(t, p.Series.HasFile)
	})

	t.Run("episodes without series", func(t *testing.T) {
		p, err := Decode([]byte(`{"eventType":"Download","episodes":[{"seasonNumber":1,"episodeNumber":1}]}`))
		require.NoError(t, err)
		assert.Equal(t, KindSeries, p.Kind)
		assert.Nil(t, p.Series.Series)
		assert.Equal(t, "", p.Title())
	})

	t.Run("movie", func(t *testing.T) {
		p, err := Decode([]byte(`{"instanceName":"Radarr","eventType":"Download","movie":{"id":7,"title":"Dune","year":2021,"tmdbId":438631},"movieFile":{"id":3}}`))
		require.NoError(t, err)
		assert.Equal(t, KindMovie, p.Kind)
		assert.Nil(t, p.Series)
		require.NotNil(t, p.Movie)
		assert.Equal(t, "Dune", p.Title())
		assert.True(t, p.Movie.HasFile)
		assert.Equal(t, "Dune (2021)", p.Describe())
	})

	t.Run("test event", func(t *testing.T) {
		p, err := Decode([]byte(`{"eventType":"Test","series":{"id":1,"title":"Test Title"},"episodes":[{"seasonNumber":1,"episodeNumber":1}]}`))
		require.NoError(t, err)
		assert.Equal(t, KindTest, p.Kind)
		assert.Nil(t, p.Series)
	})

	t.Run("unknown", func(t *testing.T) {
		p, err := Decode([]byte(`{"eventType":"Health"}`))
		require.NoError(t, err)
		assert.Equal(t, KindUnknown, p.Kind)
		assert.Equal(t, "unknown", p.Describe())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Decode([]byte(`{"eventType":`))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}
