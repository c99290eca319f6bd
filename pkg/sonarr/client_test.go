package sonarr

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gobreaker "github.com/sony/gobreaker/v2"
)

const testSeriesResponse = `[
  {
    "id": 7,
    "title": "Severance",
    "tvdbId": 371980,
    "imdbId": "tt11280740",
    "monitored": true,
    "seasons": [
      {"seasonNumber": 0, "monitored": false, "statistics": {"episodeFileCount": 0, "episodeCount": 0, "totalEpisodeCount": 3}},
      {"seasonNumber": 1, "monitored": true, "statistics": {"episodeFileCount": 9, "episodeCount": 9, "totalEpisodeCount": 9}},
      {"seasonNumber": 2, "monitored": false, "statistics": {"episodeFileCount": 0, "episodeCount": 0, "totalEpisodeCount": 10}}
    ]
  }
]`

const testSingleSeries = `{
  "id": 7,
  "title": "Severance",
  "tvdbId": 371980,
  "monitored": true,
  "qualityProfileId": 4,
  "path": "/tv/Severance",
  "seasons": [
    {"seasonNumber": 1, "monitored": true},
    {"seasonNumber": 2, "monitored": false}
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewAPIClient(server.Client(), "main", server.URL, "sonarr-key")
	require.NoError(t, err)
	return client
}

func TestNewAPIClient(t *testing.T) {
	_, err := NewAPIClient(http.DefaultClient, "main", "", "key")
	assert.Error(t, err)

	client, err := NewAPIClient(http.DefaultClient, "main", "http://sonarr:8989/", "key")
	require.NoError(t, err)
	assert.Equal(t, "http://sonarr:8989", client.baseURL.String())
	assert.Equal(t, "main", client.breaker.Name())
}

func TestAPIClient_GetAllSeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v3/series", r.URL.Path)
		assert.Equal(t, "sonarr-key", r.Header.Get("X-Api-Key"))
		w.Write([]byte(testSeriesResponse))
	})

	series, err := client.GetAllSeries(context.Background())
	require.NoError(t, err)
	require.Len(t, series, 1)

	s := series[0]
	assert.Equal(t, int64(7), s.ID)
	assert.Equal(t, 371980, s.TvdbID)
	assert.Equal(t, "tt11280740", s.ImdbID)

	season, ok := s.Season(1)
	require.True(t, ok)
	assert.Equal(t, 9, season.TotalEpisodeCount())
	assert.Equal(t, 9, season.EpisodeFileCount())

	assert.True(t, s.HasSeason(2))
	assert.False(t, s.HasSeason(3))
}

func TestAPIClient_SearchSeason(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v3/command", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var cmd map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cmd))
		assert.Equal(t, "SeasonSearch", cmd["name"])
		assert.Equal(t, float64(7), cmd["seriesId"])
		assert.Equal(t, float64(2), cmd["seasonNumber"])

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 100}`))
	})

	err := client.SearchSeason(context.Background(), 7, 2)
	assert.NoError(t, err)
}

func TestAPIClient_UpdateSeasonMonitoring(t *testing.T) {
	t.Run("round trips the series", func(t *testing.T) {
		var put map[string]any
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/series/7", r.URL.Path)
			switch r.Method {
			case http.MethodGet:
				w.Write([]byte(testSingleSeries))
			case http.MethodPut:
				require.NoError(t, json.NewDecoder(r.Body).Decode(&put))
				w.WriteHeader(http.StatusAccepted)
			default:
				t.Errorf("unexpected method %s", r.Method)
			}
		})

		err := client.UpdateSeasonMonitoring(context.Background(), 7, 2, true)
		require.NoError(t, err)

		require.NotNil(t, put)
		assert.Equal(t, "/tv/Severance", put["path"])
		assert.Equal(t, float64(4), put["qualityProfileId"])

		seasons := put["seasons"].([]any)
		assert.Equal(t, true, seasons[1].(map[string]any)["monitored"])
		assert.Equal(t, true, seasons[0].(map[string]any)["monitored"])
	})

	t.Run("missing season", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodPut {
				t.Error("series should not be updated")
			}
			w.Write([]byte(testSingleSeries))
		})

		err := client.UpdateSeasonMonitoring(context.Background(), 7, 5, true)
		assert.ErrorContains(t, err, "season 5 not found")
	})
}

func TestAPIClient_UpdateSeriesMonitoring(t *testing.T) {
	var put map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&put))
		}
		w.Write([]byte(testSingleSeries))
	})

	err := client.UpdateSeriesMonitoring(context.Background(), 7, MonitoringOptions{Monitored: true, MonitorNewItems: MonitorNewItemsAll})
	require.NoError(t, err)
	assert.Equal(t, true, put["monitored"])
	assert.Equal(t, "all", put["monitorNewItems"])
}

func TestAPIClient_GetSeasonEpisodeCount(t *testing.T) {
	t.Run("counts episodes", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v3/episode", r.URL.Path)
			assert.Equal(t, "7", r.URL.Query().Get("seriesId"))
			assert.Equal(t, "1", r.URL.Query().Get("seasonNumber"))
			w.Write([]byte(`[
				{"id": 1, "seriesId": 7, "seasonNumber": 1, "episodeNumber": 1},
				{"id": 2, "seriesId": 7, "seasonNumber": 1, "episodeNumber": 2},
				{"id": 3, "seriesId": 7, "seasonNumber": 1, "episodeNumber": 3}
			]`))
		})

		count, err := client.GetSeasonEpisodeCount(context.Background(), 7, 1)
		require.NoError(t, err)
		require.NotNil(t, count)
		assert.Equal(t, 3, *count)
	})

	t.Run("no episodes", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		})

		count, err := client.GetSeasonEpisodeCount(context.Background(), 7, 4)
		require.NoError(t, err)
		assert.Nil(t, count)
	})
}

func TestAPIClient_GetEpisodes(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/episode", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("seasonNumber"))
		w.Write([]byte(`[
			{"id": 11, "seriesId": 7, "seasonNumber": 2, "episodeNumber": 1, "monitored": true},
			{"id": 12, "seriesId": 7, "seasonNumber": 2, "episodeNumber": 2, "monitored": false},
			{"id": 99, "seriesId": 7, "seasonNumber": 3, "episodeNumber": 1}
		]`))
	})

	episodes, err := client.GetEpisodes(context.Background(), 7, 2)
	require.NoError(t, err)
	assert.Equal(t, []Episode{
		{ID: 11, SeriesID: 7, SeasonNumber: 2, EpisodeNumber: 1, Monitored: true},
		{ID: 12, SeriesID: 7, SeasonNumber: 2, EpisodeNumber: 2},
	}, episodes)
}

func TestAPIClient_SetEpisodesMonitored(t *testing.T) {
	var calls atomic.Int32
	var got episodesMonitored
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v3/episode/monitor", r.URL.Path)
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, &got))
		w.WriteHeader(http.StatusAccepted)
	})

	require.NoError(t, client.SetEpisodesMonitored(context.Background(), []int64{2, 3}, false))
	assert.Equal(t, episodesMonitored{EpisodeIDs: []int64{2, 3}, Monitored: false}, got)

	require.NoError(t, client.SetEpisodesMonitored(context.Background(), nil, true))
	assert.Equal(t, int32(1), calls.Load(), "an empty id list makes no request")
}

func TestAPIClient_Errors(t *testing.T) {
	t.Run("client errors do not trip the breaker", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusNotFound)
		})

		for range defaultBreakerFailures + 2 {
			err := client.SearchSeason(context.Background(), 7, 1)
			var statusErr *StatusError
			require.ErrorAs(t, err, &statusErr)
			assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
		}
		assert.Equal(t, int32(defaultBreakerFailures+2), calls.Load())
		assert.Equal(t, gobreaker.StateClosed, client.breaker.State())
	})

	t.Run("server errors open the breaker", func(t *testing.T) {
		var calls atomic.Int32
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusBadGateway)
		})

		for range defaultBreakerFailures {
			_, err := client.GetAllSeries(context.Background())
			require.Error(t, err)
		}
		assert.Equal(t, gobreaker.StateOpen, client.breaker.State())

		_, err := client.GetAllSeries(context.Background())
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		assert.Equal(t, int32(defaultBreakerFailures), calls.Load())
	})
}
