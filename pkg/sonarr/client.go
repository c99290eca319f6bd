package sonarr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	rhttp "github.com/kasuboski/rollwatch/pkg/http"
	"github.com/kasuboski/rollwatch/pkg/logger"
	gobreaker "github.com/sony/gobreaker/v2"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/client.go github.com/kasuboski/rollwatch/pkg/sonarr Client

// Client is the subset of the Sonarr v3 API used to drive monitoring
type Client interface {
	GetAllSeries(ctx context.Context) ([]Series, error)
	SearchSeason(ctx context.Context, seriesID int64, season int) error
	UpdateSeriesMonitoring(ctx context.Context, seriesID int64, opts MonitoringOptions) error
	UpdateSeasonMonitoring(ctx context.Context, seriesID int64, season int, monitored bool) error
	GetSeasonEpisodeCount(ctx context.Context, seriesID int64, season int) (*int, error)
	GetEpisodes(ctx context.Context, seriesID int64, season int) ([]Episode, error)
	SetEpisodesMonitored(ctx context.Context, episodeIDs []int64, monitored bool) error
}

const (
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

// StatusError is returned when Sonarr answers with a non 2xx status
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status code not ok: %s", e.Status)
}

type APIClient struct {
	http    rhttp.HTTPClient
	baseURL *url.URL
	apiKey  string
	breaker *gobreaker.CircuitBreaker[[]byte]
}

// NewAPIClient creates a client for one Sonarr instance. Requests pass through a circuit
// breaker named after the instance so a dead instance fails fast.
func NewAPIClient(client rhttp.HTTPClient, name, baseURL, apiKey string) (*APIClient, error) {
	if baseURL == "" {
		return nil, errors.New("sonarr url is required")
	}

	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid sonarr url: %w", err)
	}

	log := logger.Named("sonarr")

	settings := gobreaker.Settings{
		Name:    name,
		Timeout: defaultBreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= defaultBreakerFailures
		},
		IsSuccessful: func(err error) bool {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("sonarr circuit breaker changed state", "instance", name, "from", from.String(), "to", to.String())
		},
	}

	return &APIClient{
		http:    client,
		baseURL: u,
		apiKey:  apiKey,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}, nil
}

// SetRequestAPIKey authenticates a request against Sonarr
func SetRequestAPIKey(apiKey string) func(ctx context.Context, req *http.Request) error {
	return func(ctx context.Context, req *http.Request) error {
		req.Header.Set("X-Api-Key", apiKey)
		req.Header.Set("Accept", "application/json")
		return nil
	}
}

// GetAllSeries lists every series with per-season statistics
func (c *APIClient) GetAllSeries(ctx context.Context) ([]Series, error) {
	b, err := c.do(ctx, http.MethodGet, "/api/v3/series", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list series: %w", err)
	}

	series := make([]Series, 0)
	if err := json.Unmarshal(b, &series); err != nil {
		return nil, fmt.Errorf("failed to decode series: %w", err)
	}

	return series, nil
}

// SearchSeason queues a season search command
func (c *APIClient) SearchSeason(ctx context.Context, seriesID int64, season int) error {
	body, err := json.Marshal(command{
		Name:         "SeasonSearch",
		SeriesID:     seriesID,
		SeasonNumber: season,
	})
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPost, "/api/v3/command", nil, body)
	if err != nil {
		return fmt.Errorf("failed to search season %d of series %d: %w", season, seriesID, err)
	}

	return nil
}

// UpdateSeriesMonitoring sets the series monitored flag and how new seasons are monitored
func (c *APIClient) UpdateSeriesMonitoring(ctx context.Context, seriesID int64, opts MonitoringOptions) error {
	return c.updateSeries(ctx, seriesID, func(series map[string]any) error {
		series["monitored"] = opts.Monitored
		if opts.MonitorNewItems != "" {
			series["monitorNewItems"] = opts.MonitorNewItems
		}
		return nil
	})
}

// UpdateSeasonMonitoring sets the monitored flag of a single season
func (c *APIClient) UpdateSeasonMonitoring(ctx context.Context, seriesID int64, season int, monitored bool) error {
	return c.updateSeries(ctx, seriesID, func(series map[string]any) error {
		seasons, ok := series["seasons"].([]any)
		if !ok {
			return fmt.Errorf("series %d has no seasons", seriesID)
		}

		for _, s := range seasons {
			entry, ok := s.(map[string]any)
			if !ok {
				continue
			}
			number, ok := entry["seasonNumber"].(float64)
			if !ok || int(number) != season {
				continue
			}
			entry["monitored"] = monitored
			return nil
		}

		return fmt.Errorf("season %d not found for series %d", season, seriesID)
	})
}

// updateSeries round trips the full series resource so fields this client does not model are preserved
func (c *APIClient) updateSeries(ctx context.Context, seriesID int64, mutate func(map[string]any) error) error {
	path := "/api/v3/series/" + strconv.FormatInt(seriesID, 10)

	b, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to get series %d: %w", seriesID, err)
	}

	var series map[string]any
	if err := json.Unmarshal(b, &series); err != nil {
		return fmt.Errorf("failed to decode series %d: %w", seriesID, err)
	}

	if err := mutate(series); err != nil {
		return err
	}

	body, err := json.Marshal(series)
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return fmt.Errorf("failed to update series %d: %w", seriesID, err)
	}

	return nil
}

// GetSeasonEpisodeCount counts the episodes of one season using the per-episode endpoint.
// It returns nil when Sonarr lists no episodes for the season.
func (c *APIClient) GetSeasonEpisodeCount(ctx context.Context, seriesID int64, season int) (*int, error) {
	episodes, err := c.GetEpisodes(ctx, seriesID, season)
	if err != nil {
		return nil, err
	}

	count := len(episodes)
	if count == 0 {
		return nil, nil
	}

	return &count, nil
}

// GetEpisodes lists the episodes of one season
func (c *APIClient) GetEpisodes(ctx context.Context, seriesID int64, season int) ([]Episode, error) {
	query := url.Values{}
	query.Set("seriesId", strconv.FormatInt(seriesID, 10))
	query.Set("seasonNumber", strconv.Itoa(season))

	b, err := c.do(ctx, http.MethodGet, "/api/v3/episode", query, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}

	var all []Episode
	if err := json.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("failed to decode episodes: %w", err)
	}

	episodes := make([]Episode, 0, len(all))
	for _, e := range all {
		if e.SeasonNumber == season {
			episodes = append(episodes, e)
		}
	}
	return episodes, nil
}

// SetEpisodesMonitored flips the monitored flag of the given episodes in one request
func (c *APIClient) SetEpisodesMonitored(ctx context.Context, episodeIDs []int64, monitored bool) error {
	if len(episodeIDs) == 0 {
		return nil
	}

	body, err := json.Marshal(episodesMonitored{EpisodeIDs: episodeIDs, Monitored: monitored})
	if err != nil {
		return err
	}

	_, err = c.do(ctx, http.MethodPut, "/api/v3/episode/monitor", nil, body)
	if err != nil {
		return fmt.Errorf("failed to update episode monitoring: %w", err)
	}
	return nil
}

func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	log := logger.FromCtx(ctx)

	if c.http == nil {
		return nil, errors.New("http client is nil")
	}

	u := *c.baseURL
	u.Path = u.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	return c.breaker.Execute(func() ([]byte, error) {
		log.Debugw("sonarr do", "method", method, "path", u.Path)

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
		if err != nil {
			return nil, err
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if err := SetRequestAPIKey(c.apiKey)(ctx, req); err != nil {
			return nil, err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
		}

		return io.ReadAll(resp.Body)
	})
}
