package webhook

import (
	"context"
	"fmt"

	"github.com/kasuboski/rollwatch/pkg/logger"
	"golang.org/x/sync/singleflight"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/episode_counter.go github.com/kasuboski/rollwatch/pkg/webhook EpisodeCounter

// EpisodeCounter counts the episodes Sonarr knows for a season. A nil count means unknown.
type EpisodeCounter interface {
	GetSeasonEpisodeCount(ctx context.Context, instanceID, seriesID int64, season int) (*int, error)
}

// CompletionDetector decides when every expected episode of a season has arrived
type CompletionDetector struct {
	queue   *Queue
	counter EpisodeCounter
	group   singleflight.Group
}

func NewCompletionDetector(queue *Queue, counter EpisodeCounter) *CompletionDetector {
	return &CompletionDetector{
		queue:   queue,
		counter: counter,
	}
}

// FetchExpectedEpisodeCount returns the cached count for the season or looks it up.
// Missing linkage or a failed lookup returns nil and caches nothing. Once cached a count
// is kept for the life of the season entry even if Sonarr's view changes later.
func (d *CompletionDetector) FetchExpectedEpisodeCount(ctx context.Context, seriesKey string, season int) *int {
	log := logger.FromCtx(ctx, "seriesKey", seriesKey, "season", season)

	seriesID, instanceID, cached := d.queue.linkage(seriesKey, season)
	if cached != nil {
		return cached
	}
	if seriesID == nil || instanceID == nil {
		log.Debug("no sonarr linkage for season, expected episode count unknown")
		return nil
	}

	v, err, _ := d.group.Do(fmt.Sprintf("%s/%d", seriesKey, season), func() (any, error) {
		if _, _, cached := d.queue.linkage(seriesKey, season); cached != nil {
			return cached, nil
		}

		count, err := d.counter.GetSeasonEpisodeCount(ctx, *instanceID, *seriesID, season)
		if err != nil {
			return nil, err
		}
		if count != nil {
			d.queue.setExpectedCount(seriesKey, season, *count)
		}
		return count, nil
	})
	if err != nil {
		log.Warnw("failed to fetch expected episode count", "error", err)
		return nil
	}

	count, _ := v.(*int)
	if count == nil {
		return nil
	}
	n := *count
	return &n
}

// IsSeasonComplete reports whether a count is cached and at least that many distinct
// episodes arrived. Arrival order does not matter.
func (d *CompletionDetector) IsSeasonComplete(seriesKey string, season int) bool {
	expected, received := d.queue.progress(seriesKey, season)
	if expected == nil {
		return false
	}
	return received >= *expected
}
