package webhook_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/kasuboski/rollwatch/pkg/webhook"
	"github.com/kasuboski/rollwatch/pkg/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type instances map[string]int64

func (i instances) InstanceID(name string) (int64, bool) {
	id, ok := i[name]
	return id, ok
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func episodeBody(season, episode int, upgrade bool) []byte {
	return []byte(fmt.Sprintf(`{
		"instanceName": "Sonarr",
		"eventType": "Download",
		"isUpgrade": %t,
		"series": {"id": 12, "title": "Severance", "tvdbId": 371980},
		"episodes": [{"seasonNumber": %d, "episodeNumber": %d}],
		"episodeFile": {"id": 1}
	}`, upgrade, season, episode))
}

type processorFixture struct {
	processor *webhook.Processor
	queue     *webhook.Queue
	counter   *mocks.MockEpisodeCounter
	notifier  *mocks.MockNotifier
}

func newProcessor(t *testing.T, opts ...webhook.QueueOption) processorFixture {
	ctrl := gomock.NewController(t)
	counter := mocks.NewMockEpisodeCounter(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	queue := webhook.NewQueue(opts...)
	upgrades := webhook.NewUpgradeTracker(queue, webhook.WithDebounce(0))
	completion := webhook.NewCompletionDetector(queue, counter)

	return processorFixture{
		processor: webhook.NewProcessor(queue, upgrades, completion, instances{"Sonarr": 1}, notifier),
		queue:     queue,
		counter:   counter,
		notifier:  notifier,
	}
}

func TestProcessor_HandleSonarr(t *testing.T) {
	ctx := context.Background()
	f := newProcessor(t)
	key := "Sonarr:tvdb-371980"

	f.counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 1).Return(ptr(2), nil).Times(1)
	f.notifier.EXPECT().NotifySeason(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, season webhook.SeasonSnapshot) error {
			assert.Equal(t, "Severance", season.Title)
			assert.Equal(t, 1, season.Season)
			assert.Equal(t, 2, season.DistinctEpisodes)
			assert.Equal(t, webhook.SeasonStateNotified, season.State)
			return nil
		},
	).Times(1)

	outcome, err := f.processor.HandleSonarr(ctx, episodeBody(1, 1, false))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeQueued, outcome)

	outcome, err = f.processor.HandleSonarr(ctx, episodeBody(1, 1, false))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSkipped, outcome, "duplicate inside the window")

	outcome, err = f.processor.HandleSonarr(ctx, episodeBody(1, 2, false))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSeasonComplete, outcome)

	season, ok := f.queue.Season(key, 1)
	require.True(t, ok)
	assert.Equal(t, int64(1), *season.InstanceID)
	assert.Equal(t, int64(12), *season.SeriesID)
	assert.True(t, f.queue.IsNotified(key, 1))
}

func TestProcessor_HandleSonarr_NotifiesOnce(t *testing.T) {
	ctx := context.Background()
	f := newProcessor(t)

	f.counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 3).Return(ptr(1), nil).Times(1)
	f.notifier.EXPECT().NotifySeason(gomock.Any(), gomock.Any()).Return(errors.New("relay down")).Times(1)

	outcome, err := f.processor.HandleSonarr(ctx, episodeBody(3, 1, false))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSeasonComplete, outcome)

	outcome, err = f.processor.HandleSonarr(ctx, episodeBody(3, 2, false))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeQueued, outcome, "a notified season is not announced again")
}

func TestProcessor_HandleSonarr_Upgrade(t *testing.T) {
	ctx := context.Background()
	f := newProcessor(t)

	outcome, err := f.processor.HandleSonarr(ctx, episodeBody(1, 4, true))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeUpgrade, outcome)

	season, ok := f.queue.Season("Sonarr:tvdb-371980", 1)
	require.True(t, ok)
	assert.Empty(t, season.Episodes)
}

func TestProcessor_HandleSonarr_Skips(t *testing.T) {
	ctx := context.Background()
	f := newProcessor(t)

	outcome, err := f.processor.HandleSonarr(ctx, []byte(`{"eventType":"Test"}`))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSkipped, outcome)

	outcome, err = f.processor.HandleSonarr(ctx, []byte(`{"eventType":"Download","movie":{"id":1,"title":"Dune"}}`))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSkipped, outcome)

	_, err = f.processor.HandleSonarr(ctx, []byte(`not json`))
	assert.ErrorIs(t, err, webhook.ErrInvalidPayload)

	assert.Equal(t, 0, f.queue.Len())
}

func TestProcessor_HandleSonarr_CancelledDeliveryCanRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	counter := mocks.NewMockEpisodeCounter(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	queue := webhook.NewQueue()
	upgrades := webhook.NewUpgradeTracker(queue, webhook.WithDebounce(50*time.Millisecond))
	completion := webhook.NewCompletionDetector(queue, counter)
	processor := webhook.NewProcessor(queue, upgrades, completion, instances{"Sonarr": 1}, notifier)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	outcome, err := processor.HandleSonarr(cancelled, episodeBody(1, 3, false))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, webhook.OutcomeSkipped, outcome)

	counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 1).Return(ptr(10), nil).Times(1)

	outcome, err = processor.HandleSonarr(context.Background(), episodeBody(1, 3, false))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeQueued, outcome, "redelivery after a failed attempt is not a duplicate")

	season, ok := queue.Season("Sonarr:tvdb-371980", 1)
	require.True(t, ok)
	assert.Len(t, season.Episodes, 1)
}

func TestProcessor_HandleSonarr_UnknownInstance(t *testing.T) {
	ctx := context.Background()
	f := newProcessor(t)

	body := []byte(`{"instanceName":"Elsewhere","eventType":"Download","series":{"id":5,"title":"Andor"},"episodes":[{"seasonNumber":1,"episodeNumber":1}],"episodeFile":{}}`)
	outcome, err := f.processor.HandleSonarr(ctx, body)
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeQueued, outcome)

	season, ok := f.queue.Season("Elsewhere:series-5", 1)
	require.True(t, ok)
	assert.Nil(t, season.InstanceID)
	assert.Nil(t, season.ExpectedEpisodeCount)
}

func TestProcessor_HandleRadarr(t *testing.T) {
	ctx := context.Background()
	f := newProcessor(t)

	f.notifier.EXPECT().NotifyMovie(gomock.Any(), webhook.MovieNotification{
		InstanceName: "Radarr",
		Movie:        webhook.MovieInfo{ID: 7, Title: "Dune", Year: 2021},
	}).Return(nil).Times(1)

	grab := []byte(`{"instanceName":"Radarr","eventType":"Grab","movie":{"id":7,"title":"Dune","year":2021}}`)
	download := []byte(`{"instanceName":"Radarr","eventType":"Download","movie":{"id":7,"title":"Dune","year":2021},"movieFile":{}}`)

	outcome, err := f.processor.HandleRadarr(ctx, grab)
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSkipped, outcome)

	outcome, err = f.processor.HandleRadarr(ctx, download)
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeMovieNotified, outcome)

	outcome, err = f.processor.HandleRadarr(ctx, download)
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSkipped, outcome)

	outcome, err = f.processor.HandleRadarr(ctx, episodeBody(1, 1, false))
	require.NoError(t, err)
	assert.Equal(t, webhook.OutcomeSkipped, outcome)
}

func TestProcessor_FlushStale(t *testing.T) {
	ctx := context.Background()
	c := &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	f := newProcessor(t, webhook.WithQueueClock(c.Now))

	f.counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 2).Return(ptr(10), nil).Times(1)
	f.notifier.EXPECT().NotifyEpisodes(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, season webhook.SeasonSnapshot) error {
			assert.Equal(t, 2, season.Season)
			assert.Len(t, season.Episodes, 2)
			return nil
		},
	).Times(1)

	_, err := f.processor.HandleSonarr(ctx, episodeBody(2, 1, false))
	require.NoError(t, err)
	_, err = f.processor.HandleSonarr(ctx, episodeBody(2, 2, false))
	require.NoError(t, err)
	_, err = f.processor.HandleSonarr(ctx, episodeBody(1, 9, true))
	require.NoError(t, err)

	assert.Equal(t, 0, f.processor.FlushStale(ctx, time.Hour), "nothing is stale yet")

	c.Advance(2 * time.Hour)
	assert.Equal(t, 1, f.processor.FlushStale(ctx, time.Hour), "only seasons with episodes are sent")
	assert.Equal(t, 0, f.queue.Len())
}
