package webhook_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kasuboski/rollwatch/pkg/webhook"
	"github.com/kasuboski/rollwatch/pkg/webhook/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func ptr[T any](v T) *T {
	return &v
}

func linkedShow() webhook.ShowInfo {
	return webhook.ShowInfo{Title: "Severance", SeriesID: ptr(int64(12)), InstanceID: ptr(int64(1))}
}

func TestFetchExpectedEpisodeCount(t *testing.T) {
	ctx := context.Background()

	t.Run("caches a successful lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		counter := mocks.NewMockEpisodeCounter(ctrl)
		queue := webhook.NewQueue()
		detector := webhook.NewCompletionDetector(queue, counter)

		queue.AddEpisode("k", linkedShow(), webhook.EpisodeEvent{SeasonNumber: 2, EpisodeNumber: 1})
		counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 2).Return(ptr(10), nil).Times(1)

		count := detector.FetchExpectedEpisodeCount(ctx, "k", 2)
		require.NotNil(t, count)
		assert.Equal(t, 10, *count)

		count = detector.FetchExpectedEpisodeCount(ctx, "k", 2)
		require.NotNil(t, count)
		assert.Equal(t, 10, *count)

		season, _ := queue.Season("k", 2)
		assert.Equal(t, 10, *season.ExpectedEpisodeCount)
	})

	t.Run("missing linkage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		counter := mocks.NewMockEpisodeCounter(ctrl)
		queue := webhook.NewQueue()
		detector := webhook.NewCompletionDetector(queue, counter)

		queue.AddEpisode("k", webhook.ShowInfo{Title: "Severance", SeriesID: ptr(int64(12))}, webhook.EpisodeEvent{SeasonNumber: 1, EpisodeNumber: 1})

		assert.Nil(t, detector.FetchExpectedEpisodeCount(ctx, "k", 1))
		assert.Nil(t, detector.FetchExpectedEpisodeCount(ctx, "unknown", 1))
	})

	t.Run("failures are not cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		counter := mocks.NewMockEpisodeCounter(ctrl)
		queue := webhook.NewQueue()
		detector := webhook.NewCompletionDetector(queue, counter)

		queue.AddEpisode("k", linkedShow(), webhook.EpisodeEvent{SeasonNumber: 1, EpisodeNumber: 1})
		gomock.InOrder(
			counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 1).Return(nil, errors.New("timeout")),
			counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 1).Return(nil, nil),
			counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 1).Return(ptr(8), nil),
		)

		assert.Nil(t, detector.FetchExpectedEpisodeCount(ctx, "k", 1))
		assert.Nil(t, detector.FetchExpectedEpisodeCount(ctx, "k", 1))
		count := detector.FetchExpectedEpisodeCount(ctx, "k", 1)
		require.NotNil(t, count)
		assert.Equal(t, 8, *count)
	})

	t.Run("concurrent lookups share one call", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		counter := mocks.NewMockEpisodeCounter(ctrl)
		queue := webhook.NewQueue()
		detector := webhook.NewCompletionDetector(queue, counter)

		queue.AddEpisode("k", linkedShow(), webhook.EpisodeEvent{SeasonNumber: 1, EpisodeNumber: 1})
		counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 1).DoAndReturn(
			func(context.Context, int64, int64, int) (*int, error) {
				time.Sleep(50 * time.Millisecond)
				return ptr(6), nil
			},
		).Times(1)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				count := detector.FetchExpectedEpisodeCount(ctx, "k", 1)
				if assert.NotNil(t, count) {
					assert.Equal(t, 6, *count)
				}
			}()
		}
		wg.Wait()
	})
}

func TestIsSeasonComplete(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	counter := mocks.NewMockEpisodeCounter(ctrl)
	queue := webhook.NewQueue()
	detector := webhook.NewCompletionDetector(queue, counter)

	assert.False(t, detector.IsSeasonComplete("k", 1), "unknown season")

	queue.AddEpisode("k", linkedShow(), webhook.EpisodeEvent{SeasonNumber: 1, EpisodeNumber: 3})
	assert.False(t, detector.IsSeasonComplete("k", 1), "no expected count yet")

	counter.EXPECT().GetSeasonEpisodeCount(gomock.Any(), int64(1), int64(12), 1).Return(ptr(3), nil)
	detector.FetchExpectedEpisodeCount(ctx, "k", 1)

	queue.AddEpisode("k", linkedShow(), webhook.EpisodeEvent{SeasonNumber: 1, EpisodeNumber: 3})
	assert.False(t, detector.IsSeasonComplete("k", 1), "repeated episodes count once")

	queue.AddEpisode("k", linkedShow(), webhook.EpisodeEvent{SeasonNumber: 1, EpisodeNumber: 1})
	assert.False(t, detector.IsSeasonComplete("k", 1))

	queue.AddEpisode("k", linkedShow(), webhook.EpisodeEvent{SeasonNumber: 1, EpisodeNumber: 2})
	assert.True(t, detector.IsSeasonComplete("k", 1), "out of order arrival still completes")

	for ep := 1; ep <= 5; ep++ {
		queue.AddEpisode("k", linkedShow(), webhook.EpisodeEvent{SeasonNumber: 1, EpisodeNumber: ep})
		assert.True(t, detector.IsSeasonComplete("k", 1), "completion never flips back")
	}
}
