package webhook

import (
	"context"

	"github.com/dustin/go-humanize"
	"github.com/kasuboski/rollwatch/pkg/logger"
)

//go:generate go run go.uber.org/mock/mockgen -package mocks -destination mocks/notifier.go github.com/kasuboski/rollwatch/pkg/webhook Notifier

// Notifier hands finished batches to whatever delivers them
type Notifier interface {
	// NotifySeason is called once when every expected episode of a season arrived
	NotifySeason(ctx context.Context, season SeasonSnapshot) error
	// NotifyEpisodes is called with a partial batch when a season goes stale
	NotifyEpisodes(ctx context.Context, season SeasonSnapshot) error
	NotifyMovie(ctx context.Context, movie MovieNotification) error
}

type MovieNotification struct {
	InstanceName string    `json:"instanceName"`
	Movie        MovieInfo `json:"movie"`
	IsUpgrade    bool      `json:"isUpgrade"`
}

// LogNotifier writes notifications to the log
type LogNotifier struct{}

func (LogNotifier) NotifySeason(ctx context.Context, season SeasonSnapshot) error {
	logger.FromCtx(ctx).Infow("season complete",
		"show", season.Title,
		"season", season.Season,
		"episodes", season.DistinctEpisodes,
		"firstEpisode", humanize.Time(season.FirstReceived),
	)
	return nil
}

func (LogNotifier) NotifyEpisodes(ctx context.Context, season SeasonSnapshot) error {
	expected := "unknown"
	if season.ExpectedEpisodeCount != nil {
		expected = humanize.Comma(int64(*season.ExpectedEpisodeCount))
	}

	logger.FromCtx(ctx).Infow("episodes downloaded",
		"show", season.Title,
		"season", season.Season,
		"episodes", season.DistinctEpisodes,
		"expected", expected,
		"lastEpisode", humanize.Time(season.LastUpdated),
	)
	return nil
}

func (LogNotifier) NotifyMovie(ctx context.Context, movie MovieNotification) error {
	logger.FromCtx(ctx).Infow("movie downloaded",
		"movie", movie.Movie.Title,
		"year", movie.Movie.Year,
		"instance", movie.InstanceName,
		"upgrade", movie.IsUpgrade,
	)
	return nil
}
