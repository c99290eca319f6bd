package webhook

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// InstanceResolver maps the instance name a webhook carries to a configured Sonarr instance
type InstanceResolver interface {
	InstanceID(name string) (int64, bool)
}

// Outcome describes what happened to a delivery
type Outcome string

const (
	OutcomeSkipped        Outcome = "skipped"
	OutcomeQueued         Outcome = "queued"
	OutcomeUpgrade        Outcome = "upgrade"
	OutcomeSeasonComplete Outcome = "seasonComplete"
	OutcomeMovieNotified  Outcome = "movieNotified"
)

// Processor runs deliveries through dedup, upgrade detection, queueing and completion
type Processor struct {
	queue      *Queue
	series     *Deduplicator
	movies     *Deduplicator
	upgrades   *UpgradeTracker
	completion *CompletionDetector
	resolver   InstanceResolver
	notifier   Notifier
}

func NewProcessor(queue *Queue, upgrades *UpgradeTracker, completion *CompletionDetector, resolver InstanceResolver, notifier Notifier, dedupOpts ...DedupOption) *Processor {
	return &Processor{
		queue:      queue,
		series:     NewDeduplicator(append([]DedupOption{WithSource("sonarr")}, dedupOpts...)...),
		movies:     NewDeduplicator(append([]DedupOption{WithSource("radarr")}, dedupOpts...)...),
		upgrades:   upgrades,
		completion: completion,
		resolver:   resolver,
		notifier:   notifier,
	}
}

// Queue exposes the shared webhook queue
func (p *Processor) Queue() *Queue {
	return p.queue
}

// SeriesKey is the queue key for a series delivered by an instance
func SeriesKey(instanceName string, s SeriesInfo) string {
	if s.TvdbID > 0 {
		return fmt.Sprintf("%s:tvdb-%d", instanceName, s.TvdbID)
	}
	return fmt.Sprintf("%s:series-%d", instanceName, s.ID)
}

// HandleSonarr processes a Sonarr delivery. Deliveries that are not processable are a
// normal skip and return no error; only an undecodable body does.
func (p *Processor) HandleSonarr(ctx context.Context, body []byte) (Outcome, error) {
	payload, err := Decode(body)
	if err != nil {
		metrics.WebhooksTotal.WithLabelValues("sonarr", metrics.OutcomeInvalid).Inc()
		return OutcomeSkipped, err
	}

	if payload.Kind == KindMovie {
		logger.FromCtx(ctx).Debugw("ignoring movie payload on series endpoint", "movie", payload.Describe())
		metrics.WebhooksTotal.WithLabelValues("sonarr", metrics.OutcomeIgnored).Inc()
		return OutcomeSkipped, nil
	}

	if !p.series.IsWebhookProcessable(ctx, payload) {
		return OutcomeSkipped, nil
	}

	outcome, err := p.processSeries(ctx, payload)
	if err != nil {
		p.series.Forget(payload)
		return outcome, err
	}
	return outcome, nil
}

func (p *Processor) processSeries(ctx context.Context, payload Payload) (Outcome, error) {
	series := *payload.Series.Series
	episodes := payload.Series.Episodes
	key := SeriesKey(payload.InstanceName, series)

	log := logger.FromCtx(ctx, "show", series.Title, "seriesKey", key)
	ctx = logger.WithCtx(ctx, log)

	seriesID := series.ID
	var instanceID *int64
	if id, ok := p.resolver.InstanceID(payload.InstanceName); ok {
		instanceID = &id
	} else {
		log.Warnw("webhook from unknown sonarr instance", "instance", payload.InstanceName)
	}

	// every episode waits out the same debounce so they are checked together
	upgrades := make([]bool, len(episodes))
	g, gctx := errgroup.WithContext(ctx)
	for i, ep := range episodes {
		g.Go(func() error {
			upgrade, err := p.upgrades.CheckForUpgrade(gctx, key, series.Title, ep.SeasonNumber, ep.EpisodeNumber, payload.IsUpgrade, instanceID)
			if err != nil {
				return err
			}
			upgrades[i] = upgrade
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return OutcomeSkipped, fmt.Errorf("failed to check for upgrades: %w", err)
	}

	info := ShowInfo{Title: series.Title, SeriesID: &seriesID, InstanceID: instanceID}
	seasons := make([]int, 0, 1)
	queued := 0
	for i, ep := range episodes {
		if upgrades[i] {
			log.Infow("episode upgrade, not queueing", "season", ep.SeasonNumber, "episode", ep.EpisodeNumber)
			continue
		}

		p.queue.AddEpisode(key, info, EpisodeEvent{
			SeasonNumber:  ep.SeasonNumber,
			EpisodeNumber: ep.EpisodeNumber,
			Title:         ep.Title,
			IsUpgrade:     payload.IsUpgrade,
		})
		queued++

		if !slices.Contains(seasons, ep.SeasonNumber) {
			seasons = append(seasons, ep.SeasonNumber)
		}
	}

	if queued == 0 {
		metrics.WebhooksTotal.WithLabelValues("sonarr", metrics.OutcomeUpgrade).Inc()
		return OutcomeUpgrade, nil
	}

	outcome := OutcomeQueued
	for _, season := range seasons {
		if p.checkSeason(ctx, key, season) {
			outcome = OutcomeSeasonComplete
		}
	}
	return outcome, nil
}

// checkSeason notifies a season at most once when all of its episodes are in
func (p *Processor) checkSeason(ctx context.Context, key string, season int) bool {
	log := logger.FromCtx(ctx, "season", season)

	if p.queue.IsNotified(key, season) {
		return false
	}

	p.completion.FetchExpectedEpisodeCount(ctx, key, season)
	if !p.completion.IsSeasonComplete(key, season) {
		return false
	}

	p.queue.MarkComplete(key, season)
	if !p.queue.MarkNotified(key, season) {
		return false
	}
	metrics.SeasonCompletionsTotal.Inc()

	snapshot, ok := p.queue.Season(key, season)
	if !ok {
		return false
	}
	if err := p.notifier.NotifySeason(ctx, snapshot); err != nil {
		log.Errorw("failed to notify season complete", "error", err)
	}
	return true
}

// HandleRadarr processes a Radarr delivery. Completed movie downloads are notified directly.
func (p *Processor) HandleRadarr(ctx context.Context, body []byte) (Outcome, error) {
	payload, err := Decode(body)
	if err != nil {
		metrics.WebhooksTotal.WithLabelValues("radarr", metrics.OutcomeInvalid).Inc()
		return OutcomeSkipped, err
	}

	if payload.Kind == KindSeries {
		logger.FromCtx(ctx).Debugw("ignoring series payload on movie endpoint", "show", payload.Describe())
		metrics.WebhooksTotal.WithLabelValues("radarr", metrics.OutcomeIgnored).Inc()
		return OutcomeSkipped, nil
	}

	// grabs share the fingerprint of the download that follows them
	if payload.Kind == KindMovie && payload.EventType != EventTypeDownload {
		logger.FromCtx(ctx).Debugw("ignoring non download movie webhook", "movie", payload.Describe(), "eventType", payload.EventType)
		metrics.WebhooksTotal.WithLabelValues("radarr", metrics.OutcomeIgnored).Inc()
		return OutcomeSkipped, nil
	}

	if !p.movies.IsWebhookProcessable(ctx, payload) {
		return OutcomeSkipped, nil
	}

	err = p.notifier.NotifyMovie(ctx, MovieNotification{
		InstanceName: payload.InstanceName,
		Movie:        payload.Movie.Movie,
		IsUpgrade:    payload.IsUpgrade,
	})
	if err != nil {
		logger.FromCtx(ctx).Errorw("failed to notify movie", "movie", payload.Describe(), "error", err)
	}
	return OutcomeMovieNotified, nil
}

// FlushStale sends partial batches for seasons that stopped receiving episodes before they
// completed and drops every season idle for longer than maxAge. It returns the number of
// partial batches sent.
func (p *Processor) FlushStale(ctx context.Context, maxAge time.Duration) int {
	flushed := 0
	for _, season := range p.queue.Stale(maxAge) {
		log := logger.FromCtx(ctx, "show", season.Title, "season", season.Season)

		if len(season.Episodes) > 0 && p.queue.MarkNotified(season.SeriesKey, season.Season) {
			if err := p.notifier.NotifyEpisodes(ctx, season); err != nil {
				log.Errorw("failed to notify partial season", "error", err)
			}
			metrics.StaleSeasonsFlushedTotal.Inc()
			flushed++
		}

		if p.queue.deleteIfStale(season.SeriesKey, season.Season, maxAge) {
			log.Debug("removed stale season from webhook queue")
		}
	}
	return flushed
}
