package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/metrics"
	"github.com/kasuboski/rollwatch/pkg/plex"
	"github.com/kasuboski/rollwatch/pkg/sonarr"
	"github.com/kasuboski/rollwatch/pkg/storage"
	"github.com/kasuboski/rollwatch/pkg/storage/sqlite/schema/gen/model"
)

const DefaultRemainingEpisodes = 2

// SeriesFinder locates the Sonarr series behind a playback session
type SeriesFinder interface {
	FindSeries(ctx context.Context, query sonarr.SeriesQuery) (*sonarr.SeriesMatch, error)
}

type Config struct {
	// FilterUsers limits monitoring to these plex user ids or names. Empty allows everyone.
	FilterUsers []string
	// RemainingEpisodes is how close to the end of a season playback must be to act
	RemainingEpisodes int
}

// Monitor turns playback sessions into Sonarr searches and rolling monitoring changes
type Monitor struct {
	sessions plex.SessionSource
	series   SeriesFinder
	store    storage.RollingShowStorage
	seen     *SeenCache
	config   Config
	now      func() time.Time
}

type Option func(*Monitor)

// WithClock overrides the time recorded as the last session date
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) {
		m.now = now
	}
}

func New(sessions plex.SessionSource, series SeriesFinder, store storage.RollingShowStorage, seen *SeenCache, config Config, opts ...Option) *Monitor {
	if config.RemainingEpisodes < 0 {
		config.RemainingEpisodes = DefaultRemainingEpisodes
	}
	if seen == nil {
		seen = NewSeenCache()
	}

	m := &Monitor{
		sessions: sessions,
		series:   series,
		store:    store,
		seen:     seen,
		config:   config,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MonitorSessions evaluates every active episode session once, in order. Failures for a
// session are recorded in the result and do not stop the remaining sessions.
func (m *Monitor) MonitorSessions(ctx context.Context) Result {
	log := logger.FromCtx(ctx)
	result := Result{
		RollingUpdates: make([]RollingUpdate, 0),
		Errors:         make([]string, 0),
	}

	sessions, err := m.sessions.GetActiveSessions(ctx)
	if err != nil {
		log.Errorw("failed to get active sessions", "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("failed to get active sessions: %v", err))
		metrics.MonitorErrorsTotal.Inc()
		return result
	}

	for _, session := range sessions {
		if !session.IsEpisode() || !m.allowed(session) {
			continue
		}

		result.ProcessedSessions++
		metrics.SessionsProcessedTotal.Inc()

		if err := m.processSession(ctx, session, &result); err != nil {
			label := fmt.Sprintf("%s S%02dE%02d", session.GrandparentTitle, session.ParentIndex, session.Index)
			log.Errorw("failed to process session", "show", session.GrandparentTitle, "season", session.ParentIndex, "episode", session.Index, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", label, err))
			metrics.MonitorErrorsTotal.Inc()
		}
	}

	log.Infow("session monitoring finished",
		"processed", result.ProcessedSessions,
		"triggered", result.TriggeredSearches,
		"rollingUpdates", len(result.RollingUpdates),
		"errors", len(result.Errors),
	)
	return result
}

func (m *Monitor) allowed(session plex.Session) bool {
	if len(m.config.FilterUsers) == 0 {
		return true
	}

	id, name := session.UserID(), session.Username()
	for _, u := range m.config.FilterUsers {
		if (id != "" && u == id) || (name != "" && strings.EqualFold(u, name)) {
			return true
		}
	}
	return false
}

func (m *Monitor) processSession(ctx context.Context, session plex.Session, result *Result) error {
	log := logger.FromCtx(ctx,
		"show", session.GrandparentTitle,
		"season", session.ParentIndex,
		"episode", session.Index,
		"user", session.Username(),
	)
	ctx = logger.WithCtx(ctx, log)

	guids := plex.ParseGUIDs(m.showGUIDs(ctx, session))
	tvdbID := plex.ExtractTvdbID(guids)

	match, err := m.series.FindSeries(ctx, sonarr.SeriesQuery{
		TvdbID: tvdbID,
		ImdbID: plex.ExtractImdbID(guids),
		Title:  session.GrandparentTitle,
	})
	if errors.Is(err, sonarr.ErrSeriesNotFound) {
		log.Warnw("series not found in any sonarr instance", "tvdbId", tvdbID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up series: %w", err)
	}

	show, err := m.rollingShow(ctx, session, tvdbID)
	if err != nil {
		return err
	}
	if show != nil {
		return m.processRolling(ctx, session, match, show, result)
	}

	return m.processStandard(ctx, session, match, tvdbID, result)
}

// showGUIDs returns the show's guids. Lookups that fail yield an empty list so title matching still works.
func (m *Monitor) showGUIDs(ctx context.Context, session plex.Session) []string {
	ratingKey := session.ShowRatingKey()
	if ratingKey == "" {
		return []string{}
	}

	metadata, err := m.sessions.GetShowMetadata(ctx, ratingKey, true)
	if err != nil {
		logger.FromCtx(ctx).Debugw("failed to get show metadata, matching by title", "ratingKey", ratingKey, "error", err)
		return []string{}
	}
	return metadata.AllGUIDs()
}

// rollingShow returns the record that applies to the session's user. A user without a
// record of their own gets a copy of the master record.
func (m *Monitor) rollingShow(ctx context.Context, session plex.Session, tvdbID int) (*storage.RollingShow, error) {
	log := logger.FromCtx(ctx)

	identity := storage.RollingShowIdentity{
		TvdbID: int32(tvdbID),
		Title:  session.GrandparentTitle,
	}

	userID := session.UserID()
	if userID != "" {
		identity.PlexUserID = &userID
		show, err := m.store.GetRollingShowByIdentity(ctx, identity)
		if err == nil {
			return show, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to get rolling show for user: %w", err)
		}
		identity.PlexUserID = nil
	}

	master, err := m.store.GetRollingShowByIdentity(ctx, identity)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rolling show: %w", err)
	}
	if userID == "" {
		return master, nil
	}

	username := session.Username()
	userShow := storage.RollingShow{
		RollingMonitoredShow: model.RollingMonitoredShow{
			SonarrSeriesID:         master.SonarrSeriesID,
			SonarrInstanceID:       master.SonarrInstanceID,
			TvdbID:                 master.TvdbID,
			ShowTitle:              master.ShowTitle,
			MonitoringType:         master.MonitoringType,
			CurrentMonitoredSeason: master.CurrentMonitoredSeason,
			PlexUserID:             &userID,
			PlexUsername:           &username,
		},
	}

	id, err := m.store.CreateRollingShow(ctx, userShow)
	if err != nil {
		log.Warnw("failed to create rolling show for user, using master record", "error", err)
		return master, nil
	}
	userShow.ID = int32(id)

	log.Infow("created rolling show for user", "id", id, "frontier", userShow.CurrentMonitoredSeason)
	return &userShow, nil
}

func (m *Monitor) processRolling(ctx context.Context, session plex.Session, match *sonarr.SeriesMatch, show *storage.RollingShow, result *Result) error {
	log := logger.FromCtx(ctx, "rollingShowId", show.ID, "frontier", show.CurrentMonitoredSeason)
	season, episode := session.ParentIndex, session.Index

	err := m.store.UpdateRollingShowProgress(ctx, int64(show.ID), int32(season), int32(episode), m.now())
	if err != nil {
		return fmt.Errorf("failed to update rolling show progress: %w", err)
	}

	if show.Type() == storage.MonitoringTypePilotRolling && season == 1 && show.CurrentMonitoredSeason == 1 {
		if err := m.expandPilot(ctx, session, match, show, result); err != nil {
			return err
		}
	}

	current, ok := match.Series.Season(season)
	if !ok {
		log.Debug("season not found in sonarr")
		return nil
	}

	remaining := current.TotalEpisodeCount() - episode
	if remaining < 0 || remaining > m.config.RemainingEpisodes {
		return nil
	}

	if !match.Series.HasSeason(season + 1) {
		return m.switchToMonitorAll(ctx, session, match, show, result)
	}

	frontier := int(show.CurrentMonitoredSeason)
	next := frontier + 1
	if season < frontier || !match.Series.HasSeason(next) {
		log.Debugw("next season already monitored", "remaining", remaining)
		return nil
	}

	seriesID := match.Series.ID
	if err := match.Client.UpdateSeasonMonitoring(ctx, seriesID, next, true); err != nil {
		return fmt.Errorf("failed to monitor season %d: %w", next, err)
	}
	if err := match.Client.SearchSeason(ctx, seriesID, next); err != nil {
		return fmt.Errorf("failed to search season %d: %w", next, err)
	}
	if err := m.store.UpdateRollingShowFrontier(ctx, int64(show.ID), int32(next)); err != nil {
		return fmt.Errorf("failed to advance rolling show frontier: %w", err)
	}

	result.RollingUpdates = append(result.RollingUpdates, RollingUpdate{
		ShowTitle:    show.ShowTitle,
		PlexUsername: session.Username(),
		Action:       RollingActionExpanded,
		Season:       next,
	})
	result.TriggeredSearches++
	metrics.SearchesTriggeredTotal.WithLabelValues("rolling").Inc()
	metrics.RollingUpdatesTotal.WithLabelValues(string(RollingActionExpanded)).Inc()

	log.Infow("expanded rolling monitoring", "season", next, "remaining", remaining)
	return nil
}

// expandPilot monitors the rest of season one once the pilot of a pilot rolling show is played
func (m *Monitor) expandPilot(ctx context.Context, session plex.Session, match *sonarr.SeriesMatch, show *storage.RollingShow, result *Result) error {
	seriesID := match.Series.ID
	changed, err := sonarr.MonitorWholeSeason(ctx, match.Client, seriesID, 1)
	if err != nil {
		return fmt.Errorf("failed to monitor season 1: %w", err)
	}
	if !changed {
		return nil
	}
	if err := match.Client.SearchSeason(ctx, seriesID, 1); err != nil {
		return fmt.Errorf("failed to search season 1: %w", err)
	}

	result.RollingUpdates = append(result.RollingUpdates, RollingUpdate{
		ShowTitle:    show.ShowTitle,
		PlexUsername: session.Username(),
		Action:       RollingActionPilotExpanded,
		Season:       1,
	})
	result.TriggeredSearches++
	metrics.SearchesTriggeredTotal.WithLabelValues("rolling").Inc()
	metrics.RollingUpdatesTotal.WithLabelValues(string(RollingActionPilotExpanded)).Inc()

	logger.FromCtx(ctx).Infow("expanded pilot to the full first season")
	return nil
}

// switchToMonitorAll hands a caught up show back to normal monitoring and forgets its rolling rows
func (m *Monitor) switchToMonitorAll(ctx context.Context, session plex.Session, match *sonarr.SeriesMatch, show *storage.RollingShow, result *Result) error {
	err := match.Client.UpdateSeriesMonitoring(ctx, match.Series.ID, sonarr.MonitoringOptions{
		Monitored:       true,
		MonitorNewItems: sonarr.MonitorNewItemsAll,
	})
	if err != nil {
		return fmt.Errorf("failed to switch series to monitor all: %w", err)
	}

	deleted, err := m.store.DeleteAllRollingShowEntries(ctx, show.SonarrSeriesID, show.SonarrInstanceID)
	if err != nil {
		return fmt.Errorf("failed to delete rolling show entries: %w", err)
	}

	result.RollingUpdates = append(result.RollingUpdates, RollingUpdate{
		ShowTitle:    show.ShowTitle,
		PlexUsername: session.Username(),
		Action:       RollingActionMonitorAll,
		Season:       session.ParentIndex,
	})
	metrics.RollingUpdatesTotal.WithLabelValues(string(RollingActionMonitorAll)).Inc()

	logger.FromCtx(ctx).Infow("switched rolling show to monitor all", "deleted", deleted)
	return nil
}

func (m *Monitor) processStandard(ctx context.Context, session plex.Session, match *sonarr.SeriesMatch, tvdbID int, result *Result) error {
	log := logger.FromCtx(ctx)
	season, episode := session.ParentIndex, session.Index

	current, ok := match.Series.Season(season)
	if !ok {
		log.Debug("season not found in sonarr")
		return nil
	}

	total := current.TotalEpisodeCount()
	standalonePilot := season == 1 && episode == 1 && current.EpisodeFileCount() == 1
	endOfSeason := total > 0 && episode > total-m.config.RemainingEpisodes
	if !standalonePilot && !endOfSeason {
		return nil
	}

	key := SeenKey(tvdbID, session.GrandparentTitle, season)
	if m.seen.SeenRecently(key) {
		log.Debugw("search already triggered recently", "key", key)
		return nil
	}

	var err error
	if standalonePilot {
		err = m.searchStandalonePilot(ctx, match, result)
	} else {
		err = m.handleEndOfSeason(ctx, match, season, result)
	}
	if err != nil {
		return err
	}

	m.seen.MarkSeen(key)
	return nil
}

func (m *Monitor) searchStandalonePilot(ctx context.Context, match *sonarr.SeriesMatch, result *Result) error {
	if err := match.Client.SearchSeason(ctx, match.Series.ID, 1); err != nil {
		return fmt.Errorf("failed to search season 1: %w", err)
	}

	result.TriggeredSearches++
	metrics.SearchesTriggeredTotal.WithLabelValues("standalonePilot").Inc()
	logger.FromCtx(ctx).Info("standalone pilot watched, searching season 1")
	return nil
}

func (m *Monitor) handleEndOfSeason(ctx context.Context, match *sonarr.SeriesMatch, season int, result *Result) error {
	log := logger.FromCtx(ctx)
	next := season + 1

	if match.Series.HasSeason(next) {
		if err := match.Client.SearchSeason(ctx, match.Series.ID, next); err != nil {
			return fmt.Errorf("failed to search season %d: %w", next, err)
		}

		result.TriggeredSearches++
		metrics.SearchesTriggeredTotal.WithLabelValues("endOfSeason").Inc()
		log.Infow("end of season reached, searching next season", "nextSeason", next)
		return nil
	}

	err := match.Client.UpdateSeriesMonitoring(ctx, match.Series.ID, sonarr.MonitoringOptions{
		Monitored:       true,
		MonitorNewItems: sonarr.MonitorNewItemsAll,
	})
	if err != nil {
		return fmt.Errorf("failed to switch series to monitor all: %w", err)
	}

	log.Info("no next season in sonarr, monitoring new seasons")
	return nil
}
