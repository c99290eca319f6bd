package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/monitor"
	"github.com/kasuboski/rollwatch/pkg/pagination"
	"github.com/kasuboski/rollwatch/pkg/sonarr"
	"github.com/kasuboski/rollwatch/pkg/storage"
	"github.com/kasuboski/rollwatch/pkg/storage/sqlite/schema/gen/model"
	"github.com/kasuboski/rollwatch/pkg/storage/sqlite/schema/gen/table"
	"github.com/kasuboski/rollwatch/pkg/webhook"
	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrAlreadyExists  = errors.New("rolling show already exists")

	ErrMonitorNotConfigured = errors.New("plex session monitoring is not configured")
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Manager ties webhook intake and session monitoring to the rolling show store and Sonarr
type Manager struct {
	processor *webhook.Processor
	monitor   *monitor.Monitor
	store     storage.Storage
	registry  *sonarr.Registry
}

func New(processor *webhook.Processor, monitor *monitor.Monitor, store storage.Storage, registry *sonarr.Registry) Manager {
	return Manager{
		processor: processor,
		monitor:   monitor,
		store:     store,
		registry:  registry,
	}
}

// HandleSonarrWebhook processes one Sonarr delivery
func (m Manager) HandleSonarrWebhook(ctx context.Context, body []byte) (webhook.Outcome, error) {
	return m.processor.HandleSonarr(ctx, body)
}

// HandleRadarrWebhook processes one Radarr delivery
func (m Manager) HandleRadarrWebhook(ctx context.Context, body []byte) (webhook.Outcome, error) {
	return m.processor.HandleRadarr(ctx, body)
}

// WebhookQueue lists the seasons currently buffered from webhooks
func (m Manager) WebhookQueue() []webhook.SeasonSnapshot {
	return m.processor.Queue().Snapshot()
}

// FlushStaleSeasons notifies and evicts seasons that stopped receiving episodes
func (m Manager) FlushStaleSeasons(ctx context.Context, maxAge time.Duration) int {
	return m.processor.FlushStale(ctx, maxAge)
}

// MonitorSessions runs a single pass over the active playback sessions
func (m Manager) MonitorSessions(ctx context.Context) monitor.Result {
	if m.monitor == nil {
		return monitor.Result{
			RollingUpdates: make([]monitor.RollingUpdate, 0),
			Errors:         []string{ErrMonitorNotConfigured.Error()},
		}
	}
	return m.monitor.MonitorSessions(ctx)
}

// AddRollingShow opts a Sonarr series into rolling monitoring. A request without a user creates
// the master record and limits Sonarr to season one; a user scoped request only adds the row.
func (m Manager) AddRollingShow(ctx context.Context, request AddRollingShowRequest) (*RollingShow, error) {
	log := logger.FromCtx(ctx).With(zap.Int64("series_id", request.SeriesID), zap.Int64("instance_id", request.InstanceID))

	if err := getValidator().Struct(request); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	monitoringType := storage.MonitoringTypeFirstSeasonRolling
	if request.MonitoringType.IsSpecified() && !request.MonitoringType.IsNull() {
		monitoringType = request.MonitoringType.MustGet()
	}
	if !monitoringType.Valid() {
		return nil, fmt.Errorf("%w: unknown monitoring type %q", ErrInvalidRequest, monitoringType)
	}

	client, err := m.registry.Get(request.InstanceID)
	if err != nil {
		return nil, err
	}

	series, err := findSeriesByID(ctx, client, request.SeriesID)
	if err != nil {
		return nil, err
	}

	userID := optionalString(request.PlexUserID)
	identity := storage.RollingShowIdentity{
		TvdbID:     int32(series.TvdbID),
		Title:      series.Title,
		PlexUserID: userID,
	}
	_, err = m.store.GetRollingShowByIdentity(ctx, identity)
	if err == nil {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, series.Title)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	if userID == nil {
		if err := monitorFirstSeasonOnly(ctx, client, series); err != nil {
			log.Error("failed to limit sonarr monitoring to season one", zap.Error(err))
			return nil, err
		}
		if monitoringType == storage.MonitoringTypePilotRolling {
			if err := sonarr.MonitorPilotOnly(ctx, client, series.ID); err != nil {
				log.Error("failed to limit sonarr monitoring to the pilot", zap.Error(err))
				return nil, err
			}
		}
	}

	show := storage.RollingShow{
		RollingMonitoredShow: model.RollingMonitoredShow{
			SonarrSeriesID:         int32(series.ID),
			SonarrInstanceID:       int32(request.InstanceID),
			ShowTitle:              series.Title,
			MonitoringType:         string(monitoringType),
			CurrentMonitoredSeason: 1,
			PlexUserID:             userID,
			PlexUsername:           optionalString(request.PlexUsername),
		},
	}
	if series.TvdbID > 0 {
		tvdbID := int32(series.TvdbID)
		show.TvdbID = &tvdbID
	}

	id, err := m.store.CreateRollingShow(ctx, show)
	if err != nil {
		log.Error("failed to create rolling show", zap.Error(err))
		return nil, err
	}

	created, err := m.store.GetRollingShow(ctx, id)
	if err != nil {
		return nil, err
	}

	log.Infow("added rolling show", "title", series.Title, "type", monitoringType, "master", userID == nil)
	return toRollingShow(created), nil
}

// ListRollingShows returns one page of rolling shows ordered by title
func (m Manager) ListRollingShows(ctx context.Context, params pagination.Params) (pagination.Page[*RollingShow], error) {
	params = params.Normalize()
	offset, limit := params.CalculateOffsetLimit()

	shows, total, err := m.store.ListRollingShowsPage(ctx, offset, limit)
	if err != nil {
		return pagination.Page[*RollingShow]{}, err
	}

	items := make([]*RollingShow, len(shows))
	for i, s := range shows {
		items[i] = toRollingShow(s)
	}

	return pagination.NewPage(items, params, total), nil
}

func (m Manager) GetRollingShow(ctx context.Context, id int64) (*RollingShow, error) {
	show, err := m.store.GetRollingShow(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRollingShow(show), nil
}

// DeleteRollingShow removes a single row, leaving any other rows for the show in place
func (m Manager) DeleteRollingShow(ctx context.Context, id int64) error {
	return m.store.DeleteRollingShow(ctx, id)
}

// DeleteAllRollingShowEntries removes every row sharing the series and instance of the given row
func (m Manager) DeleteAllRollingShowEntries(ctx context.Context, id int64) (int64, error) {
	show, err := m.store.GetRollingShow(ctx, id)
	if err != nil {
		return 0, err
	}
	return m.store.DeleteAllRollingShowEntries(ctx, show.SonarrSeriesID, show.SonarrInstanceID)
}

// ResetRollingShow rewinds a show to its original state. Per-user rows are removed, the master
// row returns to season one and Sonarr stops monitoring every later season. Pilot rolling
// shows also go back to monitoring only the pilot.
func (m Manager) ResetRollingShow(ctx context.Context, id int64) error {
	show, err := m.store.GetRollingShow(ctx, id)
	if err != nil {
		return err
	}
	return m.reset(ctx, show.SonarrSeriesID, show.SonarrInstanceID, show.Type())
}

func (m Manager) reset(ctx context.Context, seriesID, instanceID int32, monitoringType storage.MonitoringType) error {
	log := logger.FromCtx(ctx).With(zap.Int32("series_id", seriesID), zap.Int32("instance_id", instanceID))

	if err := m.store.ResetRollingShowToOriginal(ctx, seriesID, instanceID); err != nil {
		return err
	}

	client, err := m.registry.Get(int64(instanceID))
	if err != nil {
		return err
	}

	series, err := findSeriesByID(ctx, client, int64(seriesID))
	if err != nil {
		return err
	}

	var errs []error
	for _, season := range series.Seasons {
		if season.SeasonNumber <= 1 || !season.Monitored {
			continue
		}
		if err := client.UpdateSeasonMonitoring(ctx, series.ID, season.SeasonNumber, false); err != nil {
			errs = append(errs, fmt.Errorf("season %d: %w", season.SeasonNumber, err))
		}
	}
	if monitoringType == storage.MonitoringTypePilotRolling {
		if err := sonarr.MonitorPilotOnly(ctx, client, series.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		log.Error("failed to unmonitor seasons after reset", zap.Error(err))
		return err
	}

	log.Infow("reset rolling show", "title", series.Title)
	return nil
}

// ResetInactiveRollingShows resets every show with no playback for longer than inactivity.
// A show is only reset when none of its rows saw activity and it has moved past its original state.
func (m Manager) ResetInactiveRollingShows(ctx context.Context, inactivity time.Duration) (int, error) {
	log := logger.FromCtx(ctx)
	cutoff := time.Now().Add(-inactivity)

	stale, err := m.store.ListStaleRollingShows(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	var (
		reset int
		errs  []error
	)
	for _, key := range showKeys(stale) {
		rows, err := m.store.ListRollingShows(ctx,
			table.RollingMonitoredShow.SonarrSeriesID.EQ(sqlite.Int32(key.seriesID)),
			table.RollingMonitoredShow.SonarrInstanceID.EQ(sqlite.Int32(key.instanceID)),
		)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !needsReset(rows, cutoff) {
			continue
		}

		if err := m.reset(ctx, key.seriesID, key.instanceID, rows[0].Type()); err != nil {
			log.Warnw("failed to reset inactive rolling show", "series_id", key.seriesID, "instance_id", key.instanceID, "error", err)
			errs = append(errs, err)
			continue
		}
		reset++
	}

	return reset, errors.Join(errs...)
}

type showKey struct {
	seriesID   int32
	instanceID int32
}

func showKeys(shows []*storage.RollingShow) []showKey {
	seen := make(map[showKey]struct{})
	keys := make([]showKey, 0)
	for _, s := range shows {
		k := showKey{seriesID: s.SonarrSeriesID, instanceID: s.SonarrInstanceID}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	return keys
}

func needsReset(rows []*storage.RollingShow, cutoff time.Time) bool {
	if len(rows) == 0 {
		return false
	}

	moved := false
	for _, r := range rows {
		if r.LastSessionDate != nil && !r.LastSessionDate.Before(cutoff) {
			return false
		}
		if !r.IsMaster() || r.CurrentMonitoredSeason > 1 || r.LastWatchedSeason > 0 {
			moved = true
		}
	}
	return moved
}

func findSeriesByID(ctx context.Context, client sonarr.Client, id int64) (sonarr.Series, error) {
	all, err := client.GetAllSeries(ctx)
	if err != nil {
		return sonarr.Series{}, fmt.Errorf("failed to list series: %w", err)
	}
	for _, s := range all {
		if s.ID == id {
			return s, nil
		}
	}
	return sonarr.Series{}, fmt.Errorf("%w: id %d", sonarr.ErrSeriesNotFound, id)
}

// monitorFirstSeasonOnly keeps the series monitored but stops Sonarr from picking up new
// seasons on its own, then monitors season one and nothing after it.
func monitorFirstSeasonOnly(ctx context.Context, client sonarr.Client, series sonarr.Series) error {
	err := client.UpdateSeriesMonitoring(ctx, series.ID, sonarr.MonitoringOptions{
		Monitored:       true,
		MonitorNewItems: sonarr.MonitorNewItemsNone,
	})
	if err != nil {
		return err
	}

	if season, ok := series.Season(1); !ok || !season.Monitored {
		if err := client.UpdateSeasonMonitoring(ctx, series.ID, 1, true); err != nil {
			return err
		}
	}

	for _, season := range series.Seasons {
		if season.SeasonNumber <= 1 || !season.Monitored {
			continue
		}
		if err := client.UpdateSeasonMonitoring(ctx, series.ID, season.SeasonNumber, false); err != nil {
			return err
		}
	}

	return nil
}

func optionalString(n nullable.Nullable[string]) *string {
	if !n.IsSpecified() || n.IsNull() {
		return nil
	}
	v, err := n.Get()
	if err != nil {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
