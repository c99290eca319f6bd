package manager

import (
	"time"

	"github.com/kasuboski/rollwatch/pkg/storage"
	"github.com/oapi-codegen/nullable"
)

// AddRollingShowRequest opts a Sonarr series into rolling monitoring.
// MonitoringType defaults to firstSeasonRolling when unset or null. A missing or null
// PlexUserID creates the master record for the show.
type AddRollingShowRequest struct {
	InstanceID     int64                                     `json:"instanceId" validate:"required,gt=0"`
	SeriesID       int64                                     `json:"seriesId" validate:"required,gt=0"`
	MonitoringType nullable.Nullable[storage.MonitoringType] `json:"monitoringType,omitempty"`
	PlexUserID     nullable.Nullable[string]                 `json:"plexUserId,omitempty"`
	PlexUsername   nullable.Nullable[string]                 `json:"plexUsername,omitempty"`
}

// RollingShow is the API view of a rolling monitored show row
type RollingShow struct {
	ID                     int32                  `json:"id"`
	SeriesID               int32                  `json:"seriesId"`
	InstanceID             int32                  `json:"instanceId"`
	TvdbID                 *int32                 `json:"tvdbId,omitempty"`
	Title                  string                 `json:"title"`
	MonitoringType         storage.MonitoringType `json:"monitoringType"`
	CurrentMonitoredSeason int32                  `json:"currentMonitoredSeason"`
	LastWatchedSeason      int32                  `json:"lastWatchedSeason"`
	LastWatchedEpisode     int32                  `json:"lastWatchedEpisode"`
	PlexUserID             *string                `json:"plexUserId,omitempty"`
	PlexUsername           *string                `json:"plexUsername,omitempty"`
	Master                 bool                   `json:"master"`
	CreatedAt              *time.Time             `json:"createdAt,omitempty"`
	UpdatedAt              *time.Time             `json:"updatedAt,omitempty"`
	LastSessionDate        *time.Time             `json:"lastSessionDate,omitempty"`
}

func toRollingShow(s *storage.RollingShow) *RollingShow {
	return &RollingShow{
		ID:                     s.ID,
		SeriesID:               s.SonarrSeriesID,
		InstanceID:             s.SonarrInstanceID,
		TvdbID:                 s.TvdbID,
		Title:                  s.ShowTitle,
		MonitoringType:         s.Type(),
		CurrentMonitoredSeason: s.CurrentMonitoredSeason,
		LastWatchedSeason:      s.LastWatchedSeason,
		LastWatchedEpisode:     s.LastWatchedEpisode,
		PlexUserID:             s.PlexUserID,
		PlexUsername:           s.PlexUsername,
		Master:                 s.IsMaster(),
		CreatedAt:              s.CreatedAt,
		UpdatedAt:              s.UpdatedAt,
		LastSessionDate:        s.LastSessionDate,
	}
}
