package storage

import (
	"context"
	"errors"
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/rollwatch/pkg/storage/sqlite/schema/gen/model"
)

var ErrNotFound = errors.New("not found in storage")
var ErrNoRowsAffected = errors.New("no rows affected")

type Storage interface {
	RunMigrations(ctx context.Context) error
	Close() error
	RollingShowStorage
}

type MonitoringType string

const (
	MonitoringTypePilotRolling       MonitoringType = "pilotRolling"
	MonitoringTypeFirstSeasonRolling MonitoringType = "firstSeasonRolling"
)

func (m MonitoringType) Valid() bool {
	switch m {
	case MonitoringTypePilotRolling, MonitoringTypeFirstSeasonRolling:
		return true
	}
	return false
}

// RollingShow is a show whose monitoring advances one season at a time as it is watched.
// A row without a plex user is the master record for the show.
type RollingShow struct {
	model.RollingMonitoredShow
}

func (r RollingShow) IsMaster() bool {
	return r.PlexUserID == nil || *r.PlexUserID == ""
}

func (r RollingShow) Type() MonitoringType {
	return MonitoringType(r.MonitoringType)
}

// RollingShowIdentity identifies a rolling show the way playback metadata does.
// A TvdbID of zero matches by title only. A nil PlexUserID selects the master record.
type RollingShowIdentity struct {
	TvdbID     int32
	Title      string
	PlexUserID *string
}

type RollingShowStorage interface {
	CreateRollingShow(ctx context.Context, show RollingShow) (int64, error)
	GetRollingShow(ctx context.Context, id int64) (*RollingShow, error)
	GetRollingShowByIdentity(ctx context.Context, identity RollingShowIdentity) (*RollingShow, error)
	ListRollingShows(ctx context.Context, where ...sqlite.BoolExpression) ([]*RollingShow, error)
	ListRollingShowsPage(ctx context.Context, offset, limit int) ([]*RollingShow, int, error)
	ListStaleRollingShows(ctx context.Context, cutoff time.Time) ([]*RollingShow, error)
	UpdateRollingShowProgress(ctx context.Context, id int64, season, episode int32, sessionDate time.Time) error
	UpdateRollingShowFrontier(ctx context.Context, id int64, season int32) error
	DeleteRollingShow(ctx context.Context, id int64) error
	DeleteAllRollingShowEntries(ctx context.Context, seriesID, instanceID int32) (int64, error)
	ResetRollingShowToOriginal(ctx context.Context, seriesID, instanceID int32) error
}
