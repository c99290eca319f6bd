package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-jet/jet/v2/qrm"
	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/storage"
	"github.com/kasuboski/rollwatch/pkg/storage/sqlite/schema/gen/table"
)

// CreateRollingShow stores a new rolling show. Timestamps are set by the database.
func (s *SQLite) CreateRollingShow(ctx context.Context, show storage.RollingShow) (int64, error) {
	if !show.Type().Valid() {
		return 0, fmt.Errorf("invalid monitoring type %q", show.MonitoringType)
	}
	if show.CurrentMonitoredSeason == 0 {
		show.CurrentMonitoredSeason = 1
	}

	insertColumns := table.RollingMonitoredShow.MutableColumns.Except(
		table.RollingMonitoredShow.CreatedAt,
		table.RollingMonitoredShow.UpdatedAt,
		table.RollingMonitoredShow.LastUpdatedAt,
		table.RollingMonitoredShow.LastSessionDate,
	)

	stmt := table.RollingMonitoredShow.
		INSERT(insertColumns).
		MODEL(show.RollingMonitoredShow).
		RETURNING(table.RollingMonitoredShow.ID)

	result, err := s.handleInsert(ctx, stmt)
	if err != nil {
		return 0, fmt.Errorf("failed to create rolling show: %w", err)
	}

	return result.LastInsertId()
}

// GetRollingShow gets a rolling show given an id
func (s *SQLite) GetRollingShow(ctx context.Context, id int64) (*storage.RollingShow, error) {
	stmt := table.RollingMonitoredShow.
		SELECT(table.RollingMonitoredShow.AllColumns).
		FROM(table.RollingMonitoredShow).
		WHERE(table.RollingMonitoredShow.ID.EQ(sqlite.Int64(id)))

	return s.queryRollingShow(ctx, stmt)
}

// GetRollingShowByIdentity finds the rolling show matching a tvdb id or title for the given user.
// A nil user selects the master record.
func (s *SQLite) GetRollingShowByIdentity(ctx context.Context, identity storage.RollingShowIdentity) (*storage.RollingShow, error) {
	if identity.TvdbID == 0 && identity.Title == "" {
		return nil, storage.ErrNotFound
	}

	var match sqlite.BoolExpression
	if identity.Title != "" {
		match = sqlite.LOWER(table.RollingMonitoredShow.ShowTitle).EQ(sqlite.LOWER(sqlite.String(identity.Title)))
	}
	if identity.TvdbID != 0 {
		byTvdb := table.RollingMonitoredShow.TvdbID.EQ(sqlite.Int32(identity.TvdbID))
		if match == nil {
			match = byTvdb
		} else {
			match = byTvdb.OR(match)
		}
	}

	user := table.RollingMonitoredShow.PlexUserID.IS_NULL()
	if identity.PlexUserID != nil {
		user = table.RollingMonitoredShow.PlexUserID.EQ(sqlite.String(*identity.PlexUserID))
	}

	stmt := table.RollingMonitoredShow.
		SELECT(table.RollingMonitoredShow.AllColumns).
		FROM(table.RollingMonitoredShow).
		WHERE(match.AND(user)).
		ORDER_BY(table.RollingMonitoredShow.ID.ASC()).
		LIMIT(1)

	return s.queryRollingShow(ctx, stmt)
}

func (s *SQLite) queryRollingShow(ctx context.Context, stmt sqlite.SelectStatement) (*storage.RollingShow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	show := new(storage.RollingShow)
	err := stmt.QueryContext(ctx, s.db, show)
	if err != nil {
		if errors.Is(err, qrm.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rolling show: %w", err)
	}

	return show, nil
}

// ListRollingShows lists rolling shows matching all of the given conditions
func (s *SQLite) ListRollingShows(ctx context.Context, where ...sqlite.BoolExpression) ([]*storage.RollingShow, error) {
	shows := make([]*storage.RollingShow, 0)

	stmt := table.RollingMonitoredShow.
		SELECT(table.RollingMonitoredShow.AllColumns).
		FROM(table.RollingMonitoredShow)

	if len(where) > 0 {
		stmt = stmt.WHERE(sqlite.AND(where...))
	}

	stmt = stmt.ORDER_BY(table.RollingMonitoredShow.ShowTitle.ASC(), table.RollingMonitoredShow.ID.ASC())

	s.mu.Lock()
	defer s.mu.Unlock()

	err := stmt.QueryContext(ctx, s.db, &shows)
	if err != nil {
		return nil, fmt.Errorf("failed to list rolling shows: %w", err)
	}

	return shows, nil
}

// ListRollingShowsPage returns a page of rolling shows and the total number of rows.
// A limit of zero returns every row.
func (s *SQLite) ListRollingShowsPage(ctx context.Context, offset, limit int) ([]*storage.RollingShow, int, error) {
	shows := make([]*storage.RollingShow, 0)

	stmt := table.RollingMonitoredShow.
		SELECT(table.RollingMonitoredShow.AllColumns).
		FROM(table.RollingMonitoredShow).
		ORDER_BY(table.RollingMonitoredShow.ShowTitle.ASC(), table.RollingMonitoredShow.ID.ASC())

	if limit > 0 {
		stmt = stmt.LIMIT(int64(limit)).OFFSET(int64(offset))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var total int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rolling_monitored_show`).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count rolling shows: %w", err)
	}

	err = stmt.QueryContext(ctx, s.db, &shows)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rolling shows: %w", err)
	}

	return shows, total, nil
}

// ListStaleRollingShows lists rolling shows with no playback or update since the cutoff
func (s *SQLite) ListStaleRollingShows(ctx context.Context, cutoff time.Time) ([]*storage.RollingShow, error) {
	before := timestamp(cutoff)
	where := table.RollingMonitoredShow.LastSessionDate.LT(before).
		OR(table.RollingMonitoredShow.LastSessionDate.IS_NULL().AND(table.RollingMonitoredShow.UpdatedAt.LT(before)))

	return s.ListRollingShows(ctx, where)
}

// UpdateRollingShowProgress records the last watched episode for a rolling show
func (s *SQLite) UpdateRollingShowProgress(ctx context.Context, id int64, season, episode int32, sessionDate time.Time) error {
	stmt := table.RollingMonitoredShow.
		UPDATE().
		SET(
			table.RollingMonitoredShow.LastWatchedSeason.SET(sqlite.Int32(season)),
			table.RollingMonitoredShow.LastWatchedEpisode.SET(sqlite.Int32(episode)),
			table.RollingMonitoredShow.LastSessionDate.SET(timestamp(sessionDate)),
			table.RollingMonitoredShow.UpdatedAt.SET(now()),
		).
		WHERE(table.RollingMonitoredShow.ID.EQ(sqlite.Int64(id)))

	result, err := s.handleUpdate(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to update rolling show progress: %w", err)
	}

	return requireAffected(result)
}

// UpdateRollingShowFrontier advances the season currently monitored for a rolling show
func (s *SQLite) UpdateRollingShowFrontier(ctx context.Context, id int64, season int32) error {
	stmt := table.RollingMonitoredShow.
		UPDATE().
		SET(
			table.RollingMonitoredShow.CurrentMonitoredSeason.SET(sqlite.Int32(season)),
			table.RollingMonitoredShow.UpdatedAt.SET(now()),
			table.RollingMonitoredShow.LastUpdatedAt.SET(now()),
		).
		WHERE(table.RollingMonitoredShow.ID.EQ(sqlite.Int64(id)))

	result, err := s.handleUpdate(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to update rolling show frontier: %w", err)
	}

	return requireAffected(result)
}

// DeleteRollingShow deletes a single rolling show given an id
func (s *SQLite) DeleteRollingShow(ctx context.Context, id int64) error {
	stmt := table.RollingMonitoredShow.
		DELETE().
		WHERE(table.RollingMonitoredShow.ID.EQ(sqlite.Int64(id)))

	result, err := s.handleDelete(ctx, stmt)
	if err != nil {
		return fmt.Errorf("failed to delete rolling show: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// DeleteAllRollingShowEntries removes the master and every per-user row for a show in one transaction
func (s *SQLite) DeleteAllRollingShowEntries(ctx context.Context, seriesID, instanceID int32) (int64, error) {
	log := logger.FromCtx(ctx)

	var deleted int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt := table.RollingMonitoredShow.
			DELETE().
			WHERE(showRows(seriesID, instanceID))

		result, err := stmt.ExecContext(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to delete rolling show entries: %w", err)
		}

		deleted, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}

	log.Debugw("deleted rolling show entries", "series_id", seriesID, "instance_id", instanceID, "count", deleted)
	return deleted, nil
}

// ResetRollingShowToOriginal removes per-user rows and rewinds the master row to season one
// in a single transaction
func (s *SQLite) ResetRollingShowToOriginal(ctx context.Context, seriesID, instanceID int32) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		deleteUsers := table.RollingMonitoredShow.
			DELETE().
			WHERE(showRows(seriesID, instanceID).AND(table.RollingMonitoredShow.PlexUserID.IS_NOT_NULL()))

		if _, err := deleteUsers.ExecContext(ctx, tx); err != nil {
			return fmt.Errorf("failed to delete per-user rolling shows: %w", err)
		}

		rewind := table.RollingMonitoredShow.
			UPDATE().
			SET(
				table.RollingMonitoredShow.CurrentMonitoredSeason.SET(sqlite.Int32(1)),
				table.RollingMonitoredShow.LastWatchedSeason.SET(sqlite.Int32(0)),
				table.RollingMonitoredShow.LastWatchedEpisode.SET(sqlite.Int32(0)),
				table.RollingMonitoredShow.LastSessionDate.SET(sqlite.TimestampExp(sqlite.NULL)),
				table.RollingMonitoredShow.UpdatedAt.SET(now()),
				table.RollingMonitoredShow.LastUpdatedAt.SET(now()),
			).
			WHERE(showRows(seriesID, instanceID).AND(table.RollingMonitoredShow.PlexUserID.IS_NULL()))

		result, err := rewind.ExecContext(ctx, tx)
		if err != nil {
			return fmt.Errorf("failed to reset master rolling show: %w", err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return storage.ErrNotFound
		}

		return nil
	})
}

func showRows(seriesID, instanceID int32) sqlite.BoolExpression {
	return table.RollingMonitoredShow.SonarrSeriesID.EQ(sqlite.Int32(seriesID)).
		AND(table.RollingMonitoredShow.SonarrInstanceID.EQ(sqlite.Int32(instanceID)))
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrNoRowsAffected
	}
	return nil
}
