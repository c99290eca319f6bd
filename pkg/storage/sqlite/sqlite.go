package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-jet/jet/v2/sqlite"
	"github.com/kasuboski/rollwatch/pkg/logger"
	"github.com/kasuboski/rollwatch/pkg/storage"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const timestampFormat = time.DateTime

type SQLite struct {
	db *sql.DB
	mu sync.Mutex
}

// New creates a new sqlite database given a path to the database file.
// File databases take the write lock when a transaction begins so multi-row
// mutations are never observed half applied.
func New(ctx context.Context, filePath string) (storage.Storage, error) {
	log := logger.FromCtx(ctx)

	db, err := sql.Open("sqlite3", dataSourceName(filePath))
	if err != nil {
		return nil, err
	}

	// a single connection keeps :memory: databases consistent and serializes writers
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log.Debugw("opened sqlite database", "path", filePath)

	return &SQLite{
		db: db,
	}, nil
}

func dataSourceName(filePath string) string {
	if filePath == ":memory:" || strings.HasPrefix(filePath, "file:") {
		return filePath
	}
	return fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=5000", filePath)
}

// RunMigrations applies any pending embedded migrations
func (s *SQLite) RunMigrations(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return runMigrations(s.db)
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) handleInsert(ctx context.Context, stmt sqlite.InsertStatement) (sql.Result, error) {
	return s.handleStatement(ctx, stmt)
}

func (s *SQLite) handleUpdate(ctx context.Context, stmt sqlite.UpdateStatement) (sql.Result, error) {
	return s.handleStatement(ctx, stmt)
}

func (s *SQLite) handleDelete(ctx context.Context, stmt sqlite.DeleteStatement) (sql.Result, error) {
	return s.handleStatement(ctx, stmt)
}

func (s *SQLite) handleStatement(ctx context.Context, stmt sqlite.Statement) (sql.Result, error) {
	log := logger.FromCtx(ctx)
	var result sql.Result

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Debug("failed to init transaction", zap.Error(err))
		return result, err
	}

	result, err = stmt.ExecContext(ctx, tx)
	if err != nil {
		log.Debug("failed to execute statement", zap.String("query", stmt.DebugSql()), zap.Error(err))
		tx.Rollback()
		return result, err
	}

	return result, tx.Commit()
}

// withTx runs fn inside a single transaction, rolling back if it returns an error
func (s *SQLite) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func now() sqlite.TimestampExpression {
	return timestamp(time.Now())
}

func timestamp(t time.Time) sqlite.TimestampExpression {
	return sqlite.TimestampExp(sqlite.String(t.UTC().Format(timestampFormat)))
}
