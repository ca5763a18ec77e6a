package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/ashureev/tiny-arcade/internal/shared"
	_ "modernc.org/sqlite"
)

// ErrPlayerNotFound is returned when a player has no archived scores.
var ErrPlayerNotFound = errors.New("player not found")

const (
	writeAttempts  = 3
	writeBaseDelay = 100 * time.Millisecond
	maxTopScores   = 100
)

// SQLiteStore implements Results using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed results archive.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL so leaderboard reads never wait on a result write.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT,
		game_id TEXT NOT NULL,
		game_name TEXT NOT NULL DEFAULT '',
		player_label TEXT NOT NULL,
		score INTEGER NOT NULL,
		accuracy INTEGER NOT NULL,
		badge TEXT NOT NULL DEFAULT '',
		recorded_at INTEGER NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_scores_session ON scores(session_id) WHERE session_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_scores_game_score ON scores(game_id, score DESC);
	CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_label);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}

// SaveResult archives one score. A second save for the same session id is
// ignored. Writes are retried on SQLITE_BUSY.
func (s *SQLiteStore) SaveResult(ctx context.Context, entry domain.ScoreEntry) error {
	query := `
	INSERT OR IGNORE INTO scores (session_id, game_id, game_name, player_label, score, accuracy, badge, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	var sessionID any
	if entry.SessionID != "" {
		sessionID = entry.SessionID
	}
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	err := shared.RetryOnConflict(ctx, "save_result", writeAttempts, writeBaseDelay, func() error {
		_, err := s.db.ExecContext(ctx, query,
			sessionID, string(entry.GameID), entry.GameName, entry.PlayerLabel,
			entry.Score, entry.AccuracyPercent, string(entry.Badge), recordedAt.UnixMilli(),
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// TopScores returns the highest scores, newest first among ties. An empty
// gameID covers every game.
func (s *SQLiteStore) TopScores(ctx context.Context, gameID domain.GameID, limit int) ([]domain.ScoreEntry, error) {
	if limit <= 0 || limit > maxTopScores {
		limit = maxTopScores
	}

	query := `
		SELECT session_id, game_id, game_name, player_label, score, accuracy, badge, recorded_at
		FROM scores`
	args := []any{}
	if gameID != "" {
		query += ` WHERE game_id = ?`
		args = append(args, string(gameID))
	}
	query += ` ORDER BY score DESC, recorded_at DESC LIMIT ?`
	args = append(args, limit)

	return s.queryScores(ctx, query, args...)
}

// PlayerStats aggregates every archived score of a player.
func (s *SQLiteStore) PlayerStats(ctx context.Context, playerLabel string) (*domain.PlayerStats, error) {
	query := `
		SELECT session_id, game_id, game_name, player_label, score, accuracy, badge, recorded_at
		FROM scores WHERE player_label = ? ORDER BY recorded_at DESC`

	games, err := s.queryScores(ctx, query, playerLabel)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrPlayerNotFound
	}

	stats := &domain.PlayerStats{
		PlayerLabel: playerLabel,
		GamesPlayed: len(games),
		Games:       games,
	}
	accuracy := 0
	for _, g := range games {
		stats.TotalScore += g.Score
		accuracy += g.AccuracyPercent
	}
	stats.AverageAccuracy = int(math.Round(float64(accuracy) / float64(len(games))))
	return stats, nil
}

func (s *SQLiteStore) queryScores(ctx context.Context, query string, args ...any) ([]domain.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query scores: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("Failed to close score rows", "error", closeErr)
		}
	}()

	var out []domain.ScoreEntry
	for rows.Next() {
		var e domain.ScoreEntry
		var sessionID sql.NullString
		var gameID, badge string
		var recordedAt int64

		if err := rows.Scan(
			&sessionID, &gameID, &e.GameName, &e.PlayerLabel,
			&e.Score, &e.AccuracyPercent, &badge, &recordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan score row: %w", err)
		}

		e.SessionID = sessionID.String
		e.GameID = domain.GameID(gameID)
		e.Badge = domain.BadgeTier(badge)
		e.RecordedAt = time.UnixMilli(recordedAt)
		out = append(out, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return out, nil
}
