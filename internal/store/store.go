// Package store provides session and result persistence interfaces and
// implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ashureev/tiny-arcade/internal/domain"
)

var (
	// ErrNotFound is returned when a session is not in the store.
	ErrNotFound = errors.New("session not found")
	// ErrExists is returned when creating a session whose id is taken.
	ErrExists = errors.New("session already exists")
)

// Sessions is the registry of live play sessions. Implementations hand out
// copies; callers write changes back with Put.
type Sessions interface {
	// Create stores a new session.
	Create(ctx context.Context, s *domain.Session) error

	// Get returns a copy of the session.
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Put replaces a stored session.
	Put(ctx context.Context, s *domain.Session) error

	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns copies of every stored session.
	List(ctx context.Context) ([]*domain.Session, error)

	// DeleteExpired removes sessions idle for longer than ttl and returns
	// their ids.
	DeleteExpired(ctx context.Context, ttl time.Duration) ([]string, error)

	// Clear removes every session.
	Clear(ctx context.Context) error
}

// Results archives finalized session results for the leaderboard.
type Results interface {
	// SaveResult archives one finalized score.
	SaveResult(ctx context.Context, entry domain.ScoreEntry) error

	// TopScores returns the best scores, optionally filtered by game.
	TopScores(ctx context.Context, gameID domain.GameID, limit int) ([]domain.ScoreEntry, error)

	// PlayerStats aggregates every archived score of a player.
	PlayerStats(ctx context.Context, playerLabel string) (*domain.PlayerStats, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
