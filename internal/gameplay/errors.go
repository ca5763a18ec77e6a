package gameplay

import "errors"

var (
	// ErrInvalidGame is returned when starting a session for an unknown game.
	ErrInvalidGame = errors.New("unknown game")
	// ErrSessionNotFound is returned when the session is not in the store,
	// either because it never existed or because it was evicted or lost in
	// a restart.
	ErrSessionNotFound = errors.New("session not found")
	// ErrUnknownItem is returned when an answer names an item outside the
	// session's content set.
	ErrUnknownItem = errors.New("content item not in session")
	// ErrAlreadyAnswered is returned when an item has no free answer slot
	// left, or a match was already recorded.
	ErrAlreadyAnswered = errors.New("content item already answered")
	// ErrSessionCompleted is returned when answering a finalized session.
	ErrSessionCompleted = errors.New("session already completed")
)
