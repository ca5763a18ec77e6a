// Package api provides HTTP handlers for the arcade API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/ashureev/tiny-arcade/internal/gameplay"
	"github.com/ashureev/tiny-arcade/internal/store"
	"github.com/go-chi/chi/v5"
)

// Error codes returned in the "error" field of failed responses.
const (
	CodeInvalidRequest   = "invalid_request"
	CodeInvalidGame      = "invalid_game"
	CodeSessionNotFound  = "session_not_found"
	CodeUnknownItem      = "unknown_item"
	CodeAlreadyAnswered  = "already_answered"
	CodeSessionCompleted = "session_completed"
	CodeGameNotFound     = "game_not_found"
	CodePlayerNotFound   = "player_not_found"
	CodeInternal         = "internal_error"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Handler provides common handler utilities.
type Handler struct {
	mgr     *gameplay.Manager
	results store.Results
}

// NewHandler creates a new Handler with common dependencies. results may be
// nil when the leaderboard is disabled.
func NewHandler(mgr *gameplay.Manager, results store.Results) *Handler {
	return &Handler{
		mgr:     mgr,
		results: results,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("Failed to encode response", "error", err)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, code string) {
	JSON(w, status, ErrorBody{Error: code})
}

// ErrorMessage writes a JSON error response with a human readable message.
func ErrorMessage(w http.ResponseWriter, status int, code, message string) {
	JSON(w, status, ErrorBody{Error: code, Message: message})
}

// StatusFor maps a domain error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	switch {
	case errors.Is(err, gameplay.ErrInvalidGame):
		return http.StatusBadRequest, CodeInvalidGame
	case errors.Is(err, gameplay.ErrSessionNotFound):
		return http.StatusNotFound, CodeSessionNotFound
	case errors.Is(err, gameplay.ErrUnknownItem):
		return http.StatusBadRequest, CodeUnknownItem
	case errors.Is(err, gameplay.ErrAlreadyAnswered):
		return http.StatusConflict, CodeAlreadyAnswered
	case errors.Is(err, gameplay.ErrSessionCompleted):
		return http.StatusConflict, CodeSessionCompleted
	case errors.Is(err, store.ErrPlayerNotFound):
		return http.StatusNotFound, CodePlayerNotFound
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// Fail writes the error response for err. Unexpected errors are logged and
// their text is not sent to the client.
func Fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		Error(w, status, code)
		return
	}
	ErrorMessage(w, status, code, err.Error())
}

// decodeJSON reads a bounded JSON body into v. An empty body leaves v
// unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// Mount registers every API route on r. Leaderboard routes are only
// registered when the handler carries a results archive.
func Mount(r chi.Router, h *Handler, version string) {
	NewHealthHandler(h.results, version).RegisterHealth(r)
	NewGamesHandler().RegisterRoutes(r)
	NewGameplayHandler(h).RegisterRoutes(r)
	if h.results != nil {
		NewLeaderboardHandler(h).RegisterRoutes(r)
	}
}
