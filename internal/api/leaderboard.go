package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ashureev/tiny-arcade/internal/catalog"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/ashureev/tiny-arcade/internal/identity"
	"github.com/ashureev/tiny-arcade/internal/scoring"
	"github.com/go-chi/chi/v5"
)

const defaultLeaderboardLimit = 10

// LeaderboardHandler serves archived scores.
type LeaderboardHandler struct {
	*Handler
	now func() time.Time
}

// NewLeaderboardHandler creates a leaderboard handler. The base handler must
// carry a results archive.
func NewLeaderboardHandler(base *Handler) *LeaderboardHandler {
	return &LeaderboardHandler{Handler: base, now: time.Now}
}

// RegisterRoutes registers leaderboard routes.
func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/leaderboard", func(r chi.Router) {
		r.Get("/", h.Top)
		r.Post("/score", h.AddScore)
		r.Get("/{player}", h.Player)
	})
}

// ScoreRequest is the body of POST /api/leaderboard/score.
type ScoreRequest struct {
	PlayerLabel     string        `json:"player_label"`
	GameID          domain.GameID `json:"game_id"`
	Score           *int          `json:"score"`
	AccuracyPercent int           `json:"accuracy_percent"`
}

// Top returns the best scores, optionally for one game.
func (h *LeaderboardHandler) Top(w http.ResponseWriter, r *http.Request) {
	gameID := domain.GameID(r.URL.Query().Get("game_id"))
	limit := defaultLeaderboardLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			ErrorMessage(w, http.StatusBadRequest, CodeInvalidRequest, "limit must be a positive number")
			return
		}
		limit = n
	}

	scores, err := h.results.TopScores(r.Context(), gameID, limit)
	if err != nil {
		Fail(w, r, err)
		return
	}
	if scores == nil {
		scores = []domain.ScoreEntry{}
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"scores": scores,
		"total":  len(scores),
	})
}

// Player returns the aggregate stats of one player.
func (h *LeaderboardHandler) Player(w http.ResponseWriter, r *http.Request) {
	stats, err := h.results.PlayerStats(r.Context(), chi.URLParam(r, "player"))
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, stats)
}

// AddScore archives a score reported by a client, such as the result of an
// offline game.
func (h *LeaderboardHandler) AddScore(w http.ResponseWriter, r *http.Request) {
	var req ScoreRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorMessage(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	label := identity.SanitizeLabel(req.PlayerLabel)
	if label == "" {
		label = identity.LabelFromContext(r.Context())
	}
	switch {
	case label == domain.AnonymousPlayer:
		ErrorMessage(w, http.StatusBadRequest, CodeInvalidRequest, "player_label is required")
		return
	case req.Score == nil || *req.Score < 0:
		ErrorMessage(w, http.StatusBadRequest, CodeInvalidRequest, "score must be a non-negative number")
		return
	case req.AccuracyPercent < 0 || req.AccuracyPercent > 100:
		ErrorMessage(w, http.StatusBadRequest, CodeInvalidRequest, "accuracy_percent must be between 0 and 100")
		return
	}
	game, ok := catalog.Lookup(req.GameID)
	if !ok {
		Error(w, http.StatusBadRequest, CodeInvalidGame)
		return
	}

	entry := domain.ScoreEntry{
		GameID:          game.ID,
		GameName:        game.Name,
		PlayerLabel:     label,
		Score:           *req.Score,
		AccuracyPercent: req.AccuracyPercent,
		Badge:           scoring.BadgeFor(req.AccuracyPercent).Tier,
		RecordedAt:      h.now(),
	}
	if err := h.results.SaveResult(r.Context(), entry); err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, entry)
}
