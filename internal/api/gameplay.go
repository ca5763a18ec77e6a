package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/ashureev/tiny-arcade/internal/identity"
	"github.com/go-chi/chi/v5"
)

// GameplayHandler serves play sessions.
type GameplayHandler struct {
	*Handler
}

// NewGameplayHandler creates a gameplay handler.
func NewGameplayHandler(base *Handler) *GameplayHandler {
	return &GameplayHandler{Handler: base}
}

// RegisterRoutes registers gameplay routes.
func (h *GameplayHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/gameplay", func(r chi.Router) {
		r.Post("/start", h.Start)
		r.Get("/active", h.Active)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.Post("/answer", h.Answer)
			r.Post("/end", h.End)
			r.Get("/content", h.Content)
			r.Get("/question", h.Question)
		})
	})
}

// StartRequest is the body of POST /api/gameplay/start.
type StartRequest struct {
	GameID      domain.GameID `json:"game_id"`
	PlayerLabel string        `json:"player_label,omitempty"`
}

// AnswerRequest is the body of POST /api/gameplay/{sessionID}/answer.
type AnswerRequest struct {
	ItemID string      `json:"item_id"`
	Value  AnswerValue `json:"value"`
	// TimeSpent is the time taken on the item in seconds.
	TimeSpent float64 `json:"time_spent"`
}

// AnswerValue is a submitted answer. Numbers are accepted and kept in their
// decimal form, so counting answers may be sent as 3 or "3".
type AnswerValue string

// UnmarshalJSON accepts a JSON string or number.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = AnswerValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("answer value must be a string or number")
	}
	*v = AnswerValue(n.String())
	return nil
}

// EndResponse is the body returned by POST /api/gameplay/{sessionID}/end.
type EndResponse struct {
	SessionID string `json:"session_id"`
	domain.Result
}

// QuestionResponse is the body returned by GET
// /api/gameplay/{sessionID}/question. Item is nil once every item has been
// answered.
type QuestionResponse struct {
	Item *domain.ContentItem `json:"item"`
	Done bool                `json:"done"`
}

// Start begins a session. The player label comes from the body, or from the
// label header when the body has none.
func (h *GameplayHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorMessage(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}

	label := identity.SanitizeLabel(req.PlayerLabel)
	if label == "" {
		label = identity.LabelFromContext(r.Context())
	}

	summary, err := h.mgr.Start(r.Context(), req.GameID, label)
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, summary)
}

// Answer records one answer.
func (h *GameplayHandler) Answer(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	var req AnswerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		ErrorMessage(w, http.StatusBadRequest, CodeInvalidRequest, err.Error())
		return
	}
	if req.ItemID == "" {
		ErrorMessage(w, http.StatusBadRequest, CodeInvalidRequest, "item_id is required")
		return
	}

	spent := SecondsToDuration(req.TimeSpent)
	res, err := h.mgr.Submit(r.Context(), sessionID, req.ItemID, string(req.Value), spent)
	if err != nil {
		slog.Debug("Answer rejected", "session_id", sessionID, "item_id", req.ItemID, "error", err)
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

// End finalizes the session. Repeated calls return the same result.
func (h *GameplayHandler) End(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	result, err := h.mgr.End(r.Context(), sessionID)
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, EndResponse{SessionID: sessionID, Result: result})
}

// Get returns the full session.
func (h *GameplayHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.mgr.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, s)
}

// Content returns the content set of the session.
func (h *GameplayHandler) Content(w http.ResponseWriter, r *http.Request) {
	items, err := h.mgr.Content(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
	})
}

// Question returns the item at the session cursor.
func (h *GameplayHandler) Question(w http.ResponseWriter, r *http.Request) {
	item, ok, err := h.mgr.CurrentItem(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		Fail(w, r, err)
		return
	}
	if !ok {
		JSON(w, http.StatusOK, QuestionResponse{Done: true})
		return
	}
	JSON(w, http.StatusOK, QuestionResponse{Item: &item})
}

// Active lists every stored session, completed ones included.
func (h *GameplayHandler) Active(w http.ResponseWriter, r *http.Request) {
	list, err := h.mgr.Active(r.Context())
	if err != nil {
		Fail(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]interface{}{
		"sessions": list,
		"total":    len(list),
	})
}

// SecondsToDuration converts a client-reported time in seconds, clamping
// out-of-range values to [0, math.MaxInt64].
func SecondsToDuration(s float64) time.Duration {
	if math.IsNaN(s) || s <= 0 {
		return 0
	}
	if s > math.MaxInt64/float64(time.Second) {
		return math.MaxInt64
	}
	return time.Duration(s * float64(time.Second))
}
