package live

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/tiny-arcade/internal/api"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/ashureev/tiny-arcade/internal/gameplay"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
)

const writeTimeout = 10 * time.Second

// Backend is the session API a socket drives.
type Backend interface {
	Snapshot(ctx context.Context, sessionID string) (*domain.Session, error)
	Submit(ctx context.Context, sessionID, itemID, value string, timeSpent time.Duration) (gameplay.AnswerResult, error)
	End(ctx context.Context, sessionID string) (domain.Result, error)
}

// Handler upgrades /ws/gameplay/{sessionID} requests.
type Handler struct {
	hub           *Hub
	backend       Backend
	allowedOrigin string
	isDev         bool
}

// NewHandler creates a WebSocket handler serving sessions of backend.
func NewHandler(hub *Hub, backend Backend, allowedOrigin string, isDev bool) *Handler {
	return &Handler{
		hub:           hub,
		backend:       backend,
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// RegisterRoutes registers the socket route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/gameplay/{sessionID}", h.ServeHTTP)
}

// ServeHTTP implements http.Handler for WebSocket upgrade.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	slog.Info("Gameplay socket request", "session_id", sessionID, "ip", r.RemoteAddr)

	if _, err := h.backend.Snapshot(r.Context(), sessionID); err != nil {
		api.Fail(w, r, err)
		return
	}

	if !h.checkOrigin(r) {
		api.Error(w, http.StatusForbidden, "origin_not_allowed")
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "session_id", sessionID)
		return
	}
	defer closeSocket(ws, sessionID, "socket closed")

	wt := newWatcher(sessionID)
	h.hub.Register(wt)
	defer h.hub.Unregister(wt)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		h.outputLoop(ctx, ws, wt)
	}()

	h.inputLoop(ctx, ws, wt)
	cancel()
	<-done
	slog.Info("Gameplay socket ended", "session_id", sessionID)
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "" || h.allowedOrigin == "*" {
		return true
	}
	if origin == h.allowedOrigin {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func (h *Handler) inputLoop(ctx context.Context, ws *websocket.Conn, wt *watcher) {
	for {
		var in Frame
		if err := wsjson.Read(ctx, ws, &in); err != nil {
			if websocket.CloseStatus(err) != -1 || ctx.Err() != nil {
				slog.Debug("Gameplay socket closed", "session_id", wt.sessionID)
			} else {
				slog.Warn("Gameplay socket read error", "error", err, "session_id", wt.sessionID)
			}
			return
		}

		reply := h.dispatch(ctx, wt.sessionID, in)
		if !wt.send(reply) {
			slog.Warn("Gameplay socket lagging, reply dropped", "session_id", wt.sessionID, "type", reply.Type)
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, sessionID string, in Frame) Frame {
	switch in.Type {
	case FramePing:
		return Frame{Type: FramePong}
	case FrameAnswer:
		res, err := h.backend.Submit(ctx, sessionID, in.ItemID, string(in.Value), api.SecondsToDuration(in.TimeSpent))
		if err != nil {
			return errorFrame(err)
		}
		return Frame{Type: FrameAnswerResult, Answer: &res}
	case FrameEnd:
		result, err := h.backend.End(ctx, sessionID)
		if err != nil {
			return errorFrame(err)
		}
		return Frame{Type: string(gameplay.EventSessionEnded), Event: &gameplay.Event{
			Type:         gameplay.EventSessionEnded,
			SessionID:    sessionID,
			RunningScore: result.FinalScore,
			Result:       &result,
		}}
	default:
		return Frame{Type: FrameError, Error: "unknown_frame"}
	}
}

func (h *Handler) outputLoop(ctx context.Context, ws *websocket.Conn, wt *watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-wt.done:
			h.flush(ctx, ws, wt)
			closeSocket(ws, wt.sessionID, "session closed")
			return
		case f := <-wt.outbox:
			if !writeFrame(ctx, ws, wt.sessionID, f) {
				return
			}
			if f.Type == string(gameplay.EventSessionEvicted) {
				closeSocket(ws, wt.sessionID, "session evicted")
				return
			}
		}
	}
}

// flush writes the frames still queued on a closed watcher.
func (h *Handler) flush(ctx context.Context, ws *websocket.Conn, wt *watcher) {
	for {
		select {
		case f := <-wt.outbox:
			if !writeFrame(ctx, ws, wt.sessionID, f) {
				return
			}
		default:
			return
		}
	}
}

func writeFrame(ctx context.Context, ws *websocket.Conn, sessionID string, f Frame) bool {
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(writeCtx, ws, f); err != nil {
		slog.Debug("Gameplay socket write error", "error", err, "session_id", sessionID)
		return false
	}
	return true
}

func closeSocket(ws *websocket.Conn, sessionID, reason string) {
	if err := ws.Close(websocket.StatusNormalClosure, reason); err != nil {
		slog.Debug("Failed to close websocket", "error", err, "session_id", sessionID)
	}
}

func errorFrame(err error) Frame {
	_, code := api.StatusFor(err)
	return Frame{Type: FrameError, Error: code}
}
