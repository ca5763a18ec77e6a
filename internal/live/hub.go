// Package live pushes session events to WebSocket clients and accepts
// answers over the same socket.
package live

import (
	"log/slog"
	"sync"

	"github.com/ashureev/tiny-arcade/internal/api"
	"github.com/ashureev/tiny-arcade/internal/gameplay"
)

// outboxSize bounds the frames queued for one socket. A socket that falls
// further behind loses events.
const outboxSize = 32

// Frame is one message on a gameplay socket, in either direction.
type Frame struct {
	Type string `json:"type"`

	// Client frames.
	ItemID    string          `json:"item_id,omitempty"`
	Value     api.AnswerValue `json:"value,omitempty"`
	TimeSpent float64         `json:"time_spent,omitempty"`

	// Server frames.
	Answer *gameplay.AnswerResult `json:"answer,omitempty"`
	Event  *gameplay.Event        `json:"event,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// Frame types.
const (
	FrameAnswer       = "answer"
	FrameEnd          = "end"
	FramePing         = "ping"
	FramePong         = "pong"
	FrameAnswerResult = "answer_result"
	FrameError        = "error"
)

// watcher is one socket following a session.
type watcher struct {
	sessionID string
	outbox    chan Frame
	done      chan struct{}
	closeOnce sync.Once
}

func newWatcher(sessionID string) *watcher {
	return &watcher{
		sessionID: sessionID,
		outbox:    make(chan Frame, outboxSize),
		done:      make(chan struct{}),
	}
}

// send queues f without blocking. It reports false when the outbox is full
// or the watcher is closed.
func (w *watcher) send(f Frame) bool {
	select {
	case <-w.done:
		return false
	default:
	}
	select {
	case w.outbox <- f:
		return true
	default:
		return false
	}
}

func (w *watcher) close() {
	w.closeOnce.Do(func() { close(w.done) })
}

// Hub tracks the sockets watching each session and fans session events out
// to them. It implements gameplay.Notifier.
type Hub struct {
	mu     sync.RWMutex
	active map[string]map[*watcher]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		active: make(map[string]map[*watcher]struct{}),
	}
}

// Register adds a watcher for its session.
func (h *Hub) Register(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.active[w.sessionID]; !exists {
		h.active[w.sessionID] = make(map[*watcher]struct{})
	}
	h.active[w.sessionID][w] = struct{}{}
	slog.Info("Gameplay socket registered", "session_id", w.sessionID, "watchers", len(h.active[w.sessionID]))
}

// Unregister removes a watcher. Unknown watchers are ignored.
func (h *Hub) Unregister(w *watcher) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if watchers, ok := h.active[w.sessionID]; ok {
		if _, exists := watchers[w]; exists {
			delete(watchers, w)
			if len(watchers) == 0 {
				delete(h.active, w.sessionID)
			}
			slog.Info("Gameplay socket unregistered", "session_id", w.sessionID)
		}
	}
	w.close()
}

// Watchers returns the number of sockets following a session.
func (h *Hub) Watchers(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.active[sessionID])
}

// Publish queues ev for every socket watching its session. It never blocks.
// An eviction closes the session's sockets once the event is written.
func (h *Hub) Publish(ev gameplay.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for w := range h.active[ev.SessionID] {
		ev := ev
		if !w.send(Frame{Type: string(ev.Type), Event: &ev}) {
			slog.Warn("Gameplay socket lagging, event dropped", "session_id", ev.SessionID, "event", ev.Type)
			if ev.Type == gameplay.EventSessionEvicted {
				w.close()
			}
		}
	}
}

// CloseSession forcefully closes every socket watching a session.
func (h *Hub) CloseSession(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watchers, ok := h.active[sessionID]
	if !ok {
		return
	}
	for w := range watchers {
		w.close()
	}
	delete(h.active, sessionID)
	slog.Info("Gameplay sockets closed", "session_id", sessionID, "count", len(watchers))
}
