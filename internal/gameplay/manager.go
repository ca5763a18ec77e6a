// Package gameplay runs play sessions: it starts them with generated content,
// scores submitted answers and finalizes results.
package gameplay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ashureev/tiny-arcade/internal/catalog"
	"github.com/ashureev/tiny-arcade/internal/content"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/ashureev/tiny-arcade/internal/scoring"
	"github.com/ashureev/tiny-arcade/internal/store"
	"github.com/google/uuid"
)

// ContentSource generates the content set of a new session.
type ContentSource interface {
	Generate(gameID domain.GameID, count int) []domain.ContentItem
}

// EventType names a session event.
type EventType string

// Session events.
const (
	EventAnswerRecorded EventType = "answer_recorded"
	EventSessionEnded   EventType = "session_ended"
	EventSessionEvicted EventType = "session_evicted"
)

// Event describes a change to a session.
type Event struct {
	Type         EventType            `json:"type"`
	SessionID    string               `json:"session_id"`
	Answer       *domain.AnswerRecord `json:"answer,omitempty"`
	RunningScore int                  `json:"running_score"`
	Result       *domain.Result       `json:"result,omitempty"`
}

// Notifier receives session events. Publish is called while the session is
// locked and must not block.
type Notifier interface {
	Publish(ev Event)
}

// Summary is returned by Start.
type Summary struct {
	SessionID      string        `json:"session_id"`
	GameID         domain.GameID `json:"game_id"`
	GameName       string        `json:"game_name"`
	TotalQuestions int           `json:"total_questions"`
	TotalDuration  int           `json:"total_duration"`
	StartedAt      time.Time     `json:"started_at"`
}

// AnswerResult is returned by Submit.
type AnswerResult struct {
	ItemID       string `json:"item_id"`
	Correct      bool   `json:"correct"`
	Points       int    `json:"points"`
	RunningScore int    `json:"running_score"`
}

// SessionInfo is a short listing entry of a stored session.
type SessionInfo struct {
	SessionID   string               `json:"session_id"`
	GameID      domain.GameID        `json:"game_id"`
	PlayerLabel string               `json:"player_label"`
	Status      domain.SessionStatus `json:"status"`
}

// Manager orchestrates play sessions. Mutations of one session are
// serialized; different sessions proceed independently.
type Manager struct {
	sessions store.Sessions
	content  ContentSource
	results  store.Results
	notifier Notifier
	now      func() time.Time
	newID    func() string

	// locks holds one *sync.Mutex per session id.
	locks sync.Map
}

// Option configures a Manager.
type Option func(*Manager)

// WithResults archives results of identified players at End.
func WithResults(r store.Results) Option {
	return func(m *Manager) { m.results = r }
}

// WithNotifier publishes session events to n.
func WithNotifier(n Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a session manager.
func NewManager(sessions store.Sessions, source ContentSource, opts ...Option) *Manager {
	m := &Manager{
		sessions: sessions,
		content:  source,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) lock(sessionID string) *sync.Mutex {
	l, _ := m.locks.LoadOrStore(sessionID, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()
	return mu
}

// loadLocked locks the session and loads it. The caller must call unlock
// when err is nil. Unknown ids leave no lock behind.
func (m *Manager) loadLocked(ctx context.Context, sessionID string) (s *domain.Session, unlock func(), err error) {
	mu := m.lock(sessionID)
	s, err = m.load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			m.locks.CompareAndDelete(sessionID, mu)
		}
		mu.Unlock()
		return nil, nil, err
	}
	return s, mu.Unlock, nil
}

func (m *Manager) load(ctx context.Context, sessionID string) (*domain.Session, error) {
	s, err := m.sessions.Get(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return s, nil
}

func (m *Manager) save(ctx context.Context, s *domain.Session) error {
	err := m.sessions.Put(ctx, s)
	if errors.Is(err, store.ErrNotFound) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("save session %s: %w", s.ID, err)
	}
	return nil
}

func (m *Manager) publish(ev Event) {
	if m.notifier != nil {
		m.notifier.Publish(ev)
	}
}

// Start creates an active session with freshly generated content.
func (m *Manager) Start(ctx context.Context, gameID domain.GameID, playerLabel string) (Summary, error) {
	game, ok := catalog.Lookup(gameID)
	if !ok {
		return Summary{}, fmt.Errorf("%w: %q", ErrInvalidGame, gameID)
	}
	if playerLabel == "" {
		playerLabel = domain.AnonymousPlayer
	}

	now := m.now()
	s := &domain.Session{
		ID:             m.newID(),
		GameID:         gameID,
		PlayerLabel:    playerLabel,
		StartedAt:      now,
		Status:         domain.StatusActive,
		Content:        m.content.Generate(gameID, game.QuestionCount),
		LastActivityAt: now,
	}
	if err := m.sessions.Create(ctx, s); err != nil {
		return Summary{}, fmt.Errorf("create session: %w", err)
	}

	slog.Info("Session started", "session_id", s.ID, "game_id", gameID, "player_label", playerLabel, "items", len(s.Content))

	return Summary{
		SessionID:      s.ID,
		GameID:         gameID,
		GameName:       game.Name,
		TotalQuestions: s.Capacity(),
		TotalDuration:  game.DurationSeconds(),
		StartedAt:      now,
	}, nil
}

// Submit scores one answer and appends it to the session log.
func (m *Manager) Submit(ctx context.Context, sessionID, itemID, value string, timeSpent time.Duration) (AnswerResult, error) {
	s, unlock, err := m.loadLocked(ctx, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	defer unlock()
	if s.IsCompleted() {
		return AnswerResult{}, ErrSessionCompleted
	}

	item, _, ok := s.Item(itemID)
	if !ok {
		return AnswerResult{}, fmt.Errorf("%w: %q", ErrUnknownItem, itemID)
	}
	if err := checkSlot(s, item, value); err != nil {
		return AnswerResult{}, err
	}

	game, ok := catalog.Lookup(s.GameID)
	if !ok {
		return AnswerResult{}, fmt.Errorf("%w: %q", ErrInvalidGame, s.GameID)
	}

	if timeSpent < 0 {
		timeSpent = 0
	}
	correct := content.Correct(item, value)
	points := scoring.Award(correct, game.Rewards.Correct, timeSpent, game.Duration)

	now := m.now()
	record := domain.AnswerRecord{
		ItemID:           itemID,
		Value:            value,
		Correct:          correct,
		Points:           points,
		TimeSpentSeconds: int(math.Round(timeSpent.Seconds())),
		RecordedAt:       now,
	}
	s.Answers = append(s.Answers, record)
	s.RunningScore += points
	s.LastActivityAt = now
	advanceCursor(s)

	if err := m.save(ctx, s); err != nil {
		return AnswerResult{}, err
	}

	slog.Debug("Answer recorded", "session_id", sessionID, "item_id", itemID, "correct", correct, "points", points)
	m.publish(Event{Type: EventAnswerRecorded, SessionID: sessionID, Answer: &record, RunningScore: s.RunningScore})

	return AnswerResult{
		ItemID:       itemID,
		Correct:      correct,
		Points:       points,
		RunningScore: s.RunningScore,
	}, nil
}

// checkSlot rejects an answer when the item has no free slot, or when a
// correct match with the same key was already recorded.
func checkSlot(s *domain.Session, item domain.ContentItem, value string) error {
	used := 0
	key := ""
	if content.Correct(item, value) {
		key = content.SlotKey(item, value)
	}
	for _, a := range s.Answers {
		if a.ItemID != item.ID {
			continue
		}
		used++
		if key != "" && a.Correct && content.SlotKey(item, a.Value) == key {
			return fmt.Errorf("%w: %q", ErrAlreadyAnswered, item.ID)
		}
	}
	if used >= item.Slots() {
		return fmt.Errorf("%w: %q", ErrAlreadyAnswered, item.ID)
	}
	return nil
}

// advanceCursor moves the cursor past every fully answered item. It never
// moves backwards.
func advanceCursor(s *domain.Session) {
	used := make(map[string]int, len(s.Answers))
	for _, a := range s.Answers {
		used[a.ItemID]++
	}
	for s.Cursor < len(s.Content) && used[s.Content[s.Cursor].ID] >= s.Content[s.Cursor].Slots() {
		s.Cursor++
	}
}

// End finalizes the session. Calling End again returns the first result.
func (m *Manager) End(ctx context.Context, sessionID string) (domain.Result, error) {
	s, unlock, err := m.loadLocked(ctx, sessionID)
	if err != nil {
		return domain.Result{}, err
	}
	defer unlock()
	if s.IsCompleted() && s.Result != nil {
		return *s.Result, nil
	}

	game, ok := catalog.Lookup(s.GameID)
	if !ok {
		return domain.Result{}, fmt.Errorf("%w: %q", ErrInvalidGame, s.GameID)
	}

	now := m.now()
	result := scoring.Finalize(s, game, now)
	s.Status = domain.StatusCompleted
	s.EndedAt = &now
	s.Result = &result
	s.LastActivityAt = now

	if err := m.save(ctx, s); err != nil {
		return domain.Result{}, err
	}

	slog.Info("Session ended",
		"session_id", sessionID,
		"game_id", s.GameID,
		"final_score", result.FinalScore,
		"accuracy", result.AccuracyPercent,
		"badge", result.Badge.Tier)

	m.archive(ctx, s, game, result)
	m.publish(Event{Type: EventSessionEnded, SessionID: sessionID, RunningScore: s.RunningScore, Result: &result})

	return result, nil
}

// archive stores the result of an identified player. Failures are logged
// and never reach the caller.
func (m *Manager) archive(ctx context.Context, s *domain.Session, game domain.Game, result domain.Result) {
	if m.results == nil || s.IsAnonymous() {
		return
	}
	entry := domain.ScoreEntry{
		SessionID:       s.ID,
		GameID:          s.GameID,
		GameName:        game.Name,
		PlayerLabel:     s.PlayerLabel,
		Score:           result.FinalScore,
		AccuracyPercent: result.AccuracyPercent,
		Badge:           result.Badge.Tier,
		RecordedAt:      *s.EndedAt,
	}
	if err := m.results.SaveResult(ctx, entry); err != nil {
		slog.Error("Failed to archive session result", "error", err, "session_id", s.ID)
	}
}

// Snapshot returns a copy of the session.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*domain.Session, error) {
	return m.load(ctx, sessionID)
}

// Content returns the session's content set.
func (m *Manager) Content(ctx context.Context, sessionID string) ([]domain.ContentItem, error) {
	s, err := m.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.Content, nil
}

// CurrentItem returns the item at the session cursor. The boolean is false
// once every item has been answered.
func (m *Manager) CurrentItem(ctx context.Context, sessionID string) (domain.ContentItem, bool, error) {
	s, err := m.load(ctx, sessionID)
	if err != nil {
		return domain.ContentItem{}, false, err
	}
	item, ok := s.CurrentItem()
	return item, ok, nil
}

// Active lists every stored session.
func (m *Manager) Active(ctx context.Context) ([]SessionInfo, error) {
	list, err := m.sessions.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]SessionInfo, 0, len(list))
	for _, s := range list {
		out = append(out, SessionInfo{
			SessionID:   s.ID,
			GameID:      s.GameID,
			PlayerLabel: s.PlayerLabel,
			Status:      s.Status,
		})
	}
	return out, nil
}

// EvictExpired removes sessions idle for longer than ttl and returns their
// ids.
func (m *Manager) EvictExpired(ctx context.Context, ttl time.Duration) ([]string, error) {
	ids, err := m.sessions.DeleteExpired(ctx, ttl)
	if err != nil {
		return nil, fmt.Errorf("delete expired sessions: %w", err)
	}
	for _, id := range ids {
		m.locks.Delete(id)
		m.publish(Event{Type: EventSessionEvicted, SessionID: id})
	}
	return ids, nil
}
