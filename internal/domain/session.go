package domain

import (
	"time"
)

// SessionStatus is the lifecycle state of a play session.
type SessionStatus string

// Session states. A session moves from active to completed exactly once.
const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// AnswerRecord is one accepted answer in a session's log.
type AnswerRecord struct {
	ItemID           string    `json:"item_id"`
	Value            string    `json:"value"`
	Correct          bool      `json:"correct"`
	Points           int       `json:"points"`
	TimeSpentSeconds int       `json:"time_spent_seconds"`
	RecordedAt       time.Time `json:"recorded_at"`
}

// Session is one play-through of one game by one player.
type Session struct {
	ID             string         `json:"session_id"`
	GameID         GameID         `json:"game_id"`
	PlayerLabel    string         `json:"player_label"`
	StartedAt      time.Time      `json:"started_at"`
	EndedAt        *time.Time     `json:"ended_at,omitempty"`
	Status         SessionStatus  `json:"status"`
	Content        []ContentItem  `json:"content"`
	Cursor         int            `json:"cursor"`
	Answers        []AnswerRecord `json:"answers"`
	RunningScore   int            `json:"running_score"`
	LastActivityAt time.Time      `json:"last_activity_at"`
	Result         *Result        `json:"result,omitempty"`
}

// IsCompleted returns true once the session has been finalized.
func (s *Session) IsCompleted() bool {
	return s.Status == StatusCompleted
}

// IsAnonymous returns true if the session has no identified player.
func (s *Session) IsAnonymous() bool {
	return s.PlayerLabel == "" || s.PlayerLabel == AnonymousPlayer
}

// Capacity returns the total number of answers the session can accept.
func (s *Session) Capacity() int {
	total := 0
	for _, item := range s.Content {
		total += item.Slots()
	}
	return total
}

// Item returns the content item with the given id and its index.
func (s *Session) Item(itemID string) (ContentItem, int, bool) {
	for i, item := range s.Content {
		if item.ID == itemID {
			return item, i, true
		}
	}
	return ContentItem{}, -1, false
}

// CurrentItem returns the next expected content item, or false once every
// item has been answered.
func (s *Session) CurrentItem() (ContentItem, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Content) {
		return ContentItem{}, false
	}
	return s.Content[s.Cursor], true
}

// CorrectCount returns the number of correct answers in the log.
func (s *Session) CorrectCount() int {
	n := 0
	for _, a := range s.Answers {
		if a.Correct {
			n++
		}
	}
	return n
}

// Idle returns how long the session has gone without activity.
func (s *Session) Idle(now time.Time) time.Duration {
	return now.Sub(s.LastActivityAt)
}

// Clone returns a deep copy safe to hand out of the store.
func (s *Session) Clone() *Session {
	out := *s
	out.Content = CloneItems(s.Content)
	out.Answers = append([]AnswerRecord(nil), s.Answers...)
	if s.EndedAt != nil {
		ended := *s.EndedAt
		out.EndedAt = &ended
	}
	if s.Result != nil {
		result := *s.Result
		out.Result = &result
	}
	return &out
}
