package domain

import "time"

// BadgeTier is a discrete reward level derived from accuracy.
type BadgeTier string

// Badge tiers, best first.
const (
	TierTop           BadgeTier = "top"
	TierHigh          BadgeTier = "high"
	TierMid           BadgeTier = "mid"
	TierParticipation BadgeTier = "participation"
)

// Badge is the reward shown at the end of a session.
type Badge struct {
	Tier  BadgeTier `json:"tier"`
	Emoji string    `json:"emoji"`
	Name  string    `json:"name"`
}

// Result is the final outcome of a completed session.
type Result struct {
	FinalScore      int   `json:"final_score"`
	AccuracyPercent int   `json:"accuracy_percent"`
	CorrectCount    int   `json:"correct_count"`
	TotalAnswered   int   `json:"total_answered"`
	CompletionBonus int   `json:"completion_bonus"`
	DurationSeconds int   `json:"duration_seconds"`
	Badge           Badge `json:"badge"`
}

// ScoreEntry is one archived leaderboard row.
type ScoreEntry struct {
	SessionID       string    `json:"session_id,omitempty"`
	GameID          GameID    `json:"game_id"`
	GameName        string    `json:"game_name,omitempty"`
	PlayerLabel     string    `json:"player_label"`
	Score           int       `json:"score"`
	AccuracyPercent int       `json:"accuracy_percent"`
	Badge           BadgeTier `json:"badge,omitempty"`
	RecordedAt      time.Time `json:"recorded_at"`
}

// PlayerStats aggregates every archived score of one player.
type PlayerStats struct {
	PlayerLabel     string       `json:"player_label"`
	TotalScore      int          `json:"total_score"`
	GamesPlayed     int          `json:"games_played"`
	AverageAccuracy int          `json:"average_accuracy"`
	Games           []ScoreEntry `json:"games"`
}
