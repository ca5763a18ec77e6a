// Package scoring computes per-answer points, completion bonuses, accuracy
// and badges.
package scoring

import (
	"math"
	"time"

	"github.com/ashureev/tiny-arcade/internal/domain"
)

const (
	// SpeedBonusFactor is the share of the base points a perfectly fast
	// answer earns on top of the base.
	SpeedBonusFactor = 0.5
	// CompletionThreshold is the share of correct answers needed for the
	// completion bonus.
	CompletionThreshold = 0.7
)

var badges = map[domain.BadgeTier]domain.Badge{
	domain.TierTop:           {Tier: domain.TierTop, Emoji: "🏆", Name: "Perfect!"},
	domain.TierHigh:          {Tier: domain.TierHigh, Emoji: "⭐", Name: "Great!"},
	domain.TierMid:           {Tier: domain.TierMid, Emoji: "👍", Name: "Good!"},
	domain.TierParticipation: {Tier: domain.TierParticipation, Emoji: "🌟", Name: "Try Again!"},
}

// Points returns round(base + max(0, 1 - timeSpent/duration) * base * 0.5).
// The duration is the whole session's, not a per-question budget. A
// non-positive duration yields no speed bonus.
func Points(base int, timeSpent, duration time.Duration) int {
	speed := 0.0
	if duration > 0 {
		speed = math.Max(0, 1-timeSpent.Seconds()/duration.Seconds())
	}
	return int(math.Round(float64(base) + speed*float64(base)*SpeedBonusFactor))
}

// Award returns the points for one answer. Incorrect answers score zero.
func Award(correct bool, base int, timeSpent, duration time.Duration) int {
	if !correct {
		return 0
	}
	return Points(base, timeSpent, duration)
}

// CompletionBonus returns the full bonus when at least 70% of the answered
// items are correct, and zero otherwise.
func CompletionBonus(correct, answered, bonus int) int {
	if float64(correct) >= CompletionThreshold*float64(answered) {
		return bonus
	}
	return 0
}

// Accuracy returns the rounded percentage of correct answers, 0 when nothing
// was answered.
func Accuracy(correct, answered int) int {
	if answered <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(answered)))
}

// BadgeFor returns the badge for an accuracy percentage. Boundaries are
// inclusive.
func BadgeFor(accuracy int) domain.Badge {
	switch {
	case accuracy >= 100:
		return badges[domain.TierTop]
	case accuracy >= 80:
		return badges[domain.TierHigh]
	case accuracy >= 60:
		return badges[domain.TierMid]
	}
	return badges[domain.TierParticipation]
}

// Finalize computes the result of a session from its answer log.
func Finalize(s *domain.Session, game domain.Game, now time.Time) domain.Result {
	answered := len(s.Answers)
	correct := s.CorrectCount()
	bonus := CompletionBonus(correct, answered, game.Rewards.Completion)
	accuracy := Accuracy(correct, answered)

	duration := 0
	if now.After(s.StartedAt) {
		duration = int(now.Sub(s.StartedAt) / time.Second)
	}

	return domain.Result{
		FinalScore:      s.RunningScore + bonus,
		AccuracyPercent: accuracy,
		CorrectCount:    correct,
		TotalAnswered:   answered,
		CompletionBonus: bonus,
		DurationSeconds: duration,
		Badge:           BadgeFor(accuracy),
	}
}
