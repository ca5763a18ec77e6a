package content

import (
	"strconv"

	"github.com/ashureev/tiny-arcade/internal/domain"
)

// Fallback returns the fixed default content set for a game kind. It is used
// when generation fails and by offline clients with no server content. Unknown
// kinds get the counting set so callers always receive a playable round.
func Fallback(kind domain.GameKind) []domain.ContentItem {
	var items []domain.ContentItem
	switch kind {
	case domain.KindColor:
		items = []domain.ContentItem{
			fixedChoice("fallback-color-1", kind, "Which one is Red?", colors, 0, 1, 2),
			fixedChoice("fallback-color-2", kind, "Which one is Blue?", colors, 1, 2, 3),
			fixedChoice("fallback-color-3", kind, "Which one is Green?", colors, 2, 3, 0),
		}
	case domain.KindShape:
		items = []domain.ContentItem{
			fixedChoice("fallback-shape-1", kind, "Pick the Circle", shapes, 0, 1, 2),
			fixedChoice("fallback-shape-2", kind, "Pick the Square", shapes, 1, 2, 3),
			fixedChoice("fallback-shape-3", kind, "Pick the Triangle", shapes, 2, 3, 0),
		}
	case domain.KindAlphabet:
		items = []domain.ContentItem{
			fixedChoice("fallback-letter-1", kind, "Find the letter A", letters, 0, 1, 2),
			fixedChoice("fallback-letter-2", kind, "Find the letter B", letters, 1, 2, 3),
			fixedChoice("fallback-letter-3", kind, "Find the letter C", letters, 2, 3, 0),
		}
	case domain.KindPairMatch:
		items = []domain.ContentItem{{
			ID:     "fallback-pairs",
			Kind:   kind,
			Title:  "Give every animal its food",
			Answer: AllPairsMatched,
			Left: []domain.PairCard{
				{PairID: "monkey", Emoji: "🐒"},
				{PairID: "cat", Emoji: "🐱"},
				{PairID: "rabbit", Emoji: "🐰"},
			},
			Right: []domain.PairCard{
				{PairID: "rabbit", Emoji: "🥕"},
				{PairID: "monkey", Emoji: "🍌"},
				{PairID: "cat", Emoji: "🐟"},
			},
		}}
	case domain.KindMemoryPairs:
		items = []domain.ContentItem{{
			ID:     "fallback-memory",
			Kind:   kind,
			Title:  "Find the matching pairs",
			Answer: AllPairsMatched,
			Cards: []domain.Card{
				{ID: "m1", Symbol: "🐶"}, {ID: "m2", Symbol: "🐱"},
				{ID: "m3", Symbol: "🐵"}, {ID: "m4", Symbol: "🐰"},
				{ID: "m5", Symbol: "🐱"}, {ID: "m6", Symbol: "🐶"},
				{ID: "m7", Symbol: "🐰"}, {ID: "m8", Symbol: "🐵"},
			},
		}}
	case domain.KindMaze:
		items = []domain.ContentItem{{
			ID:          "fallback-maze",
			Kind:        kind,
			Title:       "Help the rabbit reach the carrot",
			Answer:      domain.MazeCompleted,
			Layout:      copyLayout(mazeLayout),
			Start:       mazeStart,
			FinishValue: domain.CellGoal,
		}}
	default:
		items = []domain.ContentItem{
			fixedCount("fallback-count-1", "🍎", "apples", 3, "2", "3", "4"),
			fixedCount("fallback-count-2", "🍌", "bananas", 5, "5", "6", "4"),
			fixedCount("fallback-count-3", "🍇", "grapes", 2, "1", "3", "2"),
		}
	}
	return items
}

func fixedChoice(id string, kind domain.GameKind, title string, pool []domain.Option, correct int, distractors ...int) domain.ContentItem {
	options := []domain.Option{pool[correct]}
	for _, d := range distractors {
		options = append(options, pool[d])
	}
	return domain.ContentItem{
		ID:      id,
		Kind:    kind,
		Title:   title,
		Answer:  pool[correct].Value,
		Emoji:   pool[correct].Emoji,
		Options: options,
	}
}

func fixedCount(id, emoji, name string, n int, values ...string) domain.ContentItem {
	options := make([]domain.Option, len(values))
	for i, v := range values {
		options[i] = domain.Option{Value: v, Label: v}
	}
	return domain.ContentItem{
		ID:      id,
		Kind:    domain.KindCounting,
		Title:   "How many " + name + "?",
		Answer:  strconv.Itoa(n),
		Emoji:   emoji,
		Count:   n,
		Options: options,
	}
}
