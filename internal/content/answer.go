package content

import (
	"strings"

	"github.com/ashureev/tiny-arcade/internal/domain"
)

// PairValue encodes a pair submission as "left:right".
func PairValue(left, right string) string {
	return left + ":" + right
}

func splitPair(value string) (string, string, bool) {
	left, right, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || left == "" || right == "" {
		return "", "", false
	}
	return left, right, true
}

// Correct reports whether value answers the item. Quiz items compare the
// value exactly, pair items expect "leftPairID:rightPairID", memory items
// expect two distinct card ids sharing a symbol, and maze items expect the
// completion marker.
func Correct(item domain.ContentItem, value string) bool {
	switch {
	case item.Kind.IsQuiz():
		return strings.TrimSpace(value) == item.Answer
	case item.Kind == domain.KindPairMatch:
		left, right, ok := splitPair(value)
		if !ok || left != right {
			return false
		}
		for _, c := range item.Left {
			if c.PairID == left {
				return true
			}
		}
		return false
	case item.Kind == domain.KindMemoryPairs:
		a, b, ok := splitPair(value)
		if !ok || a == b {
			return false
		}
		ca, okA := card(item, a)
		cb, okB := card(item, b)
		return okA && okB && ca.Symbol == cb.Symbol
	case item.Kind == domain.KindMaze:
		return strings.TrimSpace(value) == domain.MazeCompleted
	}
	return false
}

// SlotKey returns the key under which a correct answer occupies one of the
// item's slots. Two correct answers with the same key are the same match
// submitted twice. An empty key means the answer has no identity beyond the
// item itself.
func SlotKey(item domain.ContentItem, value string) string {
	switch item.Kind {
	case domain.KindPairMatch:
		left, _, _ := splitPair(value)
		return left
	case domain.KindMemoryPairs:
		a, _, _ := splitPair(value)
		if c, ok := card(item, a); ok {
			return c.Symbol
		}
	}
	return ""
}

func card(item domain.ContentItem, id string) (domain.Card, bool) {
	for _, c := range item.Cards {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Card{}, false
}
