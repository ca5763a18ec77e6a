package content

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ashureev/tiny-arcade/internal/domain"
)

// ErrInvalidContent is wrapped by every Validate failure.
var ErrInvalidContent = errors.New("invalid content")

// Validate checks the structural invariants of a content set. Maze
// reachability is not checked here; the layout is a fixed constant.
func Validate(items []domain.ContentItem) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: empty set", ErrInvalidContent)
	}

	ids := make(map[string]bool, len(items))
	for i, item := range items {
		if item.ID == "" {
			return fmt.Errorf("%w: item %d has no id", ErrInvalidContent, i)
		}
		if ids[item.ID] {
			return fmt.Errorf("%w: duplicate item id %q", ErrInvalidContent, item.ID)
		}
		ids[item.ID] = true

		if err := validateItem(item); err != nil {
			return fmt.Errorf("%w: item %q: %v", ErrInvalidContent, item.ID, err)
		}
	}
	return nil
}

func validateItem(item domain.ContentItem) error {
	switch {
	case item.Kind.IsQuiz():
		return validateOptions(item)
	case item.Kind == domain.KindPairMatch:
		return validatePairs(item)
	case item.Kind == domain.KindMemoryPairs:
		return validateDeck(item)
	case item.Kind == domain.KindMaze:
		return validateMaze(item)
	}
	return fmt.Errorf("unknown kind %s", item.Kind)
}

func validateOptions(item domain.ContentItem) error {
	if len(item.Options) != optionCount {
		return fmt.Errorf("want %d options, got %d", optionCount, len(item.Options))
	}
	seen := make(map[string]bool, len(item.Options))
	hits := 0
	for _, o := range item.Options {
		if seen[o.Value] {
			return fmt.Errorf("duplicate option %q", o.Value)
		}
		seen[o.Value] = true
		if o.Value == item.Answer {
			hits++
		}
	}
	if hits != 1 {
		return fmt.Errorf("answer %q appears %d times", item.Answer, hits)
	}
	if item.Kind == domain.KindCounting && item.Answer != strconv.Itoa(item.Count) {
		return fmt.Errorf("answer %q does not match count %d", item.Answer, item.Count)
	}
	return nil
}

func validatePairs(item domain.ContentItem) error {
	if len(item.Left) == 0 || len(item.Left) != len(item.Right) {
		return fmt.Errorf("unbalanced columns %d/%d", len(item.Left), len(item.Right))
	}
	left := make(map[string]bool, len(item.Left))
	for _, c := range item.Left {
		if left[c.PairID] {
			return fmt.Errorf("duplicate pair %q", c.PairID)
		}
		left[c.PairID] = true
	}
	for _, c := range item.Right {
		if !left[c.PairID] {
			return fmt.Errorf("right card %q has no partner", c.PairID)
		}
		delete(left, c.PairID)
	}
	return nil
}

func validateDeck(item domain.ContentItem) error {
	if len(item.Cards) == 0 || len(item.Cards)%2 != 0 {
		return fmt.Errorf("odd deck of %d cards", len(item.Cards))
	}
	counts := make(map[string]int)
	ids := make(map[string]bool, len(item.Cards))
	for _, c := range item.Cards {
		if ids[c.ID] {
			return fmt.Errorf("duplicate card id %q", c.ID)
		}
		ids[c.ID] = true
		counts[c.Symbol]++
	}
	for symbol, n := range counts {
		if n != 2 {
			return fmt.Errorf("symbol %q appears %d times", symbol, n)
		}
	}
	return nil
}

func validateMaze(item domain.ContentItem) error {
	if len(item.Layout) == 0 {
		return errors.New("empty layout")
	}
	goals := 0
	for _, row := range item.Layout {
		for _, cell := range row {
			if cell == item.FinishValue {
				goals++
			}
		}
	}
	if goals != 1 {
		return fmt.Errorf("want one goal cell, got %d", goals)
	}
	p := item.Start
	if p.Y < 0 || p.Y >= len(item.Layout) || p.X < 0 || p.X >= len(item.Layout[p.Y]) {
		return fmt.Errorf("start %v out of bounds", p)
	}
	if item.Layout[p.Y][p.X] == domain.CellWall {
		return fmt.Errorf("start %v is a wall", p)
	}
	return nil
}
