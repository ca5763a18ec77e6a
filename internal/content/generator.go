// Package content generates the randomized rounds of every mini-game.
//
// Generators keep no state between calls. Every generated set satisfies the
// structural invariants checked by Validate; when generation fails for any
// reason the caller receives the fixed Fallback set instead of an error.
package content

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"sync"

	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/google/uuid"
)

const (
	optionCount     = 3
	countMin        = 1
	countMax        = 9
	distractorMax   = 10
	minPairs        = 2
	minMemoryPairs  = 4
	maxMemoryPairs  = 8
	defaultQuizSize = 5
)

var (
	// ErrUnsupportedGame is returned for a game kind with no generator.
	ErrUnsupportedGame = errors.New("no generator for game")
)

// Generator produces content sets. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	newID func() string
}

// NewGenerator creates a generator drawing from rng.
func NewGenerator(rng *rand.Rand) *Generator {
	return &Generator{rng: rng, newID: uuid.NewString}
}

// NewSeededGenerator creates a generator seeded from crypto/rand.
func NewSeededGenerator() (*Generator, error) {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		return nil, fmt.Errorf("read random seed: %w", err)
	}
	seed1 := binary.LittleEndian.Uint64(b[:8])
	seed2 := binary.LittleEndian.Uint64(b[8:])
	return NewGenerator(rand.New(rand.NewPCG(seed1, seed2))), nil
}

// Generate returns a content set of roughly count items for the game. It
// never fails: errors, panics and invalid sets degrade to Fallback.
func (g *Generator) Generate(gameID domain.GameID, count int) (items []domain.ContentItem) {
	kind := gameID.Kind()
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("Content generation panicked, using fallback set", "game_id", gameID, "panic", r)
			items = Fallback(kind)
		}
	}()

	items, err := g.generate(kind, count)
	if err == nil {
		err = Validate(items)
	}
	if err != nil {
		slog.Warn("Content generation failed, using fallback set", "game_id", gameID, "error", err)
		return Fallback(kind)
	}
	return items
}

func (g *Generator) generate(kind domain.GameKind, count int) ([]domain.ContentItem, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if count <= 0 {
		count = defaultQuizSize
	}

	switch kind {
	case domain.KindCounting:
		return g.counting(count), nil
	case domain.KindColor:
		return g.choices(kind, colors, count, func(o domain.Option) string {
			return "Which one is " + o.Label + "?"
		}), nil
	case domain.KindShape:
		return g.shapes(count), nil
	case domain.KindAlphabet:
		return g.choices(kind, letters, count, func(o domain.Option) string {
			return "Find the letter " + o.Label
		}), nil
	case domain.KindPairMatch:
		return []domain.ContentItem{g.pairs(count)}, nil
	case domain.KindMemoryPairs:
		return []domain.ContentItem{g.memory(count)}, nil
	case domain.KindMaze:
		return []domain.ContentItem{g.maze()}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedGame, kind)
}

func (g *Generator) counting(count int) []domain.ContentItem {
	items := make([]domain.ContentItem, 0, count)
	for range count {
		m := fruits[g.rng.IntN(len(fruits))]
		n := countMin + g.rng.IntN(countMax-countMin+1)

		seen := map[int]bool{n: true}
		values := []int{n}
		for len(values) < optionCount {
			d := 1 + g.rng.IntN(distractorMax)
			if seen[d] {
				continue
			}
			seen[d] = true
			values = append(values, d)
		}
		g.rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })

		options := make([]domain.Option, len(values))
		for i, v := range values {
			options[i] = domain.Option{Value: strconv.Itoa(v), Label: strconv.Itoa(v)}
		}

		items = append(items, domain.ContentItem{
			ID:      g.newID(),
			Kind:    domain.KindCounting,
			Title:   "How many " + m.name + "?",
			Answer:  strconv.Itoa(n),
			Emoji:   m.emoji,
			Count:   n,
			Options: options,
		})
	}
	return items
}

// choices builds items with one correct value drawn uniformly from pool and
// two distinct distractors. Options keep generation order; clients shuffle
// them at presentation time.
func (g *Generator) choices(kind domain.GameKind, pool []domain.Option, count int, title func(domain.Option) string) []domain.ContentItem {
	items := make([]domain.ContentItem, 0, count)
	for range count {
		correct := g.rng.IntN(len(pool))
		items = append(items, g.choiceItem(kind, pool, correct, title(pool[correct])))
	}
	return items
}

// shapes cycles through the shape pool from a random offset so a session
// covers every shape before repeating.
func (g *Generator) shapes(count int) []domain.ContentItem {
	offset := g.rng.IntN(len(shapes))
	items := make([]domain.ContentItem, 0, count)
	for i := range count {
		correct := (offset + i) % len(shapes)
		items = append(items, g.choiceItem(domain.KindShape, shapes, correct, "Pick the "+shapes[correct].Label))
	}
	return items
}

func (g *Generator) choiceItem(kind domain.GameKind, pool []domain.Option, correct int, title string) domain.ContentItem {
	picked := map[int]bool{correct: true}
	options := []domain.Option{pool[correct]}
	for len(options) < optionCount {
		i := g.rng.IntN(len(pool))
		if picked[i] {
			continue
		}
		picked[i] = true
		options = append(options, pool[i])
	}
	return domain.ContentItem{
		ID:      g.newID(),
		Kind:    kind,
		Title:   title,
		Answer:  pool[correct].Value,
		Emoji:   pool[correct].Emoji,
		Options: options,
	}
}

func (g *Generator) pairs(count int) domain.ContentItem {
	n := clamp(count, minPairs, len(animals))
	order := g.rng.Perm(len(animals))[:n]

	left := make([]domain.PairCard, n)
	right := make([]domain.PairCard, n)
	for i, idx := range order {
		a := animals[idx]
		left[i] = domain.PairCard{PairID: a.id, Emoji: a.animal}
		right[i] = domain.PairCard{PairID: a.id, Emoji: a.food}
	}
	g.rng.Shuffle(n, func(i, j int) { right[i], right[j] = right[j], right[i] })

	return domain.ContentItem{
		ID:     g.newID(),
		Kind:   domain.KindPairMatch,
		Title:  "Give every animal its food",
		Answer: AllPairsMatched,
		Left:   left,
		Right:  right,
	}
}

func (g *Generator) memory(count int) domain.ContentItem {
	k := clamp(count, minMemoryPairs, maxMemoryPairs)
	order := g.rng.Perm(len(memorySymbols))[:k]

	cards := make([]domain.Card, 0, 2*k)
	for _, idx := range order {
		symbol := memorySymbols[idx]
		cards = append(cards,
			domain.Card{ID: g.newID(), Symbol: symbol},
			domain.Card{ID: g.newID(), Symbol: symbol},
		)
	}
	g.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })

	return domain.ContentItem{
		ID:     g.newID(),
		Kind:   domain.KindMemoryPairs,
		Title:  "Find the matching pairs",
		Answer: AllPairsMatched,
		Cards:  cards,
	}
}

func (g *Generator) maze() domain.ContentItem {
	return domain.ContentItem{
		ID:          g.newID(),
		Kind:        domain.KindMaze,
		Title:       "Help the rabbit reach the carrot",
		Answer:      domain.MazeCompleted,
		Layout:      copyLayout(mazeLayout),
		Start:       mazeStart,
		FinishValue: domain.CellGoal,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
