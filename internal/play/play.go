// Package play implements the client-side interactive games.
//
// Every game is a state machine driven by discrete inputs. Machines never
// sleep: a transition that must wait (a quiz moving to the next question, a
// memory pair flipping back) is reported as Outcome.Delay, and the driver
// sends Settle once the delay has passed. Until then the machine rejects new
// player input with ErrBusy.
package play

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/ashureev/tiny-arcade/internal/content"
	"github.com/ashureev/tiny-arcade/internal/domain"
)

var (
	// ErrBusy is returned while a delayed transition is pending.
	ErrBusy = errors.New("waiting for transition")
	// ErrFinished is returned for input after the game reached its end.
	ErrFinished = errors.New("game finished")
	// ErrUnsupportedInput is returned for an input the game does not handle.
	ErrUnsupportedInput = errors.New("input not supported by this game")
	// ErrUnknownTarget is returned when an input names an option, card or
	// column entry that is not on the board.
	ErrUnknownTarget = errors.New("no such option or card")
	// ErrUnavailable is returned when the target is already matched or face up.
	ErrUnavailable = errors.New("card not available")
	// ErrBlocked is returned for a maze move into a wall or off the grid.
	ErrBlocked = errors.New("move blocked")
	// ErrUnknownKind is returned by New for an unknown game kind.
	ErrUnknownKind = errors.New("unknown game kind")
)

// Input is a player action or a driver signal.
type Input interface {
	isInput()
}

// Choose picks a quiz option by value.
type Choose struct {
	Value string
}

// Side is a column of the pair-matching board.
type Side int

// Pair-matching columns.
const (
	Left Side = iota
	Right
)

// Select picks a card in one column of the pair-matching board. ID is the
// card's pair id.
type Select struct {
	Side Side
	ID   string
}

// Flip turns a memory card face up.
type Flip struct {
	CardID string
}

// Direction is a maze move.
type Direction int

// Maze directions.
const (
	North Direction = iota
	South
	West
	East
)

func (d Direction) delta() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case West:
		return -1, 0
	case East:
		return 1, 0
	}
	return 0, 0
}

// Move steps the maze player one cell.
type Move struct {
	Dir Direction
}

// Reset puts the maze player back on the start cell.
type Reset struct{}

// Settle completes a pending delayed transition.
type Settle struct{}

func (Choose) isInput() {}
func (Select) isInput() {}
func (Flip) isInput()   {}
func (Move) isInput()   {}
func (Reset) isInput()  {}
func (Settle) isInput() {}

// Submission is an answer event to forward to the session manager.
type Submission struct {
	ItemID    string
	Value     string
	TimeSpent time.Duration
}

// Outcome is the result of one input.
type Outcome struct {
	// Graded is set when the input was an answer attempt; Correct is only
	// meaningful then.
	Graded  bool
	Correct bool

	// Submission is set when the attempt must be reported to the server.
	Submission *Submission

	// Delay asks the driver to send Settle after the given duration.
	Delay time.Duration

	// Terminal is set on the input that finished the game.
	Terminal bool
}

// PairCardView is one pair-matching card as rendered.
type PairCardView struct {
	domain.PairCard
	Selected bool `json:"selected"`
	Matched  bool `json:"matched"`
}

// CardView is one memory card as rendered. Symbol is empty while the card is
// face down.
type CardView struct {
	ID      string `json:"id"`
	Symbol  string `json:"symbol,omitempty"`
	FaceUp  bool   `json:"face_up"`
	Matched bool   `json:"matched"`
}

// View is the renderable state of a game.
type View struct {
	Kind     domain.GameKind `json:"kind"`
	Title    string          `json:"title,omitempty"`
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Busy     bool            `json:"busy"`
	Terminal bool            `json:"terminal"`

	Emoji   string          `json:"emoji,omitempty"`
	Count   int             `json:"count,omitempty"`
	Options []domain.Option `json:"options,omitempty"`

	Left  []PairCardView `json:"left,omitempty"`
	Right []PairCardView `json:"right,omitempty"`

	Cards []CardView `json:"cards,omitempty"`

	Grid     [][]int        `json:"grid,omitempty"`
	Position domain.Point   `json:"position"`
	Visited  []domain.Point `json:"visited,omitempty"`
}

// Game is an interactive game.
type Game interface {
	Kind() domain.GameKind
	Render() View
	HandleInput(in Input) (Outcome, error)
	IsTerminal() bool
}

// Default delays, matching the feedback animations.
const (
	DefaultQuizDelay     = 700 * time.Millisecond
	DefaultMatchDelay    = 500 * time.Millisecond
	DefaultMismatchDelay = 800 * time.Millisecond
)

type settings struct {
	rng           *rand.Rand
	now           func() time.Time
	quizDelay     time.Duration
	matchDelay    time.Duration
	mismatchDelay time.Duration
}

func (s *settings) shuffle(n int, swap func(i, j int)) {
	if s.rng != nil {
		s.rng.Shuffle(n, swap)
		return
	}
	rand.Shuffle(n, swap)
}

// Option configures a game.
type Option func(*settings)

// WithRand uses rng for presentation shuffles.
func WithRand(rng *rand.Rand) Option {
	return func(s *settings) { s.rng = rng }
}

// WithClock overrides the time source used to measure answer time.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithDelays overrides the quiz transition, memory match and memory
// mismatch delays.
func WithDelays(quiz, match, mismatch time.Duration) Option {
	return func(s *settings) {
		s.quizDelay = quiz
		s.matchDelay = match
		s.mismatchDelay = mismatch
	}
}

// New creates the game for kind. Empty or missing content falls back to the
// built-in default set so the game stays playable offline.
func New(kind domain.GameKind, items []domain.ContentItem, opts ...Option) (Game, error) {
	s := &settings{
		now:           time.Now,
		quizDelay:     DefaultQuizDelay,
		matchDelay:    DefaultMatchDelay,
		mismatchDelay: DefaultMismatchDelay,
	}
	for _, opt := range opts {
		opt(s)
	}

	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	items = usable(kind, items)

	switch kind {
	case domain.KindPairMatch:
		return newPairs(items[0], s), nil
	case domain.KindMemoryPairs:
		return newMemory(items[0], s), nil
	case domain.KindMaze:
		return newMaze(items[0], s), nil
	}
	return newQuiz(kind, items, s), nil
}

// usable keeps the items of the right kind, or the fallback set when none
// remain.
func usable(kind domain.GameKind, items []domain.ContentItem) []domain.ContentItem {
	out := make([]domain.ContentItem, 0, len(items))
	for _, item := range items {
		if item.Kind == kind {
			out = append(out, item.Clone())
		}
	}
	if len(out) == 0 {
		return content.Fallback(kind)
	}
	return out
}
