package play

import (
	"time"

	"github.com/ashureev/tiny-arcade/internal/content"
	"github.com/ashureev/tiny-arcade/internal/domain"
)

type memoryPending int

const (
	pendingNone memoryPending = iota
	pendingMatch
	pendingFlipBack
)

// memory runs the memory-pairs deck. At most two cards are face up; the
// pair resolves after a reveal delay.
type memory struct {
	item      domain.ContentItem
	s         *settings
	faceUp    []string
	matched   map[string]bool
	pending   memoryPending
	lastMatch time.Time
}

func newMemory(item domain.ContentItem, s *settings) *memory {
	return &memory{
		item:      item,
		s:         s,
		matched:   make(map[string]bool, len(item.Cards)),
		lastMatch: s.now(),
	}
}

func (m *memory) Kind() domain.GameKind { return domain.KindMemoryPairs }

func (m *memory) IsTerminal() bool { return len(m.matched) == len(m.item.Cards) }

func (m *memory) isFaceUp(id string) bool {
	for _, f := range m.faceUp {
		if f == id {
			return true
		}
	}
	return false
}

func (m *memory) Render() View {
	v := View{
		Kind:     domain.KindMemoryPairs,
		Title:    m.item.Title,
		Index:    len(m.matched) / 2,
		Total:    len(m.item.Cards) / 2,
		Busy:     m.pending != pendingNone,
		Terminal: m.IsTerminal(),
		Cards:    make([]CardView, len(m.item.Cards)),
	}
	for i, c := range m.item.Cards {
		cv := CardView{ID: c.ID, FaceUp: m.isFaceUp(c.ID), Matched: m.matched[c.ID]}
		if cv.FaceUp || cv.Matched {
			cv.Symbol = c.Symbol
		}
		v.Cards[i] = cv
	}
	return v
}

func (m *memory) HandleInput(in Input) (Outcome, error) {
	switch in := in.(type) {
	case Flip:
		return m.flip(in.CardID)
	case Settle:
		return m.settle(), nil
	}
	return Outcome{}, ErrUnsupportedInput
}

func (m *memory) flip(id string) (Outcome, error) {
	if m.IsTerminal() {
		return Outcome{}, ErrFinished
	}
	if m.pending != pendingNone {
		return Outcome{}, ErrBusy
	}
	known := false
	for _, c := range m.item.Cards {
		if c.ID == id {
			known = true
			break
		}
	}
	if !known {
		return Outcome{}, ErrUnknownTarget
	}
	if m.matched[id] || m.isFaceUp(id) {
		return Outcome{}, ErrUnavailable
	}

	m.faceUp = append(m.faceUp, id)
	if len(m.faceUp) < 2 {
		return Outcome{}, nil
	}

	value := content.PairValue(m.faceUp[0], m.faceUp[1])
	if !content.Correct(m.item, value) {
		m.pending = pendingFlipBack
		return Outcome{Graded: true, Delay: m.s.mismatchDelay}, nil
	}

	now := m.s.now()
	m.pending = pendingMatch
	out := Outcome{
		Graded:  true,
		Correct: true,
		Submission: &Submission{
			ItemID:    m.item.ID,
			Value:     value,
			TimeSpent: now.Sub(m.lastMatch),
		},
		Delay: m.s.matchDelay,
	}
	m.lastMatch = now
	return out, nil
}

func (m *memory) settle() Outcome {
	switch m.pending {
	case pendingMatch:
		for _, id := range m.faceUp {
			m.matched[id] = true
		}
	case pendingFlipBack:
	default:
		return Outcome{}
	}
	m.faceUp = nil
	m.pending = pendingNone
	return Outcome{Terminal: m.IsTerminal()}
}
