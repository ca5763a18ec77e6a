package play

import (
	"time"

	"github.com/ashureev/tiny-arcade/internal/content"
	"github.com/ashureev/tiny-arcade/internal/domain"
)

// pairs runs the animal/food matching board. Each column has one selection
// slot; when both are filled the pair is checked at once.
type pairs struct {
	item      domain.ContentItem
	s         *settings
	left      []domain.PairCard
	right     []domain.PairCard
	selLeft   string
	selRight  string
	matched   map[string]bool
	lastMatch time.Time
}

func newPairs(item domain.ContentItem, s *settings) *pairs {
	p := &pairs{
		item:    item,
		s:       s,
		left:    append([]domain.PairCard(nil), item.Left...),
		right:   append([]domain.PairCard(nil), item.Right...),
		matched: make(map[string]bool, len(item.Left)),
	}
	// The left column arrives in generation order; shuffle it here so the
	// two columns never line up.
	s.shuffle(len(p.left), func(i, j int) { p.left[i], p.left[j] = p.left[j], p.left[i] })
	p.lastMatch = s.now()
	return p
}

func (p *pairs) Kind() domain.GameKind { return domain.KindPairMatch }

func (p *pairs) IsTerminal() bool { return len(p.matched) == len(p.left) }

func (p *pairs) Render() View {
	v := View{
		Kind:     domain.KindPairMatch,
		Title:    p.item.Title,
		Index:    len(p.matched),
		Total:    len(p.left),
		Terminal: p.IsTerminal(),
		Left:     make([]PairCardView, len(p.left)),
		Right:    make([]PairCardView, len(p.right)),
	}
	for i, c := range p.left {
		v.Left[i] = PairCardView{PairCard: c, Selected: c.PairID == p.selLeft, Matched: p.matched[c.PairID]}
	}
	for i, c := range p.right {
		v.Right[i] = PairCardView{PairCard: c, Selected: c.PairID == p.selRight, Matched: p.matched[c.PairID]}
	}
	return v
}

func (p *pairs) HandleInput(in Input) (Outcome, error) {
	switch in := in.(type) {
	case Select:
		return p.selectCard(in.Side, in.ID)
	case Settle:
		return Outcome{}, nil
	}
	return Outcome{}, ErrUnsupportedInput
}

func (p *pairs) selectCard(side Side, id string) (Outcome, error) {
	if p.IsTerminal() {
		return Outcome{}, ErrFinished
	}

	column, slot := p.left, &p.selLeft
	if side == Right {
		column, slot = p.right, &p.selRight
	}
	if !hasPair(column, id) {
		return Outcome{}, ErrUnknownTarget
	}
	if p.matched[id] {
		return Outcome{}, ErrUnavailable
	}

	// Selecting the same card again clears the slot.
	if *slot == id {
		*slot = ""
		return Outcome{}, nil
	}
	*slot = id

	if p.selLeft == "" || p.selRight == "" {
		return Outcome{}, nil
	}

	value := content.PairValue(p.selLeft, p.selRight)
	correct := content.Correct(p.item, value)
	matchedID := p.selLeft
	p.selLeft, p.selRight = "", ""

	if !correct {
		return Outcome{Graded: true}, nil
	}

	now := p.s.now()
	p.matched[matchedID] = true
	out := Outcome{
		Graded:  true,
		Correct: true,
		Submission: &Submission{
			ItemID:    p.item.ID,
			Value:     value,
			TimeSpent: now.Sub(p.lastMatch),
		},
		Terminal: p.IsTerminal(),
	}
	p.lastMatch = now
	return out, nil
}

func hasPair(cards []domain.PairCard, id string) bool {
	for _, c := range cards {
		if c.PairID == id {
			return true
		}
	}
	return false
}
