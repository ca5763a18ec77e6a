package play

import (
	"time"

	"github.com/ashureev/tiny-arcade/internal/content"
	"github.com/ashureev/tiny-arcade/internal/domain"
)

type quizPhase int

const (
	quizShowing quizPhase = iota
	quizTransitioning
	quizDone
)

// quiz runs the sequential question games: counting, color, shape and
// alphabet. Each item is shown, answered once, then the machine moves on.
type quiz struct {
	kind    domain.GameKind
	items   []domain.ContentItem
	s       *settings
	idx     int
	phase   quizPhase
	options []domain.Option
	shownAt time.Time
}

func newQuiz(kind domain.GameKind, items []domain.ContentItem, s *settings) *quiz {
	q := &quiz{kind: kind, items: items, s: s}
	q.show()
	return q
}

// show presents the current item with its options in a fresh order.
func (q *quiz) show() {
	q.phase = quizShowing
	q.options = append([]domain.Option(nil), q.items[q.idx].Options...)
	q.s.shuffle(len(q.options), func(i, j int) { q.options[i], q.options[j] = q.options[j], q.options[i] })
	q.shownAt = q.s.now()
}

func (q *quiz) Kind() domain.GameKind { return q.kind }

func (q *quiz) IsTerminal() bool { return q.phase == quizDone }

func (q *quiz) Render() View {
	v := View{
		Kind:     q.kind,
		Index:    q.idx,
		Total:    len(q.items),
		Busy:     q.phase == quizTransitioning,
		Terminal: q.phase == quizDone,
	}
	if q.phase == quizDone {
		return v
	}
	item := q.items[q.idx]
	v.Title = item.Title
	v.Emoji = item.Emoji
	v.Count = item.Count
	v.Options = append([]domain.Option(nil), q.options...)
	return v
}

func (q *quiz) HandleInput(in Input) (Outcome, error) {
	switch in := in.(type) {
	case Choose:
		return q.choose(in.Value)
	case Settle:
		return q.settle(), nil
	}
	return Outcome{}, ErrUnsupportedInput
}

func (q *quiz) choose(value string) (Outcome, error) {
	switch q.phase {
	case quizTransitioning:
		return Outcome{}, ErrBusy
	case quizDone:
		return Outcome{}, ErrFinished
	}

	offered := false
	for _, o := range q.options {
		if o.Value == value {
			offered = true
			break
		}
	}
	if !offered {
		return Outcome{}, ErrUnknownTarget
	}

	item := q.items[q.idx]
	q.phase = quizTransitioning
	return Outcome{
		Graded:  true,
		Correct: content.Correct(item, value),
		Submission: &Submission{
			ItemID:    item.ID,
			Value:     value,
			TimeSpent: q.s.now().Sub(q.shownAt),
		},
		Delay: q.s.quizDelay,
	}, nil
}

func (q *quiz) settle() Outcome {
	if q.phase != quizTransitioning {
		return Outcome{}
	}
	q.idx++
	if q.idx >= len(q.items) {
		q.phase = quizDone
		return Outcome{Terminal: true}
	}
	q.show()
	return Outcome{}
}
