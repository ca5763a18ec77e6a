package play

import (
	"time"

	"github.com/ashureev/tiny-arcade/internal/domain"
)

// maze moves the rabbit through the grid. The visited trail only grows
// until Reset.
type maze struct {
	item     domain.ContentItem
	s        *settings
	pos      domain.Point
	visited  []domain.Point
	seen     map[domain.Point]bool
	finished bool
	reported bool
	started  time.Time
}

func newMaze(item domain.ContentItem, s *settings) *maze {
	m := &maze{item: item, s: s, started: s.now()}
	m.reset()
	return m
}

func (m *maze) reset() {
	m.pos = m.item.Start
	m.visited = []domain.Point{m.item.Start}
	m.seen = map[domain.Point]bool{m.item.Start: true}
	m.finished = false
}

func (m *maze) Kind() domain.GameKind { return domain.KindMaze }

func (m *maze) IsTerminal() bool { return m.finished }

func (m *maze) Render() View {
	grid := make([][]int, len(m.item.Layout))
	for i, row := range m.item.Layout {
		grid[i] = append([]int(nil), row...)
	}
	v := View{
		Kind:     domain.KindMaze,
		Title:    m.item.Title,
		Total:    1,
		Terminal: m.finished,
		Grid:     grid,
		Position: m.pos,
		Visited:  append([]domain.Point(nil), m.visited...),
	}
	if m.finished {
		v.Index = 1
	}
	return v
}

func (m *maze) HandleInput(in Input) (Outcome, error) {
	switch in := in.(type) {
	case Move:
		return m.move(in.Dir)
	case Reset:
		m.reset()
		return Outcome{}, nil
	case Settle:
		return Outcome{}, nil
	}
	return Outcome{}, ErrUnsupportedInput
}

func (m *maze) cell(p domain.Point) (int, bool) {
	if p.Y < 0 || p.Y >= len(m.item.Layout) || p.X < 0 || p.X >= len(m.item.Layout[p.Y]) {
		return 0, false
	}
	return m.item.Layout[p.Y][p.X], true
}

func (m *maze) move(d Direction) (Outcome, error) {
	if m.finished {
		return Outcome{}, ErrFinished
	}
	dx, dy := d.delta()
	next := domain.Point{X: m.pos.X + dx, Y: m.pos.Y + dy}
	code, ok := m.cell(next)
	if !ok || code == domain.CellWall || next == m.pos {
		return Outcome{}, ErrBlocked
	}

	m.pos = next
	if !m.seen[next] {
		m.seen[next] = true
		m.visited = append(m.visited, next)
	}
	if code != m.item.FinishValue {
		return Outcome{}, nil
	}

	m.finished = true
	out := Outcome{Graded: true, Correct: true, Terminal: true}
	if !m.reported {
		m.reported = true
		out.Submission = &Submission{
			ItemID:    m.item.ID,
			Value:     m.item.Answer,
			TimeSpent: m.s.now().Sub(m.started),
		}
	}
	return out, nil
}
