package play

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/ashureev/tiny-arcade/internal/content"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func seeded() Option { return WithRand(rand.New(rand.NewPCG(1, 2))) }

func clocked(c *fakeClock) Option { return WithClock(c.now) }

func mustNew(t *testing.T, kind domain.GameKind, items []domain.ContentItem, opts ...Option) Game {
	t.Helper()
	g, err := New(kind, items, opts...)
	require.NoError(t, err)
	return g
}

func TestNewFallsBackToDefaults(t *testing.T) {
	for kind := domain.KindCounting; kind <= domain.KindMaze; kind++ {
		g := mustNew(t, kind, nil)
		assert.Equal(t, kind, g.Kind())
		assert.False(t, g.IsTerminal())
		assert.Equal(t, kind, g.Render().Kind)
	}

	_, err := New(domain.KindUnknown, nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestQuizFlow(t *testing.T) {
	clock := newFakeClock()
	g := mustNew(t, domain.KindCounting, content.Fallback(domain.KindCounting), seeded(), clocked(clock))

	v := g.Render()
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 3, v.Total)
	assert.Len(t, v.Options, 3)

	clock.advance(4 * time.Second)
	out, err := g.HandleInput(Choose{Value: "3"})
	require.NoError(t, err)
	assert.True(t, out.Graded)
	assert.True(t, out.Correct)
	require.NotNil(t, out.Submission)
	assert.Equal(t, "fallback-count-1", out.Submission.ItemID)
	assert.Equal(t, 4*time.Second, out.Submission.TimeSpent)
	assert.Equal(t, DefaultQuizDelay, out.Delay)

	_, err = g.HandleInput(Choose{Value: "2"})
	assert.ErrorIs(t, err, ErrBusy)
	assert.True(t, g.Render().Busy)

	out, err = g.HandleInput(Settle{})
	require.NoError(t, err)
	assert.False(t, out.Terminal)
	assert.Equal(t, 1, g.Render().Index)

	_, err = g.HandleInput(Choose{Value: "42"})
	assert.ErrorIs(t, err, ErrUnknownTarget)

	out, err = g.HandleInput(Choose{Value: "6"})
	require.NoError(t, err)
	assert.False(t, out.Correct)
	_, _ = g.HandleInput(Settle{})

	_, err = g.HandleInput(Choose{Value: "2"})
	require.NoError(t, err)
	out, err = g.HandleInput(Settle{})
	require.NoError(t, err)
	assert.True(t, out.Terminal)
	assert.True(t, g.IsTerminal())

	_, err = g.HandleInput(Choose{Value: "2"})
	assert.ErrorIs(t, err, ErrFinished)
	_, err = g.HandleInput(Flip{CardID: "x"})
	assert.ErrorIs(t, err, ErrUnsupportedInput)
}

func TestPairsFlow(t *testing.T) {
	g := mustNew(t, domain.KindPairMatch, content.Fallback(domain.KindPairMatch), seeded())

	// Reselecting toggles the slot off.
	_, err := g.HandleInput(Select{Side: Left, ID: "cat"})
	require.NoError(t, err)
	_, err = g.HandleInput(Select{Side: Left, ID: "cat"})
	require.NoError(t, err)
	for _, c := range g.Render().Left {
		assert.False(t, c.Selected)
	}

	_, err = g.HandleInput(Select{Side: Left, ID: "cat"})
	require.NoError(t, err)
	out, err := g.HandleInput(Select{Side: Right, ID: "monkey"})
	require.NoError(t, err)
	assert.True(t, out.Graded)
	assert.False(t, out.Correct)
	assert.Nil(t, out.Submission)

	_, err = g.HandleInput(Select{Side: Right, ID: "cat"})
	require.NoError(t, err)
	out, err = g.HandleInput(Select{Side: Left, ID: "cat"})
	require.NoError(t, err)
	assert.True(t, out.Correct)
	require.NotNil(t, out.Submission)
	assert.Equal(t, content.PairValue("cat", "cat"), out.Submission.Value)

	_, err = g.HandleInput(Select{Side: Left, ID: "cat"})
	assert.ErrorIs(t, err, ErrUnavailable)
	_, err = g.HandleInput(Select{Side: Left, ID: "panda"})
	assert.ErrorIs(t, err, ErrUnknownTarget)

	for _, id := range []string{"monkey", "rabbit"} {
		_, err = g.HandleInput(Select{Side: Left, ID: id})
		require.NoError(t, err)
		out, err = g.HandleInput(Select{Side: Right, ID: id})
		require.NoError(t, err)
	}
	assert.True(t, out.Terminal)
	assert.True(t, g.IsTerminal())
	assert.Equal(t, 3, g.Render().Index)
}

func TestMemoryFlow(t *testing.T) {
	g := mustNew(t, domain.KindMemoryPairs, content.Fallback(domain.KindMemoryPairs))

	v := g.Render()
	require.Len(t, v.Cards, 8)
	for _, c := range v.Cards {
		assert.Empty(t, c.Symbol, "face-down cards hide their symbol")
	}

	_, err := g.HandleInput(Flip{CardID: "m1"})
	require.NoError(t, err)
	_, err = g.HandleInput(Flip{CardID: "m1"})
	assert.ErrorIs(t, err, ErrUnavailable)

	out, err := g.HandleInput(Flip{CardID: "m2"})
	require.NoError(t, err)
	assert.True(t, out.Graded)
	assert.False(t, out.Correct)
	assert.Equal(t, DefaultMismatchDelay, out.Delay)

	// A third card is refused while the pair is pending.
	_, err = g.HandleInput(Flip{CardID: "m3"})
	assert.ErrorIs(t, err, ErrBusy)

	_, err = g.HandleInput(Settle{})
	require.NoError(t, err)
	for _, c := range g.Render().Cards {
		assert.False(t, c.FaceUp)
	}

	pairs := [][2]string{{"m1", "m6"}, {"m2", "m5"}, {"m3", "m8"}, {"m4", "m7"}}
	for i, p := range pairs {
		_, err = g.HandleInput(Flip{CardID: p[0]})
		require.NoError(t, err)
		out, err = g.HandleInput(Flip{CardID: p[1]})
		require.NoError(t, err)
		assert.True(t, out.Correct)
		require.NotNil(t, out.Submission)
		assert.Equal(t, DefaultMatchDelay, out.Delay)

		out, err = g.HandleInput(Settle{})
		require.NoError(t, err)
		assert.Equal(t, i == len(pairs)-1, out.Terminal)
	}
	assert.True(t, g.IsTerminal())

	_, err = g.HandleInput(Flip{CardID: "m1"})
	assert.ErrorIs(t, err, ErrFinished)
}

func TestMazeMoves(t *testing.T) {
	g := mustNew(t, domain.KindMaze, content.Fallback(domain.KindMaze))
	start := g.Render().Position
	assert.Equal(t, domain.Point{X: 1, Y: 1}, start)

	// North of the start is the outer wall.
	_, err := g.HandleInput(Move{Dir: North})
	assert.ErrorIs(t, err, ErrBlocked)
	assert.Equal(t, start, g.Render().Position)

	_, err = g.HandleInput(Move{Dir: East})
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 2, Y: 1}, g.Render().Position)
	assert.Len(t, g.Render().Visited, 2)

	_, err = g.HandleInput(Move{Dir: West})
	require.NoError(t, err)
	assert.Len(t, g.Render().Visited, 2, "revisiting does not grow the trail")

	_, err = g.HandleInput(Reset{})
	require.NoError(t, err)
	assert.Equal(t, []domain.Point{start}, g.Render().Visited)
}

// solveMaze walks the rabbit maze from the start to the goal.
var solveMaze = []Direction{
	East, East, South, South, East, East, North, North, East, East, East,
	South, South, South, South, South, South, South,
}

func TestMazeCompletionReportedOnce(t *testing.T) {
	g := mustNew(t, domain.KindMaze, content.Fallback(domain.KindMaze))

	var submissions int
	var last Outcome
	for _, d := range solveMaze {
		out, err := g.HandleInput(Move{Dir: d})
		require.NoError(t, err, "move %v from %v", d, g.Render().Position)
		if out.Submission != nil {
			submissions++
			assert.Equal(t, domain.MazeCompleted, out.Submission.Value)
		}
		last = out
	}
	assert.True(t, last.Terminal)
	assert.True(t, g.IsTerminal())
	assert.Equal(t, 1, submissions)

	_, err := g.HandleInput(Move{Dir: North})
	assert.ErrorIs(t, err, ErrFinished)

	// Playing again after a reset finishes without a second report.
	_, err = g.HandleInput(Reset{})
	require.NoError(t, err)
	assert.False(t, g.IsTerminal())
	for _, d := range solveMaze {
		out, err := g.HandleInput(Move{Dir: d})
		require.NoError(t, err)
		assert.Nil(t, out.Submission)
		last = out
	}
	assert.True(t, last.Terminal)
}
