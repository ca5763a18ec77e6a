package gameplay

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/tiny-arcade/internal/content"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/ashureev/tiny-arcade/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fallbackSource serves the fixed fallback sets so answers are predictable.
type fallbackSource struct{}

func (fallbackSource) Generate(gameID domain.GameID, _ int) []domain.ContentItem {
	return content.Fallback(gameID.Kind())
}

type itemsSource []domain.ContentItem

func (s itemsSource) Generate(domain.GameID, int) []domain.ContentItem {
	return domain.CloneItems(s)
}

type mockResults struct {
	mock.Mock
}

func (m *mockResults) SaveResult(ctx context.Context, entry domain.ScoreEntry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *mockResults) TopScores(ctx context.Context, gameID domain.GameID, limit int) ([]domain.ScoreEntry, error) {
	args := m.Called(ctx, gameID, limit)
	return args.Get(0).([]domain.ScoreEntry), args.Error(1)
}

func (m *mockResults) PlayerStats(ctx context.Context, label string) (*domain.PlayerStats, error) {
	args := m.Called(ctx, label)
	return args.Get(0).(*domain.PlayerStats), args.Error(1)
}

func (m *mockResults) Ping(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockResults) Close() error                   { return m.Called().Error(0) }

type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Publish(ev Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
}

func (n *recordingNotifier) types() []EventType {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]EventType, len(n.events))
	for i, ev := range n.events {
		out[i] = ev.Type
	}
	return out
}

var testNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T, source ContentSource, opts ...Option) *Manager {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return NewManager(store.NewMemoryStore(), source, opts...)
}

func TestCountingEndToEnd(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, fallbackSource{})

	sum, err := mgr.Start(ctx, domain.GameCountingFruits, "ana")
	require.NoError(t, err)
	assert.Equal(t, 120, sum.TotalDuration)
	assert.Equal(t, 3, sum.TotalQuestions)
	assert.NotEmpty(t, sum.SessionID)

	items, err := mgr.Content(ctx, sum.SessionID)
	require.NoError(t, err)

	res, err := mgr.Submit(ctx, sum.SessionID, items[0].ID, items[0].Answer, 0)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 15, res.Points)
	assert.Equal(t, 15, res.RunningScore)

	result, err := mgr.End(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 100, result.AccuracyPercent)
	assert.Equal(t, 50, result.CompletionBonus)
	assert.Equal(t, 65, result.FinalScore)
	assert.Equal(t, 1, result.CorrectCount)
	assert.Equal(t, 1, result.TotalAnswered)
	assert.Equal(t, domain.TierTop, result.Badge.Tier)

	snap, err := mgr.Snapshot(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.True(t, snap.IsCompleted())
	require.NotNil(t, snap.EndedAt)
	require.NotNil(t, snap.Result)
}

func TestStartInvalidGame(t *testing.T) {
	mgr := newTestManager(t, fallbackSource{})
	_, err := mgr.Start(context.Background(), "chess", "ana")
	assert.ErrorIs(t, err, ErrInvalidGame)
}

func TestStartAnonymousDefault(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, fallbackSource{})
	sum, err := mgr.Start(ctx, domain.GameShapes, "")
	require.NoError(t, err)

	snap, err := mgr.Snapshot(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, domain.AnonymousPlayer, snap.PlayerLabel)
}

func TestUnknownSession(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, fallbackSource{})

	_, err := mgr.Submit(ctx, "missing", "q", "1", 0)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = mgr.End(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = mgr.Snapshot(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, _, err = mgr.CurrentItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func lockCount(m *Manager) int {
	n := 0
	m.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestUnknownSessionsLeaveNoLocks(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, fallbackSource{})

	for i := 0; i < 100; i++ {
		id := "ghost-" + strconv.Itoa(i)
		_, err := mgr.Submit(ctx, id, "q", "1", 0)
		require.ErrorIs(t, err, ErrSessionNotFound)
		_, err = mgr.End(ctx, id)
		require.ErrorIs(t, err, ErrSessionNotFound)
	}
	assert.Zero(t, lockCount(mgr))

	sum, err := mgr.Start(ctx, domain.GameColorLearn, "")
	require.NoError(t, err)
	_, err = mgr.End(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, lockCount(mgr))

	_, err = mgr.EvictExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, lockCount(mgr))
}

func TestSubmitRejections(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, fallbackSource{})
	sum, err := mgr.Start(ctx, domain.GameColorLearn, "ana")
	require.NoError(t, err)
	items, err := mgr.Content(ctx, sum.SessionID)
	require.NoError(t, err)

	_, err = mgr.Submit(ctx, sum.SessionID, "nope", "red", 0)
	assert.ErrorIs(t, err, ErrUnknownItem)

	wrong, err := mgr.Submit(ctx, sum.SessionID, items[0].ID, "purple", time.Second)
	require.NoError(t, err)
	assert.False(t, wrong.Correct)
	assert.Zero(t, wrong.Points)

	_, err = mgr.Submit(ctx, sum.SessionID, items[0].ID, items[0].Answer, 0)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	_, err = mgr.End(ctx, sum.SessionID)
	require.NoError(t, err)
	_, err = mgr.Submit(ctx, sum.SessionID, items[1].ID, items[1].Answer, 0)
	assert.ErrorIs(t, err, ErrSessionCompleted)

	snap, err := mgr.Snapshot(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.Len(t, snap.Answers, 1)
}

func TestPairSlots(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, fallbackSource{})
	sum, err := mgr.Start(ctx, domain.GameFindMatch, "ana")
	require.NoError(t, err)
	assert.Equal(t, 3, sum.TotalQuestions)

	items, err := mgr.Content(ctx, sum.SessionID)
	require.NoError(t, err)
	item := items[0]

	res, err := mgr.Submit(ctx, sum.SessionID, item.ID, content.PairValue("cat", "cat"), 0)
	require.NoError(t, err)
	assert.True(t, res.Correct)
	assert.Equal(t, 23, res.Points)

	_, err = mgr.Submit(ctx, sum.SessionID, item.ID, content.PairValue("cat", "cat"), 0)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	_, err = mgr.Submit(ctx, sum.SessionID, item.ID, content.PairValue("monkey", "monkey"), 0)
	require.NoError(t, err)

	cur, ok, err := mgr.CurrentItem(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.True(t, ok, "one pair still open")
	assert.Equal(t, item.ID, cur.ID)

	_, err = mgr.Submit(ctx, sum.SessionID, item.ID, content.PairValue("rabbit", "rabbit"), 0)
	require.NoError(t, err)

	_, ok, err = mgr.CurrentItem(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = mgr.Submit(ctx, sum.SessionID, item.ID, content.PairValue("rabbit", "cat"), 0)
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	snap, err := mgr.Snapshot(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(snap.Answers), snap.Capacity())
}

func TestCursorIsMonotonic(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager(t, fallbackSource{})
	sum, err := mgr.Start(ctx, domain.GameAlphabetQuiz, "ana")
	require.NoError(t, err)
	items, err := mgr.Content(ctx, sum.SessionID)
	require.NoError(t, err)

	// Answering ahead of the cursor leaves it on the first open item.
	_, err = mgr.Submit(ctx, sum.SessionID, items[1].ID, items[1].Answer, 0)
	require.NoError(t, err)
	snap, err := mgr.Snapshot(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.Zero(t, snap.Cursor)

	_, err = mgr.Submit(ctx, sum.SessionID, items[0].ID, items[0].Answer, 0)
	require.NoError(t, err)
	snap, err = mgr.Snapshot(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.Cursor)
}

func TestConcurrentSubmitsKeepRunningTotal(t *testing.T) {
	ctx := context.Background()
	const n = 64

	items := make([]domain.ContentItem, n)
	for i := range items {
		items[i] = domain.ContentItem{
			ID:     fmt.Sprintf("q%d", i),
			Kind:   domain.KindCounting,
			Answer: "2",
			Count:  2,
			Options: []domain.Option{
				{Value: "1"}, {Value: "2"}, {Value: "3"},
			},
		}
	}
	mgr := newTestManager(t, itemsSource(items))
	sum, err := mgr.Start(ctx, domain.GameCountingFruits, "ana")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			value := "2"
			if i%3 == 0 {
				value = "1"
			}
			_, err := mgr.Submit(ctx, sum.SessionID, items[i].ID, value, time.Duration(i)*time.Second)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	snap, err := mgr.Snapshot(ctx, sum.SessionID)
	require.NoError(t, err)
	require.Len(t, snap.Answers, n)

	total := 0
	for _, a := range snap.Answers {
		total += a.Points
	}
	assert.Equal(t, total, snap.RunningScore)
	assert.Equal(t, n, snap.Cursor)
}

func TestEndIsSingleShot(t *testing.T) {
	ctx := context.Background()
	clock := testNow
	mgr := NewManager(store.NewMemoryStore(), fallbackSource{}, WithClock(func() time.Time { return clock }))

	sum, err := mgr.Start(ctx, domain.GameShapes, "ana")
	require.NoError(t, err)

	clock = clock.Add(30 * time.Second)
	first, err := mgr.End(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 30, first.DurationSeconds)

	clock = clock.Add(time.Hour)
	second, err := mgr.End(ctx, sum.SessionID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEndArchivesIdentifiedPlayers(t *testing.T) {
	ctx := context.Background()
	results := &mockResults{}
	results.On("SaveResult", mock.Anything, mock.MatchedBy(func(e domain.ScoreEntry) bool {
		return e.PlayerLabel == "ana" && e.GameID == domain.GameMemoryPairs && e.Score == 60
	})).Return(nil).Once()

	mgr := newTestManager(t, fallbackSource{}, WithResults(results))

	anon, err := mgr.Start(ctx, domain.GameMemoryPairs, domain.AnonymousPlayer)
	require.NoError(t, err)
	_, err = mgr.End(ctx, anon.SessionID)
	require.NoError(t, err)

	named, err := mgr.Start(ctx, domain.GameMemoryPairs, "ana")
	require.NoError(t, err)
	_, err = mgr.End(ctx, named.SessionID)
	require.NoError(t, err)
	_, err = mgr.End(ctx, named.SessionID)
	require.NoError(t, err)

	results.AssertExpectations(t)
}

func TestArchiveFailureIsNotSurfaced(t *testing.T) {
	ctx := context.Background()
	results := &mockResults{}
	results.On("SaveResult", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	mgr := newTestManager(t, fallbackSource{}, WithResults(results))
	sum, err := mgr.Start(ctx, domain.GameMazeRabbit, "ana")
	require.NoError(t, err)

	_, err = mgr.End(ctx, sum.SessionID)
	assert.NoError(t, err)
}

func TestNotifierAndEviction(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	mgr := newTestManager(t, fallbackSource{}, WithNotifier(n))

	sum, err := mgr.Start(ctx, domain.GameMazeRabbit, "ana")
	require.NoError(t, err)
	_, err = mgr.Submit(ctx, sum.SessionID, "fallback-maze", domain.MazeCompleted, 5*time.Second)
	require.NoError(t, err)
	_, err = mgr.End(ctx, sum.SessionID)
	require.NoError(t, err)

	active, err := mgr.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, domain.StatusCompleted, active[0].Status)

	// The test clock sits in the past, so the session is long idle.
	evicted, err := mgr.EvictExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{sum.SessionID}, evicted)

	_, err = mgr.Snapshot(ctx, sum.SessionID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, []EventType{EventAnswerRecorded, EventSessionEnded, EventSessionEvicted}, n.types())
}

func TestTTLWorkerEvicts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr := newTestManager(t, fallbackSource{})
	sum, err := mgr.Start(ctx, domain.GameColorLearn, "ana")
	require.NoError(t, err)

	evicted := make(chan string, 1)
	StartTTLWorker(ctx, mgr, time.Minute, 10*time.Millisecond, func(id string) { evicted <- id })

	select {
	case id := <-evicted:
		assert.Equal(t, sum.SessionID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("session was not evicted")
	}
}
