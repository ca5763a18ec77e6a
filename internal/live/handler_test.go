package live

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ashureev/tiny-arcade/internal/content"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/ashureev/tiny-arcade/internal/gameplay"
	"github.com/ashureev/tiny-arcade/internal/store"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fallbackSource struct{}

func (fallbackSource) Generate(gameID domain.GameID, _ int) []domain.ContentItem {
	return content.Fallback(gameID.Kind())
}

type liveFixture struct {
	srv      *httptest.Server
	hub      *Hub
	mgr      *gameplay.Manager
	sessions *store.MemoryStore
}

func newLiveFixture(t *testing.T) *liveFixture {
	t.Helper()
	f := &liveFixture{
		hub:      NewHub(),
		sessions: store.NewMemoryStore(),
	}
	f.mgr = gameplay.NewManager(f.sessions, fallbackSource{},
		gameplay.WithNotifier(f.hub),
	)

	r := chi.NewRouter()
	NewHandler(f.hub, f.mgr, "*", false).RegisterRoutes(r)
	f.srv = httptest.NewServer(r)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *liveFixture) dial(t *testing.T, sessionID string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	before := f.hub.Watchers(sessionID)
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/ws/gameplay/" + sessionID
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.CloseNow() })

	require.Eventually(t, func() bool { return f.hub.Watchers(sessionID) > before }, 2*time.Second, 5*time.Millisecond)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var f Frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	return f
}

func write(t *testing.T, conn *websocket.Conn, f Frame) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, wsjson.Write(ctx, conn, f))
}

func TestSocketAnswerAndEnd(t *testing.T) {
	f := newLiveFixture(t)
	s, err := f.mgr.Start(context.Background(), domain.GameCountingFruits, "Ana")
	require.NoError(t, err)

	player := f.dial(t, s.SessionID)
	spectator := f.dial(t, s.SessionID)

	write(t, player, Frame{Type: FramePing})
	assert.Equal(t, FramePong, read(t, player).Type)

	write(t, player, Frame{Type: FrameAnswer, ItemID: "fallback-count-1", Value: "3"})

	// The event is published under the session lock, before the reply.
	ev := read(t, player)
	assert.Equal(t, string(gameplay.EventAnswerRecorded), ev.Type)
	reply := read(t, player)
	require.Equal(t, FrameAnswerResult, reply.Type)
	require.NotNil(t, reply.Answer)
	assert.True(t, reply.Answer.Correct)

	watched := read(t, spectator)
	assert.Equal(t, string(gameplay.EventAnswerRecorded), watched.Type)
	require.NotNil(t, watched.Event)
	assert.Equal(t, reply.Answer.RunningScore, watched.Event.RunningScore)

	write(t, player, Frame{Type: FrameAnswer, ItemID: "fallback-count-1", Value: "3"})
	errFrame := read(t, player)
	assert.Equal(t, FrameError, errFrame.Type)
	assert.Equal(t, "already_answered", errFrame.Error)

	write(t, player, Frame{Type: FrameEnd})
	ended := read(t, spectator)
	assert.Equal(t, string(gameplay.EventSessionEnded), ended.Type)
	require.NotNil(t, ended.Event.Result)
	assert.Equal(t, 1, ended.Event.Result.CorrectCount)

	write(t, player, Frame{Type: "dance"})
	var last Frame
	for last.Type != FrameError {
		last = read(t, player)
	}
	assert.Equal(t, "unknown_frame", last.Error)
}

func TestSocketAnswerValueAndTimeSpent(t *testing.T) {
	f := newLiveFixture(t)
	s, err := f.mgr.Start(context.Background(), domain.GameCountingFruits, "Ana")
	require.NoError(t, err)
	conn := f.dial(t, s.SessionID)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	raw := `{"type":"answer","item_id":"fallback-count-1","value":3,"time_spent":1e300}`
	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(raw)))

	assert.Equal(t, string(gameplay.EventAnswerRecorded), read(t, conn).Type)
	reply := read(t, conn)
	require.Equal(t, FrameAnswerResult, reply.Type)
	require.NotNil(t, reply.Answer)
	assert.True(t, reply.Answer.Correct)
	assert.Equal(t, 10, reply.Answer.Points, "an overlong answer earns no speed bonus")

	snap, err := f.mgr.Snapshot(context.Background(), s.SessionID)
	require.NoError(t, err)
	require.Len(t, snap.Answers, 1)
	assert.Equal(t, "3", snap.Answers[0].Value)
}

func TestSocketUnknownSession(t *testing.T) {
	f := newLiveFixture(t)

	resp, err := http.Get(f.srv.URL + "/ws/gameplay/missing")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSocketClosedOnEviction(t *testing.T) {
	f := newLiveFixture(t)
	s, err := f.mgr.Start(context.Background(), domain.GameColorLearn, "")
	require.NoError(t, err)
	conn := f.dial(t, s.SessionID)

	ids, err := f.mgr.EvictExpired(context.Background(), -time.Second)
	require.NoError(t, err)
	require.Equal(t, []string{s.SessionID}, ids)

	ev := read(t, conn)
	assert.Equal(t, string(gameplay.EventSessionEvicted), ev.Type)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var next Frame
	err = wsjson.Read(ctx, conn, &next)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusNormalClosure, websocket.CloseStatus(err))

	assert.Eventually(t, func() bool { return f.hub.Watchers(s.SessionID) == 0 }, 2*time.Second, 5*time.Millisecond)
}

func TestCheckOrigin(t *testing.T) {
	h := NewHandler(NewHub(), nil, "https://arcade.example", false)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.True(t, h.checkOrigin(req), "same-origin requests carry no Origin")

	req.Header.Set("Origin", "https://arcade.example")
	assert.True(t, h.checkOrigin(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, h.checkOrigin(req))

	h.isDev = true
	assert.True(t, h.checkOrigin(req))
}
