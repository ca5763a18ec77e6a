package play

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ashureev/tiny-arcade/internal/catalog"
	"github.com/ashureev/tiny-arcade/internal/domain"
	"github.com/ashureev/tiny-arcade/internal/gameplay"
	"github.com/ashureev/tiny-arcade/internal/scoring"
)

var (
	// ErrNotPlaying is returned for game input while no game is running.
	ErrNotPlaying = errors.New("no game in progress")
	// ErrSuperseded is returned by StartGame when another StartGame call
	// replaced it before it finished.
	ErrSuperseded = errors.New("game start superseded")
)

// Backend is the session manager as seen by the client. *gameplay.Manager
// satisfies it in process; the HTTP client satisfies it remotely.
type Backend interface {
	Start(ctx context.Context, gameID domain.GameID, playerLabel string) (gameplay.Summary, error)
	Content(ctx context.Context, sessionID string) ([]domain.ContentItem, error)
	Submit(ctx context.Context, sessionID, itemID, value string, timeSpent time.Duration) (gameplay.AnswerResult, error)
	End(ctx context.Context, sessionID string) (domain.Result, error)
}

// State is the screen the arcade is on.
type State int

// Arcade states.
const (
	StateIdle State = iota
	StatePlaying
	StateResults
)

func (s State) String() string {
	switch s {
	case StatePlaying:
		return "playing"
	case StateResults:
		return "results"
	}
	return "idle"
}

// Status is a snapshot of the arcade.
type Status struct {
	State     State
	GameID    domain.GameID
	SessionID string
	// Offline is set when the game runs on local content without a session.
	Offline bool
	// SessionLost is set when the backend reported the session missing.
	SessionLost bool

	Remaining   int
	LocalScore  int
	ServerScore int
	Attempts    int
	Correct     int

	Result *domain.Result
	// LocalResult is set while Result was computed locally rather than by
	// the backend.
	LocalResult bool

	View *View
}

// Scheduler runs f after d and returns a cancel function.
type Scheduler func(d time.Duration, f func()) (cancel func())

func afterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// serialQueue runs jobs one at a time in submission order, each on its own
// goroutine.
type serialQueue struct {
	mu   sync.Mutex
	tail chan struct{}
}

func (q *serialQueue) dispatch(f func()) {
	q.mu.Lock()
	prev := q.tail
	done := make(chan struct{})
	q.tail = done
	q.mu.Unlock()

	go func() {
		defer close(done)
		if prev != nil {
			<-prev
		}
		f()
	}()
}

// Arcade is the client controller. It owns the active game, scores answers
// optimistically and forwards them to the backend in the background.
//
// Every game start bumps a generation counter; callbacks from timers and
// backend calls carry the generation they were issued under and are dropped
// when it is stale.
type Arcade struct {
	backend Backend
	player  string

	dispatch func(func())
	after    Scheduler
	tick     time.Duration
	timeout  time.Duration
	now      func() time.Time
	gameOpts []Option
	onChange func(Status)

	mu           sync.Mutex
	state        State
	gen          uint64
	game         Game
	info         domain.Game
	sessionID    string
	offline      bool
	lost         bool
	startedAt    time.Time
	countdown    *Countdown
	cancelSettle func()
	remaining    int
	localScore   int
	serverScore  int
	attempts     int
	correct      int
	result       *domain.Result
	localResult  bool
}

// ArcadeOption configures an Arcade.
type ArcadeOption func(*Arcade)

// WithDispatch replaces the background runner used for backend calls.
func WithDispatch(dispatch func(func())) ArcadeOption {
	return func(a *Arcade) { a.dispatch = dispatch }
}

// WithScheduler replaces the timer used for delayed transitions.
func WithScheduler(s Scheduler) ArcadeOption {
	return func(a *Arcade) { a.after = s }
}

// WithTickInterval sets the countdown tick. Each tick is one second of game
// time.
func WithTickInterval(d time.Duration) ArcadeOption {
	return func(a *Arcade) { a.tick = d }
}

// WithRequestTimeout bounds every background backend call.
func WithRequestTimeout(d time.Duration) ArcadeOption {
	return func(a *Arcade) { a.timeout = d }
}

// WithArcadeClock overrides the time source.
func WithArcadeClock(now func() time.Time) ArcadeOption {
	return func(a *Arcade) { a.now = now }
}

// WithGameOptions passes options to every game the arcade creates.
func WithGameOptions(opts ...Option) ArcadeOption {
	return func(a *Arcade) { a.gameOpts = append(a.gameOpts, opts...) }
}

// WithOnChange registers a callback run after every state change. It runs
// outside the arcade lock.
func WithOnChange(f func(Status)) ArcadeOption {
	return func(a *Arcade) { a.onChange = f }
}

// NewArcade creates an idle arcade for one player.
func NewArcade(backend Backend, playerLabel string, opts ...ArcadeOption) *Arcade {
	q := &serialQueue{}
	a := &Arcade{
		backend:  backend,
		player:   playerLabel,
		dispatch: q.dispatch,
		after:    afterFunc,
		tick:     time.Second,
		timeout:  10 * time.Second,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// StartGame starts a new game, cancelling whatever was running. When the
// backend is unreachable the game runs offline on the built-in content.
func (a *Arcade) StartGame(ctx context.Context, gameID domain.GameID) error {
	info, ok := catalog.Lookup(gameID)
	if !ok {
		return fmt.Errorf("%w: %q", gameplay.ErrInvalidGame, gameID)
	}

	a.mu.Lock()
	a.stopTimersLocked()
	a.gen++
	gen := a.gen
	a.state = StateIdle
	a.game = nil
	a.mu.Unlock()

	offline := false
	var sessionID string
	var items []domain.ContentItem

	sum, err := a.backend.Start(ctx, gameID, a.player)
	switch {
	case errors.Is(err, gameplay.ErrInvalidGame):
		return err
	case err != nil:
		slog.Warn("Backend unavailable, playing offline", "game_id", gameID, "error", err)
		offline = true
	default:
		items, err = a.backend.Content(ctx, sum.SessionID)
		if err != nil {
			// The default set's item ids are unknown to the session, so
			// answers must not be forwarded to it.
			slog.Warn("Failed to fetch content, playing offline", "session_id", sum.SessionID, "error", err)
			offline = true
			items = nil
			break
		}
		sessionID = sum.SessionID
	}

	game, err := New(gameID.Kind(), items, a.gameOpts...)
	if err != nil {
		return err
	}

	a.mu.Lock()
	if a.gen != gen {
		a.mu.Unlock()
		return ErrSuperseded
	}
	a.state = StatePlaying
	a.game = game
	a.info = info
	a.sessionID = sessionID
	a.offline = offline
	a.lost = false
	a.startedAt = a.now()
	a.remaining = info.DurationSeconds()
	a.localScore, a.serverScore, a.attempts, a.correct = 0, 0, 0, 0
	a.result = nil
	a.localResult = false
	a.countdown = StartCountdown(a.remaining, a.tick,
		func(left int) { a.onTick(gen, left) },
		func() { a.onTimeUp(gen) })
	a.mu.Unlock()

	slog.Info("Game started", "game_id", gameID, "session_id", sessionID, "offline", offline)
	a.emit()
	return nil
}

// Handle feeds one input to the running game.
func (a *Arcade) Handle(in Input) (Outcome, error) {
	a.mu.Lock()
	if a.state != StatePlaying {
		a.mu.Unlock()
		return Outcome{}, ErrNotPlaying
	}
	out, err := a.game.HandleInput(in)
	if err != nil {
		a.mu.Unlock()
		return out, err
	}
	jobs := a.applyLocked(out)
	a.mu.Unlock()

	a.run(jobs)
	a.emit()
	return out, nil
}

// Quit abandons the current game or result screen and returns to idle.
func (a *Arcade) Quit() {
	a.mu.Lock()
	a.stopTimersLocked()
	a.gen++
	a.state = StateIdle
	a.game = nil
	a.mu.Unlock()
	a.emit()
}

// Status returns a snapshot of the arcade.
func (a *Arcade) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	st := Status{
		State:       a.state,
		GameID:      a.info.ID,
		SessionID:   a.sessionID,
		Offline:     a.offline,
		SessionLost: a.lost,
		Remaining:   a.remaining,
		LocalScore:  a.localScore,
		ServerScore: a.serverScore,
		Attempts:    a.attempts,
		Correct:     a.correct,
		LocalResult: a.localResult,
	}
	if a.result != nil {
		r := *a.result
		st.Result = &r
	}
	if a.game != nil {
		v := a.game.Render()
		st.View = &v
	}
	return st
}

func (a *Arcade) emit() {
	if a.onChange != nil {
		a.onChange(a.Status())
	}
}

func (a *Arcade) run(jobs []func()) {
	for _, job := range jobs {
		a.dispatch(job)
	}
}

// applyLocked books an outcome: local score, forwarding, delayed settle and
// the end of the game. It returns backend jobs to run after unlocking.
func (a *Arcade) applyLocked(out Outcome) []func() {
	var jobs []func()
	if out.Graded {
		a.attempts++
		if out.Correct {
			a.correct++
		}
	}
	if sub := out.Submission; sub != nil {
		a.localScore += scoring.Award(out.Correct, a.info.Rewards.Correct, sub.TimeSpent, a.info.Duration)
		if !a.offline {
			jobs = append(jobs, a.forwardJob(a.gen, a.sessionID, *sub))
		}
	}
	if out.Delay > 0 {
		gen := a.gen
		a.cancelSettle = a.after(out.Delay, func() { a.settle(gen) })
	}
	if out.Terminal {
		jobs = append(jobs, a.finishLocked()...)
	}
	return jobs
}

func (a *Arcade) settle(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || a.state != StatePlaying {
		a.mu.Unlock()
		return
	}
	a.cancelSettle = nil
	out, err := a.game.HandleInput(Settle{})
	if err != nil {
		a.mu.Unlock()
		return
	}
	jobs := a.applyLocked(out)
	a.mu.Unlock()

	a.run(jobs)
	a.emit()
}

func (a *Arcade) forwardJob(gen uint64, sessionID string, sub Submission) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		res, err := a.backend.Submit(ctx, sessionID, sub.ItemID, sub.Value, sub.TimeSpent)
		a.onSubmitted(gen, res, err)
	}
}

func (a *Arcade) onSubmitted(gen uint64, res gameplay.AnswerResult, err error) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	switch {
	case err == nil:
		a.serverScore = max(a.serverScore, res.RunningScore)
	case errors.Is(err, gameplay.ErrSessionNotFound):
		if a.state == StatePlaying {
			slog.Warn("Session lost, returning to home", "session_id", a.sessionID)
			a.stopTimersLocked()
			a.gen++
			a.state = StateIdle
			a.game = nil
			a.lost = true
		}
	default:
		slog.Warn("Failed to forward answer", "session_id", a.sessionID, "error", err)
	}
	a.mu.Unlock()
	a.emit()
}

// finishLocked moves to the result screen with a locally computed result
// and returns the job that asks the backend for the authoritative one.
func (a *Arcade) finishLocked() []func() {
	a.stopTimersLocked()
	a.state = StateResults
	local := a.localResultLocked()
	a.result = &local
	a.localResult = true
	if a.offline {
		return nil
	}

	gen, sessionID := a.gen, a.sessionID
	return []func(){func() {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		defer cancel()
		res, err := a.backend.End(ctx, sessionID)
		a.onEnded(gen, res, err)
	}}
}

func (a *Arcade) onEnded(gen uint64, res domain.Result, err error) {
	a.mu.Lock()
	if gen != a.gen || a.state != StateResults {
		a.mu.Unlock()
		return
	}
	switch {
	case err == nil:
		a.result = &res
		a.localResult = false
	case errors.Is(err, gameplay.ErrSessionNotFound):
		slog.Warn("Session lost before end, showing local result", "session_id", a.sessionID)
		a.lost = true
	default:
		slog.Warn("Failed to end session, showing local result", "session_id", a.sessionID, "error", err)
	}
	a.mu.Unlock()
	a.emit()
}

func (a *Arcade) localResultLocked() domain.Result {
	bonus := scoring.CompletionBonus(a.correct, a.attempts, a.info.Rewards.Completion)
	accuracy := scoring.Accuracy(a.correct, a.attempts)
	return domain.Result{
		FinalScore:      a.localScore + bonus,
		AccuracyPercent: accuracy,
		CorrectCount:    a.correct,
		TotalAnswered:   a.attempts,
		CompletionBonus: bonus,
		DurationSeconds: int(a.now().Sub(a.startedAt) / time.Second),
		Badge:           scoring.BadgeFor(accuracy),
	}
}

func (a *Arcade) onTick(gen uint64, left int) {
	a.mu.Lock()
	if gen != a.gen || a.state != StatePlaying {
		a.mu.Unlock()
		return
	}
	a.remaining = left
	a.mu.Unlock()
	a.emit()
}

func (a *Arcade) onTimeUp(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || a.state != StatePlaying {
		a.mu.Unlock()
		return
	}
	jobs := a.finishLocked()
	a.mu.Unlock()

	a.run(jobs)
	a.emit()
}

func (a *Arcade) stopTimersLocked() {
	if a.countdown != nil {
		a.countdown.Stop()
		a.countdown = nil
	}
	if a.cancelSettle != nil {
		a.cancelSettle()
		a.cancelSettle = nil
	}
}
