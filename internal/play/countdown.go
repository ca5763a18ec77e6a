package play

import (
	"sync"
	"time"
)

// Countdown is the repeating game timer. It ticks once per interval until
// the remaining ticks run out or Stop is called. No callback runs after Stop
// returns, except one that had already started.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	stopped   bool
	stop      chan struct{}
}

// StartCountdown starts a countdown of ticks ticks. onTick receives the
// remaining tick count after each tick; onDone runs once when it reaches
// zero.
func StartCountdown(ticks int, interval time.Duration, onTick func(remaining int), onDone func()) *Countdown {
	c := &Countdown{remaining: ticks, stop: make(chan struct{})}
	go c.run(interval, onTick, onDone)
	return c
}

func (c *Countdown) run(interval time.Duration, onTick func(int), onDone func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
		}

		c.mu.Lock()
		if c.stopped {
			c.mu.Unlock()
			return
		}
		c.remaining--
		left := c.remaining
		if left <= 0 {
			c.stopped = true
		}
		c.mu.Unlock()

		if onTick != nil {
			onTick(left)
		}
		if left <= 0 {
			if onDone != nil {
				onDone()
			}
			return
		}
	}
}

// Remaining returns the ticks left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Stop cancels the countdown. It is safe to call more than once.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
}
