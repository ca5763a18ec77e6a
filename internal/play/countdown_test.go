package play

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdownRunsOut(t *testing.T) {
	var mu sync.Mutex
	var ticks []int
	done := make(chan struct{})

	c := StartCountdown(3, time.Millisecond, func(left int) {
		mu.Lock()
		ticks = append(ticks, left)
		mu.Unlock()
	}, func() { close(done) })

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("countdown did not finish")
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.Zero(t, c.Remaining())
	c.Stop()
}

func TestCountdownStop(t *testing.T) {
	fired := make(chan struct{}, 1)
	c := StartCountdown(1, 20*time.Millisecond, nil, func() { fired <- struct{}{} })
	c.Stop()
	c.Stop()

	select {
	case <-fired:
		t.Fatal("stopped countdown finished")
	case <-time.After(60 * time.Millisecond):
	}
	require.Equal(t, 1, c.Remaining())
}
