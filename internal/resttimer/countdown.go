package resttimer

import (
	"sync"
	"time"
)

type countdownState int

const (
	stateIdle countdownState = iota
	stateRunning
	statePaused
)

// Countdown is a cancellable rest countdown owned by one live session.
// It is paused and resumed together with the session; Skip and Extend take
// effect immediately. Methods are safe for concurrent use.
type Countdown struct {
	mu        sync.Mutex
	now       func() time.Time
	state     countdownState
	remaining time.Duration
	endsAt    time.Time
	timer     *time.Timer
	gen       uint64
	done      chan struct{}
	onDone    func()
}

// NewCountdown creates an idle countdown. onDone, if non-nil, runs in its own
// goroutine each time a countdown expires or is skipped.
func NewCountdown(onDone func()) *Countdown {
	return &Countdown{
		now:    time.Now,
		done:   make(chan struct{}),
		onDone: onDone,
	}
}

// Start begins a new countdown of d, replacing any countdown in progress.
func (c *Countdown) Start(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelLocked()
	c.done = make(chan struct{})
	if d <= 0 {
		c.finishLocked()
		return
	}
	c.remaining = d
	c.state = stateRunning
	c.armLocked()
}

// Done returns a channel closed when the current countdown expires or is
// skipped. A cancelled countdown never closes its channel.
func (c *Countdown) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Pause freezes the remaining time. Returns false if nothing is running.
func (c *Countdown) Pause() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != stateRunning {
		return false
	}
	c.remaining = c.remainingLocked()
	c.stopTimerLocked()
	c.state = statePaused
	return true
}

// Resume continues a paused countdown. Returns false if it was not paused.
func (c *Countdown) Resume() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != statePaused {
		return false
	}
	c.state = stateRunning
	c.armLocked()
	return true
}

// Skip ends the countdown now, signalling Done.
func (c *Countdown) Skip() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateIdle {
		return false
	}
	c.finishLocked()
	return true
}

// Extend adds d to the remaining time of a running or paused countdown.
func (c *Countdown) Extend(d time.Duration) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateRunning:
		c.remaining = c.remainingLocked() + d
		c.stopTimerLocked()
		if c.remaining <= 0 {
			c.finishLocked()
			return true
		}
		c.armLocked()
	case statePaused:
		c.remaining += d
		if c.remaining < 0 {
			c.remaining = 0
		}
	default:
		return false
	}
	return true
}

// Cancel stops the countdown without signalling Done.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelLocked()
}

// Remaining returns the time left, or 0 when idle.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateRunning:
		return c.remainingLocked()
	case statePaused:
		return c.remaining
	default:
		return 0
	}
}

// Running reports whether a countdown is ticking.
func (c *Countdown) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateRunning
}

// Paused reports whether a countdown is frozen.
func (c *Countdown) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == statePaused
}

func (c *Countdown) remainingLocked() time.Duration {
	left := c.endsAt.Sub(c.now())
	if left < 0 {
		return 0
	}
	return left
}

func (c *Countdown) armLocked() {
	c.endsAt = c.now().Add(c.remaining)
	gen := c.gen
	c.timer = time.AfterFunc(c.remaining, func() { c.expire(gen) })
}

// stopTimerLocked stops the pending timer and invalidates any callback that
// already fired but has not yet taken the lock.
func (c *Countdown) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.gen++
}

func (c *Countdown) expire(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen || c.state != stateRunning {
		return
	}
	c.finishLocked()
}

func (c *Countdown) finishLocked() {
	c.stopTimerLocked()
	c.state = stateIdle
	c.remaining = 0
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	if c.onDone != nil {
		go c.onDone()
	}
}

func (c *Countdown) cancelLocked() {
	c.stopTimerLocked()
	c.state = stateIdle
	c.remaining = 0
}
