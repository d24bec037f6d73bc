package testutil

import "sync"

// StepClock is a deterministic frame clock: every Delta call reports the
// same fixed step. It satisfies loop.FrameClock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu    sync.Mutex
	step  float64
	ticks int64
}

// NewStepClock creates a clock that advances step seconds per frame.
func NewStepClock(step float64) *StepClock {
	return &StepClock{step: step}
}

// Delta returns the fixed step and counts the tick.
func (c *StepClock) Delta() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	return c.step
}

// Ticks returns how many times Delta has been called.
func (c *StepClock) Ticks() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// Elapsed returns the total simulated seconds.
func (c *StepClock) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.ticks) * c.step
}

// Reset sets the tick count back to zero.
//
// Used for test reuse.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = 0
}
