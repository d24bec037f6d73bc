package loop

import "time"

// FrameClock reports the time in seconds since the previous call.
type FrameClock interface {
	Delta() float64
}

// WallClock is a FrameClock backed by the system clock.
// The first Delta call returns the time since the clock was created.
type WallClock struct {
	now  func() time.Time
	last time.Time
}

// NewWallClock creates a WallClock starting now.
func NewWallClock() *WallClock {
	return newWallClockWith(time.Now)
}

func newWallClockWith(now func() time.Time) *WallClock {
	return &WallClock{now: now, last: now()}
}

// Delta returns the elapsed seconds since the previous call. It never
// returns a negative value.
func (c *WallClock) Delta() float64 {
	t := c.now()
	dt := t.Sub(c.last).Seconds()
	c.last = t
	if dt < 0 {
		return 0
	}
	return dt
}
