// Package loop is the host driver that advances a battle in discrete frames.
//
// The loop owns the only goroutine that touches battle state. Each tick it
// drains queued input events into the target, in arrival order, and then
// calls OnFrame with the frame clock's delta. Producers on other goroutines
// hand inputs over with Enqueue.
package loop

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Target is what the loop drives. *director.Director satisfies it.
type Target[I any] interface {
	OnFrame(dt float64) error
	HandleInput(event I) error
}

// Option configures a Loop.
type Option func(*config)

type config struct {
	interval    time.Duration
	clock       FrameClock
	maxFrames   int64
	stopWhen    func() bool
	haltOnError bool
	logger      *slog.Logger
}

// WithFrameRate sets the tick rate. Zero or negative runs frames back to
// back without waiting.
func WithFrameRate(fps int) Option {
	return func(c *config) {
		if fps <= 0 {
			c.interval = 0
			return
		}
		c.interval = time.Second / time.Duration(fps)
	}
}

// WithClock sets the frame clock. Default: a WallClock.
func WithClock(clock FrameClock) Option {
	return func(c *config) {
		c.clock = clock
	}
}

// WithMaxFrames stops Run after n frames. Zero means no limit.
func WithMaxFrames(n int64) Option {
	return func(c *config) {
		c.maxFrames = n
	}
}

// WithStopWhen stops Run before the next tick once done returns true.
func WithStopWhen(done func() bool) Option {
	return func(c *config) {
		c.stopWhen = done
	}
}

// WithHaltOnError makes Run return the first input or frame error.
// By default errors are left to the target's own reporting and the loop
// keeps going.
func WithHaltOnError() Option {
	return func(c *config) {
		c.haltOnError = true
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// Loop drives a Target frame by frame.
//
// Thread-safety model:
//   - Enqueue(), Stop(): safe from any goroutine
//   - Run(), Step(): must be called from exactly one goroutine
type Loop[I any] struct {
	target Target[I]
	queue  *inputQueue[I]
	cfg    config
	frames int64

	stopOnce sync.Once
	stop     chan struct{}
}

// New creates a Loop driving target.
func New[I any](target Target[I], opts ...Option) *Loop[I] {
	cfg := config{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.clock == nil {
		cfg.clock = NewWallClock()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	return &Loop[I]{
		target: target,
		queue:  newInputQueue[I](),
		cfg:    cfg,
		stop:   make(chan struct{}),
	}
}

// Enqueue submits an input event for the next tick.
// Returns false once the loop has stopped.
func (l *Loop[I]) Enqueue(event I) bool {
	return l.queue.Enqueue(event)
}

// Pending returns the number of queued input events.
func (l *Loop[I]) Pending() int {
	return l.queue.Len()
}

// Frames returns how many frames have run.
func (l *Loop[I]) Frames() int64 {
	return l.frames
}

// Stop makes Run return before its next tick.
func (l *Loop[I]) Stop() {
	l.stopOnce.Do(func() {
		l.queue.Close()
		close(l.stop)
	})
}

// Step runs exactly one tick: queued inputs first, then one frame.
func (l *Loop[I]) Step() error {
	for {
		event, ok := l.queue.TryDequeue()
		if !ok {
			break
		}
		if err := l.target.HandleInput(event); err != nil && l.cfg.haltOnError {
			return err
		}
	}

	l.frames++
	dt := l.cfg.clock.Delta()
	if err := l.target.OnFrame(dt); err != nil && l.cfg.haltOnError {
		return err
	}
	return nil
}

// Run ticks until the context is cancelled, Stop is called, the frame limit
// is reached or the stop condition holds. Cancellation returns ctx.Err();
// every other exit returns nil unless WithHaltOnError is set and a tick
// fails.
func (l *Loop[I]) Run(ctx context.Context) error {
	l.cfg.logger.Info("loop starting",
		"interval", l.cfg.interval,
		"max_frames", l.cfg.maxFrames,
	)

	var tick <-chan time.Time
	if l.cfg.interval > 0 {
		ticker := time.NewTicker(l.cfg.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if reason, done := l.finished(); done {
			l.cfg.logger.Info("loop stopping", "reason", reason, "frames", l.frames)
			return nil
		}

		if tick != nil {
			select {
			case <-ctx.Done():
				l.Stop()
				l.cfg.logger.Info("loop stopping: context cancelled", "frames", l.frames)
				return ctx.Err()
			case <-l.stop:
				l.cfg.logger.Info("loop stopping", "reason", "stopped", "frames", l.frames)
				return nil
			case <-tick:
			}
		} else {
			select {
			case <-ctx.Done():
				l.Stop()
				l.cfg.logger.Info("loop stopping: context cancelled", "frames", l.frames)
				return ctx.Err()
			case <-l.stop:
				l.cfg.logger.Info("loop stopping", "reason", "stopped", "frames", l.frames)
				return nil
			default:
			}
		}

		if err := l.Step(); err != nil {
			l.cfg.logger.Error("loop halted", "error", err, "frames", l.frames)
			return err
		}
	}
}

func (l *Loop[I]) finished() (string, bool) {
	if l.cfg.maxFrames > 0 && l.frames >= l.cfg.maxFrames {
		return "max_frames", true
	}
	if l.cfg.stopWhen != nil && l.cfg.stopWhen() {
		return "stop_condition", true
	}
	return "", false
}
