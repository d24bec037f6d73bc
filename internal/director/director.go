// Package director composes one store and one state machine into a battle
// and drives it one frame at a time.
//
// The director is the only entry point external code uses. It subscribes the
// machine to the store, binds the machine to itself so nodes can reach the
// store, and fixes per-tick ordering: logic runs to completion (including
// nested store changes and transitions) strictly before the renderer sees
// the resulting State.
package director

import (
	"fmt"
	"log/slog"

	"github.com/roach88/battle/internal/machine"
	"github.com/roach88/battle/internal/store"
)

// Renderer draws a State. It is called once per frame after logic settles
// and must not modify the State it is given.
type Renderer[S any] interface {
	Render(state S, dt float64)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc[S any] func(state S, dt float64)

// Render calls f(state, dt).
func (f RendererFunc[S]) Render(state S, dt float64) {
	f(state, dt)
}

// ErrorHandler receives errors the director reports from frame and input
// handling.
type ErrorHandler func(err error)

// Option configures a Director.
type Option func(*options)

type options struct {
	onError ErrorHandler
	logger  *slog.Logger
}

// WithErrorHandler sets the collaborator errors are reported to.
// Default: log with slog.Error.
func WithErrorHandler(h ErrorHandler) Option {
	return func(o *options) {
		o.onError = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Director owns the store and machine for one battle.
type Director[S, A, T, I any] struct {
	store    *store.Store[S, A]
	machine  *machine.Machine[S, A, T, I]
	renderer Renderer[S]
	opts     options
	frames   int64
}

// New builds a Director. The machine's initial node must already be
// registered; otherwise New returns the machine's UNKNOWN_NODE_NAME error.
func New[S, A, T, I any](
	st *store.Store[S, A],
	m *machine.Machine[S, A, T, I],
	renderer Renderer[S],
	opts ...Option,
) (*Director[S, A, T, I], error) {
	if st == nil || m == nil || renderer == nil {
		return nil, fmt.Errorf("director: store, machine and renderer are required")
	}
	if err := m.Ready(); err != nil {
		return nil, fmt.Errorf("director: machine not ready: %w", err)
	}

	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.onError == nil {
		logger := o.logger
		o.onError = func(err error) {
			logger.Error("battle logic failed", "error", err)
		}
	}

	d := &Director[S, A, T, I]{
		store:    st,
		machine:  m,
		renderer: renderer,
		opts:     o,
	}
	m.Attach(d)
	st.Subscribe(m)

	current, _ := m.Current()
	o.logger.Info("director ready", "node", current, "nodes", len(m.Nodes()))
	return d, nil
}

// OnFrame advances logic by dt seconds and then renders the resulting State.
//
// If the current node's frame handler fails, the error is reported, the
// frame is not rendered and the error is returned.
func (d *Director[S, A, T, I]) OnFrame(dt float64) error {
	d.frames++
	if err := d.machine.HandleFrame(dt); err != nil {
		err = fmt.Errorf("frame %d: %w", d.frames, err)
		d.opts.onError(err)
		return err
	}
	d.renderer.Render(d.store.CurrentState(), dt)
	return nil
}

// HandleInput forwards an input event to the current node.
func (d *Director[S, A, T, I]) HandleInput(event I) error {
	if err := d.machine.HandleInput(event); err != nil {
		err = fmt.Errorf("input: %w", err)
		d.opts.onError(err)
		return err
	}
	return nil
}

// ChangeStoreState applies reducer to the store's current State.
func (d *Director[S, A, T, I]) ChangeStoreState(reducer store.Reducer[S, A], action A) S {
	return d.store.ChangeState(reducer, action)
}

// StoreState returns the store's current State.
func (d *Director[S, A, T, I]) StoreState() S {
	return d.store.CurrentState()
}

// StoreHistory returns the replaced States, oldest first.
func (d *Director[S, A, T, I]) StoreHistory() []S {
	return d.store.History()
}

// StoreChanges counts every store change, including those whose previous
// State has been evicted from history.
func (d *Director[S, A, T, I]) StoreChanges() int64 {
	return d.store.Changes()
}

// AddStoreSubscriber subscribes sub to store changes.
func (d *Director[S, A, T, I]) AddStoreSubscriber(sub store.Subscriber[S]) {
	d.store.Subscribe(sub)
}

// RemoveStoreSubscriber unsubscribes sub and reports whether it was present.
func (d *Director[S, A, T, I]) RemoveStoreSubscriber(sub store.Subscriber[S]) bool {
	return d.store.Unsubscribe(sub)
}

// CurrentNode returns the name of the machine's current node.
func (d *Director[S, A, T, I]) CurrentNode() (string, error) {
	return d.machine.Current()
}

// Frames returns how many frames have been driven.
func (d *Director[S, A, T, I]) Frames() int64 {
	return d.frames
}
