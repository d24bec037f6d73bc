// Package machine implements a finite state machine over named, swappable
// logic nodes whose transitions are computed at runtime by name.
//
// Nodes receive per-frame ticks, input events and store notifications. Any
// request a node makes (a store mutation or a transition) goes through the
// Control handle passed to its handlers, never through references the node
// holds itself.
package machine

import (
	"log/slog"
	"sort"

	"github.com/roach88/battle/internal/store"
)

// TransitionReducer computes the next node name from the current node name,
// the current store State, a transition action and the registered names.
// It must be pure.
type TransitionReducer[S, T any] func(current string, state S, action T, available []string) string

// Host gives the machine access to the store that owns battle State.
// The director implements it.
type Host[S, A any] interface {
	StoreState() S
	ChangeStoreState(reducer store.Reducer[S, A], action A) S
}

// Control is the handle a node uses to make requests during its handlers.
type Control[S, A, T any] interface {
	// StoreState returns the current store State.
	StoreState() S

	// ChangeStoreState applies reducer through the owning director.
	ChangeStoreState(reducer store.Reducer[S, A], action A) S

	// TransitionTo switches to the node registered under name.
	TransitionTo(name string) error

	// TransitionVia computes the target name with reducer and switches to it.
	TransitionVia(reducer TransitionReducer[S, T], action T) error

	// Current returns the name of the current node.
	Current() (string, error)

	// Nodes returns every registered name, sorted.
	Nodes() []string
}

// Node is one behaviour mode of the machine.
//
// Implementations must be comparable (pointer receivers are the norm): the
// machine identifies its current node by comparing it with the registry.
type Node[S, A, T, I any] interface {
	// OnStateChanged is called for every store change while the node is
	// current. It returns true if it changed the store again before returning.
	OnStateChanged(c Control[S, A, T], state S) bool

	HandleInput(c Control[S, A, T], event I) error

	HandleFrame(c Control[S, A, T], dt float64) error
}

// Option configures a Machine.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for transition output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Machine is the FSM runtime for one battle.
//
// Type parameters: S is the store State, A the store Action, T the transition
// action and I the input event.
//
// INVARIANTS:
//   - registry entries are never replaced or removed
//   - current, once set, is always a value in registry
//   - current changes only in TransitionTo (and when the initial node registers)
type Machine[S, A, T, I any] struct {
	registry map[string]Node[S, A, T, I]
	current  Node[S, A, T, I]
	initial  string
	host     Host[S, A]
	logger   *slog.Logger
}

// New creates a Machine that starts in the node registered under initial.
// The machine is not Ready until that name is registered.
func New[S, A, T, I any](initial string, opts ...Option) *Machine[S, A, T, I] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Machine[S, A, T, I]{
		registry: make(map[string]Node[S, A, T, I]),
		initial:  initial,
		logger:   o.logger,
	}
}

// Register adds node under name. It fails with a DUPLICATE_NODE_NAME error if
// name is already registered; the registry keeps the first node.
func (m *Machine[S, A, T, I]) Register(name string, node Node[S, A, T, I]) error {
	if _, exists := m.registry[name]; exists {
		return newDuplicateNodeName(name)
	}
	m.registry[name] = node
	if m.current == nil && name == m.initial {
		m.current = node
	}
	m.logger.Debug("node registered", "node", name)
	return nil
}

// MustRegister is Register for static setup code; it panics on error.
func (m *Machine[S, A, T, I]) MustRegister(name string, node Node[S, A, T, I]) {
	if err := m.Register(name, node); err != nil {
		panic(err)
	}
}

// Ready returns nil once the initial node is registered.
func (m *Machine[S, A, T, I]) Ready() error {
	if m.current == nil {
		return newUnknownNodeName(m.initial)
	}
	return nil
}

// Attach binds the machine to the host that owns the store. Called by the
// director during construction.
func (m *Machine[S, A, T, I]) Attach(host Host[S, A]) {
	m.host = host
}

// Nodes returns every registered name, sorted.
func (m *Machine[S, A, T, I]) Nodes() []string {
	names := make([]string, 0, len(m.registry))
	for name := range m.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Current returns the registered name of the current node. The name is
// derived from the registry, not stored. When one node instance is
// registered under several names the lowest name wins.
func (m *Machine[S, A, T, I]) Current() (string, error) {
	if m.current == nil {
		return "", newUnknownNodeName(m.initial)
	}
	for _, name := range m.Nodes() {
		if m.registry[name] == m.current {
			return name, nil
		}
	}
	return "", newInternalConsistency()
}

// OnStateChanged forwards a store notification to the current node and
// passes its result through unchanged. It implements store.Subscriber.
func (m *Machine[S, A, T, I]) OnStateChanged(state S) bool {
	if m.current == nil {
		m.logger.Warn("store notification before initial node registered", "initial", m.initial)
		return false
	}
	return m.current.OnStateChanged(m, state)
}

// HandleInput forwards event to the current node.
func (m *Machine[S, A, T, I]) HandleInput(event I) error {
	if err := m.Ready(); err != nil {
		return err
	}
	return m.current.HandleInput(m, event)
}

// HandleFrame forwards dt (seconds) to the current node.
func (m *Machine[S, A, T, I]) HandleFrame(dt float64) error {
	if err := m.Ready(); err != nil {
		return err
	}
	return m.current.HandleFrame(m, dt)
}

// TransitionTo switches the current node to the one registered under name.
// On error the current node is unchanged. No enter/exit hooks run.
func (m *Machine[S, A, T, I]) TransitionTo(name string) error {
	next, ok := m.registry[name]
	if !ok {
		m.logger.Debug("transition rejected", "to", name)
		return newUnknownNodeName(name)
	}
	from, _ := m.Current()
	m.current = next
	m.logger.Debug("machine transition", "from", from, "to", name)
	return nil
}

// TransitionVia asks reducer for the next node name given the current name
// and store State, then switches to it.
func (m *Machine[S, A, T, I]) TransitionVia(reducer TransitionReducer[S, T], action T) error {
	current, err := m.Current()
	if err != nil {
		return err
	}
	name := reducer(current, m.StoreState(), action, m.Nodes())
	return m.TransitionTo(name)
}

// StoreState returns the host's current State. It panics if the machine is
// not attached to a director.
func (m *Machine[S, A, T, I]) StoreState() S {
	return m.mustHost().StoreState()
}

// ChangeStoreState routes a store mutation through the host. It panics if the
// machine is not attached to a director.
func (m *Machine[S, A, T, I]) ChangeStoreState(reducer store.Reducer[S, A], action A) S {
	return m.mustHost().ChangeStoreState(reducer, action)
}

func (m *Machine[S, A, T, I]) mustHost() Host[S, A] {
	if m.host == nil {
		panic("machine: not attached to a director")
	}
	return m.host
}
