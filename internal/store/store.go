package store

import (
	"log/slog"
	"reflect"
)

// Reducer computes the next State from an Action and the previous State.
// It must be pure and must not modify prev.
type Reducer[S, A any] func(action A, prev S) S

// Subscriber is notified synchronously on every state change.
//
// OnStateChanged returns true when the subscriber itself triggered a further
// ChangeState before returning. Implementations must be comparable (pointer
// receivers are the norm) so they can be unsubscribed; Subscribe ignores
// values that are not.
type Subscriber[S any] interface {
	OnStateChanged(state S) bool
}

// FuncSubscriber adapts a function to Subscriber. Use it through a pointer
// so it has an identity.
type FuncSubscriber[S any] struct {
	fn func(state S) bool
}

// SubscriberFunc wraps fn as a Subscriber.
func SubscriberFunc[S any](fn func(state S) bool) *FuncSubscriber[S] {
	return &FuncSubscriber[S]{fn: fn}
}

// OnStateChanged calls the wrapped function.
func (f *FuncSubscriber[S]) OnStateChanged(state S) bool {
	return f.fn(state)
}

// NotifyPolicy selects how a notification pass reacts to a subscriber that
// reports a nested mutation.
type NotifyPolicy int

const (
	// FirstMutatorWins stops the pass at the first subscriber that returns
	// true. Subscribers later in order are notified by the nested pass only.
	FirstMutatorWins NotifyPolicy = iota

	// NotifyAll visits every subscriber regardless of the returned flag.
	NotifyAll
)

// String returns the policy name used in logs.
func (p NotifyPolicy) String() string {
	switch p {
	case FirstMutatorWins:
		return "first_mutator_wins"
	case NotifyAll:
		return "notify_all"
	default:
		return "unknown"
	}
}

// Option configures a Store.
type Option func(*options)

type options struct {
	historyLimit int
	policy       NotifyPolicy
	logger       *slog.Logger
}

// WithHistoryLimit caps the number of retained history entries. Once the cap
// is exceeded the oldest entries are dropped. Zero or negative means
// unbounded, which is the default.
func WithHistoryLimit(n int) Option {
	return func(o *options) {
		o.historyLimit = n
	}
}

// WithNotifyPolicy sets the notification policy. Default: FirstMutatorWins.
func WithNotifyPolicy(p NotifyPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Store is the state container for one battle.
//
// INVARIANTS:
//   - current is replaced only inside ChangeState
//   - history is append-only (except eviction under WithHistoryLimit)
//   - subscribers keep subscription order
type Store[S, A any] struct {
	current     S
	history     []S
	subscribers []Subscriber[S]
	opts        options
	changes     int64

	// depth tracks ChangeState re-entry for logging only.
	depth int
}

// New creates a Store holding initial as its current State.
func New[S, A any](initial S, opts ...Option) *Store[S, A] {
	o := options{
		policy: FirstMutatorWins,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Store[S, A]{
		current: initial,
		opts:    o,
	}
}

// CurrentState returns the latest snapshot.
func (s *Store[S, A]) CurrentState() S {
	return s.current
}

// ChangeState applies reducer to the current State, records the previous
// State in history, installs the result as current, notifies subscribers and
// returns the new State.
//
// ChangeState may be called again from inside a subscriber callback.
func (s *Store[S, A]) ChangeState(reducer Reducer[S, A], action A) S {
	next := reducer(action, s.current)

	s.history = append(s.history, s.current)
	if limit := s.opts.historyLimit; limit > 0 && len(s.history) > limit {
		// Copy so the evicted prefix can be collected.
		trimmed := make([]S, limit)
		copy(trimmed, s.history[len(s.history)-limit:])
		s.history = trimmed
	}
	s.current = next
	s.changes++

	s.depth++
	s.notify(next)
	s.depth--

	return next
}

// notify runs one notification pass for state.
func (s *Store[S, A]) notify(state S) {
	// Snapshot so subscribe/unsubscribe from a callback does not disturb this pass.
	subs := append([]Subscriber[S](nil), s.subscribers...)

	s.opts.logger.Debug("notifying subscribers",
		"subscribers", len(subs),
		"depth", s.depth,
		"history_len", len(s.history),
	)

	for i, sub := range subs {
		mutated := sub.OnStateChanged(state)
		if mutated && s.opts.policy == FirstMutatorWins {
			s.opts.logger.Debug("notification pass short-circuited",
				"subscriber_index", i,
				"skipped", len(subs)-i-1,
				"depth", s.depth,
			)
			return
		}
	}
}

// Subscribe adds sub to the end of the notification order. Subscribing a
// subscriber that is already present is a no-op, and so is subscribing nil
// or a value that cannot be compared.
func (s *Store[S, A]) Subscribe(sub Subscriber[S]) {
	if !isComparable(sub) {
		s.opts.logger.Warn("subscriber ignored: not comparable", "type", reflect.TypeOf(sub))
		return
	}
	if s.indexOf(sub) >= 0 {
		return
	}
	s.subscribers = append(s.subscribers, sub)
}

// Unsubscribe removes sub and reports whether it had been subscribed.
func (s *Store[S, A]) Unsubscribe(sub Subscriber[S]) bool {
	if !isComparable(sub) {
		return false
	}
	i := s.indexOf(sub)
	if i < 0 {
		return false
	}
	s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
	return true
}

func (s *Store[S, A]) indexOf(sub Subscriber[S]) int {
	for i, existing := range s.subscribers {
		if existing == sub {
			return i
		}
	}
	return -1
}

// isComparable reports whether sub can be used as a registry key.
func isComparable[S any](sub Subscriber[S]) bool {
	return sub != nil && reflect.ValueOf(sub).Comparable()
}

// History returns the replaced States, oldest first. The current State is
// not included. The returned slice is a copy.
func (s *Store[S, A]) History() []S {
	out := make([]S, len(s.history))
	copy(out, s.history)
	return out
}

// Changes counts every ChangeState call since New, whether or not the
// replaced State is still kept in History.
func (s *Store[S, A]) Changes() int64 {
	return s.changes
}

// Policy returns the configured notification policy.
func (s *Store[S, A]) Policy() NotifyPolicy {
	return s.opts.policy
}
