// Package store implements the immutable, reducer-driven state container that
// backs one battle.
//
// A Store owns exactly one current State, the append-only history of every
// State it replaced, and an ordered set of subscribers. The only way to
// produce a new State is ChangeState, which applies a pure Reducer to the
// current State and then notifies subscribers synchronously before
// returning.
//
// # Notification Ordering
//
// Subscribers are visited in subscription order. ChangeState may be
// re-entered from inside a subscriber callback; this is expected and never an
// error. Under the default FirstMutatorWins policy a subscriber that reports
// a nested mutation (returns true) ends the outer notification pass: the
// remaining subscribers only hear about the newer State, through the nested
// call's own pass.
//
// # Copy-On-Write
//
// Reducers must return a new snapshot and must not modify anything reachable
// from the State they are given. Store cannot detect a violation; it simply
// records whatever value the Reducer returns.
//
// # Threading
//
// Store is not safe for concurrent use. All calls happen on the single
// goroutine that drives the battle.
package store
