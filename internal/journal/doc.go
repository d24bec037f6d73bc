// Package journal is a SQLite-backed, append-only record of battle state
// snapshots.
//
// A Recorder subscribes to a store and writes every new snapshot as JSON
// together with a domain-separated SHA-256 of that JSON. Snapshots are keyed
// by (battle_id, seq); seq is the logical clock and is the only ordering
// used when reading back. Battle IDs are UUIDv7 so that listing battles by
// ID also lists them by start time.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package journal
