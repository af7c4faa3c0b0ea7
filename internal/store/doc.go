// Package store keeps stride's entities, point balances and completion
// history.
//
// Each entity type lives in a Collection: an id→entity map and an
// owner→ids index that are only ever mutated together, through Put and
// Delete, so the two cannot drift apart. Entities are stored as JSON bodies
// and decoded into fresh values on every read; callers never share memory
// with the store.
//
// # Backends
//
//   - Memory: maps guarded by a mutex. Atomic runs against a copy and swaps
//     it in only when the callback succeeds.
//   - SQLite: one entities table keyed by (kind, id) with an owner column and
//     index, plus balances and completions tables. Atomic runs inside a
//     transaction.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Listings are ordered by id so that results are deterministic across
// backends.
package store
