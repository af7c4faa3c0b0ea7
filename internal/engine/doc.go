// Package engine implements the stride operations over a store.
//
// The engine owns every state-changing operation on Tasks, Habits, Rewards
// and TimeSlots, the reward-point ledger, and the queries over them.
//
// ARCHITECTURE:
//
// Serialized Operations:
// Every public method takes the engine lock, reads the caller from the
// IdentityProvider and the time from the Clock once, and runs to completion
// before the next operation starts. All checks within one call see the same
// instant.
//
// Validate Then Write:
// A mutation validates every entity it touches, including the storage quota
// and ledger arithmetic, before its first write. The writes themselves run
// in store.Store.Atomic, so a failure commits nothing.
//
// Ownership:
// Entities are created owned by the caller. Only the owner may update,
// complete, split, redeem or delete them. Listing queries are open to any
// caller.
//
// Errors:
// Expected failures are returned as *Error with a Kind of VALIDATION,
// STORAGE, ACCESS, STATE, NOT_FOUND or OPERATION. Use the Is* predicates or
// KindOf to branch on them.
package engine
