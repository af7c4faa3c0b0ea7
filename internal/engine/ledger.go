package engine

import (
	"context"
	"math"

	"github.com/roach88/stride/internal/store"
)

// Delta is a signed change to a point balance. Positive values credit,
// zero and negative values debit their magnitude.
type Delta int64

// Credit returns a delta adding n points.
func Credit(n uint32) Delta { return Delta(n) }

// Debit returns a delta removing n points.
func Debit(n uint32) Delta { return -Delta(n) }

// magnitude returns |d| without overflowing on math.MinInt64.
func (d Delta) magnitude() uint64 {
	if d >= 0 {
		return uint64(d)
	}
	return uint64(-(d + 1)) + 1
}

// apply returns the balance after d, or an OPERATION error if the result
// would leave [0, math.MaxUint32].
func (d Delta) apply(balance uint32) (uint32, error) {
	m := d.magnitude()
	if d > 0 {
		if m > math.MaxUint32-uint64(balance) {
			return balance, operationError("Points", "Points addition would overflow")
		}
		return balance + uint32(m), nil
	}
	if uint64(balance) < m {
		return balance, operationError("Points", "Insufficient points: has %d, needs %d", balance, m)
	}
	return balance - uint32(m), nil
}

// Ledger applies checked deltas to per-owner balances.
type Ledger struct {
	balances store.Balances
}

// NewLedger wraps a balance table.
func NewLedger(b store.Balances) Ledger {
	return Ledger{balances: b}
}

// Balance returns the owner's points. Unknown owners have zero.
func (l Ledger) Balance(ctx context.Context, owner string) (uint32, error) {
	if owner == "" {
		return 0, validationError("Account", "Account ID cannot be empty")
	}
	return l.balances.Get(ctx, owner)
}

// Add applies d to the owner's balance and returns the new balance. On
// error the balance is unchanged.
func (l Ledger) Add(ctx context.Context, owner string, d Delta) (uint32, error) {
	cur, err := l.Balance(ctx, owner)
	if err != nil {
		return 0, err
	}
	next, err := d.apply(cur)
	if err != nil {
		return cur, err
	}
	if err := l.balances.Set(ctx, owner, next); err != nil {
		return cur, err
	}
	return next, nil
}
