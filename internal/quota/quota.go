// Package quota admits or rejects entities by storage footprint.
//
// Every stored entity declares a base budget, a hard maximum, and the byte
// length of its variable fields. The Enforcer turns that into a size and a
// cost, then checks both against the maximum and against the balance an
// external oracle reports.
package quota

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// Sized is the storage footprint of one entity.
type Sized interface {
	BaseStorage() uint64
	MaxStorage() uint64
	DynamicSize() uint64
}

// BalanceOracle reports what the caller can spend on storage.
type BalanceOracle interface {
	// Available is the spendable balance.
	Available(ctx context.Context) uint64
	// CostPerByte prices one stored byte.
	CostPerByte(ctx context.Context) uint64
}

// StaticOracle reports fixed values, typically from configuration.
type StaticOracle struct {
	Balance uint64
	PerByte uint64
}

func (o StaticOracle) Available(context.Context) uint64   { return o.Balance }
func (o StaticOracle) CostPerByte(context.Context) uint64 { return o.PerByte }

// Unlimited never rejects on balance.
func Unlimited() StaticOracle {
	return StaticOracle{Balance: math.MaxUint64, PerByte: 1}
}

// Metrics describes an entity's footprint and its price.
type Metrics struct {
	BaseSize    uint64 `json:"base_size"`
	DynamicSize uint64 `json:"dynamic_size"`
	TotalBytes  uint64 `json:"total_bytes"`
	CostPerByte uint64 `json:"cost_per_byte"`
	TotalCost   uint64 `json:"total_cost"`
}

// Code identifies why storage was refused.
type Code string

const (
	CodeExceedsMaxSize      Code = "ExceedsMaxSize"
	CodeInsufficientBalance Code = "InsufficientBalance"
)

// StorageError is returned when an entity is refused. Size and Max are set
// for ExceedsMaxSize; Required and Available for InsufficientBalance.
type StorageError struct {
	Code      Code
	Size      uint64
	Max       uint64
	Required  uint64
	Available uint64
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	if e.Code == CodeExceedsMaxSize {
		return fmt.Sprintf("storage %s: %d bytes > %d max", e.Code, e.Size, e.Max)
	}
	return fmt.Sprintf("storage %s: requires %d, available %d", e.Code, e.Required, e.Available)
}

// IsExceedsMaxSize reports whether err is a StorageError for an oversized
// entity. Uses errors.As to handle wrapped errors.
func IsExceedsMaxSize(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == CodeExceedsMaxSize
}

// IsInsufficientBalance reports whether err is a StorageError for a balance
// shortfall.
func IsInsufficientBalance(err error) bool {
	var se *StorageError
	return errors.As(err, &se) && se.Code == CodeInsufficientBalance
}

// Enforcer checks entities against an oracle.
type Enforcer struct {
	oracle BalanceOracle
}

// NewEnforcer creates an enforcer. A nil oracle means Unlimited.
func NewEnforcer(oracle BalanceOracle) *Enforcer {
	if oracle == nil {
		oracle = Unlimited()
	}
	return &Enforcer{oracle: oracle}
}

// Measure computes the footprint of s at the current price. The total cost
// saturates at math.MaxUint64.
func (q *Enforcer) Measure(ctx context.Context, s Sized) Metrics {
	base, dyn := s.BaseStorage(), s.DynamicSize()
	total := base + dyn
	if total < base {
		total = math.MaxUint64
	}
	perByte := q.oracle.CostPerByte(ctx)
	return Metrics{
		BaseSize:    base,
		DynamicSize: dyn,
		TotalBytes:  total,
		CostPerByte: perByte,
		TotalCost:   saturatingMul(total, perByte),
	}
}

// Check rejects s if it is larger than its maximum or costs more than the
// available balance. The size check runs first.
func (q *Enforcer) Check(ctx context.Context, s Sized) error {
	m := q.Measure(ctx, s)
	if m.TotalBytes > s.MaxStorage() {
		return &StorageError{Code: CodeExceedsMaxSize, Size: m.TotalBytes, Max: s.MaxStorage()}
	}
	if avail := q.oracle.Available(ctx); avail < m.TotalCost {
		return &StorageError{Code: CodeInsufficientBalance, Required: m.TotalCost, Available: avail}
	}
	return nil
}

func saturatingMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
