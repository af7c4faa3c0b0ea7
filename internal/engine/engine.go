package engine

import (
	"context"
	"log/slog"
	"sync"

	"github.com/roach88/stride/internal/model"
	"github.com/roach88/stride/internal/quota"
	"github.com/roach88/stride/internal/store"
)

// Engine orchestrates every stride operation over one store.
//
// Operations are serialized: each one holds the engine lock from the moment
// it resolves the caller and the clock until its writes are committed. All
// validation happens before the first write, and every mutation runs inside
// store.Store.Atomic so a failure part-way through commits nothing.
//
// Thread-safety: all exported methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	store    *store.Store
	quota    *quota.Enforcer
	identity IdentityProvider
	clock    Clock
	ids      IDGenerator
	logger   *slog.Logger
}

// Option allows configuration of engine collaborators.
type Option func(*Engine)

// WithClock sets the time source. Default: SystemClock.
func WithClock(c Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithIdentity sets the caller identity provider. Default: ContextIdentity
// with no fallback.
func WithIdentity(p IdentityProvider) Option {
	return func(e *Engine) { e.identity = p }
}

// WithIDs sets the id generator. Default: UUIDv7IDs.
func WithIDs(g IDGenerator) Option {
	return func(e *Engine) { e.ids = g }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New creates an Engine over s. The oracle prices storage for the quota
// check; nil means unlimited.
func New(s *store.Store, oracle quota.BalanceOracle, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		quota:    quota.NewEnforcer(oracle),
		identity: ContextIdentity{},
		clock:    SystemClock{},
		ids:      UUIDv7IDs{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// op is the state of one operation. It implements model.Env so entities can
// validate against the operation's clock reading and quota.
type op struct {
	ctx    context.Context
	name   string
	caller string
	now    uint64
	tx     *store.Store
	quota  *quota.Enforcer
}

func (o *op) Now() uint64 { return o.now }

func (o *op) CheckStorage(s model.Sized) error {
	return o.quota.Check(o.ctx, s)
}

// parentOf resolves a task's parent id, or "" if unknown.
func (o *op) parentOf(id string) string {
	t, ok, err := o.tx.Tasks().Get(o.ctx, id)
	if err != nil || !ok {
		return ""
	}
	return t.ParentID
}

func (o *op) ledger() Ledger {
	return NewLedger(o.tx.Balances())
}

func (e *Engine) begin(ctx context.Context, name string) (*op, error) {
	caller, err := e.identity.CallerID(ctx)
	if err != nil {
		return nil, err
	}
	return &op{
		ctx:    ctx,
		name:   name,
		caller: caller,
		now:    nanos(e.clock.Now()),
		tx:     e.store,
		quota:  e.quota,
	}, nil
}

// mutate runs fn as one atomic operation. Errors are converted to *Error and
// attributed to entity unless fn already did so.
func (e *Engine) mutate(ctx context.Context, name, entity string, fn func(o *op) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.begin(ctx, name)
	if err != nil {
		return e.reject(name, "", entity, err)
	}
	e.logger.Debug("operation started", "op", name, "caller", o.caller, "now", o.now)

	err = e.store.Atomic(ctx, func(tx *store.Store) error {
		o.tx = tx
		return fn(o)
	})
	if err != nil {
		return e.reject(name, o.caller, entity, err)
	}
	return nil
}

// read runs fn under the engine lock without a transaction.
func (e *Engine) read(ctx context.Context, name, entity string, fn func(o *op) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	o, err := e.begin(ctx, name)
	if err != nil {
		return e.reject(name, "", entity, err)
	}
	if err := fn(o); err != nil {
		return convert(entity, err)
	}
	return nil
}

func (e *Engine) reject(name, caller, entity string, err error) error {
	err = convert(entity, err)
	e.logger.Warn("operation rejected", "op", name, "caller", caller, "kind", KindOf(err), "error", err)
	return err
}

// getOwned loads an entity and checks the caller owns it.
func getOwned[T any](o *op, c *store.Collection[T], entity, id string, owner func(*T) string) (*T, error) {
	v, ok, err := c.Get(o.ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, notFound(entity, id)
	}
	if err := model.CheckOwner(owner(v), o.caller); err != nil {
		return nil, convert(entity, err)
	}
	return v, nil
}
