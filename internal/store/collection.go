package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// Collection is the id→entity map and owner→ids index of one entity type.
// The two are only mutated together through Put and Delete.
type Collection[T any] struct {
	b    backend
	kind string
	key  func(*T) (id, owner string)
}

func newCollection[T any](b backend, kind string, key func(*T) (string, string)) *Collection[T] {
	return &Collection[T]{b: b, kind: kind, key: key}
}

// Get returns the entity with the given id. ok is false if there is none.
func (c *Collection[T]) Get(ctx context.Context, id string) (v *T, ok bool, err error) {
	body, ok, err := c.b.get(ctx, c.kind, id)
	if err != nil || !ok {
		return nil, false, err
	}
	v, err = c.decode(body)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Put inserts or replaces v and indexes it under its owner.
func (c *Collection[T]) Put(ctx context.Context, v *T) error {
	id, owner := c.key(v)
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", c.kind, id, err)
	}
	return c.b.put(ctx, c.kind, id, owner, body)
}

// Delete removes the entity and its index entry. It reports whether the
// entity existed.
func (c *Collection[T]) Delete(ctx context.Context, id string) (bool, error) {
	return c.b.del(ctx, c.kind, id)
}

// OwnerIDs returns the ids owned by owner, sorted. Never nil.
func (c *Collection[T]) OwnerIDs(ctx context.Context, owner string) ([]string, error) {
	return c.b.ownerIDs(ctx, c.kind, owner)
}

// ByOwner returns the entities owned by owner, sorted by id.
func (c *Collection[T]) ByOwner(ctx context.Context, owner string) ([]*T, error) {
	ids, err := c.OwnerIDs(ctx, owner)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(ids))
	for _, id := range ids {
		v, ok, err := c.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%s %s indexed for %s but missing", c.kind, id, owner)
		}
		out = append(out, v)
	}
	return out, nil
}

// List returns every entity of the type, sorted by id.
func (c *Collection[T]) List(ctx context.Context) ([]*T, error) {
	bodies, err := c.b.list(ctx, c.kind)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(bodies))
	for _, body := range bodies {
		v, err := c.decode(body)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (c *Collection[T]) decode(body []byte) (*T, error) {
	v := new(T)
	if err := json.Unmarshal(body, v); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.kind, err)
	}
	return v, nil
}

// Balances holds per-owner point balances. An owner with no entry has zero.
type Balances struct {
	b backend
}

// Get returns the owner's balance.
func (l Balances) Get(ctx context.Context, owner string) (uint32, error) {
	return l.b.balance(ctx, owner)
}

// Set stores the owner's balance.
func (l Balances) Set(ctx context.Context, owner string, points uint32) error {
	return l.b.setBalance(ctx, owner, points)
}

// CompletionLog records when each task was completed.
type CompletionLog struct {
	b backend
}

// Append records a completion of taskID at the given time.
func (l CompletionLog) Append(ctx context.Context, taskID string, at uint64) error {
	return l.b.appendCompletion(ctx, taskID, at)
}

// List returns the completion times of taskID in the order they happened.
// Never nil.
func (l CompletionLog) List(ctx context.Context, taskID string) ([]uint64, error) {
	return l.b.completions(ctx, taskID)
}
