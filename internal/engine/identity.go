package engine

import (
	"context"
	"errors"
)

// IdentityProvider resolves who is calling. The caller owns everything it
// creates and may only mutate what it owns.
type IdentityProvider interface {
	CallerID(ctx context.Context) (string, error)
}

// ErrNoCaller is returned when no caller identity is available.
var ErrNoCaller = errors.New("no caller identity")

type callerKey struct{}

// WithCaller returns a context carrying the caller id.
func WithCaller(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callerKey{}, id)
}

// CallerFrom returns the caller id carried by ctx.
func CallerFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(callerKey{}).(string)
	return id, ok && id != ""
}

// ContextIdentity reads the caller from the context, falling back to a fixed
// id when the context carries none.
type ContextIdentity struct {
	Fallback string
}

// CallerID implements IdentityProvider.
func (c ContextIdentity) CallerID(ctx context.Context) (string, error) {
	if id, ok := CallerFrom(ctx); ok {
		return id, nil
	}
	if c.Fallback != "" {
		return c.Fallback, nil
	}
	return "", ErrNoCaller
}
