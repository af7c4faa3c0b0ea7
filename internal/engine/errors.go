package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/stride/internal/model"
	"github.com/roach88/stride/internal/quota"
)

// Error is the only error type engine operations return for expected
// failures. Kind says which family it belongs to; the remaining fields are
// set as they apply.
type Error struct {
	// Kind identifies the error category.
	Kind ErrorKind

	// Entity names the entity type involved, e.g. "Task".
	Entity string

	// Message is a human-readable description.
	Message string

	// Detail is a machine-readable refinement, e.g. a validation reason.
	Detail string

	// CurrentState and Attempted are set for STATE errors.
	CurrentState string
	Attempted    string

	// ID identifies the entity for NOT_FOUND errors.
	ID string

	// Storage carries the quota failure for STORAGE errors.
	Storage *quota.StorageError

	// Err is the underlying domain error, if any.
	Err error
}

// ErrorKind categorizes engine errors.
type ErrorKind string

const (
	// KindValidation indicates an input failed an entity's validation.
	KindValidation ErrorKind = "VALIDATION"

	// KindStorage indicates the storage quota refused the entity.
	KindStorage ErrorKind = "STORAGE"

	// KindAccess indicates the caller does not own the entity.
	KindAccess ErrorKind = "ACCESS"

	// KindState indicates the entity's state does not allow the operation.
	KindState ErrorKind = "STATE"

	// KindNotFound indicates a referenced entity does not exist.
	KindNotFound ErrorKind = "NOT_FOUND"

	// KindOperation covers everything else: overlaps, ledger limits.
	KindOperation ErrorKind = "OPERATION"
)

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Entity != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Entity, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying domain error.
func (e *Error) Unwrap() error {
	return e.Err
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsValidation reports whether err is a VALIDATION error.
func IsValidation(err error) bool { return hasKind(err, KindValidation) }

// IsStorage reports whether err is a STORAGE error.
func IsStorage(err error) bool { return hasKind(err, KindStorage) }

// IsAccess reports whether err is an ACCESS error.
func IsAccess(err error) bool { return hasKind(err, KindAccess) }

// IsState reports whether err is a STATE error.
func IsState(err error) bool { return hasKind(err, KindState) }

// IsNotFound reports whether err is a NOT_FOUND error.
func IsNotFound(err error) bool { return hasKind(err, KindNotFound) }

// IsOperation reports whether err is an OPERATION error.
func IsOperation(err error) bool { return hasKind(err, KindOperation) }

// KindOf returns the kind of an engine error, or "" for other errors.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// convert maps any error raised during an operation onto *Error. Domain
// errors keep their details; anything unrecognized becomes OPERATION.
func convert(entity string, err error) error {
	if err == nil {
		return nil
	}

	var (
		ee *Error
		fe *model.FieldError
		te *model.TransitionError
		ae *model.ActionError
		se *quota.StorageError
	)
	switch {
	case errors.As(err, &ee):
		return ee
	case errors.As(err, &fe):
		return &Error{Kind: KindValidation, Entity: fe.Entity, Message: fe.Error(), Detail: string(fe.Reason), Err: err}
	case errors.As(err, &te):
		return &Error{
			Kind:         KindState,
			Entity:       te.Entity,
			Message:      te.Error(),
			CurrentState: te.From,
			Attempted:    te.To,
			Err:          err,
		}
	case errors.As(err, &ae):
		return &Error{
			Kind:         KindState,
			Entity:       ae.Entity,
			Message:      ae.Error(),
			CurrentState: ae.State,
			Attempted:    string(ae.Action),
			Err:          err,
		}
	case errors.Is(err, model.ErrNotOwner):
		return &Error{Kind: KindAccess, Entity: entity, Message: "NotOwner: " + err.Error(), Err: err}
	case errors.Is(err, ErrNoCaller):
		return &Error{Kind: KindAccess, Entity: entity, Message: err.Error(), Err: err}
	case errors.As(err, &se):
		return &Error{Kind: KindStorage, Entity: entity, Message: se.Error(), Detail: string(se.Code), Storage: se, Err: err}
	default:
		return &Error{Kind: KindOperation, Entity: entity, Message: err.Error(), Err: err}
	}
}

// notFound builds a NOT_FOUND error for an entity id.
func notFound(entity, id string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, ID: id, Message: fmt.Sprintf("%s %s not found", entity, id)}
}

// noneFound builds the NOT_FOUND error returned by empty listings.
func noneFound(entity, msg string) *Error {
	return &Error{Kind: KindNotFound, Entity: entity, Message: msg}
}

// validationError builds a VALIDATION error not tied to a single field.
func validationError(entity, msg string) *Error {
	return &Error{Kind: KindValidation, Entity: entity, Message: msg}
}

// operationError builds an OPERATION error.
func operationError(entity, format string, args ...any) *Error {
	return &Error{Kind: KindOperation, Entity: entity, Message: fmt.Sprintf(format, args...)}
}
