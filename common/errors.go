package common

import (
	"context"
	"errors"
	"fmt"
)

type Kind uint8

const (
	KindRemoteFailure Kind = iota
	KindNotFound
	KindInactive
	KindInvalidChoice
	KindValidation
	KindBackendUnavailable
	KindUnknownEventShape
	// KindCanceled is a caller's context ending before the backend answered.
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindInactive:
		return "inactive"
	case KindInvalidChoice:
		return "invalid choice"
	case KindValidation:
		return "validation"
	case KindBackendUnavailable:
		return "backend unavailable"
	case KindUnknownEventShape:
		return "unknown event shape"
	case KindCanceled:
		return "canceled"
	default:
		return "remote failure"
	}
}

// Error is the single error type the poll service hands to its callers.
// Its message is safe to show to a user as is.
type Error struct {
	Op   string
	Kind Kind
	Msg  string
	Err  error
}

var (
	ErrNotFound           = &Error{Kind: KindNotFound}
	ErrInactive           = &Error{Kind: KindInactive}
	ErrInvalidChoice      = &Error{Kind: KindInvalidChoice}
	ErrValidation         = &Error{Kind: KindValidation}
	ErrBackendUnavailable = &Error{Kind: KindBackendUnavailable}
	ErrRemoteFailure      = &Error{Kind: KindRemoteFailure}
	ErrUnknownEventShape  = &Error{Kind: KindUnknownEventShape}
	ErrCanceled           = &Error{Kind: KindCanceled}
)

func NewError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func (e *Error) cause() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s", e.Msg, e.Err)
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.cause()
	}
	return fmt.Sprintf("Failed to %s: %s", e.Op, e.cause())
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the package level sentinels
// work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain,
// KindRemoteFailure when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindRemoteFailure
}

// Wrap tags err with the operation that failed. A kind already present in
// the chain is kept, a cancelled or expired context is KindCanceled and
// anything else is a remote failure.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Op == op {
			return e
		}
		return &Error{Op: op, Kind: e.Kind, Msg: e.Msg, Err: e.Err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Op: op, Kind: KindCanceled, Err: err}
	}
	return &Error{Op: op, Kind: KindRemoteFailure, Err: err}
}

// Operation names used in error messages and metrics.
const (
	OpCreatePoll  = "create poll"
	OpVote        = "vote"
	OpGetAllPolls = "get polls"
	OpGetPoll     = "get poll"
)
