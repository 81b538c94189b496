// internal/app/system/apperr/apperr.go
// Package apperr defines the typed failures surfaced by the team, invite,
// and chat services. Callers branch on them with errors.Is / errors.As.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind uint8

const (
	KindValidation Kind = iota + 1
	KindAlreadyMember
	KindAlreadyInvited
	KindUserNotFound
	KindNotFound
	KindPrecondition
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAlreadyMember:
		return "already_member"
	case KindAlreadyInvited:
		return "already_invited"
	case KindUserNotFound:
		return "user_not_found"
	case KindNotFound:
		return "not_found"
	case KindPrecondition:
		return "precondition"
	case KindStore:
		return "store"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. An *Error matches the sentinel of its Kind.
var (
	ErrValidation     = &Error{Kind: KindValidation, Msg: "invalid input"}
	ErrAlreadyMember  = &Error{Kind: KindAlreadyMember, Msg: "user is already a member"}
	ErrAlreadyInvited = &Error{Kind: KindAlreadyInvited, Msg: "user is already invited"}
	ErrUserNotFound   = &Error{Kind: KindUserNotFound, Msg: "user not found"}
	ErrNotFound       = &Error{Kind: KindNotFound, Msg: "not found"}
	ErrPrecondition   = &Error{Kind: KindPrecondition, Msg: "precondition failed"}
	ErrStore          = &Error{Kind: KindStore, Msg: "store failure"}
)

// Error is a classified failure. Err, when set, is the underlying cause
// and is preserved for display and unwrapping.
type Error struct {
	Kind Kind
	Op   string // operation that failed, e.g. "invite"
	Msg  string // human-readable message
	Err  error
}

func (e *Error) Error() string {
	msg := e.Msg
	switch {
	case msg != "" && e.Err != nil:
		msg = msg + ": " + e.Err.Error()
	case msg == "" && e.Err != nil:
		msg = e.Err.Error()
	case msg == "":
		msg = e.Kind.String()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	return msg
}

// Message is the text safe to show a caller: Msg, or the cause when Msg is
// empty. Store causes are never exposed.
func (e *Error) Message() string {
	switch {
	case e.Kind == KindStore:
		return "the data store is unavailable, please retry"
	case e.Msg != "":
		return e.Msg
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same Kind, so
// errors.Is(err, apperr.ErrStore) holds for every store failure.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind of the first *Error in err's chain, or 0.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Validation reports bad caller input. Nothing was sent to the store.
func Validation(op, format string, args ...any) error {
	return &Error{Kind: KindValidation, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// Invalid is a Validation error carrying a sentinel cause, so callers can
// match the specific reason with errors.Is.
func Invalid(op string, cause error) error {
	return &Error{Kind: KindValidation, Op: op, Err: cause}
}

// AlreadyMember reports an invite for a user who is already on the team.
func AlreadyMember(op, userID string) error {
	return &Error{Kind: KindAlreadyMember, Op: op, Msg: fmt.Sprintf("user %s is already a member", userID)}
}

// AlreadyInvited reports an invite for a user with a pending invite.
func AlreadyInvited(op, userID string) error {
	return &Error{Kind: KindAlreadyInvited, Op: op, Msg: fmt.Sprintf("user %s is already invited", userID)}
}

// UserNotFound reports an email that matched no user.
func UserNotFound(op, email string) error {
	return &Error{Kind: KindUserNotFound, Op: op, Msg: fmt.Sprintf("no user with email %q", email)}
}

// NotFound reports a missing record, such as an unknown team id.
func NotFound(op, what string) error {
	return &Error{Kind: KindNotFound, Op: op, Msg: what + " not found"}
}

// Precondition reports a state check that failed at write time.
func Precondition(op string, err error) error {
	return &Error{Kind: KindPrecondition, Op: op, Msg: "precondition failed", Err: err}
}

// Store wraps a persistence or network failure. The cause is kept.
// A nil err returns nil.
func Store(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: KindStore, Op: op, Msg: "store failure", Err: err}
}
