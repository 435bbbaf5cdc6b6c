package domain

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the boundary layer.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindUnauthorized
	KindBadRequest
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is the typed error surfaced by the auth core. Key is the
// translation key of the user-facing message.
type Error struct {
	Kind Kind
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Key, e.Err)
	}
	return e.Key
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Repository errors
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)

// Auth errors
var (
	ErrUserNotFound            = &Error{Kind: KindNotFound, Key: "auth.user_not_found"}
	ErrInvalidCredentials      = &Error{Kind: KindUnauthorized, Key: "auth.invalid_credentials"}
	ErrMissingToken            = &Error{Kind: KindUnauthorized, Key: "auth.missing_token"}
	ErrInvalidToken            = &Error{Kind: KindUnauthorized, Key: "auth.invalid_token"}
	ErrTokenExpired            = &Error{Kind: KindUnauthorized, Key: "auth.token_expired"}
	ErrSessionRevoked          = &Error{Kind: KindUnauthorized, Key: "auth.session_revoked"}
	ErrUnknownDevice           = &Error{Kind: KindUnauthorized, Key: "auth.unknown_device"}
	ErrInvalidActivationSecret = &Error{Kind: KindBadRequest, Key: "auth.invalid_activation_secret"}
	ErrEmailTaken              = &Error{Kind: KindConflict, Key: "auth.email_taken"}
)

// Internal wraps an infrastructure failure. Wrapping an *Error keeps it as is.
func Internal(err error) error {
	if err == nil {
		return nil
	}
	var de *Error
	if errors.As(err, &de) {
		return err
	}
	return &Error{Kind: KindInternal, Key: "errors.internal", Err: err}
}

// BadRequest builds a validation error with the given translation key.
func BadRequest(key string) error {
	return &Error{Kind: KindBadRequest, Key: key}
}

// KindOf returns the kind of err, KindInternal for untyped errors.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// KeyOf returns the translation key of err.
func KeyOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Key
	}
	return "errors.internal"
}
