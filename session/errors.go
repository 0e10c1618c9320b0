package session

import (
	"errors"
	"fmt"
)

// Reason enumerates authentication failures.
type Reason uint8

const (
	InvalidCredentials Reason = iota + 1
	AccountDisabled
	TokenExpired
	TokenInvalid
)

var (
	// ErrInvalidCredentials is matched by AuthError{InvalidCredentials}.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is matched by AuthError{AccountDisabled}.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrTokenExpired is matched by AuthError{TokenExpired}.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid is matched by AuthError{TokenInvalid}.
	ErrTokenInvalid = errors.New("token invalid")

	// ErrMalformedResponse is returned when a login or profile response lacks
	// the token or user id.
	ErrMalformedResponse = errors.New("malformed auth response")
	// ErrNotFound is returned by Storage.Get for absent keys.
	ErrNotFound = errors.New("storage key not found")
	// ErrCorruptRecord is returned when a persisted profile cannot be decoded.
	ErrCorruptRecord = errors.New("corrupt persisted record")
	// ErrNoSession is returned by operations that need a logged in user.
	ErrNoSession = errors.New("no active session")
)

func (r Reason) String() string {
	switch r {
	case InvalidCredentials:
		return "invalid_credentials"
	case AccountDisabled:
		return "account_disabled"
	case TokenExpired:
		return "token_expired"
	case TokenInvalid:
		return "token_invalid"
	default:
		return fmt.Sprintf("reason(%d)", uint8(r))
	}
}

func (r Reason) sentinel() error {
	switch r {
	case InvalidCredentials:
		return ErrInvalidCredentials
	case AccountDisabled:
		return ErrAccountDisabled
	case TokenExpired:
		return ErrTokenExpired
	case TokenInvalid:
		return ErrTokenInvalid
	default:
		return nil
	}
}

// AuthError reports why authentication failed. Err holds the underlying
// transport error when there is one.
type AuthError struct {
	Reason Reason
	Err    error
}

func (e *AuthError) Error() string {
	s := e.Reason.sentinel()
	msg := e.Reason.String()
	if s != nil {
		msg = s.Error()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func (e *AuthError) Is(target error) bool {
	s := e.Reason.sentinel()
	return s != nil && target == s
}
