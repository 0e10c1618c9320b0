package gateway

import (
	"errors"
	"fmt"
)

// Kind is the classification of a failed request.
type Kind uint8

const (
	// KindNone means the request succeeded.
	KindNone Kind = iota
	// UnauthorizedExpired is a 401 whose message reports an expired token.
	UnauthorizedExpired
	// UnauthorizedInvalid is any other 401.
	UnauthorizedInvalid
	// Forbidden is a 403.
	Forbidden
	// BadRequest is any other 4xx.
	BadRequest
	// ServerError is a 5xx.
	ServerError
	// NetworkUnavailable means no response was received.
	NetworkUnavailable
)

var (
	// ErrUnauthorizedExpired matches errors of kind UnauthorizedExpired.
	ErrUnauthorizedExpired = errors.New("unauthorized: token expired")
	// ErrUnauthorizedInvalid matches errors of kind UnauthorizedInvalid.
	ErrUnauthorizedInvalid = errors.New("unauthorized: token invalid")
	// ErrForbidden matches errors of kind Forbidden.
	ErrForbidden = errors.New("permission denied")
	// ErrBadRequest matches errors of kind BadRequest.
	ErrBadRequest = errors.New("validation failed")
	// ErrServerError matches errors of kind ServerError.
	ErrServerError = errors.New("server error")
	// ErrNetworkUnavailable matches errors of kind NetworkUnavailable.
	ErrNetworkUnavailable = errors.New("network unavailable")
	// ErrNoToken is wrapped when a protected request is rejected before sending.
	ErrNoToken = errors.New("no token for protected request")
	// ErrInvalidConfig is returned by New for unusable configuration.
	ErrInvalidConfig = errors.New("invalid gateway config")
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case UnauthorizedExpired:
		return "unauthorized_expired"
	case UnauthorizedInvalid:
		return "unauthorized_invalid"
	case Forbidden:
		return "forbidden"
	case BadRequest:
		return "bad_request"
	case ServerError:
		return "server_error"
	case NetworkUnavailable:
		return "network_unavailable"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsAuth reports whether k is one of the 401 kinds.
func (k Kind) IsAuth() bool {
	return k == UnauthorizedExpired || k == UnauthorizedInvalid
}

// Retryable reports whether a request that failed with k may be repeated.
func (k Kind) Retryable() bool {
	return k == NetworkUnavailable || k == ServerError
}

func (k Kind) sentinel() error {
	switch k {
	case UnauthorizedExpired:
		return ErrUnauthorizedExpired
	case UnauthorizedInvalid:
		return ErrUnauthorizedInvalid
	case Forbidden:
		return ErrForbidden
	case BadRequest:
		return ErrBadRequest
	case ServerError:
		return ErrServerError
	case NetworkUnavailable:
		return ErrNetworkUnavailable
	default:
		return nil
	}
}

// Error is the final classified failure of one Send call.
type Error struct {
	Kind      Kind
	Status    int
	Message   string
	Method    string
	Path      string
	RequestID string
	Attempts  int
	Err       error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("%s %s: %s (%d): %s", e.Method, e.Path, e.Kind, e.Status, msg)
	}
	return fmt.Sprintf("%s %s: %s: %s", e.Method, e.Path, e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	return s != nil && target == s
}

// KindOf returns the Kind of err if it wraps an *Error, otherwise KindNone.
func KindOf(err error) Kind {
	var gerr *Error
	if errors.As(err, &gerr) {
		return gerr.Kind
	}
	return KindNone
}
