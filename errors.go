package blogClient

import (
	"errors"

	"github.com/MrEthical07/blogClient/gateway"
	"github.com/MrEthical07/blogClient/session"
)

var (
	// ErrInvalidCredentials is returned by Login for rejected credentials.
	ErrInvalidCredentials = session.ErrInvalidCredentials
	// ErrAccountDisabled is returned by Login for disabled accounts.
	ErrAccountDisabled = session.ErrAccountDisabled
	// ErrTokenExpired reports an expired session token.
	ErrTokenExpired = session.ErrTokenExpired
	// ErrTokenInvalid reports a token the server no longer accepts.
	ErrTokenInvalid = session.ErrTokenInvalid
	// ErrMalformedResponse reports an auth response without token or user id.
	ErrMalformedResponse = session.ErrMalformedResponse
	// ErrNoSession is returned by operations that need a logged in user.
	ErrNoSession = session.ErrNoSession

	// ErrSessionExpired matches request failures the server rejected because
	// the token expired.
	ErrSessionExpired = gateway.ErrUnauthorizedExpired
	// ErrUnauthorized matches other 401 request failures.
	ErrUnauthorized = gateway.ErrUnauthorizedInvalid
	// ErrPermission matches request failures with HTTP 403.
	ErrPermission = gateway.ErrForbidden
	// ErrValidation matches other 4xx request failures.
	ErrValidation = gateway.ErrBadRequest
	// ErrServer matches 5xx request failures.
	ErrServer = gateway.ErrServerError
	// ErrNetwork matches requests that got no response.
	ErrNetwork = gateway.ErrNetworkUnavailable
	// ErrNoToken matches protected requests rejected before sending.
	ErrNoToken = gateway.ErrNoToken

	// ErrBuilderUsed is returned by a second Build call.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrInvalidConfig wraps configuration validation failures.
	ErrInvalidConfig = gateway.ErrInvalidConfig
	// ErrClosed is returned by operations on a closed Client.
	ErrClosed = errors.New("client closed")
)

// AuthError is the typed authentication failure.
type AuthError = session.AuthError

// RequestError is the typed request failure.
type RequestError = gateway.Error
