package agencia

import (
	internalTypes "github.com/eshaffer321/agencia-go/internal/types"
)

// User is the identity record returned by the session endpoint. Nome is
// the display name; Role is compared by exact match.
type User = internalTypes.User

// Logger interface for logging
type Logger = internalTypes.Logger

// RetryConfig configures retry behavior
type RetryConfig = internalTypes.RetryConfig

// Hooks provides lifecycle hooks for requests
type Hooks = internalTypes.Hooks

// HTTPError is returned for non-2xx responses
type HTTPError = internalTypes.HTTPError

// Locations of the web application
const (
	LoginPath         = internalTypes.LoginPath
	IndexPath         = internalTypes.IndexPath
	SessionPath       = internalTypes.SessionPath
	LoginAPIPath      = internalTypes.LoginAPIPath
	LogoutPath        = internalTypes.LogoutPath
	NavbarPartialPath = internalTypes.NavbarPartialPath
)

var (
	// ErrUnauthorized matches 401 responses
	ErrUnauthorized = internalTypes.ErrUnauthorized

	// ErrForbidden matches 403 responses
	ErrForbidden = internalTypes.ErrForbidden

	// ErrHTTP matches any non-2xx response
	ErrHTTP = internalTypes.ErrHTTP

	// ErrNoSession is returned when no persisted session exists
	ErrNoSession = internalTypes.ErrNoSession

	// ErrLoginFailed is returned when credentials are rejected
	ErrLoginFailed = internalTypes.ErrLoginFailed
)
