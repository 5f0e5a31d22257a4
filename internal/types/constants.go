package types

import (
	"errors"
	"time"
)

const (
	// DefaultBaseURL is the default agency API base URL
	DefaultBaseURL = "http://localhost:8080"

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second

	// UserAgent is the user agent string
	UserAgent = "agencia-go/1.0.0"
)

// Well-known locations of the web application
const (
	LoginPath         = "/login.html"
	IndexPath         = "/index.html"
	SessionPath       = "/api/auth/me"
	LoginAPIPath      = "/api/login"
	LogoutPath        = "/api/logout"
	NavbarPartialPath = "/partials/navbar.html"
)

// Common errors
var (
	// ErrUnauthorized is returned when the API answers 401
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the API answers 403
	ErrForbidden = errors.New("forbidden")

	// ErrHTTP is returned for any other non-2xx status
	ErrHTTP = errors.New("http error")

	// ErrNoSession is returned when no persisted session exists
	ErrNoSession = errors.New("no session")

	// ErrLoginFailed is returned when the credentials are rejected
	ErrLoginFailed = errors.New("login failed")
)
