package agencia

import (
	"context"
	"net/http"
	"time"

	"github.com/eshaffer321/agencia-go/internal/session"
	"github.com/eshaffer321/agencia-go/internal/transport"
	internalTypes "github.com/eshaffer321/agencia-go/internal/types"
	"github.com/getsentry/sentry-go"
	"github.com/pkg/errors"
)

const (
	// DefaultBaseURL is the default agency API base URL
	DefaultBaseURL = internalTypes.DefaultBaseURL

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = internalTypes.DefaultTimeout
)

// Client talks to the agency API with the visitor's session cookie and
// drives navigation and notifications through the configured platform.
type Client struct {
	baseURL   string
	transport Transport
	http      *transport.HTTPTransport
	navigator Navigator
	notifier  Notifier
	logger    Logger
	store     *session.Store
	options   *ClientOptions
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default API base URL
	BaseURL string

	// HTTPClient allows using a custom HTTP client. A cookie jar is
	// attached when it has none.
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// Navigator is the current location. Defaults to a MemoryNavigator at "/".
	Navigator Navigator

	// Notifier shows alerts and confirmations. Defaults to a notifier that
	// logs alerts and declines confirmations.
	Notifier Notifier

	// SessionFile path for cookie persistence
	SessionFile string

	// Logger for debug logging
	Logger Logger

	// RetryConfig enables retries. Nil means every call is attempted once.
	RetryConfig *RetryConfig

	// Hooks for observability
	Hooks *Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// Transport performs a single HTTP exchange
type Transport interface {
	Do(ctx context.Context, req *transport.Request) (*transport.Response, error)
}

// NewClient creates a new client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}
		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}
		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		// Log error but don't fail client creation
		if err := sentry.Init(sentryOpts); err != nil && opts.Logger != nil {
			opts.Logger.Error("Failed to initialize Sentry", "error", err)
		}
	}

	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if opts.Timeout > 0 {
		opts.HTTPClient.Timeout = opts.Timeout
	}

	trans, err := transport.NewHTTPTransport(&transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		RetryConfig: opts.RetryConfig,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
	})
	if err != nil {
		return nil, err
	}

	c := &Client{
		baseURL:   opts.BaseURL,
		transport: trans,
		http:      trans,
		navigator: opts.Navigator,
		notifier:  opts.Notifier,
		logger:    opts.Logger,
		options:   opts,
	}
	if c.logger == nil {
		c.logger = nopLogger{}
	}
	if c.navigator == nil {
		c.navigator = NewMemoryNavigator("/")
	}
	if c.notifier == nil {
		c.notifier = &logNotifier{logger: c.logger}
	}

	if opts.SessionFile != "" {
		c.store = session.NewStore(opts.SessionFile, opts.Logger)
		if err := c.loadSession(); err != nil && !errors.Is(err, ErrNoSession) {
			c.logger.Warn("Failed to load session", "error", err)
		}
	}

	return c, nil
}

// Navigator returns the client's location
func (c *Client) Navigator() Navigator {
	return c.navigator
}

// SaveSession writes the current session cookies to the session file
func (c *Client) SaveSession() error {
	if c.store == nil || c.http == nil {
		return nil
	}
	return c.store.Save(c.baseURL, c.http.Cookies())
}

// ClearSession removes the session file
func (c *Client) ClearSession() error {
	if c.store == nil {
		return nil
	}
	return c.store.Clear()
}

func (c *Client) loadSession() error {
	cookies, err := c.store.Load(c.baseURL)
	if err != nil {
		return err
	}
	c.http.SetCookies(cookies)
	return nil
}

// Close releases idle connections and flushes pending Sentry events
func (c *Client) Close() {
	if c.http != nil {
		c.http.CloseIdleConnections()
	}
	sentry.Flush(2 * time.Second)
}

// capture reports err to Sentry with the request context
func (c *Client) capture(ctx context.Context, err error, method, url string) {
	report := func(hub *sentry.Hub) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetTag("http.method", method)
			scope.SetContext("request", map[string]interface{}{
				"url": url,
			})
			hub.CaptureException(err)
		})
	}

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		report(hub)
		return
	}
	report(sentry.CurrentHub())
}
