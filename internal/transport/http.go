package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/eshaffer321/agencia-go/internal/types"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"golang.org/x/net/publicsuffix"
)

const (
	requestIDHeader = "X-Request-ID"
	defaultAccept   = "*/*"
)

// HTTPTransport performs credentialed requests against the agency API.
// Cookies set by the server are kept in the client's jar and sent back on
// every later request.
type HTTPTransport struct {
	baseURL     *url.URL
	httpClient  *http.Client
	retryClient *retryablehttp.Client
	headers     map[string]string
	logger      types.Logger
	hooks       *types.Hooks
}

// Request is a single outgoing call
type Request struct {
	Method string
	// URL is absolute or relative to the base URL
	URL    string
	Header http.Header
	Body   []byte

	// PlatformContentType is applied when the caller left Content-Type
	// unset, e.g. the multipart boundary of a form body.
	PlatformContentType string
}

// Response is a fully read response
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	URL        string
}

// ContentType returns the response Content-Type header
func (r *Response) ContentType() string {
	return r.Header.Get("Content-Type")
}

// Options for the HTTP transport
type Options struct {
	BaseURL     string
	HTTPClient  *http.Client
	Headers     map[string]string
	RetryConfig *types.RetryConfig
	Logger      types.Logger
	Hooks       *types.Hooks
}

// NewHTTPTransport creates a new HTTP transport
func NewHTTPTransport(opts *Options) (*HTTPTransport, error) {
	if opts == nil {
		opts = &Options{}
	}

	if opts.BaseURL == "" {
		opts.BaseURL = types.DefaultBaseURL
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, errors.Wrap(err, "invalid base URL")
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: types.DefaultTimeout,
		}
	}

	// Session cookies need a jar
	if opts.HTTPClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, errors.Wrap(err, "failed to create cookie jar")
		}
		opts.HTTPClient.Jar = jar
	}

	var retryClient *retryablehttp.Client
	if opts.RetryConfig != nil {
		retryClient = retryablehttp.NewClient()
		retryClient.HTTPClient = opts.HTTPClient
		retryClient.RetryMax = opts.RetryConfig.MaxRetries
		retryClient.RetryWaitMin = opts.RetryConfig.RetryWait
		retryClient.RetryWaitMax = opts.RetryConfig.MaxWait
		// hand the last response back instead of an error
		retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
		retryClient.Logger = nil

		if opts.Logger != nil {
			retryClient.Logger = &retryLogger{logger: opts.Logger}
		}
	}

	headers := map[string]string{
		"Accept":     defaultAccept,
		"User-Agent": types.UserAgent,
	}
	for k, v := range opts.Headers {
		headers[k] = v
	}

	return &HTTPTransport{
		baseURL:     base,
		httpClient:  opts.HTTPClient,
		retryClient: retryClient,
		headers:     headers,
		logger:      opts.Logger,
		hooks:       opts.Hooks,
	}, nil
}

// Do executes the request and reads the whole response body
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	target, err := t.Resolve(req.URL)
	if err != nil {
		return nil, err
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var reader io.Reader
	if req.Body != nil {
		reader = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	for k, v := range t.headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set(requestIDHeader, uuid.New().String())
	for k, values := range req.Header {
		httpReq.Header.Del(k)
		for _, v := range values {
			httpReq.Header.Add(k, v)
		}
	}
	if req.PlatformContentType != "" && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", req.PlatformContentType)
	}

	if t.hooks != nil && t.hooks.OnRequest != nil {
		t.hooks.OnRequest(ctx, httpReq)
	}

	if t.logger != nil {
		t.logger.Debug("HTTP request", "method", method, "url", target.String(), "size", len(req.Body))
	}

	start := time.Now()
	resp, err := t.doRequest(httpReq)
	duration := time.Since(start)

	if err != nil {
		err = errors.Wrapf(err, "%s %s failed", method, req.URL)
		if t.hooks != nil && t.hooks.OnError != nil {
			t.hooks.OnError(ctx, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	if t.hooks != nil && t.hooks.OnResponse != nil {
		t.hooks.OnResponse(ctx, resp, duration)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response")
	}

	if t.logger != nil {
		t.logger.Debug("HTTP response", "status", resp.StatusCode, "duration", duration, "size", len(respBody))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
		URL:        req.URL,
	}, nil
}

// Resolve turns a relative target into an absolute URL on the base URL
func (t *HTTPTransport) Resolve(target string) (*url.URL, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid URL %q", target)
	}
	return t.baseURL.ResolveReference(ref), nil
}

// BaseURL returns the base URL requests are resolved against
func (t *HTTPTransport) BaseURL() *url.URL {
	u := *t.baseURL
	return &u
}

// Cookies returns the cookies the jar would send to the base URL
func (t *HTTPTransport) Cookies() []*http.Cookie {
	return t.httpClient.Jar.Cookies(t.baseURL)
}

// SetCookies stores cookies for the base URL
func (t *HTTPTransport) SetCookies(cookies []*http.Cookie) {
	root := t.BaseURL()
	root.Path = "/"
	scoped := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		cp := *c
		if cp.Path == "" {
			cp.Path = "/"
		}
		scoped = append(scoped, &cp)
	}
	t.httpClient.Jar.SetCookies(root, scoped)
}

// CloseIdleConnections releases pooled connections
func (t *HTTPTransport) CloseIdleConnections() {
	t.httpClient.CloseIdleConnections()
}

// doRequest executes the HTTP request with retry if configured
func (t *HTTPTransport) doRequest(req *http.Request) (*http.Response, error) {
	if t.retryClient != nil {
		retryReq, err := retryablehttp.FromRequest(req)
		if err != nil {
			return nil, err
		}
		return t.retryClient.Do(retryReq)
	}
	return t.httpClient.Do(req)
}

// retryLogger adapts our logger to retryablehttp
type retryLogger struct {
	logger types.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, keysAndValues...)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, keysAndValues...)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn(msg, keysAndValues...)
}
