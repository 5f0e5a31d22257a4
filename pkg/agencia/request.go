package agencia

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"

	"github.com/eshaffer321/agencia-go/internal/body"
	"github.com/eshaffer321/agencia-go/internal/transport"
	"github.com/pkg/errors"
)

const (
	jsonContentType = "application/json"

	// AccessDeniedMessage is shown on every 403
	AccessDeniedMessage = "Access denied. You do not have permission to perform this action."

	// AccessDeniedShortMessage is shown before leaving the page on a 403
	AccessDeniedShortMessage = "Access denied."
)

// RequestOptions configures RequestJSON. The zero value is a GET that
// redirects to the login page on 401 and stays on the page on 403.
type RequestOptions struct {
	Method string

	// Body is sent as-is when it is a *Form, string or []byte, and encoded
	// as JSON otherwise. Nil sends no body.
	Body any

	Headers map[string]string

	// SuppressLoginRedirect disables the redirect to the login page on 401
	SuppressLoginRedirect bool

	// RedirectOn403 sends the visitor to the index page on 403
	RedirectOn403 bool
}

// Form is a multipart/form-data body
type Form struct {
	parts []formPart
}

type formPart struct {
	name     string
	value    string
	filename string
	content  []byte
}

// NewForm creates an empty form
func NewForm() *Form {
	return &Form{}
}

// Set adds a plain field
func (f *Form) Set(name, value string) *Form {
	f.parts = append(f.parts, formPart{name: name, value: value})
	return f
}

// AddFile adds a file field
func (f *Form) AddFile(name, filename string, content []byte) *Form {
	f.parts = append(f.parts, formPart{name: name, filename: filename, content: content})
	return f
}

// encode returns the multipart payload and its Content-Type with boundary
func (f *Form) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range f.parts {
		if p.filename == "" {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, "", errors.Wrap(err, "failed to write form field")
			}
			continue
		}
		fw, err := w.CreateFormFile(p.name, p.filename)
		if err != nil {
			return nil, "", errors.Wrap(err, "failed to create form file")
		}
		if _, err := fw.Write(p.content); err != nil {
			return nil, "", errors.Wrap(err, "failed to write form file")
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to close form")
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// buildRequest assembles the outgoing request. Forms leave Content-Type to
// the transport; every other body defaults to JSON.
func buildRequest(method, url string, headers map[string]string, payload any) (*transport.Request, error) {
	if method == "" {
		method = http.MethodGet
	}

	req := &transport.Request{
		Method: method,
		URL:    url,
		Header: make(http.Header),
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if payload == nil {
		return req, nil
	}

	if form, ok := payload.(*Form); ok {
		data, contentType, err := form.encode()
		if err != nil {
			return nil, err
		}
		req.Body = data
		req.PlatformContentType = contentType
		return req, nil
	}

	if req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", jsonContentType)
	}

	switch v := payload.(type) {
	case string:
		req.Body = []byte(v)
	case []byte:
		req.Body = v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		req.Body = data
	}
	return req, nil
}

// reaction is the side effect a response outcome calls for
type reaction struct {
	alerts   []string
	navigate string
}

// react decides alerts and navigation for an outcome without performing them
func react(outcome body.Outcome, opts *RequestOptions, onLoginPage bool) reaction {
	var r reaction
	switch outcome {
	case body.OutcomeUnauthorized:
		if !opts.SuppressLoginRedirect && !onLoginPage {
			r.navigate = LoginPath
		}
	case body.OutcomeForbidden:
		r.alerts = append(r.alerts, AccessDeniedMessage)
		if opts.RedirectOn403 && !onLoginPage {
			r.alerts = append(r.alerts, AccessDeniedShortMessage)
			r.navigate = IndexPath
		}
	}
	return r
}

func (c *Client) apply(r reaction) {
	for _, msg := range r.alerts {
		c.notifier.Alert(msg)
	}
	if r.navigate != "" {
		c.logger.Debug("Navigating", "from", c.navigator.Path(), "to", r.navigate)
		c.navigator.Navigate(r.navigate)
	}
}

func (c *Client) onLoginPage() bool {
	return c.navigator.Path() == LoginPath
}

func (c *Client) redirectToLogin() {
	if !c.onLoginPage() {
		c.navigator.Navigate(LoginPath)
	}
}

// RequestJSON performs a credentialed request and returns the parsed body:
// nil for 204, the decoded JSON value when the response declares JSON
// (nil if it does not decode), the raw text otherwise. Non-2xx statuses
// return an *HTTPError after the redirect or alert they call for.
func (c *Client) RequestJSON(ctx context.Context, url string, opts *RequestOptions) (any, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	req, err := buildRequest(opts.Method, url, opts.Headers, opts.Body)
	if err != nil {
		return nil, err
	}

	resp, err := c.transport.Do(ctx, req)
	if err != nil {
		c.capture(ctx, err, req.Method, url)
		return nil, err
	}

	outcome := body.ClassifyStatus(resp.StatusCode)
	c.apply(react(outcome, opts, c.onLoginPage()))

	switch outcome {
	case body.OutcomeUnauthorized:
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url}
	case body.OutcomeForbidden:
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: parse(resp)}
	case body.OutcomeError:
		httpErr := &HTTPError{StatusCode: resp.StatusCode, URL: url, Body: parse(resp)}
		c.logger.Warn("Request failed", "method", req.Method, "url", url, "status", resp.StatusCode)
		c.capture(ctx, httpErr, req.Method, url)
		return nil, httpErr
	}

	return parse(resp), nil
}

func parse(resp *transport.Response) any {
	return body.Parse(body.Classify(resp.StatusCode, resp.ContentType()), resp.Body)
}

// GetJSON performs a GET
func (c *Client) GetJSON(ctx context.Context, url string) (any, error) {
	return c.RequestJSON(ctx, url, nil)
}

// PostJSON performs a POST with body
func (c *Client) PostJSON(ctx context.Context, url string, payload any) (any, error) {
	return c.RequestJSON(ctx, url, &RequestOptions{Method: http.MethodPost, Body: payload})
}

// PutJSON performs a PUT with body
func (c *Client) PutJSON(ctx context.Context, url string, payload any) (any, error) {
	return c.RequestJSON(ctx, url, &RequestOptions{Method: http.MethodPut, Body: payload})
}

// Delete performs a DELETE
func (c *Client) Delete(ctx context.Context, url string) (any, error) {
	return c.RequestJSON(ctx, url, &RequestOptions{Method: http.MethodDelete})
}

// UploadForm POSTs a multipart form
func (c *Client) UploadForm(ctx context.Context, url string, form *Form) (any, error) {
	return c.RequestJSON(ctx, url, &RequestOptions{Method: http.MethodPost, Body: form})
}

// Decode converts a parsed body into out, e.g. a struct pointer
func Decode(v any, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to marshal value")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to unmarshal value")
	}
	return nil
}
