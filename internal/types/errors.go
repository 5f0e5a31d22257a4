package types

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// HTTPError is returned for every non-2xx response of the request helper
type HTTPError struct {
	StatusCode int    `json:"statusCode"`
	URL        string `json:"url"`
	Body       any    `json:"body,omitempty"`
}

func (e *HTTPError) Error() string {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Sprintf("401 Unauthorized on %s", e.URL)
	case http.StatusForbidden:
		return fmt.Sprintf("403 Forbidden on %s: %s", e.URL, DescribeBody(e.Body))
	}
	return fmt.Sprintf("%d on %s: %s", e.StatusCode, e.URL, DescribeBody(e.Body))
}

// Is maps the status code onto the package sentinels
func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrHTTP:
		return true
	}
	return false
}

// DescribeBody renders a parsed body for error messages: strings verbatim,
// everything else as JSON.
func DescribeBody(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
