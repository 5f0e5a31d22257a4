// Package body classifies HTTP responses and parses their payloads
// independently of any transport.
package body

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Kind is the parsing strategy selected for a response body
type Kind int

const (
	// KindEmpty means no parsing is attempted
	KindEmpty Kind = iota
	// KindJSON means the body is decoded as JSON
	KindJSON
	// KindText means the body is returned as a string
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindJSON:
		return "json"
	case KindText:
		return "text"
	}
	return "unknown"
}

// Classify picks the parsing strategy from the status code and the
// Content-Type header. A 204 is always empty.
func Classify(status int, contentType string) Kind {
	if status == http.StatusNoContent {
		return KindEmpty
	}
	if strings.Contains(contentType, "application/json") {
		return KindJSON
	}
	return KindText
}

// Parse turns raw bytes into the value for the given kind. JSON decode
// failures degrade to nil.
func Parse(kind Kind, data []byte) any {
	switch kind {
	case KindJSON:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		return v
	case KindText:
		return string(data)
	}
	return nil
}

// Outcome is the classification of a response status
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmpty
	OutcomeUnauthorized
	OutcomeForbidden
	OutcomeError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeEmpty:
		return "empty"
	case OutcomeUnauthorized:
		return "unauthorized"
	case OutcomeForbidden:
		return "forbidden"
	case OutcomeError:
		return "error"
	}
	return "unknown"
}

// ClassifyStatus maps a status code onto an Outcome. 401 and 403 are
// tested before the 2xx range.
func ClassifyStatus(status int) Outcome {
	switch {
	case status == http.StatusUnauthorized:
		return OutcomeUnauthorized
	case status == http.StatusForbidden:
		return OutcomeForbidden
	case status == http.StatusNoContent:
		return OutcomeEmpty
	case status >= 200 && status < 300:
		return OutcomeSuccess
	}
	return OutcomeError
}
