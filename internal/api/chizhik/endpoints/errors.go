package endpoints

import (
	"fmt"
	"strings"
)

type ErrorKind string

const (
	// KindUnexpectedContentType: success status but the body is not JSON.
	// Signals routing/proxy misconfiguration, never retried.
	KindUnexpectedContentType ErrorKind = "unexpected_content_type"
	// KindHTTPStatus: non-2xx outside the transient set.
	KindHTTPStatus ErrorKind = "http_status"
	// KindExhausted: retry budget spent on transient conditions.
	KindExhausted ErrorKind = "exhausted"
)

type RequestError struct {
	Kind   ErrorKind
	Status int
	Body   string
	Err    error
}

func (e *RequestError) Error() string {
	switch e.Kind {
	case KindHTTPStatus:
		return fmt.Sprintf("request error: status=%d body=%s", e.Status, strings.TrimSpace(e.Body))
	case KindUnexpectedContentType:
		return fmt.Sprintf("request error: non-json response body=%s", strings.TrimSpace(e.Body))
	default:
		return fmt.Sprintf("request error: %s: %v", e.Kind, e.Err)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a RequestError carrying the given HTTP status.
func IsStatus(err error, status int) bool {
	re, ok := AsRequestError(err)
	return ok && re.Kind == KindHTTPStatus && re.Status == status
}
