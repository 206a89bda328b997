package brevo

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// StatusTransport is the status recorded when no HTTP response was received.
const StatusTransport = 0

// ErrorKind classifies an APIError.
type ErrorKind string

const (
	// KindRemote is a non-2xx answer from Brevo.
	KindRemote ErrorKind = "remote"
	// KindTransport is a network failure before a response arrived.
	KindTransport ErrorKind = "transport"
	// KindTimeout is a caller or client deadline that expired in flight.
	KindTimeout ErrorKind = "timeout"
	// KindDecode is a 2xx answer whose body is not JSON.
	KindDecode ErrorKind = "decode"
)

// ErrMissingAPIKey is returned by NewClient when no key is supplied.
var ErrMissingAPIKey = errors.New("brevo: api key is required")

// APIError describes a failed call to the Brevo API. Status is the HTTP
// status or StatusTransport; Code and Message come from the remote body.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
	Method  string
	Path    string
	Err     error
}

func (e *APIError) Error() string {
	switch e.Kind {
	case KindTimeout:
		return fmt.Sprintf("brevo: %s %s timed out: %s", e.Method, e.Path, e.Message)
	case KindTransport:
		return fmt.Sprintf("brevo: %s %s failed: %s", e.Method, e.Path, e.Message)
	case KindDecode:
		return fmt.Sprintf("brevo: %s %s returned status %d with an undecodable body: %s", e.Method, e.Path, e.Status, e.Message)
	}
	if e.Code != "" {
		return fmt.Sprintf("brevo: %s (status %d): %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("brevo: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call ran out of time.
func (e *APIError) Timeout() bool {
	return e.Kind == KindTimeout
}

// AsAPIError extracts an APIError from err.
func AsAPIError(err error) (*APIError, bool) {
	return errors.AsType[*APIError](err)
}

// IsTimeout reports whether err is a timeout APIError.
func IsTimeout(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Timeout()
}

// IsNotFound reports whether err is a 404 from Brevo.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Status == http.StatusNotFound
}

// remoteError builds the error for a non-2xx response. Brevo error bodies
// look like {"code": "...", "message": "..."}; anything else falls back to the
// raw body or the status text.
func remoteError(method, path string, status int, body []byte) *APIError {
	apiErr := &APIError{Kind: KindRemote, Status: status, Method: method, Path: path}
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		apiErr.Code = parsed.Get("code").String()
		apiErr.Message = parsed.Get("message").String()
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func transportError(method, path string, err error, timedOut bool, timeout time.Duration) *APIError {
	apiErr := &APIError{Kind: KindTransport, Status: StatusTransport, Method: method, Path: path, Message: err.Error(), Err: err}
	if timedOut {
		apiErr.Kind = KindTimeout
		if timeout > 0 {
			apiErr.Message = fmt.Sprintf("no response within %s", timeout)
		} else {
			apiErr.Message = "deadline exceeded"
		}
	}
	return apiErr
}
