package api

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError reports a request that did not produce a usable response:
// either the round trip failed (StatusCode 0) or the server answered with a
// non-2xx status.
type TransportError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Status, e.Err)
	case e.Body != "":
		return fmt.Sprintf("%s %s: API returned %s: %s", e.Method, e.Path, e.Status, e.Body)
	default:
		return fmt.Sprintf("%s %s: API returned %s", e.Method, e.Path, e.Status)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return HasStatus(err, http.StatusNotFound)
}

func HasStatus(err error, status int) bool {
	var transportErr *TransportError
	if !errors.As(err, &transportErr) {
		return false
	}
	return transportErr.StatusCode == status
}
