package ghostfolio

import (
	"errors"
	"fmt"
)

// StatusError is returned when the backend responds with a non-2xx status.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// IsNotFound reports whether err is a backend 404 response.
// Callers use this to distinguish "symbol doesn't exist" from "backend broken".
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == 404
}

// StatusCode returns the HTTP status of a StatusError, or 0 for other errors
// (network failures, timeouts).
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}
