package client

import (
	"errors"
	"fmt"
)

// HTTPError represents a non-2xx HTTP response from the server, carrying the
// status and any server-supplied message. It is the one error shape remote
// failures surface as; the client never retries.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
