package wiremock

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the admin API answers 404 for a resource.
var ErrNotFound = errors.New("not found")

// StatusError reports an admin API call that completed with an unexpected
// HTTP status. A rejected mapping registration surfaces as a StatusError
// with Op "create mapping".
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("wiremock: %s: unexpected status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("wiremock: %s: unexpected status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Is makes a 404 StatusError match ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
