package search

import "fmt"

// NoSourceAvailableError is the only hard failure a search can produce: no
// source was configured, or every configured source that was attempted
// failed. A source that ran and returned zero records does not count as
// failed.
type NoSourceAvailableError struct {
	City    string
	Message string
}

func (e *NoSourceAvailableError) Error() string {
	return fmt.Sprintf("no source available for city %q: %s", e.City, e.Message)
}
