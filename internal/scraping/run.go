// Package scraping provides a client for launching and collecting remote
// actor runs on the Apify platform.
package scraping

// Status is the lifecycle state of an actor run.
type Status string

// Run statuses. The remote platform reports a wider vocabulary; mapStatus
// collapses it onto these four.
const (
	StatusRunning   Status = "RUNNING"
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusTimedOut  Status = "TIMED_OUT"
)

// Terminal reports whether a run will make no further progress.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusTimedOut:
		return true
	}
	return false
}

// Run is the transient handle for one actor execution. It lives only for
// the duration of a single search invocation and is never persisted.
type Run struct {
	ID        string
	Status    Status
	DatasetID string
}

// mapStatus translates a remote status string to a Status.
// ABORTED and ABORTING count as failures; unknown statuses are treated as
// still running and left to the poll budget to bound.
func mapStatus(remote string) Status {
	switch remote {
	case "SUCCEEDED":
		return StatusSucceeded
	case "FAILED", "ABORTED", "ABORTING":
		return StatusFailed
	case "TIMED-OUT", "TIMING-OUT":
		return StatusTimedOut
	default:
		return StatusRunning
	}
}
