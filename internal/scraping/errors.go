package scraping

import "fmt"

// LaunchError represents a failure to start an actor run: bad credentials,
// malformed input, or the remote service rejecting the request.
type LaunchError struct {
	Message string
	Cause   error
}

func (e *LaunchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("launch error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("launch error: %s", e.Message)
}

func (e *LaunchError) Unwrap() error {
	return e.Cause
}

// PollError represents a transient failure while checking run status.
// Polls are retried; callers never see this error directly because repeated
// poll failures escalate the run to FAILED instead.
type PollError struct {
	RunID   string
	Message string
	Cause   error
}

func (e *PollError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("poll error for run %s: %s: %v", e.RunID, e.Message, e.Cause)
	}
	return fmt.Sprintf("poll error for run %s: %s", e.RunID, e.Message)
}

func (e *PollError) Unwrap() error {
	return e.Cause
}

// DatasetExtractionError represents a run that succeeded but whose output
// could not be parsed into records. An empty but well-formed dataset is not
// an extraction error.
type DatasetExtractionError struct {
	Message string
	Cause   error
}

func (e *DatasetExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("dataset extraction error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("dataset extraction error: %s", e.Message)
}

func (e *DatasetExtractionError) Unwrap() error {
	return e.Cause
}
