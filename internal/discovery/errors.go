package discovery

import "fmt"

// GenerationError represents a failure to obtain usable records from the
// model: the call itself failed or the output could not be parsed.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation error: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}
