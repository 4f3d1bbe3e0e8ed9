package scraping

import "time"

// Clock abstracts wall-clock access so the polling loop can be driven by a
// fake scheduler in tests instead of real sleeps.
type Clock interface {
	Now() time.Time
	After(d time.Duration) <-chan time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time                         { return time.Now() }
func (systemClock) After(d time.Duration) <-chan time.Time { return time.After(d) }
