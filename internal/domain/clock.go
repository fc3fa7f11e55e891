package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock backs Now for code that has no session clock of its own: API
// requests and commands without an explicit instant, and preference
// timestamps.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source used by Now. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time of the package clock.
func Now() time.Time {
	return clock.Now()
}
