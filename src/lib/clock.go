package lib

import (
	"github.com/jonboulle/clockwork"
)

var clock clockwork.Clock

// GetClock returns the process-wide clock. Every time-windowed rule (refund
// tiers, payment expiry, review window) reads time through here.
func GetClock() clockwork.Clock {
	if clock != nil {
		return clock
	}
	clock = clockwork.NewRealClock()
	return clock
}

// NewClock replaces the clock instance, used by tests to pin the current time.
func NewClock(c clockwork.Clock) clockwork.Clock {
	clock = c
	return clock
}
