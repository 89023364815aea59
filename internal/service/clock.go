package service

import "time"

// Clock returns the current time. Injected so lifecycle records are deterministic in tests.
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}
