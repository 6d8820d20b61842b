package store

import "time"

// Clock supplies the current time. Sweeps and the store take one so that
// SLA and auto-close timing can be tested without real waits.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }
