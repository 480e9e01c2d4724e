// Package clock provides an abstraction for time operations so that report
// timestamps can be controlled in tests. Engine code asks a Clock for the
// current time instead of calling time.Now() directly.
package clock

import "time"

// Clock is an interface for time operations.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the system time, normalized to UTC so that
// every report timestamp shares one zone.
type RealClock struct{}

// Now returns the current UTC time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts an ordinary function to the Clock interface.
type Func func() time.Time

// Now calls f.
func (f Func) Now() time.Time {
	return f()
}

var (
	_ Clock = RealClock{}
	_ Clock = Func(nil)
)
