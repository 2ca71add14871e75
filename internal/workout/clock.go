// ABOUTME: Cancellable scheduled-callback abstraction driving the countdown.
// ABOUTME: The real clock wraps time.AfterFunc; tests substitute a manual clock.
package workout

import "time"

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks and reports the current time.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
	Now() time.Time
}

type realClock struct{}

// RealClock returns a Clock backed by the time package.
func RealClock() Clock {
	return realClock{}
}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

func (realClock) Now() time.Time {
	return time.Now()
}
