// Package clock provides an injectable time source so timer driven code can be tested deterministically
//
// production code takes a Clock and uses Real(); tests use Fake and move time forward with Advance
package clock

import "time"

// Clock abstracts the parts of the time package the scan pipeline depends on
type Clock interface {
	// Now returns the current time
	Now() time.Time

	// After returns a channel that receives the current time once d has elapsed
	After(d time.Duration) <-chan time.Time

	// AfterFunc calls f once d has elapsed and returns a Timer that can cancel the call
	AfterFunc(d time.Duration, f func()) *Timer
}

// Timer is a scheduled callback created by AfterFunc
type Timer struct {
	stopFunc func() bool
}

// Stop prevents the Timer from firing
// returns true if the call stopped the timer, false if it already fired or was stopped
func (t *Timer) Stop() bool {
	if t == nil || t.stopFunc == nil {
		return false
	}
	return t.stopFunc()
}

// Real returns a Clock backed by the time package
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) AfterFunc(d time.Duration, f func()) *Timer {
	t := time.AfterFunc(d, f)
	return &Timer{stopFunc: t.Stop}
}
