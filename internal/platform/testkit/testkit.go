// Package testkit holds helpers shared by tests across packages.
package testkit

import (
	"sync"
	"testing"
)

var serial sync.Mutex

// MustNotPanic fails the test if fn panics.
func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	fn()
}

// Swap replaces *target for the rest of the test.
func Swap[T any](t *testing.T, target *T, v T) {
	t.Helper()
	old := *target
	*target = v
	t.Cleanup(func() { *target = old })
}

// Serial holds a process wide lock until the test ends. Tests that Swap
// package state take it first.
func Serial(t *testing.T) {
	t.Helper()
	serial.Lock()
	t.Cleanup(serial.Unlock)
}
