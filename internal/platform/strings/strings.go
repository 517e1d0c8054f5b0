// Package strings holds the few string and slice checks module wiring needs.
package strings

import std "strings"

// IfEmpty falls back to def when in has no elements.
func IfEmpty[T any](in, def []T) []T {
	if len(in) > 0 {
		return in
	}
	return def
}

// MustString panics with "<what> is required" when s is blank.
func MustString(s, what string) string {
	if std.TrimSpace(s) == "" {
		panic(what + " is required")
	}
	return s
}

// MustPrefix turns " stations/ " into "/stations". The bare root panics.
func MustPrefix(p string) string {
	p = "/" + std.Trim(std.TrimSpace(p), " /")
	if p == "/" {
		panic("root path is required")
	}
	return p
}
