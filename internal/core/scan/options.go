package scan

import (
	"math"
	"sort"
	"time"
)

// Defaults for Options
const (
	DefaultSpeedThreshold  = 150 * time.Millisecond
	DefaultMinScanLength   = 3
	DefaultStaleTimeout    = 1000 * time.Millisecond
	DefaultAutoSubmitDelay = 100 * time.Millisecond
	DefaultFastRatio       = 0.7
	DefaultPercentile      = 0.75
)

// Options are the classifier tunables
type Options struct {
	// SpeedThreshold is the inter-key delay below which a keystroke counts as fast
	SpeedThreshold time.Duration
	// MinScanLength is the minimum buffer length that can ever classify as a scan
	MinScanLength int
	// StaleTimeout is the idle gap after which an in-progress buffer is discarded
	StaleTimeout time.Duration
	// AutoSubmitDelay is the idle gap after a printable key before the buffer is submitted
	AutoSubmitDelay time.Duration
	// DebugMode bypasses the timing rule, any buffer of MinScanLength is a scan
	DebugMode bool
	// FastRatio is the share of fast intervals above which a burst is a scan
	FastRatio float64
	// Percentile picks the interval compared against SpeedThreshold
	Percentile float64
}

// DefaultOptions returns the production tunables
func DefaultOptions() Options {
	return Options{
		SpeedThreshold:  DefaultSpeedThreshold,
		MinScanLength:   DefaultMinScanLength,
		StaleTimeout:    DefaultStaleTimeout,
		AutoSubmitDelay: DefaultAutoSubmitDelay,
		FastRatio:       DefaultFastRatio,
		Percentile:      DefaultPercentile,
	}
}

// Normalize replaces zero or out of range values with defaults
func (o Options) Normalize() Options {
	d := DefaultOptions()
	if o.SpeedThreshold <= 0 {
		o.SpeedThreshold = d.SpeedThreshold
	}
	if o.MinScanLength <= 0 {
		o.MinScanLength = d.MinScanLength
	}
	if o.StaleTimeout <= 0 {
		o.StaleTimeout = d.StaleTimeout
	}
	if o.AutoSubmitDelay <= 0 {
		o.AutoSubmitDelay = d.AutoSubmitDelay
	}
	if o.FastRatio <= 0 || o.FastRatio >= 1 {
		o.FastRatio = d.FastRatio
	}
	if o.Percentile <= 0 || o.Percentile > 1 {
		o.Percentile = d.Percentile
	}
	return o
}

// IsScannerSpeed applies the default timing rule
func IsScannerSpeed(timings []time.Duration) bool {
	return DefaultOptions().IsScannerSpeed(timings)
}

// IsScannerSpeed reports whether inter-key delays look like a scanner
//
// one sample must itself be fast. With more samples the burst is a scan when the
// Percentile interval is fast, or when more than FastRatio of the intervals are fast;
// a few slow outliers from scheduling jitter do not break detection
func (o Options) IsScannerSpeed(timings []time.Duration) bool {
	o = o.Normalize()
	switch len(timings) {
	case 0:
		return false
	case 1:
		return timings[0] < o.SpeedThreshold
	}

	sorted := append([]time.Duration(nil), timings...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := int(math.Floor(float64(len(sorted)) * o.Percentile))
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if sorted[idx] < o.SpeedThreshold {
		return true
	}

	fast := 0
	for _, d := range sorted {
		if d < o.SpeedThreshold {
			fast++
		}
	}
	return float64(fast)/float64(len(sorted)) > o.FastRatio
}
