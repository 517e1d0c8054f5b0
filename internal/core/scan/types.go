// Package scan classifies a live keyboard event stream into barcode scans
//
// a keyboard wedge scanner types a whole token at machine speed and usually ends it with
// Enter or Tab; a human types slower and less evenly. The Classifier accumulates printable
// keys into a buffer, records the gap between them, and decides at the end of a burst
// whether the buffer came from a scanner
package scan

import (
	"strings"
	"time"

	perr "scandesk/internal/platform/errors"
)

// Source says where a scan token came from
type Source string

const (
	// SourceBarcodeScanner is a token classified from hardware speed keystrokes
	SourceBarcodeScanner Source = "BARCODE_SCANNER"
	// SourceManual is a token typed or pasted by an operator
	SourceManual Source = "MANUAL"
)

// ParseSource maps a wire value to a Source
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToUpper(strings.TrimSpace(s))) {
	case SourceBarcodeScanner:
		return SourceBarcodeScanner, nil
	case SourceManual:
		return SourceManual, nil
	}
	return "", perr.InvalidArgf("unknown scan source %q", s)
}

// Terminator keys end a burst
const (
	KeyEnter = "Enter"
	KeyTab   = "Tab"
)

// TargetKind describes the element a key event was aimed at
type TargetKind uint8

const (
	// TargetNone is anything that does not accept text (page body, buttons)
	TargetNone TargetKind = iota
	// TargetManualInput is the station's own manual entry box
	TargetManualInput
	// TargetTextField is any other editable field; characters typed into it leak unless suppressed
	TargetTextField
)

// String implements fmt.Stringer
func (k TargetKind) String() string {
	switch k {
	case TargetManualInput:
		return "manual-input"
	case TargetTextField:
		return "text-field"
	default:
		return "none"
	}
}

// ParseTargetKind maps a wire value to a TargetKind, empty means TargetNone
func ParseTargetKind(s string) (TargetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return TargetNone, nil
	case "manual-input":
		return TargetManualInput, nil
	case "text-field":
		return TargetTextField, nil
	}
	return TargetNone, perr.InvalidArgf("unknown target kind %q", s)
}

// Target identifies the element a key event was dispatched to
type Target struct {
	Kind TargetKind
	ID   string
}

// Foreign reports whether the target is an editable field that is not the station's manual input
func (t Target) Foreign() bool { return t.Kind == TargetTextField }

// KeyEvent is one key-down as seen at the capture phase
type KeyEvent struct {
	// Key is the DOM style key value: a single character, or a name like "Enter", "Tab", "Shift"
	Key  string
	Ctrl bool
	Alt  bool
	Meta bool

	Target Target

	// At is when the key went down; zero means "now" on the classifier's clock
	At time.Time
}

// Verdict tells the event source what to do with the original event
type Verdict struct {
	// PreventDefault suppresses the browser default (form submit, focus move, character insert)
	PreventDefault bool `json:"prevent_default"`
	// StopPropagation keeps later handlers from seeing the event
	StopPropagation bool `json:"stop_propagation"`
	// ClearTarget asks the source to wipe characters that leaked into the target field
	ClearTarget bool `json:"clear_target"`
}

// DebugType labels a DebugEvent
type DebugType string

const (
	DebugKeystroke DebugType = "keystroke"
	DebugSubmit    DebugType = "submit"
	DebugReset     DebugType = "reset"
)

// DebugEvent is a read-only snapshot emitted on every buffer mutation
// durations are whole milliseconds and Timestamp is unix milliseconds
type DebugEvent struct {
	Type            DebugType `json:"type"`
	Key             string    `json:"key,omitempty"`
	Buffer          string    `json:"buffer"`
	Timings         []int64   `json:"timings"`
	Delay           *int64    `json:"delay,omitempty"`
	ScannerDetected bool      `json:"scanner_detected"`
	Timestamp       int64     `json:"timestamp"`
}

// Hooks receive the classifier's output
// hooks run after the classifier has released its lock, so they may call back into it
type Hooks struct {
	// OnScan receives the trimmed token of every detected scan
	OnScan func(token string)
	// OnDebug receives every DebugEvent
	OnDebug func(DebugEvent)
	// ClearTarget wipes leaked characters from a foreign text field
	ClearTarget func(Target)
}

func millis(ds []time.Duration) []int64 {
	out := make([]int64, len(ds))
	for i, d := range ds {
		out[i] = d.Milliseconds()
	}
	return out
}
