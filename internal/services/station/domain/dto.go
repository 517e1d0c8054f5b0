// Package domain holds DTOs for station http and service contracts
package domain

import "time"

// CreateInput opens a station
type CreateInput struct {
	Path      string `json:"path,omitempty" validate:"omitempty,startswith=/,max=512" example:"/dashboard"`
	Ownership string `json:"ownership,omitempty" validate:"omitempty,max=32" example:"GLOBAL"`
	// Debug records classifier diagnostics in the station feed
	Debug bool `json:"debug,omitempty" example:"false"`
	// Operator comes from the bearer token, never from the body
	Operator string `json:"-"`
}

// TargetInput describes the element a key was typed into
type TargetInput struct {
	Kind string `json:"kind,omitempty" validate:"omitempty,oneof=none manual-input text-field" example:"text-field"`
	ID   string `json:"id,omitempty" validate:"omitempty,max=128" example:"notes"`
}

// KeyInput is one key-down captured by the client
type KeyInput struct {
	Key   string `json:"key" validate:"required,max=32" example:"T"`
	Ctrl  bool   `json:"ctrl,omitempty"`
	Alt   bool   `json:"alt,omitempty"`
	Meta  bool   `json:"meta,omitempty"`
	Shift bool   `json:"shift,omitempty"`

	Target TargetInput `json:"target"`

	// TimestampMs is the client's event time in unix milliseconds; zero means server time
	TimestampMs int64 `json:"timestamp_ms,omitempty" validate:"omitempty,min=0" example:"1767225600000"`
}

// RouteInput replaces the station's current path
type RouteInput struct {
	Path string `json:"path" validate:"required,startswith=/,max=512" example:"/manifests"`
}

// OwnershipInput sets the scan owner
type OwnershipInput struct {
	Context string `json:"context" validate:"required,max=32" example:"MANIFEST_BUILDER"`
}

// ManualInput is operator typed text for a pending manual scan
type ManualInput struct {
	Text string `json:"text" validate:"required,max=512" example:"TAC2026000123"`
}

// InjectInput broadcasts a token that did not come from the keyboard
type InjectInput struct {
	Data   string `json:"data" validate:"required,max=512" example:"MNF-2026-001"`
	Source string `json:"source,omitempty" validate:"omitempty,max=32" example:"MANUAL"`
}

// FeedQuery pages the station feed
type FeedQuery struct {
	After uint64
	Limit int
}

// StationView is the public state of a station
type StationView struct {
	ID              string    `json:"id" example:"5b0f8a5e-3c61-4d0c-9a53-0d7c1b6e2f10"`
	Path            string    `json:"path" example:"/dashboard"`
	Ownership       string    `json:"ownership" example:"GLOBAL"`
	Debug           bool      `json:"debug"`
	OpenedBy        string    `json:"opened_by,omitempty" example:"dock-3"`
	ManualPending   bool      `json:"manual_pending"`
	ManualRequestID string    `json:"manual_request_id,omitempty"`
	Buffer          string    `json:"buffer"`
	Seq             uint64    `json:"seq" example:"42"`
	Listeners       int       `json:"listeners" example:"1"`
	Published       uint64    `json:"published" example:"7"`
	Fallbacks       uint64    `json:"fallbacks" example:"0"`
	CreatedAt       time.Time `json:"created_at"`
	LastSeen        time.Time `json:"last_seen"`
}

// VerdictView tells the client what to do with the original key event
type VerdictView struct {
	PreventDefault  bool `json:"prevent_default"`
	StopPropagation bool `json:"stop_propagation"`
	ClearTarget     bool `json:"clear_target"`
}

// OwnershipView reports an ownership change
type OwnershipView struct {
	Previous string `json:"previous" example:"GLOBAL"`
	Active   string `json:"active" example:"MANIFEST_BUILDER"`
}

// ManualScanView is a settled manual scan
type ManualScanView struct {
	RequestID string `json:"request_id"`
	Token     string `json:"token" example:"TAC2026000123"`
	Source    string `json:"source" example:"BARCODE_SCANNER"`
}

// CancelView reports whether a pending manual scan was cancelled
type CancelView struct {
	Canceled bool `json:"canceled"`
}

// InjectView reports how many listeners took an injected token
type InjectView struct {
	Delivered int `json:"delivered" example:"1"`
}

// FeedItem is one outbound station event
type FeedItem struct {
	Seq  uint64    `json:"seq" example:"12"`
	Kind string    `json:"kind" example:"preview"`
	At   time.Time `json:"at"`
	Data any       `json:"data,omitempty"`
}

// FeedPage is a slice of the station feed
type FeedPage struct {
	Items []FeedItem `json:"items"`
	// Next is the cursor for the following poll
	Next uint64 `json:"next"`
	// Gap is true when items after the requested cursor were already overwritten
	Gap bool `json:"gap"`
}
