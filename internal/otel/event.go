// Package otel provides structured observability for cardpool.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine,
// so emitting from the Bubble Tea update loop never blocks on disk.
package otel

import (
	"encoding/json"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Pool events
	KindPoolRequest EventKind = "pool.request"
	KindPoolApplied EventKind = "pool.applied"
	KindPoolStale   EventKind = "pool.stale"
	KindPoolError   EventKind = "pool.error"

	// Ledger and deck events
	KindLedgerRecord EventKind = "ledger.record"
	KindLedgerClear  EventKind = "ledger.clear"
	KindDeckChange   EventKind = "deck.change"
	KindDeckSave     EventKind = "deck.save"

	// System events
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"
)

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // component: "ui", "pool", "ledger", "main"
	SessionID string         `json:"session_id,omitempty"` // random hex, same for entire app run
	Gen       uint64         `json:"gen,omitempty"`        // pool request generation
	Strategy  string         `json:"strategy,omitempty"`
	Mode      string         `json:"mode,omitempty"` // "fill" or "replace"
	Dur       time.Duration  `json:"-"`              // not serialized directly
	DurMs     float64        `json:"dur_ms,omitempty"`
	Count     int            `json:"count,omitempty"`
	CardID    string         `json:"card_id,omitempty"`
	Query     string         `json:"query,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
