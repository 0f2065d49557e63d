package model

import "encoding/json"

// EventRecord is the JSON representation of one emitted event in an
// event stream (JSONL file or database row).
type EventRecord struct {
	Seq       uint64          `json:"seq"`
	Timestamp uint32          `json:"timestamp"`
	EventName string          `json:"event_name"`
	Decoded   json.RawMessage `json:"decoded"`
	Error     string          `json:"error,omitempty"`
}
