// Package events provides event management functionality.
package events

import "time"

// EventType represents different event types
type EventType string

const (
	// StateChanged fires after any operation that changed published dashboard state.
	StateChanged EventType = "STATE_CHANGED"

	// Section load lifecycle
	SectionLoading EventType = "SECTION_LOADING"
	SectionLoaded  EventType = "SECTION_LOADED"
	SectionFailed  EventType = "SECTION_FAILED"

	CacheInvalidated EventType = "CACHE_INVALIDATED"
	ErrorOccurred    EventType = "ERROR_OCCURRED"
)

// Event is a single emitted event.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Module    string    `json:"module"`
	Data      EventData `json:"data,omitempty"`
}
