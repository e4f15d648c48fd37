package events

// EventData is the interface that all event data types must implement
type EventData interface {
	// EventType returns the event type this data is associated with
	EventType() EventType
}

// StateChangedData contains data for StateChanged events
type StateChangedData struct {
	Section   string `json:"section"`
	IsLoading bool   `json:"is_loading"`
	Error     string `json:"error,omitempty"`
}

// EventType returns the event type for StateChangedData
func (d *StateChangedData) EventType() EventType {
	return StateChanged
}

// SectionLoadingData contains data for SectionLoading events
type SectionLoadingData struct {
	Section string `json:"section"`
}

// EventType returns the event type for SectionLoadingData
func (d *SectionLoadingData) EventType() EventType {
	return SectionLoading
}

// SectionLoadedData contains data for SectionLoaded events
type SectionLoadedData struct {
	Section    string   `json:"section"`
	Calls      int      `json:"calls"`
	Failed     []string `json:"failed,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

// EventType returns the event type for SectionLoadedData
func (d *SectionLoadedData) EventType() EventType {
	return SectionLoaded
}

// SectionFailedData contains data for SectionFailed events
type SectionFailedData struct {
	Section string `json:"section"`
	Error   string `json:"error"`
}

// EventType returns the event type for SectionFailedData
func (d *SectionFailedData) EventType() EventType {
	return SectionFailed
}

// CacheInvalidatedData contains data for CacheInvalidated events.
// Empty Keys means every entry was cleared.
type CacheInvalidatedData struct {
	Keys []string `json:"keys,omitempty"`
}

// EventType returns the event type for CacheInvalidatedData
func (d *CacheInvalidatedData) EventType() EventType {
	return CacheInvalidated
}

// ErrorEventData contains data for ErrorOccurred events
type ErrorEventData struct {
	Error   string                 `json:"error"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// EventType returns the event type for ErrorEventData
func (d *ErrorEventData) EventType() EventType {
	return ErrorOccurred
}
