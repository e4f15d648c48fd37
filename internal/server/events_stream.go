package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aristath/bankdash/internal/events"
	"github.com/aristath/bankdash/internal/utils"
	"github.com/rs/zerolog"
)

// EventsStreamHandler streams a session's orchestrator events as Server-Sent Events.
type EventsStreamHandler struct {
	log       zerolog.Logger
	heartbeat time.Duration
}

// NewEventsStreamHandler creates a new events stream handler.
func NewEventsStreamHandler(log zerolog.Logger) *EventsStreamHandler {
	return &EventsStreamHandler{
		log:       log.With().Str("component", "events_stream").Logger(),
		heartbeat: 30 * time.Second,
	}
}

// ServeHTTP handles GET /api/sessions/{sessionID}/events.
// The optional "types" query parameter is a comma separated event type filter.
func (h *EventsStreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	typesFilter := r.URL.Query().Get("types")
	var allowedTypes map[events.EventType]bool
	if types := utils.ParseCSV(typesFilter); types != nil {
		allowedTypes = make(map[events.EventType]bool, len(types))
		for _, t := range types {
			allowedTypes[events.EventType(t)] = true
		}
	}

	eventChan := make(chan events.Event, 100)
	unsubscribe := sess.Bus().SubscribeAll(func(event events.Event) {
		if allowedTypes != nil && !allowedTypes[event.Type] {
			return
		}
		// Never block the emitting orchestrator.
		select {
		case eventChan <- event:
		default:
			h.log.Warn().
				Str("session_id", sess.ID).
				Str("event_type", string(event.Type)).
				Msg("Event channel full, dropping event")
		}
	})
	defer unsubscribe()

	h.log.Info().Str("session_id", sess.ID).Str("types_filter", typesFilter).Msg("Client connected to event stream")

	h.send(w, flusher, map[string]any{
		"type":    "connected",
		"version": sess.Version(),
	})

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.log.Info().Str("session_id", sess.ID).Msg("Client disconnected from event stream")
			return

		case event := <-eventChan:
			h.send(w, flusher, map[string]any{
				"type":      string(event.Type),
				"module":    event.Module,
				"timestamp": event.Timestamp.Format(time.RFC3339),
				"version":   sess.Version(),
				"data":      event.Data,
			})

		case <-heartbeat.C:
			sess.touch(time.Now())
			h.send(w, flusher, map[string]any{
				"type":      "heartbeat",
				"timestamp": time.Now().Format(time.RFC3339),
			})
		}
	}
}

func (h *EventsStreamHandler) send(w http.ResponseWriter, flusher http.Flusher, event map[string]any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to marshal event")
		data = []byte(`{"error":"failed to encode event"}`)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	flusher.Flush()
}
