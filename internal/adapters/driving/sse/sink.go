// Package sse provides an EventSink that streams named server-sent
// events over an http.ResponseWriter.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/custodia-labs/deskhand/internal/core/ports/driving"
)

// Ensure Sink implements the interface.
var _ driving.EventSink = (*Sink)(nil)

// Sink writes server-sent events to an HTTP response. Send is safe for
// concurrent use; events are serialised behind a mutex so frames never
// interleave.
type Sink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
}

// New prepares the response for event streaming and returns the sink.
// It fails when the ResponseWriter does not support flushing (required
// for incremental delivery).
func New(w http.ResponseWriter) (*Sink, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("sse: response writer does not support flushing")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &Sink{w: w, flusher: flusher}, nil
}

// Send writes one named event with a JSON payload. A write error means
// the consumer disconnected; callers stop streaming on the first error.
func (s *Sink) Send(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("sse: marshal %s payload: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("sse: write %s: %w", event, err)
	}
	s.flusher.Flush()
	return nil
}
