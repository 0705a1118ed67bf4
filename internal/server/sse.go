package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// SSE event names sent by the streaming endpoint
const (
	EventStatus = "status"
	EventResult = "result"
	EventError  = "error"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// StatusEvent reports the stage an evaluation has reached
type StatusEvent struct {
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// ResultEvent carries a finished evaluation and its rendered HTML fragment
type ResultEvent struct {
	Result  any    `json:"result"`
	HTML    string `json:"html,omitempty"`
	Message string `json:"message"`
}

// ErrorEvent carries the user-facing message and the status a plain request would get
type ErrorEvent struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

// WriteStatus sends a status event
func (s *SSEWriter) WriteStatus(stage, message string) error {
	return s.WriteEvent(EventStatus, StatusEvent{Stage: stage, Message: message})
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(message string, status int) {
	s.WriteEvent(EventError, ErrorEvent{Error: message, Status: status}) //nolint:errcheck
}
