// Package progress correlates a chat request with the server-sent event
// stream that reports its progress. Each request id owns an unbounded FIFO
// channel that lives only while a client is subscribed.
package progress

import "time"

// Type classifies a progress event for the client UI.
type Type string

const (
	Info    Type = "info"
	Detail  Type = "detail"
	Success Type = "success"
	Error   Type = "error"
)

// timestampLayout mirrors an ISO-8601 local timestamp with microseconds.
const timestampLayout = "2006-01-02T15:04:05.000000"

// Event is a single progress message. It is delivered once and then dropped.
type Event struct {
	Type      Type   `json:"type"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// NewEvent stamps a message with the current local time.
func NewEvent(t Type, message string) Event {
	return Event{Type: t, Message: message, Timestamp: time.Now().Format(timestampLayout)}
}
