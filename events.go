package blogClient

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// EventType names an event.
type EventType string

const (
	// EventNotification is a message the user should see.
	EventNotification EventType = "notification"
	// EventRedirect asks the front end to navigate to Location.
	EventRedirect EventType = "redirect"

	EventLogin              EventType = "login"
	EventLoginFailed        EventType = "login_failed"
	EventLogout             EventType = "logout"
	EventSessionRestored    EventType = "session_restored"
	EventSessionInvalidated EventType = "session_invalidated"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Event is emitted to the configured EventSink.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Type      EventType         `json:"type"`
	Level     Level             `json:"level,omitempty"`
	Message   string            `json:"message,omitempty"`
	Location  string            `json:"location,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	UserID    int64             `json:"user_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// EventSink receives events.
type EventSink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops events.
type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink writes events into a buffered channel.
type ChannelSink struct {
	events chan Event
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan Event, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(_ context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ctx context.Context, event Event)

func (f EventSinkFunc) Emit(ctx context.Context, event Event) { f(ctx, event) }
