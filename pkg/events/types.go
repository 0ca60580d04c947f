package events

import "time"

// EventType identifies the kind of event emitted by the runtime.
type EventType string

const (
	EventChatStart    EventType = "chat.start"
	EventChatEnd      EventType = "chat.end"
	EventChatError    EventType = "chat.error"
	EventToolCall     EventType = "tool.call"
	EventToolError    EventType = "tool.error"
	EventVerifyResult EventType = "verify.result"
	EventFeedback     EventType = "feedback.received"
	EventEvalCase     EventType = "eval.case"
	EventEvalDone     EventType = "eval.done"
)

// Event represents a single runtime event.
type Event struct {
	Type      EventType     `json:"type"`
	Timestamp time.Time     `json:"timestamp"`
	Data      any           `json:"data"`
	Duration  time.Duration `json:"duration,omitempty"`
}

// NewEvent creates a new Event with the current timestamp.
func NewEvent(typ EventType, data any) Event {
	return Event{
		Type:      typ,
		Timestamp: time.Now(),
		Data:      data,
	}
}
