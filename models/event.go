package models

// EventKind tags a StreamEvent
type EventKind string

const (
	EventProgress  EventKind = "progress"
	EventAttribute EventKind = "attribute"
	EventComplete  EventKind = "complete"
	EventError     EventKind = "error"
)

// StreamEvent is one unit of the streaming protocol. Data holds the
// kind-specific payload and is encoded as JSON on the wire.
type StreamEvent struct {
	Kind EventKind
	Data interface{}
}

// ProgressPayload is carried by progress events
type ProgressPayload struct {
	Message string `json:"message"`
}

// AttributePayload is carried by attribute events
type AttributePayload struct {
	Index     int       `json:"index"`
	Total     int       `json:"total"`
	Attribute Attribute `json:"attribute"`
}

// CompletePayload is carried by the terminal complete event
type CompletePayload struct {
	Summary          string  `json:"image_summary"`
	TotalAttributes  int     `json:"total_attributes"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
}

// ErrorPayload is carried by the terminal error event
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ProgressEvent reports a pipeline stage to the client.
func ProgressEvent(message string) StreamEvent {
	return StreamEvent{Kind: EventProgress, Data: ProgressPayload{Message: message}}
}

// AttributeEvent carries the attribute at index out of total.
func AttributeEvent(index, total int, attr Attribute) StreamEvent {
	return StreamEvent{Kind: EventAttribute, Data: AttributePayload{Index: index, Total: total, Attribute: attr}}
}

// CompleteEvent ends a successful stream.
func CompleteEvent(summary string, total int, ms float64) StreamEvent {
	return StreamEvent{Kind: EventComplete, Data: CompletePayload{Summary: summary, TotalAttributes: total, ProcessingTimeMs: ms}}
}

// ErrorEvent ends a failed stream; kind names the error category.
func ErrorEvent(kind, message string) StreamEvent {
	return StreamEvent{Kind: EventError, Data: ErrorPayload{Error: kind, Message: message}}
}

// Terminal reports whether no further events may follow this one.
func (e StreamEvent) Terminal() bool {
	return e.Kind == EventComplete || e.Kind == EventError
}
