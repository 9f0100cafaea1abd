package events

import "context"

// Stream carrying all request lifecycle events.
const StreamRequests = "events:requests"

// Event types
const (
	EventRequestSubmitted     = "request_submitted"
	EventRequestStatusChanged = "request_status_changed"
)

// Request types used in event payloads.
const (
	RequestTypeVerification = "verification"
	RequestTypeCash         = "cash"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
