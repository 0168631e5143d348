package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "CHAT_TURN_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeChatTurnCompleted  = "CHAT_TURN_COMPLETED"
	TypeCitationUnverified = "CITATION_UNVERIFIED"
)

// NewChatTurnCompleted records a finished question/answer turn.
func NewChatTurnCompleted(sessionId string, verified, retried bool, citations int) Event {
	return BaseEvent{
		Type: TypeChatTurnCompleted,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"verified":   verified,
			"retried":    retried,
			"citations":  citations,
		},
		OccurredAt: time.Now(),
	}
}

// NewCitationUnverified records a question whose answer was withheld because
// no valid citation survived the retry pass.
func NewCitationUnverified(sessionId, question string) Event {
	return BaseEvent{
		Type: TypeCitationUnverified,
		Data: map[string]interface{}{
			"session_id": sessionId,
			"question":   question,
		},
		OccurredAt: time.Now(),
	}
}
