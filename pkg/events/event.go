package events

import "time"

const (
	TypeTurnEvaluated  = "TURN_EVALUATED"
	TypeCourseIngested = "COURSE_INGESTED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "TURN_EVALUATED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation
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

// NewTurnEvaluated reports a retention score recorded by a session.
// Average is the running mean after the new score.
func NewTurnEvaluated(sessionID, topic, course string, retention, average float64, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeTurnEvaluated,
		Data: map[string]interface{}{
			"session_id":        sessionID,
			"topic":             topic,
			"course":            course,
			"retention":         retention,
			"retention_average": average,
			"occurred_at":       at.UTC().Format(time.RFC3339),
		},
		OccurredAt: at,
	}
}

// NewCourseIngested reports course material that was indexed
func NewCourseIngested(course string, chunks int, at time.Time) BaseEvent {
	return BaseEvent{
		Type: TypeCourseIngested,
		Data: map[string]interface{}{
			"course":      course,
			"chunks":      chunks,
			"occurred_at": at.UTC().Format(time.RFC3339),
		},
		OccurredAt: at,
	}
}
