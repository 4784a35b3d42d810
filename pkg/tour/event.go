package tour

import "time"

// EventKind names what happened in a tour.
type EventKind string

const (
	EventState      EventKind = "state"
	EventHeard      EventKind = "heard"
	EventSaid       EventKind = "said"
	EventDispatched EventKind = "dispatched"
	EventArrived    EventKind = "arrived"
	EventEnded      EventKind = "ended"
)

// Event is emitted to observers for every transition, utterance, reply and
// dispatch.
type Event struct {
	Kind        EventKind `json:"kind"`
	SessionID   string    `json:"session_id"`
	State       State     `json:"state"`
	Text        string    `json:"text,omitempty"`
	Act         string    `json:"act,omitempty"`
	Destination string    `json:"destination,omitempty"`
	Reason      Reason    `json:"reason,omitempty"`
	Session     Snapshot  `json:"session"`
	Time        time.Time `json:"time"`
}

// Observer receives events on the orchestrator goroutine. It must not block.
type Observer func(Event)

// Status is the latest known state of a tour.
type Status struct {
	SessionID string    `json:"session_id"`
	State     State     `json:"state"`
	Session   Snapshot  `json:"session"`
	Reason    Reason    `json:"reason,omitempty"`
	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
