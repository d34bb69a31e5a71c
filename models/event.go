package models

import "time"

// Event types emitted after successful writes.
const (
	EventClassCreated       = "class.created"
	EventClassUpdated       = "class.updated"
	EventClassStatusChanged = "class.status_changed"
	EventUserCreated        = "user.created"
	EventUserDeleted        = "user.deleted"
	EventInstructorApplied  = "instructor.applied"
	EventPaymentSettled     = "payment.settled"
)

type Event struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Subject string    `json:"subject"`
	Actor   string    `json:"actor,omitempty"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}
