package event

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeInteractionRecorded    Type = "interaction.recorded"
	TypeGroupMembershipChanged Type = "group.membership_changed"
	TypePersonUpdated          Type = "person.updated"
	TypeTaskStateChanged       Type = "task.state_changed"
	TypeOnboardingUpdated      Type = "onboarding.updated"
)

// Event is the envelope for domain events, both in-process and on the wire.
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       Type              `json:"type"`
	UserID     uuid.UUID         `json:"user_id"`
	PersonID   uuid.UUID         `json:"person_id,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

func New(t Type, userID uuid.UUID) Event {
	return Event{
		ID:         uuid.New(),
		Type:       t,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	}
}

func (e Event) WithPerson(id uuid.UUID) Event {
	e.PersonID = id
	return e
}

func (e Event) With(key, value string) Event {
	attrs := make(map[string]string, len(e.Attributes)+1)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	attrs[key] = value
	e.Attributes = attrs
	return e
}
