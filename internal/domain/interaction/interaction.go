package interaction

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Interaction is immutable once recorded.
type Interaction struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	PersonID  uuid.UUID `json:"person_id"`
	Type      string    `json:"type"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func (i *Interaction) Validate() error {
	if i.PersonID == uuid.Nil {
		return errors.New("person id is required")
	}
	if i.Type == "" {
		return errors.New("interaction type is required")
	}
	return nil
}

type Repository interface {
	Save(ctx context.Context, i *Interaction) error
	ListRecentByPerson(ctx context.Context, personID, userID uuid.UUID, limit int) ([]*Interaction, error)
}
