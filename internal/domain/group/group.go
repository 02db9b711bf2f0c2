package group

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Group struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
}

type Member struct {
	GroupID  uuid.UUID `json:"group_id"`
	PersonID uuid.UUID `json:"person_id"`
	UserID   uuid.UUID `json:"user_id"`
}

var (
	ErrGroupNotFound  = errors.New("group not found")
	ErrMemberNotFound = errors.New("group member not found")
)

type Repository interface {
	FindBySlug(ctx context.Context, userID uuid.UUID, slug string) (*Group, error)
	// AddMember is idempotent.
	AddMember(ctx context.Context, m Member) error
	RemoveMember(ctx context.Context, m Member) error
}
