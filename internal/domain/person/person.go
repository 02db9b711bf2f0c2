package person

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khoahotran/superleader/internal/domain/customfield"
)

type Summary struct {
	Text        string    `json:"text"`
	Model       string    `json:"model"`
	GeneratedAt time.Time `json:"generated_at"`
}

type Person struct {
	ID                uuid.UUID           `json:"id"`
	UserID            uuid.UUID           `json:"user_id"`
	FirstName         string              `json:"first_name"`
	LastName          string              `json:"last_name"`
	Bio               string              `json:"bio"`
	CompletenessScore *int                `json:"completeness_score,omitempty"`
	FollowUpScore     *int                `json:"follow_up_score,omitempty"`
	AISummary         *Summary            `json:"ai_summary,omitempty"`
	CustomFields      []customfield.Field `json:"custom_fields"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
}

func (p *Person) DisplayName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

var ErrPersonNotFound = errors.New("person not found")

type Repository interface {
	FindByID(ctx context.Context, id, userID uuid.UUID) (*Person, error)
	UpdateSummary(ctx context.Context, id, userID uuid.UUID, summary Summary) error
}
