package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Content struct {
	Action     string `json:"action"`
	Context    string `json:"context"`
	Suggestion string `json:"suggestion"`
}

type Suggestion struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	PersonID    *uuid.UUID `json:"person_id,omitempty"`
	Type        string     `json:"type"`
	Content     Content    `json:"content"`
	EndAt       *time.Time `json:"end_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	SkippedAt   *time.Time `json:"skipped_at,omitempty"`
	SnoozedAt   *time.Time `json:"snoozed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsDone treats completed, skipped and snoozed alike.
func (s *Suggestion) IsDone() bool {
	return s.CompletedAt != nil || s.SkippedAt != nil || s.SnoozedAt != nil
}

// State is a terminal marker a suggestion can be moved to.
type State string

const (
	StateCompleted State = "completed"
	StateSkipped   State = "skipped"
	StateSnoozed   State = "snoozed"
)

var ErrInvalidState = errors.New("invalid task state")

func ParseState(s string) (State, error) {
	switch State(s) {
	case StateCompleted, StateSkipped, StateSnoozed:
		return State(s), nil
	}
	return "", ErrInvalidState
}

// Mark sets the marker for state at t and clears the other two.
func (s *Suggestion) Mark(state State, t time.Time) error {
	if _, err := ParseState(string(state)); err != nil {
		return err
	}
	s.CompletedAt, s.SkippedAt, s.SnoozedAt = nil, nil, nil
	switch state {
	case StateCompleted:
		s.CompletedAt = &t
	case StateSkipped:
		s.SkippedAt = &t
	case StateSnoozed:
		s.SnoozedAt = &t
	}
	return nil
}

type Stub struct {
	ID uuid.UUID `json:"id"`
}

type GroupSection struct {
	Title string `json:"title"`
	Tasks []Stub `json:"tasks"`
}

type ActionPlan struct {
	ID               uuid.UUID      `json:"id"`
	UserID           uuid.UUID      `json:"user_id"`
	ExecutiveSummary string         `json:"executive_summary"`
	GroupSections    []GroupSection `json:"group_sections"`
	CreatedAt        time.Time      `json:"created_at"`
}

// TaskIDs flattens all stubs in section order.
func (p *ActionPlan) TaskIDs() []uuid.UUID {
	var ids []uuid.UUID
	for _, sec := range p.GroupSections {
		for _, stub := range sec.Tasks {
			ids = append(ids, stub.ID)
		}
	}
	return ids
}

var (
	ErrSuggestionNotFound = errors.New("task suggestion not found")
	ErrActionPlanNotFound = errors.New("action plan not found")
)

type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Suggestion, error)
	FindLatestPlan(ctx context.Context, userID uuid.UUID) (*ActionPlan, error)
	MarkState(ctx context.Context, userID, taskID uuid.UUID, state State, at time.Time) (*Suggestion, error)
}
