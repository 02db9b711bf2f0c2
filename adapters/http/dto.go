package http

import (
	"time"

	"github.com/google/uuid"

	actionplanUC "github.com/khoahotran/superleader/internal/application/usecase/actionplan"
	"github.com/khoahotran/superleader/internal/domain/interaction"
	"github.com/khoahotran/superleader/internal/domain/onboarding"
	"github.com/khoahotran/superleader/internal/domain/task"
)

// Action plan DTOs

type TaskDTO struct {
	ID          uuid.UUID    `json:"id"`
	PersonID    *uuid.UUID   `json:"person_id"`
	Type        string       `json:"type"`
	Content     task.Content `json:"content"`
	EndAt       *time.Time   `json:"end_at"`
	CompletedAt *time.Time   `json:"completed_at"`
	SkippedAt   *time.Time   `json:"skipped_at"`
	SnoozedAt   *time.Time   `json:"snoozed_at"`
	Done        bool         `json:"done"`
}

type SectionDTO struct {
	Title string    `json:"title"`
	Tasks []TaskDTO `json:"tasks"`
}

// ActionPlanProgressDTO carries a null progress when the plan has nothing to
// score, which is not the same as 0%.
type ActionPlanProgressDTO struct {
	PlanID           *uuid.UUID     `json:"plan_id"`
	ExecutiveSummary string         `json:"executive_summary"`
	Progress         *task.Progress `json:"progress"`
	Sections         []SectionDTO   `json:"sections"`
}

func ToTaskDTO(s *task.Suggestion) TaskDTO {
	return TaskDTO{
		ID:          s.ID,
		PersonID:    s.PersonID,
		Type:        s.Type,
		Content:     s.Content,
		EndAt:       s.EndAt,
		CompletedAt: s.CompletedAt,
		SkippedAt:   s.SkippedAt,
		SnoozedAt:   s.SnoozedAt,
		Done:        s.IsDone(),
	}
}

func ToActionPlanProgressDTO(out *actionplanUC.ProgressOutput) ActionPlanProgressDTO {
	dto := ActionPlanProgressDTO{
		PlanID:           out.PlanID,
		ExecutiveSummary: out.ExecutiveSummary,
		Sections:         make([]SectionDTO, len(out.Sections)),
	}
	if out.Progress.HasProgress() {
		p := out.Progress
		dto.Progress = &p
	}
	for i, sec := range out.Sections {
		tasks := make([]TaskDTO, len(sec.Tasks))
		for j, s := range sec.Tasks {
			tasks[j] = ToTaskDTO(s)
		}
		dto.Sections[i] = SectionDTO{Title: sec.Title, Tasks: tasks}
	}
	return dto
}

// Onboarding DTOs

type UpdateOnboardingRequest struct {
	StepsCompleted      []string `json:"steps_completed"`
	OnboardingCompleted *bool    `json:"onboarding_completed"`
}

type OnboardingDTO struct {
	Completed bool                       `json:"onboarding_completed"`
	Steps     map[string]onboarding.Step `json:"steps"`
}

func ToOnboardingDTO(o *onboarding.Onboarding) OnboardingDTO {
	return OnboardingDTO{Completed: o.Completed, Steps: o.Steps}
}

// Person DTOs

type RecordInteractionRequest struct {
	Type string `json:"type" binding:"required"`
	Note string `json:"note"`
}

type InteractionDTO struct {
	ID        uuid.UUID `json:"id"`
	PersonID  uuid.UUID `json:"person_id"`
	Type      string    `json:"type"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

func ToInteractionDTO(i *interaction.Interaction) InteractionDTO {
	return InteractionDTO{
		ID:        i.ID,
		PersonID:  i.PersonID,
		Type:      i.Type,
		Note:      i.Note,
		CreatedAt: i.CreatedAt,
	}
}
