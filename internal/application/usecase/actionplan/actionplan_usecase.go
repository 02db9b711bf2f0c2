package actionplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/application/service"
	"github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/internal/domain/task"
	"github.com/khoahotran/superleader/pkg/apperror"
	"github.com/khoahotran/superleader/pkg/logger"
)

var (
	ErrMissingUserID = apperror.Definition{
		Name:        "action_plan_missing_user_id",
		Base:        apperror.ErrInvalidInput,
		Message:     "user id is required",
		UserMessage: "We could not identify your account.",
	}
	ErrInvalidTask = apperror.Definition{
		Name:        "task_invalid_request",
		Base:        apperror.ErrInvalidInput,
		Message:     "task id and a valid state are required",
		UserMessage: "That task update is not valid.",
	}
	ErrTaskNotFound = apperror.Definition{
		Name:        "task_not_found",
		Base:        apperror.ErrNotFound,
		Message:     "task suggestion not found",
		UserMessage: "That task no longer exists.",
	}
	ErrFetchProgress = apperror.Definition{
		Name:        "action_plan_progress_fetch_failed",
		Base:        apperror.ErrFetchFailed,
		Message:     "failed to fetch action plan progress",
		UserMessage: "Your action plan is unavailable right now.",
	}
	ErrUpdateTask = apperror.Definition{
		Name:        "task_update_failed",
		Base:        apperror.ErrUpdateFailed,
		Message:     "failed to update task suggestion",
		UserMessage: "We could not update that task. Please try again.",
	}
)

type ActionPlanUseCase struct {
	repo      task.Repository
	publisher service.EventPublisher
	logger    logger.Logger
	now       func() time.Time
}

func NewActionPlanUseCase(repo task.Repository, pub service.EventPublisher, log logger.Logger) *ActionPlanUseCase {
	return &ActionPlanUseCase{
		repo:      repo,
		publisher: pub,
		logger:    log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type ProgressOutput struct {
	PlanID           *uuid.UUID
	ExecutiveSummary string
	Progress         task.Progress
	Sections         []task.Section
}

// GetActionPlanProgress scores the latest plan against the live task suggestions.
// A user without a plan gets the empty-progress sentinel and no sections.
func (uc *ActionPlanUseCase) GetActionPlanProgress(ctx context.Context, userID uuid.UUID) (*ProgressOutput, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUserID.New("GetActionPlanProgress", nil)
	}
	l := uc.logger.With(zap.String("user_id", userID.String()))

	plan, err := uc.repo.FindLatestPlan(ctx, userID)
	if err != nil {
		if errors.Is(err, task.ErrActionPlanNotFound) {
			return &ProgressOutput{Sections: []task.Section{}}, nil
		}
		l.Error("Failed to load action plan", err)
		return nil, ErrFetchProgress.New(fmt.Sprintf("user_id=%s", userID), err)
	}

	suggestions, err := uc.repo.ListByUser(ctx, userID)
	if err != nil {
		l.Error("Failed to load task suggestions", err, zap.String("plan_id", plan.ID.String()))
		return nil, ErrFetchProgress.New(fmt.Sprintf("user_id=%s plan_id=%s", userID, plan.ID), err)
	}

	live := task.IndexByID(suggestions)
	return &ProgressOutput{
		PlanID:           &plan.ID,
		ExecutiveSummary: plan.ExecutiveSummary,
		Progress:         task.Score(plan.TaskIDs(), live),
		Sections:         task.ResolveSections(plan, live),
	}, nil
}

// MarkTask moves a suggestion to completed, skipped or snoozed.
func (uc *ActionPlanUseCase) MarkTask(ctx context.Context, userID, taskID uuid.UUID, state string) (*task.Suggestion, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUserID.New("MarkTask", nil)
	}
	st, err := task.ParseState(state)
	if err != nil || taskID == uuid.Nil {
		return nil, ErrInvalidTask.New(fmt.Sprintf("task_id=%s state=%q", taskID, state), err)
	}

	s, err := uc.repo.MarkState(ctx, userID, taskID, st, uc.now())
	if err != nil {
		if errors.Is(err, task.ErrSuggestionNotFound) {
			return nil, ErrTaskNotFound.New(fmt.Sprintf("task_id=%s", taskID), err)
		}
		uc.logger.Error("Failed to mark task", err,
			zap.String("user_id", userID.String()), zap.String("task_id", taskID.String()), zap.String("state", state))
		return nil, ErrUpdateTask.New(fmt.Sprintf("task_id=%s state=%s", taskID, st), err)
	}

	if uc.publisher != nil {
		uc.publisher.Publish(ctx, event.New(event.TypeTaskStateChanged, userID).
			With("task_id", taskID.String()).
			With("state", string(st)))
	}
	return s, nil
}
