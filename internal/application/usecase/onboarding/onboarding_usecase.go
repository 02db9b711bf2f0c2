package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/application/service"
	"github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/internal/domain/onboarding"
	"github.com/khoahotran/superleader/pkg/apperror"
	"github.com/khoahotran/superleader/pkg/logger"
)

var (
	ErrMissingUserID = apperror.Definition{
		Name:        "onboarding_missing_user_id",
		Base:        apperror.ErrInvalidInput,
		Message:     "user id is required",
		UserMessage: "We could not identify your account.",
	}
	ErrInvalidUpdate = apperror.Definition{
		Name:        "onboarding_invalid_update",
		Base:        apperror.ErrInvalidInput,
		Message:     "onboarding update is empty or has a blank step key",
		UserMessage: "That onboarding change is not valid.",
	}
	ErrUserNotFound = apperror.Definition{
		Name:        "onboarding_user_not_found",
		Base:        apperror.ErrNotFound,
		Message:     "user not found",
		UserMessage: "We could not find your account.",
	}
	ErrFetchOnboarding = apperror.Definition{
		Name:        "onboarding_fetch_failed",
		Base:        apperror.ErrFetchFailed,
		Message:     "failed to fetch onboarding status",
		UserMessage: "Your onboarding progress is unavailable right now.",
	}
	ErrUpdateOnboarding = apperror.Definition{
		Name:        "onboarding_update_failed",
		Base:        apperror.ErrUpdateFailed,
		Message:     "failed to update onboarding status",
		UserMessage: "We could not save your onboarding progress.",
	}
)

type OnboardingUseCase struct {
	repo      onboarding.Repository
	publisher service.EventPublisher
	logger    logger.Logger
}

func NewOnboardingUseCase(repo onboarding.Repository, pub service.EventPublisher, log logger.Logger) *OnboardingUseCase {
	return &OnboardingUseCase{repo: repo, publisher: pub, logger: log}
}

func (uc *OnboardingUseCase) GetOnboardingStatus(ctx context.Context, userID uuid.UUID) (*onboarding.Onboarding, error) {
	if userID == uuid.Nil {
		return nil, ErrMissingUserID.New("GetOnboardingStatus", nil)
	}
	o, err := uc.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, onboarding.ErrUserNotFound) {
			return nil, ErrUserNotFound.New(fmt.Sprintf("user_id=%s", userID), err)
		}
		uc.logger.Error("Failed to fetch onboarding status", err, zap.String("user_id", userID.String()))
		return nil, ErrFetchOnboarding.New(fmt.Sprintf("user_id=%s", userID), err)
	}
	return o, nil
}

// UpdateOnboardingStatus marks stepsCompleted as done and, when onboardingCompleted
// is non-nil, sets the top-level flag. Steps not listed keep their stored value.
func (uc *OnboardingUseCase) UpdateOnboardingStatus(ctx context.Context, userID uuid.UUID, stepsCompleted []string, onboardingCompleted *bool) (bool, error) {
	if userID == uuid.Nil {
		return false, ErrMissingUserID.New("UpdateOnboardingStatus", nil)
	}
	update := onboarding.Update{StepsCompleted: stepsCompleted, Completed: onboardingCompleted}
	if err := update.Validate(); err != nil {
		return false, ErrInvalidUpdate.New(fmt.Sprintf("steps=%v", stepsCompleted), err)
	}

	l := uc.logger.With(
		zap.String("user_id", userID.String()),
		zap.Strings("steps_completed", stepsCompleted),
	)
	if onboardingCompleted != nil {
		l = l.With(zap.Bool("onboarding_completed", *onboardingCompleted))
	}

	if _, err := uc.repo.ApplyUpdate(ctx, userID, update); err != nil {
		if errors.Is(err, onboarding.ErrUserNotFound) {
			return false, ErrUserNotFound.New(fmt.Sprintf("user_id=%s", userID), err)
		}
		l.Error("Failed to update onboarding status", err)
		return false, ErrUpdateOnboarding.New(fmt.Sprintf("user_id=%s steps=%v", userID, stepsCompleted), err)
	}

	if uc.publisher != nil {
		evt := event.New(event.TypeOnboardingUpdated, userID)
		if len(stepsCompleted) > 0 {
			evt = evt.With("steps", strings.Join(stepsCompleted, ","))
		}
		uc.publisher.Publish(ctx, evt)
	}
	return true, nil
}
