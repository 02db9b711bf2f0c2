package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/application/service"
	networkUC "github.com/khoahotran/superleader/internal/application/usecase/network"
	personUC "github.com/khoahotran/superleader/internal/application/usecase/person"
	"github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/internal/domain/person"
	"github.com/khoahotran/superleader/pkg/logger"
)

type SummaryGenerator interface {
	GeneratePersonSummary(ctx context.Context, userID, personID uuid.UUID) (*person.Summary, error)
}

type ProcessNetworkEventUseCase struct {
	cache     service.Cache
	summaries SummaryGenerator
	logger    logger.Logger
}

func NewProcessNetworkEventUseCase(cache service.Cache, summaries SummaryGenerator, log logger.Logger) *ProcessNetworkEventUseCase {
	return &ProcessNetworkEventUseCase{cache: cache, summaries: summaries, logger: log}
}

// Execute handles one event from the network topic. A returned error means
// the message should be retried; events that can never succeed return nil.
func (uc *ProcessNetworkEventUseCase) Execute(ctx context.Context, evt event.Event) error {
	l := uc.logger.With(
		zap.String("event_id", evt.ID.String()),
		zap.String("event_type", string(evt.Type)),
		zap.String("user_id", evt.UserID.String()),
	)

	if evt.UserID == uuid.Nil {
		l.Warn("Event without user id, skip")
		return nil
	}

	switch evt.Type {
	case event.TypeGroupMembershipChanged, event.TypePersonUpdated:
		if uc.cache == nil {
			return nil
		}
		if err := uc.cache.Delete(ctx, networkUC.CompletenessCacheKey(evt.UserID)); err != nil {
			return fmt.Errorf("invalidate completeness cache failed: %w", err)
		}
		l.Debug("Invalidated completeness cache")
		return nil

	case event.TypeInteractionRecorded:
		if evt.PersonID == uuid.Nil {
			l.Warn("Interaction event without person id, skip")
			return nil
		}
		if _, err := uc.summaries.GeneratePersonSummary(ctx, evt.UserID, evt.PersonID); err != nil {
			switch {
			case personUC.ErrPersonNotFound.Is(err):
				l.Warn("Person no longer exists, skip summary", zap.String("person_id", evt.PersonID.String()))
				return nil
			case personUC.ErrSummariesDisabled.Is(err):
				l.Debug("Summaries disabled, skip", zap.String("person_id", evt.PersonID.String()))
				return nil
			}
			return fmt.Errorf("regenerate summary for person %s failed: %w", evt.PersonID, err)
		}
		l.Info("Regenerated person summary", zap.String("person_id", evt.PersonID.String()))
		return nil

	default:
		l.Debug("No handler for event type, skip")
		return nil
	}
}
