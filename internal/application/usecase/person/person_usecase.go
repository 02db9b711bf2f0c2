package person

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/application/service"
	"github.com/khoahotran/superleader/internal/domain/customfield"
	"github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/internal/domain/interaction"
	"github.com/khoahotran/superleader/internal/domain/person"
	"github.com/khoahotran/superleader/pkg/apperror"
	"github.com/khoahotran/superleader/pkg/logger"
)

const summaryInteractionLimit = 10

var (
	ErrInvalidRequest = apperror.Definition{
		Name:        "person_invalid_request",
		Base:        apperror.ErrInvalidInput,
		Message:     "user id, person id and interaction type are required",
		UserMessage: "Some required information is missing.",
	}
	ErrPersonNotFound = apperror.Definition{
		Name:        "person_not_found",
		Base:        apperror.ErrNotFound,
		Message:     "person not found",
		UserMessage: "We could not find that person.",
	}
	ErrFetchPerson = apperror.Definition{
		Name:        "person_fetch_failed",
		Base:        apperror.ErrFetchFailed,
		Message:     "failed to fetch person",
		UserMessage: "That profile is unavailable right now.",
	}
	ErrRecordInteraction = apperror.Definition{
		Name:        "interaction_record_failed",
		Base:        apperror.ErrUpdateFailed,
		Message:     "failed to record interaction",
		UserMessage: "We could not save that interaction.",
	}
	ErrGenerateSummary = apperror.Definition{
		Name:        "person_summary_failed",
		Base:        apperror.ErrUpdateFailed,
		Message:     "failed to generate person summary",
		UserMessage: "We could not generate a summary right now.",
	}
	ErrSummariesDisabled = apperror.Definition{
		Name:        "person_summary_disabled",
		Base:        apperror.ErrInternal,
		Message:     "no llm is configured",
		UserMessage: "Summaries are not available.",
	}
)

type PersonUseCase struct {
	personRepo      person.Repository
	interactionRepo interaction.Repository
	llm             service.LLMService
	publisher       service.EventPublisher
	logger          logger.Logger
	now             func() time.Time
}

func NewPersonUseCase(pr person.Repository, ir interaction.Repository, llm service.LLMService, pub service.EventPublisher, log logger.Logger) *PersonUseCase {
	return &PersonUseCase{
		personRepo:      pr,
		interactionRepo: ir,
		llm:             llm,
		publisher:       pub,
		logger:          log,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

type RecordInteractionInput struct {
	UserID   uuid.UUID
	PersonID uuid.UUID
	Type     string
	Note     string
}

func (uc *PersonUseCase) RecordInteraction(ctx context.Context, in RecordInteractionInput) (*interaction.Interaction, error) {
	i := &interaction.Interaction{
		ID:        uuid.New(),
		UserID:    in.UserID,
		PersonID:  in.PersonID,
		Type:      strings.TrimSpace(in.Type),
		Note:      in.Note,
		CreatedAt: uc.now(),
	}
	if in.UserID == uuid.Nil {
		return nil, ErrInvalidRequest.New("RecordInteraction: missing user id", nil)
	}
	if err := i.Validate(); err != nil {
		return nil, ErrInvalidRequest.New("RecordInteraction", err)
	}

	if _, err := uc.loadPerson(ctx, in.UserID, in.PersonID); err != nil {
		return nil, err
	}

	if err := uc.interactionRepo.Save(ctx, i); err != nil {
		uc.logger.Error("Failed to record interaction", err,
			zap.String("user_id", in.UserID.String()), zap.String("person_id", in.PersonID.String()))
		return nil, ErrRecordInteraction.New(fmt.Sprintf("person_id=%s", in.PersonID), err)
	}

	if uc.publisher != nil {
		uc.publisher.Publish(ctx, event.New(event.TypeInteractionRecorded, in.UserID).
			WithPerson(in.PersonID).
			With("interaction_id", i.ID.String()))
	}
	return i, nil
}

// GeneratePersonSummary asks the LLM for a profile summary built from the
// person's bio, custom fields and recent interactions, and stores it.
func (uc *PersonUseCase) GeneratePersonSummary(ctx context.Context, userID, personID uuid.UUID) (*person.Summary, error) {
	if userID == uuid.Nil || personID == uuid.Nil {
		return nil, ErrInvalidRequest.New("GeneratePersonSummary: missing id", nil)
	}
	if uc.llm == nil {
		return nil, ErrSummariesDisabled.New("GeneratePersonSummary", nil)
	}
	l := uc.logger.With(zap.String("user_id", userID.String()), zap.String("person_id", personID.String()))

	p, err := uc.loadPerson(ctx, userID, personID)
	if err != nil {
		return nil, err
	}

	recent, err := uc.interactionRepo.ListRecentByPerson(ctx, personID, userID, summaryInteractionLimit)
	if err != nil {
		l.Error("Failed to load interactions for summary", err)
		return nil, ErrFetchPerson.New(fmt.Sprintf("person_id=%s interactions", personID), err)
	}

	text, err := uc.llm.GenerateChatResponse(ctx, buildSummaryPrompt(p, recent))
	if err != nil {
		l.Error("LLM summary generation failed", err)
		return nil, ErrGenerateSummary.New(fmt.Sprintf("person_id=%s", personID), err)
	}

	summary := person.Summary{
		Text:        strings.TrimSpace(text),
		Model:       uc.llm.Model(),
		GeneratedAt: uc.now(),
	}
	if err := uc.personRepo.UpdateSummary(ctx, personID, userID, summary); err != nil {
		l.Error("Failed to store person summary", err)
		return nil, ErrGenerateSummary.New(fmt.Sprintf("person_id=%s store", personID), err)
	}

	if uc.publisher != nil {
		uc.publisher.Publish(ctx, event.New(event.TypePersonUpdated, userID).
			WithPerson(personID).
			With("field", "ai_summary"))
	}
	return &summary, nil
}

func (uc *PersonUseCase) loadPerson(ctx context.Context, userID, personID uuid.UUID) (*person.Person, error) {
	p, err := uc.personRepo.FindByID(ctx, personID, userID)
	if err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			return nil, ErrPersonNotFound.New(fmt.Sprintf("person_id=%s", personID), err)
		}
		uc.logger.Error("Failed to load person", err,
			zap.String("user_id", userID.String()), zap.String("person_id", personID.String()))
		return nil, ErrFetchPerson.New(fmt.Sprintf("person_id=%s", personID), err)
	}
	return p, nil
}

func buildSummaryPrompt(p *person.Person, recent []*interaction.Interaction) string {
	var b strings.Builder
	b.WriteString("You help a professional keep track of their relationships.\n")
	b.WriteString("Write a short, factual profile summary (3-4 sentences) of the person below.\n\n")

	fmt.Fprintf(&b, "--- Person ---\nName: %s\n", p.DisplayName())
	if p.Bio != "" {
		fmt.Fprintf(&b, "Bio: %s\n", p.Bio)
	}
	for _, f := range p.CustomFields {
		fmt.Fprintf(&b, "%s: %s\n", f.Name, customfield.Format(f.Value))
	}

	if len(recent) > 0 {
		b.WriteString("\n--- Recent interactions (newest first) ---\n")
		for _, i := range recent {
			fmt.Fprintf(&b, "- %s [%s] %s\n", i.CreatedAt.Format("2006-01-02"), i.Type, i.Note)
		}
	}

	b.WriteString("\n--- Summary ---\n")
	b.WriteString("Only use the information above. Do not invent details.")
	return b.String()
}
