package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/superleader/internal/application/service"
	networkUC "github.com/khoahotran/superleader/internal/application/usecase/network"
	"github.com/khoahotran/superleader/internal/domain/event"
	"github.com/khoahotran/superleader/internal/domain/group"
	"github.com/khoahotran/superleader/internal/domain/person"
	"github.com/khoahotran/superleader/pkg/apperror"
	"github.com/khoahotran/superleader/pkg/logger"
)

var (
	ErrInvalidRequest = apperror.Definition{
		Name:        "group_invalid_request",
		Base:        apperror.ErrInvalidInput,
		Message:     "user id, group slug and person id are required",
		UserMessage: "Some required information is missing.",
	}
	ErrGroupNotFound = apperror.Definition{
		Name:        "group_not_found",
		Base:        apperror.ErrNotFound,
		Message:     "group not found",
		UserMessage: "We could not find that group.",
	}
	ErrMemberNotFound = apperror.Definition{
		Name:        "group_member_not_found",
		Base:        apperror.ErrNotFound,
		Message:     "person is not a member of the group",
		UserMessage: "That person is not in this group.",
	}
	ErrUpdateMembership = apperror.Definition{
		Name:        "group_membership_update_failed",
		Base:        apperror.ErrUpdateFailed,
		Message:     "failed to update group membership",
		UserMessage: "We could not update that group.",
	}
)

type MembershipUseCase struct {
	groupRepo  group.Repository
	personRepo person.Repository
	cache      service.Cache
	publisher  service.EventPublisher
	logger     logger.Logger
}

// NewMembershipUseCase wires membership changes. cache may be nil; when set, the
// user's cached completeness is dropped as part of every successful change.
func NewMembershipUseCase(gr group.Repository, pr person.Repository, cache service.Cache, pub service.EventPublisher, log logger.Logger) *MembershipUseCase {
	return &MembershipUseCase{groupRepo: gr, personRepo: pr, cache: cache, publisher: pub, logger: log}
}

type MembershipInput struct {
	UserID   uuid.UUID
	Slug     string
	PersonID uuid.UUID
}

func (uc *MembershipUseCase) AddMember(ctx context.Context, in MembershipInput) error {
	m, err := uc.resolve(ctx, in)
	if err != nil {
		return err
	}
	if err := uc.groupRepo.AddMember(ctx, m); err != nil {
		uc.logFailure("add", in, err)
		return ErrUpdateMembership.New(fmt.Sprintf("add slug=%s person_id=%s", in.Slug, in.PersonID), err)
	}
	uc.invalidateCompleteness(ctx, in)
	uc.publish(ctx, in, "added")
	return nil
}

func (uc *MembershipUseCase) RemoveMember(ctx context.Context, in MembershipInput) error {
	m, err := uc.resolve(ctx, in)
	if err != nil {
		return err
	}
	if err := uc.groupRepo.RemoveMember(ctx, m); err != nil {
		if errors.Is(err, group.ErrMemberNotFound) {
			return ErrMemberNotFound.New(fmt.Sprintf("slug=%s person_id=%s", in.Slug, in.PersonID), err)
		}
		uc.logFailure("remove", in, err)
		return ErrUpdateMembership.New(fmt.Sprintf("remove slug=%s person_id=%s", in.Slug, in.PersonID), err)
	}
	uc.invalidateCompleteness(ctx, in)
	uc.publish(ctx, in, "removed")
	return nil
}

func (uc *MembershipUseCase) resolve(ctx context.Context, in MembershipInput) (group.Member, error) {
	if in.UserID == uuid.Nil || in.PersonID == uuid.Nil || in.Slug == "" {
		return group.Member{}, ErrInvalidRequest.New(fmt.Sprintf("slug=%q person_id=%s", in.Slug, in.PersonID), nil)
	}

	g, err := uc.groupRepo.FindBySlug(ctx, in.UserID, in.Slug)
	if err != nil {
		if errors.Is(err, group.ErrGroupNotFound) {
			return group.Member{}, ErrGroupNotFound.New(fmt.Sprintf("slug=%s", in.Slug), err)
		}
		uc.logFailure("find group", in, err)
		return group.Member{}, ErrUpdateMembership.New(fmt.Sprintf("find slug=%s", in.Slug), err)
	}

	if _, err := uc.personRepo.FindByID(ctx, in.PersonID, in.UserID); err != nil {
		if errors.Is(err, person.ErrPersonNotFound) {
			return group.Member{}, apperror.NewNotFound("person", in.PersonID.String())
		}
		uc.logFailure("find person", in, err)
		return group.Member{}, ErrUpdateMembership.New(fmt.Sprintf("find person_id=%s", in.PersonID), err)
	}

	return group.Member{GroupID: g.ID, PersonID: in.PersonID, UserID: in.UserID}, nil
}

func (uc *MembershipUseCase) logFailure(op string, in MembershipInput, err error) {
	uc.logger.Error("Group membership "+op+" failed", err,
		zap.String("user_id", in.UserID.String()),
		zap.String("slug", in.Slug),
		zap.String("person_id", in.PersonID.String()))
}

// invalidateCompleteness only logs a failed delete. The worker deletes the key
// again when it handles the published event.
func (uc *MembershipUseCase) invalidateCompleteness(ctx context.Context, in MembershipInput) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Delete(ctx, networkUC.CompletenessCacheKey(in.UserID)); err != nil {
		uc.logger.Warn("Failed to invalidate completeness cache",
			zap.String("user_id", in.UserID.String()),
			zap.Error(err))
	}
}

func (uc *MembershipUseCase) publish(ctx context.Context, in MembershipInput, change string) {
	if uc.publisher == nil {
		return
	}
	uc.publisher.Publish(ctx, event.New(event.TypeGroupMembershipChanged, in.UserID).
		WithPerson(in.PersonID).
		With("slug", in.Slug).
		With("change", change))
}
