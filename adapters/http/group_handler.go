package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	groupUC "github.com/khoahotran/superleader/internal/application/usecase/group"
	"github.com/khoahotran/superleader/pkg/apperror"
)

type MembershipService interface {
	AddMember(ctx context.Context, in groupUC.MembershipInput) error
	RemoveMember(ctx context.Context, in groupUC.MembershipInput) error
}

type GroupHandler struct {
	membershipService MembershipService
}

func NewGroupHandler(svc MembershipService) *GroupHandler {
	return &GroupHandler{membershipService: svc}
}

func (h *GroupHandler) membershipInput(c *gin.Context) (groupUC.MembershipInput, bool) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return groupUC.MembershipInput{}, false
	}
	personID, err := uuid.Parse(c.Param("personId"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid person ID", err))
		return groupUC.MembershipInput{}, false
	}
	return groupUC.MembershipInput{UserID: userID, Slug: c.Param("slug"), PersonID: personID}, true
}

func (h *GroupHandler) AddMember(c *gin.Context) {
	in, ok := h.membershipInput(c)
	if !ok {
		return
	}
	if err := h.membershipService.AddMember(c.Request.Context(), in); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *GroupHandler) RemoveMember(c *gin.Context) {
	in, ok := h.membershipInput(c)
	if !ok {
		return
	}
	if err := h.membershipService.RemoveMember(c.Request.Context(), in); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
