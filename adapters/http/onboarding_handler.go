package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/khoahotran/superleader/internal/domain/onboarding"
	"github.com/khoahotran/superleader/pkg/apperror"
)

type OnboardingService interface {
	GetOnboardingStatus(ctx context.Context, userID uuid.UUID) (*onboarding.Onboarding, error)
	UpdateOnboardingStatus(ctx context.Context, userID uuid.UUID, stepsCompleted []string, onboardingCompleted *bool) (bool, error)
}

type OnboardingHandler struct {
	onboardingService OnboardingService
}

func NewOnboardingHandler(svc OnboardingService) *OnboardingHandler {
	return &OnboardingHandler{onboardingService: svc}
}

func (h *OnboardingHandler) GetStatus(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return
	}

	o, err := h.onboardingService.GetOnboardingStatus(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToOnboardingDTO(o))
}

func (h *OnboardingHandler) UpdateStatus(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return
	}

	var req UpdateOnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for onboarding update", err))
		return
	}

	if _, err := h.onboardingService.UpdateOnboardingStatus(c.Request.Context(), userID, req.StepsCompleted, req.OnboardingCompleted); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
