package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	actionplanUC "github.com/khoahotran/superleader/internal/application/usecase/actionplan"
	"github.com/khoahotran/superleader/internal/domain/task"
	"github.com/khoahotran/superleader/pkg/apperror"
)

type ActionPlanService interface {
	GetActionPlanProgress(ctx context.Context, userID uuid.UUID) (*actionplanUC.ProgressOutput, error)
	MarkTask(ctx context.Context, userID, taskID uuid.UUID, state string) (*task.Suggestion, error)
}

type ActionPlanHandler struct {
	actionPlanService ActionPlanService
}

func NewActionPlanHandler(svc ActionPlanService) *ActionPlanHandler {
	return &ActionPlanHandler{actionPlanService: svc}
}

func (h *ActionPlanHandler) GetProgress(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return
	}

	out, err := h.actionPlanService.GetActionPlanProgress(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, ToActionPlanProgressDTO(out))
}

// MarkTask returns a handler for one terminal state, e.g. MarkTask(task.StateCompleted).
func (h *ActionPlanHandler) MarkTask(state task.State) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserIDFromGinContext(c)
		if !ok {
			c.Error(apperror.NewUnauthorized("userID not found in context", nil))
			return
		}

		taskID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.Error(apperror.NewInvalidInput("invalid task ID", err))
			return
		}

		s, err := h.actionPlanService.MarkTask(c.Request.Context(), userID, taskID, string(state))
		if err != nil {
			c.Error(err)
			return
		}
		c.JSON(http.StatusOK, ToTaskDTO(s))
	}
}
