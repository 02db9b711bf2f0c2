package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	personUC "github.com/khoahotran/superleader/internal/application/usecase/person"
	"github.com/khoahotran/superleader/internal/domain/interaction"
	"github.com/khoahotran/superleader/internal/domain/person"
	"github.com/khoahotran/superleader/pkg/apperror"
)

type PersonService interface {
	RecordInteraction(ctx context.Context, in personUC.RecordInteractionInput) (*interaction.Interaction, error)
	GeneratePersonSummary(ctx context.Context, userID, personID uuid.UUID) (*person.Summary, error)
}

type PersonHandler struct {
	personService PersonService
}

func NewPersonHandler(svc PersonService) *PersonHandler {
	return &PersonHandler{personService: svc}
}

func (h *PersonHandler) RecordInteraction(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return
	}
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid person ID", err))
		return
	}

	var req RecordInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for interaction", err))
		return
	}

	i, err := h.personService.RecordInteraction(c.Request.Context(), personUC.RecordInteractionInput{
		UserID:   userID,
		PersonID: personID,
		Type:     req.Type,
		Note:     req.Note,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, ToInteractionDTO(i))
}

func (h *PersonHandler) GenerateSummary(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return
	}
	personID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperror.NewInvalidInput("invalid person ID", err))
		return
	}

	s, err := h.personService.GeneratePersonSummary(c.Request.Context(), userID, personID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, s)
}
