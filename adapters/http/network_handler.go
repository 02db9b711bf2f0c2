package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/khoahotran/superleader/internal/domain/network"
	"github.com/khoahotran/superleader/pkg/apperror"
)

const defaultActivityDays = 7

type NetworkService interface {
	GetNetworkCompleteness(ctx context.Context, userID uuid.UUID) (*network.Completeness, error)
	GetNetworkActivity(ctx context.Context, userID uuid.UUID, days int, timezone string) (*network.Activity, error)
	GetTodaysActivity(ctx context.Context, userID uuid.UUID, timezone string) (*network.TodaysActivity, error)
}

type NetworkHandler struct {
	networkService NetworkService
}

func NewNetworkHandler(svc NetworkService) *NetworkHandler {
	return &NetworkHandler{networkService: svc}
}

func (h *NetworkHandler) GetCompleteness(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return
	}

	out, err := h.networkService.GetNetworkCompleteness(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *NetworkHandler) GetActivity(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return
	}

	days := defaultActivityDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.Error(apperror.NewInvalidInput("'days' must be an integer", err))
			return
		}
		days = n
	}

	out, err := h.networkService.GetNetworkActivity(c.Request.Context(), userID, days, c.Query("timezone"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *NetworkHandler) GetToday(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("userID not found in context", nil))
		return
	}

	out, err := h.networkService.GetTodaysActivity(c.Request.Context(), userID, c.Query("timezone"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, out)
}
