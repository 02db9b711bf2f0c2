package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/khoahotran/superleader/internal/domain/task"
	"github.com/khoahotran/superleader/pkg/auth"
	"github.com/khoahotran/superleader/pkg/logger"
	"github.com/khoahotran/superleader/pkg/metrics"
)

type RouterDeps struct {
	Logger   logger.Logger
	JWT      *auth.JWTService
	Gatherer prometheus.Gatherer

	Network    *NetworkHandler
	ActionPlan *ActionPlanHandler
	Onboarding *OnboardingHandler
	Person     *PersonHandler
	Group      *GroupHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(d.Logger), ErrorMiddleware(d.Logger))

	if d.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}

	api := router.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	private := api.Group("/")
	private.Use(AuthMiddleware(d.JWT, d.Logger))
	{
		private.GET("/network/completeness", d.Network.GetCompleteness)
		private.GET("/network/activity", d.Network.GetActivity)
		private.GET("/network/today", d.Network.GetToday)

		private.GET("/action-plan/progress", d.ActionPlan.GetProgress)
		private.POST("/tasks/:id/complete", d.ActionPlan.MarkTask(task.StateCompleted))
		private.POST("/tasks/:id/skip", d.ActionPlan.MarkTask(task.StateSkipped))
		private.POST("/tasks/:id/snooze", d.ActionPlan.MarkTask(task.StateSnoozed))

		private.GET("/onboarding", d.Onboarding.GetStatus)
		private.PATCH("/onboarding", d.Onboarding.UpdateStatus)

		private.POST("/people/:id/interactions", d.Person.RecordInteraction)
		private.POST("/people/:id/summary", d.Person.GenerateSummary)

		private.PUT("/groups/:slug/members/:personId", d.Group.AddMember)
		private.DELETE("/groups/:slug/members/:personId", d.Group.RemoveMember)
	}

	return router
}
