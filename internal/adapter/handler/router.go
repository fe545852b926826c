package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hoangnam-dev/persona-interview/pkg/config"
)

// Router holds all handlers
type Router struct {
	cfg              *config.Config
	projectHandler   *Project
	personaHandler   *Persona
	interviewHandler *Interview
	webhookHandler   *Webhook
}

// NewRouter creates a new router with all handlers
func NewRouter(cfg *config.Config, projectHandler *Project, personaHandler *Persona, interviewHandler *Interview, webhookHandler *Webhook) *Router {
	return &Router{
		cfg:              cfg,
		projectHandler:   projectHandler,
		personaHandler:   personaHandler,
		interviewHandler: interviewHandler,
		webhookHandler:   webhookHandler,
	}
}

// Setup configures all application routes
func (rt *Router) Setup(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", rt.healthCheck)

	// API v1 group
	v1 := e.Group("/v1")

	rt.setupProjectRoutes(v1)
	rt.setupPersonaRoutes(v1)
	rt.setupSessionRoutes(v1)
	rt.setupWebhookRoutes(v1)
}

// setupProjectRoutes configures research project routes
func (rt *Router) setupProjectRoutes(g *echo.Group) {
	projectGroup := g.Group("/projects")

	projectGroup.POST("", rt.projectHandler.Create)
	projectGroup.GET("", rt.projectHandler.List)
	projectGroup.GET("/:id", rt.projectHandler.Get)
	projectGroup.PUT("/:id", rt.projectHandler.Update)
	projectGroup.DELETE("/:id", rt.projectHandler.Archive)
	projectGroup.GET("/:id/personas", rt.personaHandler.ListByProject)
	projectGroup.GET("/:id/sessions", rt.interviewHandler.ListByProject)
}

// setupPersonaRoutes configures persona routes
func (rt *Router) setupPersonaRoutes(g *echo.Group) {
	personaGroup := g.Group("/personas")

	personaGroup.POST("", rt.personaHandler.Create)
	personaGroup.GET("/:id", rt.personaHandler.Get)
	personaGroup.PUT("/:id", rt.personaHandler.Update)
	personaGroup.DELETE("/:id", rt.personaHandler.Delete)
}

// setupSessionRoutes configures interview session routes
func (rt *Router) setupSessionRoutes(g *echo.Group) {
	sessionGroup := g.Group("/sessions")

	sessionGroup.POST("", rt.interviewHandler.Create)
	sessionGroup.GET("/:id", rt.interviewHandler.Get)
	sessionGroup.POST("/:id/start", rt.interviewHandler.Start)
	sessionGroup.POST("/:id/stop", rt.interviewHandler.Stop)
	sessionGroup.GET("/:id/status", rt.interviewHandler.Status)
	sessionGroup.GET("/:id/report", rt.interviewHandler.Report)
	sessionGroup.POST("/:id/report/retry", rt.interviewHandler.RetryPersist)
	sessionGroup.GET("/:id/metrics", rt.interviewHandler.Metrics)
	sessionGroup.POST("/:id/audio", rt.interviewHandler.PushAudio)
	sessionGroup.GET("/:id/audio", rt.interviewHandler.PullAudio)
}

// setupWebhookRoutes configures provider webhook routes
func (rt *Router) setupWebhookRoutes(g *echo.Group) {
	webhookGroup := g.Group("/webhooks")

	webhookGroup.POST("/realtime/:session_id", rt.webhookHandler.HandleRealtimeWebhook)
}

// healthCheck returns health status
func (rt *Router) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status": "ok",
	})
}
