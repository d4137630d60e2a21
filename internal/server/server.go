package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"engboard/internal/models"
	"engboard/internal/service"
)

// Server provides HTTP handlers for the engineering board backend.
type Server struct {
	engine  *gin.Engine
	service *service.Service
	logger  *slog.Logger
}

// New constructs the HTTP server with routes and middleware configured.
func New(svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/api/healthz"))

	srv := &Server{
		engine:  router,
		service: svc,
		logger:  logger,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API handlers together.
func (s *Server) registerRoutes() {
	s.engine.GET("/api/healthz", s.handleHealth)

	api := s.engine.Group("/api", s.resolveActor)
	{
		api.GET("/employees", s.handleListEmployees)

		projects := api.Group("/projects")
		{
			projects.GET("", s.handleListProjects)
			projects.POST("", s.handleCreateProject)
			projects.PUT(":id", s.handleUpdateProject)
			projects.DELETE(":id", s.handleDeleteProject)
			projects.GET(":id/progress", s.handleProjectProgress)
			projects.GET(":id/milestones", s.handleListMilestones)

			milestones := projects.Group(":id/milestones", s.requireManager)
			{
				milestones.POST("", s.handleAddMilestone)
				milestones.POST(":mid/cycle", s.handleCycleMilestone)
				milestones.DELETE(":mid", s.handleDeleteMilestone)
			}
		}

		api.GET("/board", s.handleBoard)
		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.POST("", s.handleCreateTasks)
			tasks.PUT(":id", s.handleUpdateTask)
			tasks.POST(":id/move", s.handleMoveTask)
			tasks.POST(":id/comments", s.handleAddComment)
			tasks.DELETE(":id", s.handleDeleteTask)
		}

		sprints := api.Group("/sprints")
		{
			sprints.GET("", s.handleListSprints)
			sprints.POST("", s.handleCreateSprint)
			sprints.GET(":id", s.handleGetSprint)
			sprints.DELETE(":id", s.handleDeleteSprint)
			sprints.POST(":id/activate", s.handleActivateSprint)
			sprints.POST(":id/close", s.handleCloseSprint)
			sprints.POST(":id/reopen", s.handleReopenSprint)
			sprints.POST(":id/reschedule", s.handleRescheduleSprint)
			sprints.GET(":id/countdown", s.handleSprintCountdown)
		}
	}

	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
	})
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleListEmployees returns the employee directory.
func (s *Server) handleListEmployees(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"employees": s.service.ListEmployees(c.Request.Context())})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	} else {
		s.logger.Warn("request rejected", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}

	body := gin.H{"error": err.Error()}
	if status == http.StatusForbidden {
		body["access_denied"] = true
	}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		body["field"] = ve.Field
	}
	c.AbortWithStatusJSON(status, body)
}

// fail responds with the status matching err.
func (s *Server) fail(c *gin.Context, err error) {
	s.respondError(c, statusFor(err), err)
}

// respondSuccess wraps a payload in a JSON envelope for consistency.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
