package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"engboard/internal/models"
)

type sprintRequest struct {
	Name      string `json:"name" binding:"required"`
	ProjectID string `json:"project_id" binding:"required"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type rescheduleRequest struct {
	NewEndDate string `json:"new_end_date" binding:"required"`
	Reason     string `json:"reason" binding:"required"`
}

// handleListSprints returns every sprint.
func (s *Server) handleListSprints(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"sprints": s.service.ListSprints(c.Request.Context())})
}

// handleGetSprint returns one sprint with its extension history.
func (s *Server) handleGetSprint(c *gin.Context) {
	sp, err := s.service.GetSprint(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sprint": sp})
}

// handleCreateSprint plans a new sprint.
func (s *Server) handleCreateSprint(c *gin.Context) {
	var req sprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	sp, err := s.service.CreateSprint(c.Request.Context(), actorFrom(c), req.Name, req.ProjectID, req.StartDate, req.EndDate)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"sprint": sp})
}

type sprintStep func(ctx context.Context, actor models.Actor, id string) (models.Sprint, error)

// statusHandler adapts a lifecycle step to a handler.
func (s *Server) statusHandler(step sprintStep) gin.HandlerFunc {
	return func(c *gin.Context) {
		sp, err := step(c.Request.Context(), actorFrom(c), c.Param("id"))
		if err != nil {
			s.fail(c, err)
			return
		}
		respondSuccess(c, http.StatusOK, gin.H{"sprint": sp})
	}
}

func (s *Server) handleActivateSprint(c *gin.Context) { s.statusHandler(s.service.ActivateSprint)(c) }

func (s *Server) handleCloseSprint(c *gin.Context) { s.statusHandler(s.service.CloseSprint)(c) }

func (s *Server) handleReopenSprint(c *gin.Context) { s.statusHandler(s.service.ReopenSprint)(c) }

// handleRescheduleSprint extends a sprint deadline with a mandatory reason.
func (s *Server) handleRescheduleSprint(c *gin.Context) {
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	sp, err := s.service.RescheduleSprint(c.Request.Context(), actorFrom(c), c.Param("id"), req.NewEndDate, req.Reason)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"sprint": sp})
}

// handleDeleteSprint removes a sprint and its history.
func (s *Server) handleDeleteSprint(c *gin.Context) {
	if err := s.service.DeleteSprint(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleSprintCountdown returns days remaining and the urgency flag.
func (s *Server) handleSprintCountdown(c *gin.Context) {
	cd, err := s.service.SprintCountdown(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"countdown": cd})
}
