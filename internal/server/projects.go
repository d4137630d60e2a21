package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"engboard/internal/models"
	"engboard/internal/service"
)

type projectRequest struct {
	Name         string               `json:"name" binding:"required"`
	Client       string               `json:"client"`
	Budget       float64              `json:"budget" binding:"gte=0"`
	Status       models.ProjectStatus `json:"status"`
	Deadline     string               `json:"deadline"`
	ManagerID    string               `json:"manager_id"`
	DepartmentID string               `json:"department_id"`
	Progress     int                  `json:"progress" binding:"gte=0,lte=100"`
}

func (r projectRequest) input() service.ProjectInput {
	return service.ProjectInput{
		Name:         r.Name,
		Client:       r.Client,
		Budget:       r.Budget,
		Status:       r.Status,
		Deadline:     r.Deadline,
		ManagerID:    r.ManagerID,
		DepartmentID: r.DepartmentID,
		Progress:     r.Progress,
	}
}

type milestoneRequest struct {
	Label string `json:"label" binding:"required"`
	Date  string `json:"date"`
}

// handleListProjects returns all available projects.
func (s *Server) handleListProjects(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"projects": s.service.ListProjects(c.Request.Context())})
}

// handleCreateProject creates a new project entity.
func (s *Server) handleCreateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	project, err := s.service.CreateProject(c.Request.Context(), actorFrom(c), req.input())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"project": project})
}

// handleUpdateProject edits an existing project.
func (s *Server) handleUpdateProject(c *gin.Context) {
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	project, err := s.service.UpdateProject(c.Request.Context(), actorFrom(c), c.Param("id"), req.input())
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"project": project})
}

// handleDeleteProject removes a project.
func (s *Server) handleDeleteProject(c *gin.Context) {
	if err := s.service.DeleteProject(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleProjectProgress returns the weighted completion of a project.
func (s *Server) handleProjectProgress(c *gin.Context) {
	id := c.Param("id")
	progress, err := s.service.ProjectProgress(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"project_id": id, "progress": progress})
}

// handleListMilestones returns the project timeline.
func (s *Server) handleListMilestones(c *gin.Context) {
	byDate := c.Query("order") == "date"
	list, err := s.service.ListMilestones(c.Request.Context(), actorFrom(c), c.Param("id"), byDate)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"milestones": list})
}

// handleAddMilestone appends a milestone to the timeline.
func (s *Server) handleAddMilestone(c *gin.Context) {
	var req milestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	m, err := s.service.AddMilestone(c.Request.Context(), actorFrom(c), c.Param("id"), req.Label, req.Date)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"milestone": m})
}

// handleCycleMilestone advances a milestone status.
func (s *Server) handleCycleMilestone(c *gin.Context) {
	m, err := s.service.CycleMilestone(c.Request.Context(), actorFrom(c), c.Param("id"), c.Param("mid"))
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"milestone": m})
}

// handleDeleteMilestone removes a milestone.
func (s *Server) handleDeleteMilestone(c *gin.Context) {
	if err := s.service.DeleteMilestone(c.Request.Context(), actorFrom(c), c.Param("id"), c.Param("mid")); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
