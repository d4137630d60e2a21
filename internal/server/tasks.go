package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"engboard/internal/board"
	"engboard/internal/models"
)

type createTasksRequest struct {
	board.Assignment
	Assignees []string `json:"assignees" binding:"required,min=1"`
}

type moveRequest struct {
	From models.TaskStatus `json:"from"`
	To   models.TaskStatus `json:"to" binding:"required"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

// handleListTasks returns the tasks visible to the caller.
func (s *Server) handleListTasks(c *gin.Context) {
	actor := actorFrom(c)
	mode, err := viewFrom(c, actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"view": mode, "tasks": s.service.VisibleTasks(c.Request.Context(), actor, mode)})
}

// handleBoard returns the visible tasks grouped into columns.
func (s *Server) handleBoard(c *gin.Context) {
	actor := actorFrom(c)
	mode, err := viewFrom(c, actor)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"view": mode, "columns": s.service.Board(c.Request.Context(), actor, mode)})
}

// handleCreateTasks creates one task per selected assignee.
func (s *Server) handleCreateTasks(c *gin.Context) {
	var req createTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	tasks, err := s.service.CreateTasks(c.Request.Context(), actorFrom(c), req.Assignment, req.Assignees)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"tasks": tasks})
}

// handleUpdateTask applies the detail form to a task.
func (s *Server) handleUpdateTask(c *gin.Context) {
	var patch board.Patch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.service.EditTask(c.Request.Context(), actorFrom(c), c.Param("id"), patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleMoveTask drags a card to another column.
func (s *Server) handleMoveTask(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.service.MoveTask(c.Request.Context(), actorFrom(c), c.Param("id"), req.From, req.To)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleAddComment appends a comment to a task.
func (s *Server) handleAddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	task, err := s.service.AddComment(c.Request.Context(), actorFrom(c), c.Param("id"), req.Text)
	if err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"task": task})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.service.DeleteTask(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}
