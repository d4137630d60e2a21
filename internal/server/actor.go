package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"engboard/internal/access"
	"engboard/internal/models"
)

// Identity headers set by the authenticating proxy in front of the API.
const (
	HeaderActorID         = "X-Actor-ID"
	HeaderActorRole       = "X-Actor-Role"
	HeaderActorDepartment = "X-Actor-Department"
)

const actorKey = "actor"

// resolveActor reads the already-authenticated identity of the caller.
func (s *Server) resolveActor(c *gin.Context) {
	actor := models.Actor{
		ID:           strings.TrimSpace(c.GetHeader(HeaderActorID)),
		Role:         models.Role(strings.ToUpper(strings.TrimSpace(c.GetHeader(HeaderActorRole)))),
		DepartmentID: strings.TrimSpace(c.GetHeader(HeaderActorDepartment)),
	}
	if actor.ID == "" || !actor.Role.Valid() {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid actor identity"})
		return
	}
	c.Set(actorKey, actor)
	c.Next()
}

// requireManager gates routes that only the manager class may reach.
func (s *Server) requireManager(c *gin.Context) {
	actor := actorFrom(c)
	if err := access.Require(access.MilestoneManage, actor.Role); err != nil {
		s.fail(c, err)
		return
	}
	c.Next()
}

func actorFrom(c *gin.Context) models.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}
	}
	actor, _ := v.(models.Actor)
	return actor
}

// viewFrom reads the view query parameter; the default follows the role.
func viewFrom(c *gin.Context, actor models.Actor) (models.ViewMode, error) {
	raw := strings.ToUpper(strings.TrimSpace(c.Query("view")))
	if raw == "" {
		if access.IsManager(actor.Role) {
			return models.ViewTeam, nil
		}
		return models.ViewPersonal, nil
	}
	mode := models.ViewMode(raw)
	if !mode.Valid() {
		return "", models.Invalid("view", fmt.Sprintf("unknown view %q", raw))
	}
	return mode, nil
}
