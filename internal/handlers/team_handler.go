package handlers

import (
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/tracker"

	"github.com/gin-gonic/gin"
)

// ListTeams handles GET /api/teams?name=&page=
func (h *Handler) ListTeams(c *gin.Context) {
	listEntities[models.Team](h, c, h.repos.Teams, "name")
}

// GetTeam handles GET /api/teams/:id with members and projects
func (h *Handler) GetTeam(c *gin.Context) {
	getEntity[models.Team](h, c, h.repos.Teams, "team")
}

// SaveTeam handles POST /api/teams and PUT /api/teams/:id
func (h *Handler) SaveTeam(c *gin.Context) {
	id, status, ok := saveTarget(c)
	if !ok {
		return
	}
	var in tracker.TeamInput
	if !bind(c, &in) {
		return
	}
	team, err := h.svc.SaveTeam(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, team)
}

func (h *Handler) DeleteTeam(c *gin.Context) {
	deleteEntity[models.Team](h, c, h.repos.Teams, "Team")
}

// ToggleTeamMembership handles POST /api/teams/:id/toggle-assign
func (h *Handler) ToggleTeamMembership(c *gin.Context) {
	workerID, ok := actor(c)
	if !ok {
		return
	}
	teamID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.svc.ToggleTeamMembership(c.Request.Context(), workerID, teamID); err != nil {
		h.fail(c, err)
		return
	}
	seeOther(c, "/api/teams/%d", teamID)
}
