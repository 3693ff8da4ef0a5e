package handlers

import (
	"net/http"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/tracker"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListPositions(c *gin.Context) {
	listEntities[models.Position](h, c, h.repos.Positions, "name")
}

func (h *Handler) GetPosition(c *gin.Context) {
	getEntity[models.Position](h, c, h.repos.Positions, "position")
}

// SavePosition handles POST /api/positions and PUT /api/positions/:id
func (h *Handler) SavePosition(c *gin.Context) {
	id, status, ok := saveTarget(c)
	if !ok {
		return
	}
	var in tracker.PositionInput
	if !bind(c, &in) {
		return
	}
	p, err := h.svc.SavePosition(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, p)
}

func (h *Handler) DeletePosition(c *gin.Context) {
	deleteEntity[models.Position](h, c, h.repos.Positions, "Position")
}

func (h *Handler) ListTaskTypes(c *gin.Context) {
	listEntities[models.TaskType](h, c, h.repos.TaskTypes, "name")
}

func (h *Handler) GetTaskType(c *gin.Context) {
	getEntity[models.TaskType](h, c, h.repos.TaskTypes, "taskType")
}

// SaveTaskType handles POST /api/task-types and PUT /api/task-types/:id
func (h *Handler) SaveTaskType(c *gin.Context) {
	id, status, ok := saveTarget(c)
	if !ok {
		return
	}
	var in tracker.TaskTypeInput
	if !bind(c, &in) {
		return
	}
	tt, err := h.svc.SaveTaskType(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, tt)
}

func (h *Handler) DeleteTaskType(c *gin.Context) {
	deleteEntity[models.TaskType](h, c, h.repos.TaskTypes, "Task type")
}

// saveTarget distinguishes create (no :id, 201) from update (200).
func saveTarget(c *gin.Context) (uint, int, bool) {
	if c.Param("id") == "" {
		return 0, http.StatusCreated, true
	}
	id, ok := pathID(c, "id")
	return id, http.StatusOK, ok
}
