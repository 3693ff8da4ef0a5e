package handlers

import (
	"net/http"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/tracker"

	"github.com/gin-gonic/gin"
)

// ListWorkers handles GET /api/workers?username=&page=
func (h *Handler) ListWorkers(c *gin.Context) {
	listEntities[models.Worker](h, c, h.repos.Workers, "username")
}

// GetWorker handles GET /api/workers/:id including assigned tasks
func (h *Handler) GetWorker(c *gin.Context) {
	getEntity[models.Worker](h, c, h.repos.Workers, "worker")
}

// UpdateWorker handles PUT /api/workers/:id
func (h *Handler) UpdateWorker(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in tracker.WorkerInput
	if !bind(c, &in) {
		return
	}
	w, err := h.svc.UpdateWorker(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteWorker handles DELETE /api/workers/:id
func (h *Handler) DeleteWorker(c *gin.Context) {
	deleteEntity[models.Worker](h, c, h.repos.Workers, "Worker")
}
