package handlers

import (
	"net/http"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/notice"
	"task-tracker-api/internal/tracker"

	"github.com/gin-gonic/gin"
)

/*
ListTasks handles GET /api/tasks
Ordered by deadline, then name, then completion. Optional query
params: name (substring, case-insensitive) and page (5 per page).
*/
func (h *Handler) ListTasks(c *gin.Context) {
	listEntities[models.Task](h, c, h.repos.Tasks, "name")
}

// ListCompletedTasks handles GET /api/tasks/completed
func (h *Handler) ListCompletedTasks(c *gin.Context) {
	page, err := h.repos.Tasks.ListCompleted(c.Request.Context(), listQuery(c, "name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetTask handles GET /api/tasks/:id
func (h *Handler) GetTask(c *gin.Context) {
	getEntity[models.Task](h, c, h.repos.Tasks, "task")
}

// CreateTask handles POST /api/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var in tracker.TaskInput
	if !bind(c, &in) {
		return
	}
	task, err := h.svc.CreateTask(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/:id
func (h *Handler) UpdateTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in tracker.TaskInput
	if !bind(c, &in) {
		return
	}
	task, err := h.svc.UpdateTask(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

func (h *Handler) DeleteTask(c *gin.Context) {
	deleteEntity[models.Task](h, c, h.repos.Tasks, "Task")
}

// ToggleTaskAssignment handles POST /api/tasks/:id/toggle-assign
func (h *Handler) ToggleTaskAssignment(c *gin.Context) {
	workerID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.ToggleTaskAssignment(c.Request.Context(), workerID, taskID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if res.Rejected() {
		h.notices.Push(workerID, notice.LevelInfo, res.Notice)
	}
	seeOther(c, "/api/tasks/%d", taskID)
}

// CompleteTask handles POST /api/tasks/:id/complete
func (h *Handler) CompleteTask(c *gin.Context) {
	workerID, ok := actor(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.svc.CompleteTask(c.Request.Context(), workerID, taskID); err != nil {
		h.fail(c, err)
		return
	}
	seeOther(c, "/api/tasks/%d", taskID)
}
