package handlers

import (
	"net/http"

	"task-tracker-api/internal/models"
	"task-tracker-api/internal/notice"
	"task-tracker-api/internal/tracker"

	"github.com/gin-gonic/gin"
)

// ListProjects handles GET /api/projects?name=&page=
func (h *Handler) ListProjects(c *gin.Context) {
	listEntities[models.Project](h, c, h.repos.Projects, "name")
}

// GetProject handles GET /api/projects/:id with teams and tasks
func (h *Handler) GetProject(c *gin.Context) {
	getEntity[models.Project](h, c, h.repos.Projects, "project")
}

// SaveProject handles POST /api/projects and PUT /api/projects/:id
func (h *Handler) SaveProject(c *gin.Context) {
	id, status, ok := saveTarget(c)
	if !ok {
		return
	}
	var in tracker.ProjectInput
	if !bind(c, &in) {
		return
	}
	p, err := h.svc.SaveProject(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, p)
}

func (h *Handler) DeleteProject(c *gin.Context) {
	deleteEntity[models.Project](h, c, h.repos.Projects, "Project")
}

// CompleteProject handles POST /api/projects/:id/complete. A project with
// open tasks stays open and the actor gets an error notice.
func (h *Handler) CompleteProject(c *gin.Context) {
	workerID, ok := actor(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.svc.CompleteProject(c.Request.Context(), workerID, projectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if res.Notice != "" {
		h.notices.Push(workerID, notice.LevelError, res.Notice)
	}
	seeOther(c, "/api/projects/%d", projectID)
}

// ProjectCandidates handles GET /api/projects/:id/candidates: the workers
// that may be assigned to the project's tasks.
func (h *Handler) ProjectCandidates(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.repos.Projects.Find(ctx, projectID); err != nil {
		h.fail(c, err)
		return
	}
	workers, err := h.repos.Projects.Candidates(ctx, projectID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": workers})
}

// CreateProjectTask handles POST /api/projects/:id/tasks
func (h *Handler) CreateProjectTask(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var in tracker.TaskInput
	if !bind(c, &in) {
		return
	}
	task, err := h.svc.CreateProjectTask(c.Request.Context(), projectID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// UpdateProjectTask handles PUT /api/projects/:id/tasks/:taskId
func (h *Handler) UpdateProjectTask(c *gin.Context) {
	projectID, ok := pathID(c, "id")
	if !ok {
		return
	}
	taskID, ok := pathID(c, "taskId")
	if !ok {
		return
	}
	var in tracker.TaskInput
	if !bind(c, &in) {
		return
	}
	task, err := h.svc.UpdateProjectTask(c.Request.Context(), projectID, taskID, in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}
