// Package handlers exposes the tracker over a JSON HTTP API.
package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/middleware"
	"task-tracker-api/internal/notice"
	"task-tracker-api/internal/realtime"
	"task-tracker-api/internal/repository"
	"task-tracker-api/internal/tracker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler holds the dependencies shared by every endpoint.
type Handler struct {
	svc     *tracker.Service
	repos   *repository.Repositories
	tokens  *auth.Tokens
	notices *notice.Store
	hub     *realtime.Hub
	log     *zap.Logger
}

// New builds a Handler. hub may be nil when realtime is disabled.
func New(svc *tracker.Service, tokens *auth.Tokens, notices *notice.Store, hub *realtime.Hub, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		svc:     svc,
		repos:   svc.Repos(),
		tokens:  tokens,
		notices: notices,
		hub:     hub,
		log:     log,
	}
}

// actor returns the authenticated worker id or writes a 401.
func actor(c *gin.Context) (uint, bool) {
	id, ok := middleware.WorkerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Worker ID not found in token"})
		return 0, false
	}
	return id, true
}

// pathID parses the named route parameter or writes a 404.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return uint(id), true
}

// listQuery reads the search term from searchParam and the page number.
// An invalid or missing page falls back to the first one.
func listQuery(c *gin.Context, searchParam string) repository.ListQuery {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	return repository.ListQuery{Search: c.Query(searchParam), Page: page}
}

// bind decodes the JSON body or writes a 400.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return false
	}
	return true
}

// fail maps service errors onto HTTP responses.
func (h *Handler) fail(c *gin.Context, err error) {
	if fe, ok := tracker.AsFieldErrors(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": fe})
		return
	}
	if tracker.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}
	_ = c.Error(err)
	h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

// detail writes an entity together with the actor's pending notices.
func (h *Handler) detail(c *gin.Context, key string, v any) {
	resp := gin.H{key: v, "notices": []notice.Notice{}}
	if id, ok := middleware.WorkerID(c); ok {
		resp["notices"] = h.notices.Drain(id)
	}
	c.JSON(http.StatusOK, resp)
}

// seeOther sends the client to a detail route after a state change.
func seeOther(c *gin.Context, format string, id uint) {
	c.Redirect(http.StatusSeeOther, fmt.Sprintf(format, id))
}

func listEntities[T any](h *Handler, c *gin.Context, repo repository.Repository[T], searchParam string) {
	page, err := repo.List(c.Request.Context(), listQuery(c, searchParam))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func getEntity[T any](h *Handler, c *gin.Context, repo repository.Repository[T], key string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	v, err := repo.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.detail(c, key, v)
}

func deleteEntity[T any](h *Handler, c *gin.Context, repo repository.Repository[T], what string) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := repo.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info(what+" deleted", zap.Uint("id", id))
	c.JSON(http.StatusOK, gin.H{"message": what + " deleted successfully"})
}
