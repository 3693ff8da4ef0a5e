package handlers

import (
	"errors"
	"net/http"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/models"
	"task-tracker-api/internal/tracker"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login and register response
type LoginResponse struct {
	Token   string         `json:"token"`
	Worker  *models.Worker `json:"worker"`
	Message string         `json:"message"`
}

// Register handles POST /api/register
func (h *Handler) Register(c *gin.Context) {
	var in tracker.RegisterInput
	if !bind(c, &in) {
		return
	}
	w, err := h.svc.RegisterWorker(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	token, err := h.tokens.Generate(w.ID, w.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, LoginResponse{Token: token, Worker: w, Message: "Registration successful"})
}

// Login handles POST /api/login
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	w, err := h.svc.Authenticate(c.Request.Context(), req.Username, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		h.log.Info("login rejected", zap.String("username", req.Username))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	token, err := h.tokens.Generate(w.ID, w.Username)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, LoginResponse{Token: token, Worker: w, Message: "Login successful"})
}

// Index handles GET /api/index with the dashboard counters.
func (h *Handler) Index(c *gin.Context) {
	stats, err := h.repos.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	h.detail(c, "stats", stats)
}
