package routes

import (
	"net/http"

	"task-tracker-api/internal/auth"
	"task-tracker-api/internal/handlers"
	"task-tracker-api/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func SetupRoutes(h *handlers.Handler, tokens *auth.Tokens, log *zap.Logger) *gin.Engine {
	ginRouter := gin.New()
	ginRouter.Use(middleware.RequestID(), middleware.RequestLogger(log), middleware.Recovery(log))

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Location, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task Tracker API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/register", h.Register)
		api.POST("/login", h.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware(tokens))
	{
		protectedRoutes.GET("/index", h.Index)
		protectedRoutes.GET("/ws", h.WebSocket)

		// Worker endpoints
		protectedRoutes.GET("/workers", h.ListWorkers)
		protectedRoutes.GET("/workers/:id", h.GetWorker)
		protectedRoutes.PUT("/workers/:id", h.UpdateWorker)
		protectedRoutes.DELETE("/workers/:id", h.DeleteWorker)

		// Position endpoints
		protectedRoutes.GET("/positions", h.ListPositions)
		protectedRoutes.POST("/positions", h.SavePosition)
		protectedRoutes.GET("/positions/:id", h.GetPosition)
		protectedRoutes.PUT("/positions/:id", h.SavePosition)
		protectedRoutes.DELETE("/positions/:id", h.DeletePosition)

		// Task type endpoints
		protectedRoutes.GET("/task-types", h.ListTaskTypes)
		protectedRoutes.POST("/task-types", h.SaveTaskType)
		protectedRoutes.GET("/task-types/:id", h.GetTaskType)
		protectedRoutes.PUT("/task-types/:id", h.SaveTaskType)
		protectedRoutes.DELETE("/task-types/:id", h.DeleteTaskType)

		// Team endpoints
		protectedRoutes.GET("/teams", h.ListTeams)
		protectedRoutes.POST("/teams", h.SaveTeam)
		protectedRoutes.GET("/teams/:id", h.GetTeam)
		protectedRoutes.PUT("/teams/:id", h.SaveTeam)
		protectedRoutes.DELETE("/teams/:id", h.DeleteTeam)
		protectedRoutes.POST("/teams/:id/toggle-assign", h.ToggleTeamMembership)

		// Project endpoints
		protectedRoutes.GET("/projects", h.ListProjects)
		protectedRoutes.POST("/projects", h.SaveProject)
		protectedRoutes.GET("/projects/:id", h.GetProject)
		protectedRoutes.PUT("/projects/:id", h.SaveProject)
		protectedRoutes.DELETE("/projects/:id", h.DeleteProject)
		protectedRoutes.POST("/projects/:id/complete", h.CompleteProject)
		protectedRoutes.GET("/projects/:id/candidates", h.ProjectCandidates)
		protectedRoutes.POST("/projects/:id/tasks", h.CreateProjectTask)
		protectedRoutes.PUT("/projects/:id/tasks/:taskId", h.UpdateProjectTask)

		// Task endpoints
		protectedRoutes.GET("/tasks", h.ListTasks)
		protectedRoutes.GET("/tasks/completed", h.ListCompletedTasks)
		protectedRoutes.POST("/tasks", h.CreateTask)
		protectedRoutes.GET("/tasks/:id", h.GetTask)
		protectedRoutes.PUT("/tasks/:id", h.UpdateTask)
		protectedRoutes.DELETE("/tasks/:id", h.DeleteTask)
		protectedRoutes.POST("/tasks/:id/toggle-assign", h.ToggleTaskAssignment)
		protectedRoutes.POST("/tasks/:id/complete", h.CompleteTask)
	}

	return ginRouter
}
