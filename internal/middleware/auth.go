package middleware

import (
	"net/http"
	"strings"

	"task-tracker-api/internal/auth"

	"github.com/gin-gonic/gin"
)

// Context keys set by JWTAuthMiddleware
const (
	WorkerIDKey = "worker_id"
	UsernameKey = "username"
)

// JWTAuthMiddleware validates the bearer token and stores the worker in the context
func JWTAuthMiddleware(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			// Extract token from "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Browsers cannot set headers on a websocket upgrade
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		claims, err := tokens.Validate(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(WorkerIDKey, claims.WorkerID)
		c.Set(UsernameKey, claims.Username)
		c.Next()
	}
}

// WorkerID returns the authenticated worker's id.
func WorkerID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(WorkerIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
