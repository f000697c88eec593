// Package auth provides Gin middleware enforcing bearer session auth.
package auth

import (
	"context"
	"log"
	"net/http"
	"strings"

	"deelaw-backend/models"

	"github.com/gin-gonic/gin"
)

// UserResolver resolves a bearer token to its user, or fails closed.
type UserResolver interface {
	UserByToken(ctx context.Context, token string) (*models.User, error)
}

// Middleware enforces bearer token auth and injects the authenticated user
// into the request context. Every protected route passes through here before
// any ledger or chat work happens.
func Middleware(resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Printf("auth failure: missing Authorization header path=%s", c.Request.URL.Path)
			respondUnauthenticated(c)
			return
		}

		token, ok := extractBearerToken(authHeader)
		if !ok {
			log.Printf("auth failure: malformed Authorization header path=%s", c.Request.URL.Path)
			respondUnauthenticated(c)
			return
		}

		user, err := resolver.UserByToken(c.Request.Context(), token)
		if err != nil {
			log.Printf("auth failure: token invalid path=%s err=%v", c.Request.URL.Path, err)
			respondUnauthenticated(c)
			return
		}

		setCurrentUser(c, user, token)
		c.Next()
	}
}

func extractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func respondUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHENTICATED",
			"message": "Authentication required",
		},
	})
}
