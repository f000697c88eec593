// Package auth provides request context helpers for the authenticated user.
package auth

import (
	"deelaw-backend/models"

	"github.com/gin-gonic/gin"
)

const (
	userKey  = "auth.user"
	tokenKey = "auth.token"
)

func setCurrentUser(c *gin.Context, user *models.User, token string) {
	c.Set(userKey, user)
	c.Set(tokenKey, token)
}

// CurrentUser returns the authenticated user stored by the middleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

// BearerToken returns the raw token the request authenticated with.
func BearerToken(c *gin.Context) (string, bool) {
	v, ok := c.Get(tokenKey)
	if !ok {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
