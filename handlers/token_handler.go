package handlers

import (
	"net/http"

	"deelaw-backend/auth"
	"deelaw-backend/service"

	"github.com/gin-gonic/gin"
)

// TokenHandler exposes the quota ledger to the UI
type TokenHandler struct {
	tokenService *service.TokenService
}

// NewTokenHandler creates a new token handler
func NewTokenHandler(tokenService *service.TokenService) *TokenHandler {
	return &TokenHandler{tokenService: tokenService}
}

// Balance handles GET /api/tokens/balance. The server is the only writer of
// the ledger; clients render this re-fetched view.
func (h *TokenHandler) Balance(c *gin.Context) {
	user, ok := auth.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHENTICATED",
				"message": "Authentication required",
			},
		})
		return
	}

	tokens, err := h.tokenService.Balance(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "BALANCE_FAILED",
				"message": "Failed to load token balance",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}
