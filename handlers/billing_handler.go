package handlers

import (
	"errors"
	"net/http"

	"deelaw-backend/auth"
	"deelaw-backend/service"

	"github.com/gin-gonic/gin"
)

// BillingHandler handles HTTP requests for purchase verification
type BillingHandler struct {
	billingService *service.BillingService
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *service.BillingService) *BillingHandler {
	return &BillingHandler{billingService: billingService}
}

type verifyPurchaseRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// Verify handles POST /api/billing/verify. The client posts the checkout
// reference after the hosted gateway flow completes; the grant happens here,
// never client-side.
func (h *BillingHandler) Verify(c *gin.Context) {
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

	var req verifyPurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_INPUT",
				"message": "Transaction reference is required",
			},
		})
		return
	}

	result, err := h.billingService.VerifyPurchase(c.Request.Context(), user, req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PAYMENT_NOT_FOUND",
					"message": "Transaction reference not found",
				},
			})
		case errors.Is(err, service.ErrPaymentNotSuccess):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PAYMENT_NOT_SUCCESSFUL",
					"message": "Transaction was not successful",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VERIFICATION_FAILED",
					"message": "Failed to verify transaction",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens": result.Tokens})
}
