package handlers

import (
	"net/http"
	"strings"

	"github.com/estimo-app/estimo/internal/payments"
	"github.com/gin-gonic/gin"
)

// BillingHandler manages subscription checkout endpoints.
type BillingHandler struct {
	orchestrator *payments.Orchestrator
}

// NewBillingHandler constructs a BillingHandler.
func NewBillingHandler(orchestrator *payments.Orchestrator) *BillingHandler {
	return &BillingHandler{orchestrator: orchestrator}
}

// checkoutRequest defines the request body for subscription checkout.
type checkoutRequest struct {
	Plan string `json:"plan"`
}

// Checkout opens a recurring checkout session for a paid plan.
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body checkoutRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	link, errCreate := h.orchestrator.CreateSubscriptionCheckout(c.Request.Context(), body.Plan, userID)
	if errCreate != nil {
		respondPaymentError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"session_id": link.SessionID,
		"url":        link.URL,
	})
}

// confirmSubscriptionRequest defines the request body for confirmation.
type confirmSubscriptionRequest struct {
	SessionID string `json:"session_id"`
}

// Confirm reconciles a subscription checkout session and activates the plan.
func (h *BillingHandler) Confirm(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body confirmSubscriptionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	h.confirm(c, userID, body.SessionID)
}

// Success is the checkout return landing. It carries the session id as a
// query parameter and confirms the same way Confirm does.
func (h *BillingHandler) Success(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	h.confirm(c, userID, c.Query("session_id"))
}

// Cancel is the checkout cancellation landing. Nothing was persisted at
// creation, so there is nothing to undo.
func (h *BillingHandler) Cancel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "canceled"})
}

func (h *BillingHandler) confirm(c *gin.Context, userID uint64, sessionID string) {
	result, errConfirm := h.orchestrator.ConfirmSubscription(c.Request.Context(), strings.TrimSpace(sessionID), userID)
	if errConfirm != nil {
		respondPaymentError(c, errConfirm)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"plan":       result.Plan,
		"period_end": result.PeriodEnd,
	})
}
