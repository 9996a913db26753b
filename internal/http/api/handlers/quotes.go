package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/estimo-app/estimo/internal/clock"
	"github.com/estimo-app/estimo/internal/entitlement"
	"github.com/estimo-app/estimo/internal/models"
	"github.com/estimo-app/estimo/internal/payments"
	"github.com/estimo-app/estimo/internal/pdf"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// QuoteHandler manages quote endpoints, including the metered PDF download
// and the one-off payment flow.
type QuoteHandler struct {
	db           *gorm.DB
	evaluator    *entitlement.Evaluator
	orchestrator *payments.Orchestrator
	renderer     pdf.Renderer
	clk          clock.Clock
}

// NewQuoteHandler constructs a QuoteHandler.
func NewQuoteHandler(db *gorm.DB, evaluator *entitlement.Evaluator, orchestrator *payments.Orchestrator, renderer pdf.Renderer, clk clock.Clock) *QuoteHandler {
	return &QuoteHandler{
		db:           db,
		evaluator:    evaluator,
		orchestrator: orchestrator,
		renderer:     renderer,
		clk:          clk,
	}
}

// createQuoteRequest defines the request body for quote creation.
type createQuoteRequest struct {
	ClientID   uint64  `json:"client_id"`
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	VATPercent float64 `json:"vat_percent"`
}

// Create creates a quote under one of the acting user's clients.
func (h *QuoteHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createQuoteRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}
	if body.ClientID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "client_id is required"})
		return
	}
	if body.Amount < 0 || body.VATPercent < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount and vat_percent must not be negative"})
		return
	}

	var client models.Client
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND owner_id = ?", body.ClientID, userID).
		First(&client).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "client not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	now := time.Now().UTC()
	quote := models.Quote{
		ClientID:      client.ID,
		Name:          name,
		Amount:        body.Amount,
		VATPercent:    body.VATPercent,
		PaymentStatus: models.PaymentStatusNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&quote).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create quote failed"})
		return
	}
	c.JSON(http.StatusCreated, quoteResponse(&quote))
}

// Get returns a quote owned (via its client) by the acting user.
func (h *QuoteHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	quote, ok := h.loadOwnedQuote(c, userID)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, quoteResponse(quote))
}

// PDF renders the quote document. This is the metered action: the
// entitlement check runs first, usage is committed only after a successful
// render.
func (h *QuoteHandler) PDF(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	decision, errCheck := h.evaluator.CanPerform(c.Request.Context(), userID)
	if errCheck != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "entitlement check failed"})
		return
	}
	if !decision.Allowed {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": decision.Reason})
		return
	}

	quote, ok := h.loadOwnedQuote(c, userID)
	if !ok {
		return
	}
	var client models.Client
	if errClient := h.db.WithContext(c.Request.Context()).First(&client, quote.ClientID).Error; errClient != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	html, errBuild := pdf.BuildQuoteHTML(quote, &client, h.clk.Now())
	if errBuild != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "build document failed"})
		return
	}
	data, errRender := h.renderer.RenderHTML(c.Request.Context(), html)
	if errRender != nil {
		log.WithError(errRender).WithField("quote_id", quote.ID).Error("render quote pdf")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render pdf failed"})
		return
	}

	if errCommit := h.evaluator.Commit(c.Request.Context(), userID); errCommit != nil {
		log.WithError(errCommit).WithField("user_id", userID).Error("commit usage after render")
	}

	filename := fmt.Sprintf("quote-%d.pdf", quote.ID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// paylinkResponse maps an orchestrator link to the wire shape.
func paylinkResponse(link *payments.PaymentLink) gin.H {
	return gin.H{
		"session_id": link.SessionID,
		"url":        link.URL,
	}
}

// CreatePayLink opens a one-off payment session for a quote.
func (h *QuoteHandler) CreatePayLink(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	link, errCreate := h.orchestrator.CreateQuotePaymentSession(c.Request.Context(), id, userID)
	if errCreate != nil {
		respondPaymentError(c, errCreate)
		return
	}
	c.JSON(http.StatusCreated, paylinkResponse(link))
}

// confirmQuotePaymentRequest defines the request body for confirmation.
type confirmQuotePaymentRequest struct {
	SessionID string `json:"session_id"`
}

// ConfirmPayment reconciles a quote payment session against the provider.
func (h *QuoteHandler) ConfirmPayment(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body confirmQuotePaymentRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if errConfirm := h.orchestrator.ConfirmQuotePayment(c.Request.Context(), body.SessionID, userID); errConfirm != nil {
		respondPaymentError(c, errConfirm)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "paid"})
}

// loadOwnedQuote loads the quote in :id and enforces ownership through the
// owning client. Writes the error response itself when the load fails.
func (h *QuoteHandler) loadOwnedQuote(c *gin.Context, userID uint64) (*models.Quote, bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return nil, false
	}

	var quote models.Quote
	errFind := h.db.WithContext(c.Request.Context()).
		Joins("JOIN clients ON clients.id = quotes.client_id").
		Where("quotes.id = ? AND clients.owner_id = ?", id, userID).
		First(&quote).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &quote, true
}

func quoteResponse(quote *models.Quote) gin.H {
	return gin.H{
		"id":             quote.ID,
		"client_id":      quote.ClientID,
		"name":           quote.Name,
		"amount":         quote.Amount,
		"vat_percent":    quote.VATPercent,
		"total":          quote.Total(),
		"payment_status": quote.PaymentStatus,
		"payment_url":    quote.PaymentURL,
		"created_at":     quote.CreatedAt,
	}
}

// respondPaymentError maps payment errors onto HTTP statuses. Business
// rejections come back as client errors; provider failures as 502.
func respondPaymentError(c *gin.Context, err error) {
	var notPaid *payments.NotPaidError
	var provider *payments.ProviderError
	switch {
	case errors.Is(err, payments.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, payments.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, payments.ErrEmptySessionID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
	case errors.As(err, &notPaid):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "session not paid",
			"status":         notPaid.Status,
			"payment_status": notPaid.PaymentStatus,
		})
	case errors.As(err, &provider):
		log.WithError(provider).Error("payment provider call failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment provider unavailable"})
	default:
		log.WithError(err).Error("payment operation failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "payment operation failed"})
	}
}
