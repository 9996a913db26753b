package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/estimo-app/estimo/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ClientHandler manages client endpoints.
type ClientHandler struct {
	db *gorm.DB
}

// NewClientHandler constructs a ClientHandler.
func NewClientHandler(db *gorm.DB) *ClientHandler {
	return &ClientHandler{db: db}
}

// createClientRequest defines the request body for client creation.
type createClientRequest struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	VATNumber string `json:"vat_number"`
}

// Create creates a client owned by the acting user.
func (h *ClientHandler) Create(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body createClientRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing name"})
		return
	}

	now := time.Now().UTC()
	client := models.Client{
		OwnerID:   userID,
		Name:      name,
		Address:   strings.TrimSpace(body.Address),
		VATNumber: strings.TrimSpace(body.VATNumber),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&client).Error; errCreate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create client failed"})
		return
	}
	c.JSON(http.StatusCreated, clientResponse(&client))
}

// Get returns one of the acting user's clients by id.
func (h *ClientHandler) Get(c *gin.Context) {
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

	var client models.Client
	errFind := h.db.WithContext(c.Request.Context()).
		Where("id = ? AND owner_id = ?", id, userID).
		First(&client).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, clientResponse(&client))
}

// List returns the acting user's clients.
func (h *ClientHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	if userID == 0 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var rows []models.Client
	errFind := h.db.WithContext(c.Request.Context()).
		Where("owner_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list clients failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, clientResponse(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

func clientResponse(client *models.Client) gin.H {
	return gin.H{
		"id":         client.ID,
		"name":       client.Name,
		"address":    client.Address,
		"vat_number": client.VATNumber,
		"created_at": client.CreatedAt,
	}
}
