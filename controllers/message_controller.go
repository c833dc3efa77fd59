package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/services"
)

// CreateMessageRequest represents the request body for commenting on an order
type CreateMessageRequest struct {
	Text string `json:"text" binding:"required,min=1,max=1000"`
}

// CreateMessage handles POST /api/v1/admin/orders/:id/messages
func CreateMessage(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	message, err := services.NewMessageService(config.GetDB()).PostMessage(c.Request.Context(), actor, orderID, req.Text)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, message)
}

// GetMessages handles GET /api/v1/admin/orders/:id/messages
func GetMessages(c *gin.Context) {
	_, actor, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	messages, err := services.NewMessageService(config.GetDB()).ListMessages(c.Request.Context(), actor, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, messages)
}
