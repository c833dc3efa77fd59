package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/signworks/orderflow-api/config"
	"github.com/signworks/orderflow-api/services"
)

// ListNotifications handles GET /api/v1/notifications?unread=true&limit=
func ListNotifications(c *gin.Context) {
	user, _, ok := currentUser(c)
	if !ok {
		return
	}

	unreadOnly, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		limit = 50
	}

	notifications, unread, err := services.NewNotificationService(config.GetDB()).List(c.Request.Context(), user.ID, unreadOnly, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success":     true,
		"data":        notifications,
		"unreadCount": unread,
	})
}

// MarkNotificationRead handles PUT /api/v1/notifications/:id/read
func MarkNotificationRead(c *gin.Context) {
	user, _, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	notification, err := services.NewNotificationService(config.GetDB()).MarkRead(c.Request.Context(), user.ID, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, notification)
}

// MarkAllNotificationsRead handles PUT /api/v1/notifications/read-all
func MarkAllNotificationsRead(c *gin.Context) {
	user, _, ok := currentUser(c)
	if !ok {
		return
	}

	updated, err := services.NewNotificationService(config.GetDB()).MarkAllRead(c.Request.Context(), user.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"updated": updated})
}
