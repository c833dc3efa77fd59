package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/signworks/orderflow-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *controllerEnv) seedNotifications(user *models.User, messages ...string) []models.Notification {
	e.t.Helper()
	out := make([]models.Notification, len(messages))
	for i, msg := range messages {
		out[i] = models.Notification{UserID: user.ID, Type: "assignment", Message: msg}
		require.NoError(e.t, e.db.Create(&out[i]).Error)
	}
	return out
}

func TestNotifications(t *testing.T) {
	env := newControllerEnv(t)
	mine := env.seedNotifications(env.graphics, "first", "second", "third")
	theirs := env.seedNotifications(env.cutout, "not yours")

	list := env.router(env.graphics, http.MethodGet, "/notifications", ListNotifications)
	listed := func(query string) ([]models.Notification, int64) {
		t.Helper()
		w := env.do(list, http.MethodGet, "/notifications"+query, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var body struct {
			Data        []models.Notification `json:"data"`
			UnreadCount int64                 `json:"unreadCount"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body.Data, body.UnreadCount
	}

	items, unread := listed("")
	require.Len(t, items, 3)
	assert.Equal(t, int64(3), unread)
	assert.Equal(t, "third", items[0].Message, "newest first")

	items, _ = listed("?limit=2")
	assert.Len(t, items, 2)

	read := env.router(env.graphics, http.MethodPut, "/notifications/:id/read", MarkNotificationRead)
	w := env.do(read, http.MethodPut, fmt.Sprintf("/notifications/%d/read", mine[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var n models.Notification
	decode(t, w, &n)
	assert.True(t, n.Read)

	w = env.do(read, http.MethodPut, fmt.Sprintf("/notifications/%d/read", theirs[0].ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "another user's notification is invisible")

	items, unread = listed("?unread=true")
	assert.Len(t, items, 2)
	assert.Equal(t, int64(2), unread)

	all := env.router(env.graphics, http.MethodPut, "/notifications/read-all", MarkAllNotificationsRead)
	w = env.do(all, http.MethodPut, "/notifications/read-all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"updated":2`)

	_, unread = listed("")
	assert.Zero(t, unread)

	var other models.Notification
	require.NoError(t, env.db.First(&other, theirs[0].ID).Error)
	assert.False(t, other.Read)
}

func TestOrderMessages(t *testing.T) {
	env := newControllerEnv(t)
	order := env.newOrder()

	post := func(user *models.User, text string) int {
		r := env.router(user, http.MethodPost, "/admin/orders/:id/messages", CreateMessage)
		return env.do(r, http.MethodPost, fmt.Sprintf("/admin/orders/%d/messages", order.ID), map[string]string{"text": text}).Code
	}

	assert.Equal(t, http.StatusCreated, post(env.admin, "Customer wants warm white LEDs"))
	assert.Equal(t, http.StatusCreated, post(env.graphics, "Noted, updating the proof"))
	assert.Equal(t, http.StatusForbidden, post(env.cutout, "Not my stage yet"))
	assert.Equal(t, http.StatusBadRequest, post(env.admin, ""))
	assert.Equal(t, http.StatusBadRequest, post(env.admin, "   "))

	r := env.router(env.graphics, http.MethodGet, "/admin/orders/:id/messages", GetMessages)
	w := env.do(r, http.MethodGet, fmt.Sprintf("/admin/orders/%d/messages", order.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var messages []models.Message
	decode(t, w, &messages)
	require.Len(t, messages, 2)
	assert.Equal(t, "Customer wants warm white LEDs", messages[0].Text)
	assert.Equal(t, env.admin.ID, messages[0].Sender.ID)

	var events int64
	env.db.Model(&models.OutboxEvent{}).Where("event_type = ?", "message").Count(&events)
	assert.Equal(t, int64(2), events)

	r = env.router(env.cutout, http.MethodGet, "/admin/orders/:id/messages", GetMessages)
	w = env.do(r, http.MethodGet, fmt.Sprintf("/admin/orders/%d/messages", order.ID), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
