package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/signworks/orderflow-api/realtime"
)

// ServeWebsocket handles GET /api/v1/ws. The token has already been checked
// by the auth middleware; the role is taken from the stored account.
func ServeWebsocket(hub *realtime.Hub, upgrader *websocket.Upgrader) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, ok := currentUser(c)
		if !ok {
			return
		}
		realtime.ServeWs(hub, upgrader, c.Writer, c.Request, user.ID, user.AccountType)
	}
}
