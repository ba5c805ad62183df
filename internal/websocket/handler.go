package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
)

var upgrader = gorillaWS.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// origin checks are handled by the CORS layer in front
		return true
	},
}

// Handler upgrades an authenticated request to a WebSocket connection.
// Browsers cannot set headers on WebSocket upgrades, so the token is
// carried in a query parameter.
func Handler(hub *Hub, validator *auth.KeycloakTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		principal, err := validator.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
			return
		}

		client := NewClient(uuid.New().String(), principal.ID, hub, conn)
		hub.Register <- client

		go client.ReadPump()
		go client.WritePump()
	}
}
