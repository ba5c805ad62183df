package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/websocket"
)

// SSEHandler streams kegiatan status-change events over Server-Sent Events,
// for clients that cannot hold a WebSocket. Token comes in a query
// parameter for the same reason as the WebSocket upgrade.
func SSEHandler(hub *websocket.Hub, validator *auth.KeycloakTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			c.Abort()
			return
		}

		principal, err := validator.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no") // disable proxy buffering

		flusher, ok := c.Writer.(http.Flusher)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
			c.Abort()
			return
		}

		events := hub.Subscribe()
		defer hub.Unsubscribe(events)

		initialMsg := map[string]interface{}{
			"type":    "connected",
			"user_id": principal.ID,
			"time":    time.Now().Unix(),
		}
		initialData, _ := json.Marshal(initialMsg)
		if err := sendSSEMessage(c.Writer, initialData); err != nil {
			return
		}
		flusher.Flush()

		heartbeat := time.NewTicker(30 * time.Second)
		defer heartbeat.Stop()

		for {
			select {
			case <-c.Request.Context().Done():
				return
			case <-heartbeat.C:
				msg := map[string]interface{}{
					"type": "heartbeat",
					"time": time.Now().Unix(),
				}
				data, _ := json.Marshal(msg)
				if err := sendSSEMessage(c.Writer, data); err != nil {
					return
				}
				flusher.Flush()
			case message, ok := <-events:
				if !ok {
					return
				}
				if err := sendSSEMessage(c.Writer, message); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

// sendSSEMessage writes one SSE frame: data: <json>\n\n
func sendSSEMessage(w io.Writer, data []byte) error {
	_, err := fmt.Fprintf(w, "data: %s\n\n", string(data))
	return err
}
