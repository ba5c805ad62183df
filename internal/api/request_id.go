package api

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rolinkstone/new-talawang-sub001/internal/service"
)

// RequestIDHeader propagated request identifier header
const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware assigns every request an id, honoring one supplied
// by an upstream proxy.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		// services only see the request context, so the audit metadata
		// has to ride on it as well
		c.Request = c.Request.WithContext(service.WithRequestMetadata(
			c.Request.Context(), requestID, c.ClientIP(), c.Request.UserAgent(),
		))

		c.Next()
	}
}

// GetRequestID returns the request id from the context
func GetRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
