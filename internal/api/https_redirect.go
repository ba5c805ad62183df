package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HTTPSRedirectMiddleware forces HTTPS in production deployments
func HTTPSRedirectMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsHTTPS(c) {
			c.Next()
			return
		}

		host := c.Request.Host
		path := c.Request.RequestURI
		if host == "" {
			host = "localhost"
		}

		httpsURL := "https://" + host + path
		c.Redirect(http.StatusMovedPermanently, httpsURL)
		c.Abort()
	}
}

// HTTPSRedirectMiddlewareWithConfig toggleable variant
func HTTPSRedirectMiddlewareWithConfig(enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return HTTPSRedirectMiddleware()
}

// IsHTTPS reports whether the request arrived over HTTPS, directly or
// through a terminating proxy.
func IsHTTPS(c *gin.Context) bool {
	proto := strings.ToLower(c.GetHeader("X-Forwarded-Proto"))
	if proto == "https" {
		return true
	}

	if c.GetHeader("X-Forwarded-SSL") == "on" {
		return true
	}

	if c.Request.URL.Scheme == "https" {
		return true
	}

	if c.Request.TLS != nil {
		return true
	}

	return false
}
