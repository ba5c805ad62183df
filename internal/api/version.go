package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// DeprecatedVersionInfo sunset metadata for a retired API version
type DeprecatedVersionInfo struct {
	Version         string
	DeprecationDate time.Time
	SunsetDate      time.Time
	MigrationPath   string
}

var (
	deprecatedVersions = make(map[string]DeprecatedVersionInfo)
	deprecatedMu       sync.RWMutex
)

// VersionMiddleware resolves the API version from the URL path or the
// API-Version header (header wins) and flags deprecated versions.
func VersionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		version := "v1"

		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v") {
			parts := strings.Split(path, "/")
			for i, part := range parts {
				if part == "api" && i+1 < len(parts) {
					nextPart := parts[i+1]
					if strings.HasPrefix(nextPart, "v") && len(nextPart) > 1 {
						version = nextPart
						break
					}
				}
			}
		}

		if headerVersion := c.GetHeader("API-Version"); headerVersion != "" {
			version = headerVersion
		}

		deprecatedMu.RLock()
		deprecationInfo, isDeprecated := deprecatedVersions[version]
		deprecatedMu.RUnlock()

		if isDeprecated {
			c.Header("X-API-Deprecated", "true")
			c.Header("X-API-Deprecation-Date", deprecationInfo.DeprecationDate.Format("2006-01-02"))
			c.Header("X-API-Sunset-Date", deprecationInfo.SunsetDate.Format("2006-01-02"))
			if deprecationInfo.MigrationPath != "" {
				c.Header("X-API-Migration-Path", deprecationInfo.MigrationPath)
			}
		}

		c.Set("api_version", version)

		c.Next()
	}
}

// GetAPIVersion returns the resolved API version
func GetAPIVersion(c *gin.Context) string {
	if version, exists := c.Get("api_version"); exists {
		if v, ok := version.(string); ok {
			return v
		}
	}
	return "v1"
}

// RegisterDeprecatedVersion marks a version as deprecated
func RegisterDeprecatedVersion(info DeprecatedVersionInfo) {
	deprecatedMu.Lock()
	defer deprecatedMu.Unlock()
	deprecatedVersions[info.Version] = info
}
