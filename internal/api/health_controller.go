package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/keycloak"
	"gorm.io/gorm"
)

// HealthController liveness and dependency checks
type HealthController struct {
	db       *gorm.DB
	keycloak *keycloak.Client
}

// NewHealthController creates a health controller
func NewHealthController(db *gorm.DB, kc *keycloak.Client) *HealthController {
	return &HealthController{
		db:       db,
		keycloak: kc,
	}
}

// Check reports overall health plus a per-dependency breakdown
func (c *HealthController) Check(ctx *gin.Context) {
	status := "healthy"
	checks := make(map[string]string)

	if c.db != nil {
		if err := c.checkDatabase(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks["database"] = "unhealthy: " + err.Error()
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	if c.keycloak != nil {
		if err := c.checkKeycloak(ctx.Request.Context()); err != nil {
			status = "unhealthy"
			checks["keycloak"] = "unhealthy: " + err.Error()
		} else {
			checks["keycloak"] = "healthy"
		}
	} else {
		checks["keycloak"] = "not configured"
	}

	httpStatus := http.StatusOK
	if status == "unhealthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	ctx.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// checkDatabase pings the database with a short timeout
func (c *HealthController) checkDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return sqlDB.PingContext(ctx)
}

// checkKeycloak verifies the admin API is reachable
func (c *HealthController) checkKeycloak(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.keycloak.Ping(ctx)
}
