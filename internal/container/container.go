package container

import (
	"fmt"
	"time"

	"github.com/rolinkstone/new-talawang-sub001/internal/auth"
	"github.com/rolinkstone/new-talawang-sub001/internal/config"
	"github.com/rolinkstone/new-talawang-sub001/internal/database"
	"github.com/rolinkstone/new-talawang-sub001/internal/keycloak"
	"github.com/rolinkstone/new-talawang-sub001/internal/metrics"
	"github.com/rolinkstone/new-talawang-sub001/internal/websocket"
	"gorm.io/gorm"
)

// Container owns the long-lived application dependencies
type Container struct {
	cfg *config.Config

	db        *gorm.DB
	validator *auth.KeycloakTokenValidator
	pinStore  auth.PinStore
	kcClient  *keycloak.Client
	userCache *keycloak.UserCache
	hub       *websocket.Hub
	collector *metrics.Collector
}

// NewContainer builds the container from configuration
func NewContainer(cfg *config.Config) (*Container, error) {
	var db *gorm.DB
	var err error
	if config.IsProduction(cfg) {
		db, err = database.ConnectProduction(cfg.Database)
	} else {
		db, err = database.ConnectWithRetry(cfg.Database, 5, 2*time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	var validator *auth.KeycloakTokenValidator
	if cfg.Keycloak.Issuer != "" {
		validator = auth.NewKeycloakTokenValidator(cfg.Keycloak.Issuer)
	}

	kcClient := keycloak.NewClient(keycloak.Config{
		BaseURL:      cfg.Keycloak.BaseURL,
		Realm:        cfg.Keycloak.Realm,
		ClientID:     cfg.Keycloak.ClientID,
		ClientSecret: cfg.Keycloak.ClientSecret,
		Username:     cfg.Keycloak.AdminUsername,
		Password:     cfg.Keycloak.AdminPassword,
	})

	cacheTTL := time.Duration(cfg.Keycloak.CacheTTL) * time.Second
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}

	hub := websocket.NewHub()
	go hub.Run()

	collector := metrics.NewCollector(db, 30*time.Second)
	collector.Start()

	return &Container{
		cfg:       cfg,
		db:        db,
		validator: validator,
		pinStore:  auth.NewPinStore(db),
		kcClient:  kcClient,
		userCache: keycloak.NewUserCache(cacheTTL, nil),
		hub:       hub,
		collector: collector,
	}, nil
}

// Close releases container resources
func (c *Container) Close() error {
	if c.collector != nil {
		c.collector.Stop()
	}
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			return sqlDB.Close()
		}
	}
	return nil
}

// Config the loaded configuration
func (c *Container) Config() *config.Config { return c.cfg }

// DB the shared database handle
func (c *Container) DB() *gorm.DB { return c.db }

// KeycloakValidator token validator; nil when no issuer is configured
func (c *Container) KeycloakValidator() *auth.KeycloakTokenValidator { return c.validator }

// PinStore transaction-PIN store
func (c *Container) PinStore() auth.PinStore { return c.pinStore }

// KeycloakClient admin API client
func (c *Container) KeycloakClient() *keycloak.Client { return c.kcClient }

// UserCache realm user list cache
func (c *Container) UserCache() *keycloak.UserCache { return c.userCache }

// Hub WebSocket hub
func (c *Container) Hub() *websocket.Hub { return c.hub }
