package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/keycloak"
)

// UserController realm user lookups backed by the Keycloak admin API
type UserController struct {
	client *keycloak.Client
	cache  *keycloak.UserCache
}

// NewUserController creates a user controller; cache may be nil
func NewUserController(client *keycloak.Client, cache *keycloak.UserCache) *UserController {
	return &UserController{
		client: client,
		cache:  cache,
	}
}

// List GET /api/v1/users?role=
// Without a role filter the full (cached) realm user list is returned.
func (c *UserController) List(ctx *gin.Context) {
	role := ctx.Query("role")

	var users []*keycloak.User
	var err error
	if role != "" {
		// role-scoped lookups bypass the cache: the mapping endpoint is
		// cheap and the result set small
		users, err = c.client.UsersByRole(ctx.Request.Context(), role)
	} else if c.cache != nil {
		users, err = c.cache.GetOrRefresh(ctx.Request.Context(), c.client.ListUsers)
	} else {
		users, err = c.client.ListUsers(ctx.Request.Context())
	}
	if err != nil {
		c.handleUpstreamError(ctx, err)
		return
	}

	Success(ctx, users)
}

// Get GET /api/v1/users/:id
func (c *UserController) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		Error(ctx, http.StatusBadRequest, "invalid user id", "user id is required")
		return
	}

	user, err := c.client.GetUser(ctx.Request.Context(), id)
	if err != nil {
		c.handleUpstreamError(ctx, err)
		return
	}

	Success(ctx, user)
}

// RefreshCache POST /api/v1/users/refresh
func (c *UserController) RefreshCache(ctx *gin.Context) {
	if c.cache != nil {
		c.cache.Invalidate()
	}
	Success(ctx, nil)
}

// handleUpstreamError distinguishes credential errors from outages
func (c *UserController) handleUpstreamError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, keycloak.ErrUpstreamCredentials):
		Error(ctx, http.StatusBadGateway, "identity provider rejected credentials", detailOf(err))
	case errors.Is(err, keycloak.ErrUpstreamUnavailable):
		Error(ctx, http.StatusServiceUnavailable, "identity provider unavailable", detailOf(err))
	default:
		Error(ctx, http.StatusInternalServerError, "internal server error", detailOf(err))
	}
}
