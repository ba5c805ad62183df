package keycloak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Upstream error classes. Credential failures are permanent until the
// configuration changes; unavailable failures are transient.
var (
	ErrUpstreamCredentials = errors.New("keycloak credentials rejected")
	ErrUpstreamUnavailable = errors.New("keycloak unavailable")
)

// detailFetchConcurrency cap on parallel per-user detail requests
const detailFetchConcurrency = 8

// Config connection settings for the Keycloak admin API
type Config struct {
	BaseURL      string
	Realm        string
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// User the subset of a Keycloak user this application consumes
type User struct {
	ID         string              `json:"id"`
	Username   string              `json:"username"`
	Email      string              `json:"email"`
	FirstName  string              `json:"firstName"`
	LastName   string              `json:"lastName"`
	Enabled    bool                `json:"enabled"`
	Attributes map[string][]string `json:"attributes"`
}

// DisplayName first+last name, else the full_name attribute, else username
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if vals, ok := u.Attributes["full_name"]; ok && len(vals) > 0 && vals[0] != "" {
		return vals[0]
	}
	return u.Username
}

// Role a realm role
type Role struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client REST client for the Keycloak admin API
type Client struct {
	cfg        Config
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a Keycloak admin client
func NewClient(cfg Config) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// token fetches (or reuses) an access token via the password grant
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", c.cfg.ClientID)
	if c.cfg.ClientSecret != "" {
		form.Set("client_secret", c.cfg.ClientSecret)
	}
	form.Set("username", c.cfg.Username)
	form.Set("password", c.cfg.Password)

	endpoint := fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token", c.cfg.BaseURL, c.cfg.Realm)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest:
		return "", fmt.Errorf("%w: token endpoint returned status %d", ErrUpstreamCredentials, resp.StatusCode)
	default:
		return "", fmt.Errorf("%w: token endpoint returned status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: failed to decode token response: %v", ErrUpstreamUnavailable, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrUpstreamCredentials)
	}

	c.accessToken = payload.AccessToken
	// refresh slightly before the reported expiry
	c.tokenExpiry = time.Now().Add(time.Duration(payload.ExpiresIn-10) * time.Second)
	return c.accessToken, nil
}

// get performs an authenticated GET against the admin API and decodes into out
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/admin/realms/%s%s", c.cfg.BaseURL, c.cfg.Realm, path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: admin API returned status %d for %s", ErrUpstreamCredentials, resp.StatusCode, path)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s not found", ErrUpstreamUnavailable, path)
	default:
		return fmt.Errorf("%w: admin API returned status %d for %s", ErrUpstreamUnavailable, resp.StatusCode, path)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Ping verifies the admin API is reachable with the configured credentials
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.token(ctx)
	return err
}

// ListUsers lists all users in the realm
func (c *Client) ListUsers(ctx context.Context) ([]*User, error) {
	var users []*User
	if err := c.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser fetches one user's detail
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/"+url.PathEscape(id), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetRole looks up a realm role by name
func (c *Client) GetRole(ctx context.Context, name string) (*Role, error) {
	var role Role
	if err := c.get(ctx, "/roles/"+url.PathEscape(name), &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// GetUserRealmRoles lists the realm roles mapped to a user
func (c *Client) GetUserRealmRoles(ctx context.Context, userID string) ([]string, error) {
	var roles []Role
	if err := c.get(ctx, "/users/"+url.PathEscape(userID)+"/role-mappings/realm", &roles); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	return names, nil
}

// UsersByRole lists enabled users holding the given realm role. The
// primary strategy asks the role-to-users endpoint; on any failure it
// falls back to listing all users and filtering by their role mappings.
// An error is returned only when both strategies fail.
func (c *Client) UsersByRole(ctx context.Context, roleName string) ([]*User, error) {
	users, primaryErr := c.usersByRoleMapping(ctx, roleName)
	if primaryErr == nil {
		return users, nil
	}
	if errors.Is(primaryErr, ErrUpstreamCredentials) {
		// the fallback would hit the same credential wall
		return nil, primaryErr
	}

	users, fallbackErr := c.usersByRoleScan(ctx, roleName)
	if fallbackErr != nil {
		return nil, fmt.Errorf("primary lookup failed (%v), fallback failed: %w", primaryErr, fallbackErr)
	}
	return users, nil
}

// usersByRoleMapping role-to-users endpoint, then parallel detail fetches.
// Individual detail failures drop the affected user from the result; only
// the initial listing (or token fetch) aborts the batch.
func (c *Client) usersByRoleMapping(ctx context.Context, roleName string) ([]*User, error) {
	var members []*User
	if err := c.get(ctx, "/roles/"+url.PathEscape(roleName)+"/users", &members); err != nil {
		return nil, err
	}

	details := make([]*User, len(members))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detailFetchConcurrency)
	for i, member := range members {
		i, member := i, member
		g.Go(func() error {
			detail, err := c.GetUser(gctx, member.ID)
			if err != nil {
				// tolerated: the user is dropped from the result set
				return nil
			}
			details[i] = detail
			return nil
		})
	}
	_ = g.Wait()

	out := make([]*User, 0, len(details))
	for _, user := range details {
		if user != nil && user.Enabled {
			out = append(out, user)
		}
	}
	return out, nil
}

// usersByRoleScan fallback: list everyone and filter by role mappings
func (c *Client) usersByRoleScan(ctx context.Context, roleName string) ([]*User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	matches := make([]*User, 0, len(users))
	for _, user := range users {
		if !user.Enabled {
			continue
		}
		roles, err := c.GetUserRealmRoles(ctx, user.ID)
		if err != nil {
			// tolerated: the user is dropped from the result set
			continue
		}
		for _, r := range roles {
			if strings.EqualFold(r, roleName) {
				matches = append(matches, user)
				break
			}
		}
	}
	return matches, nil
}
