package auth

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ContextKeyPrincipal gin context key holding the authenticated principal
const ContextKeyPrincipal = "principal"

// Principal the authenticated caller, built once per request from a verified token
type Principal struct {
	ID       string
	Username string
	Email    string
	Name     string
	Role     Role
	Claims   map[string]interface{}
}

// DisplayName best available human-readable name
func (p *Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Username
}

// KeycloakTokenValidator verifies Keycloak-issued JWTs against the realm JWKS
type KeycloakTokenValidator struct {
	issuer     string
	jwksURL    string
	jwksCache  *sync.Map
	httpClient *http.Client
}

// NewKeycloakTokenValidator creates a validator for the given realm issuer
func NewKeycloakTokenValidator(issuer string) *KeycloakTokenValidator {
	jwksURL := fmt.Sprintf("%s/protocol/openid-connect/certs", issuer)
	return &KeycloakTokenValidator{
		issuer:     issuer,
		jwksURL:    jwksURL,
		jwksCache:  &sync.Map{},
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Issuer returns the issuer URL
func (v *KeycloakTokenValidator) Issuer() string {
	return v.issuer
}

// ValidateToken verifies the token signature and claims and builds a Principal
func (v *KeycloakTokenValidator) ValidateToken(tokenString string) (*Principal, error) {
	// first parse without verification to learn the key id
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}

	kid, ok := token.Header["kid"].(string)
	if !ok {
		return nil, errors.New("missing kid in token header")
	}

	publicKey, err := v.GetPublicKey(kid)
	if err != nil {
		return nil, fmt.Errorf("failed to get public key: %w", err)
	}

	claims := jwt.MapClaims{}
	token, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	if iss, _ := claims.GetIssuer(); iss != v.issuer {
		return nil, errors.New("invalid issuer")
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil && exp.Before(time.Now()) {
		return nil, errors.New("token expired")
	}

	return NewPrincipal(claims), nil
}

// NewPrincipal builds a Principal from a raw claim bag
func NewPrincipal(claims map[string]interface{}) *Principal {
	return &Principal{
		ID:       stringClaim(claims, "sub"),
		Username: stringClaim(claims, "preferred_username"),
		Email:    stringClaim(claims, "email"),
		Name:     stringClaim(claims, "name"),
		Role:     ResolveRole(claims),
		Claims:   claims,
	}
}

func stringClaim(claims map[string]interface{}, key string) string {
	if s, ok := claims[key].(string); ok {
		return s
	}
	return ""
}

// GetPublicKey looks up the RSA public key for kid, from cache or JWKS
func (v *KeycloakTokenValidator) GetPublicKey(kid string) (interface{}, error) {
	if cached, ok := v.jwksCache.Load(kid); ok {
		return cached, nil
	}

	resp, err := v.httpClient.Get(v.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("JWKS endpoint returned status %d", resp.StatusCode)
	}

	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			Kty string `json:"kty"`
			Use string `json:"use"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return nil, fmt.Errorf("failed to decode JWKS: %w", err)
	}

	for _, key := range jwks.Keys {
		if key.Kid == kid {
			publicKey, err := parseRSAPublicKey(key.N, key.E)
			if err != nil {
				return nil, fmt.Errorf("failed to parse RSA public key: %w", err)
			}
			v.jwksCache.Store(kid, publicKey)
			return publicKey, nil
		}
	}

	return nil, fmt.Errorf("key not found in JWKS: %s", kid)
}

// parseRSAPublicKey builds an RSA public key from base64url modulus and exponent
func parseRSAPublicKey(nStr, eStr string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode n: %w", err)
	}

	eBytes, err := base64.RawURLEncoding.DecodeString(eStr)
	if err != nil {
		return nil, fmt.Errorf("failed to decode e: %w", err)
	}

	n := new(big.Int).SetBytes(nBytes)
	e := int(new(big.Int).SetBytes(eBytes).Int64())

	return &rsa.PublicKey{N: n, E: e}, nil
}

// KeycloakAuthMiddleware authenticates the request and attaches the Principal
func KeycloakAuthMiddleware(validator *KeycloakTokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "missing authorization header",
			})
			c.Abort()
			return
		}

		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		principal, err := validator.ValidateToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "invalid token",
				"detail":  err.Error(),
			})
			c.Abort()
			return
		}

		SetPrincipal(c, principal)
		c.Next()
	}
}

// SetPrincipal stores the principal and its commonly used fields in the context
func SetPrincipal(c *gin.Context, p *Principal) {
	c.Set(ContextKeyPrincipal, p)
	c.Set("user_id", p.ID)
	c.Set("username", p.Username)
	c.Set("email", p.Email)
	c.Set("name", p.Name)
	c.Set("role", string(p.Role))
}

// GetPrincipal retrieves the principal attached by the auth middleware
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	val, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// RequireRole guards a route group to the given roles
func RequireRole(allowed ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"code":    401,
				"message": "unauthorized",
			})
			c.Abort()
			return
		}
		for _, role := range allowed {
			if principal.Role == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"code":    403,
			"message": "insufficient role",
		})
		c.Abort()
	}
}
