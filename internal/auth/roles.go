package auth

import (
	"sort"
	"strings"
)

// Role coarse effective role derived from token claims
type Role string

const (
	RoleAdmin   Role = "admin"
	RolePPK     Role = "ppk"
	RoleKabalai Role = "kabalai"
	RoleRegular Role = "regular"
)

// Elevated reports whether the role sees all records regardless of ownership
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RolePPK || r == RoleKabalai
}

// roleExtractor one strategy for pulling a role list out of a claim bag.
// Returns nil when the shape it understands is not present.
type roleExtractor func(claims map[string]interface{}) []string

// roleExtractors applied in priority order, first non-empty result wins
var roleExtractors = []roleExtractor{
	extractRoleField,
	extractRolesField,
	extractClientRoles,
	extractRealmRoles,
	extractAnyRoleArray,
}

// ResolveRole derives exactly one role from a claim bag. Total: malformed
// or absent claims yield RoleRegular, never an error.
func ResolveRole(claims map[string]interface{}) Role {
	if claims == nil {
		return RoleRegular
	}
	for _, extract := range roleExtractors {
		if roles := extract(claims); len(roles) > 0 {
			return classify(roles)
		}
	}
	return RoleRegular
}

// classify ordered classification: admin > ppk > kabalai > regular
func classify(roles []string) Role {
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r), "admin") {
			return RoleAdmin
		}
	}
	for _, r := range roles {
		if strings.EqualFold(strings.TrimSpace(r), "ppk") {
			return RolePPK
		}
	}
	for _, r := range roles {
		if strings.Contains(strings.ToLower(r), "kabalai") {
			return RoleKabalai
		}
	}
	return RoleRegular
}

// extractRoleField direct "role" field, string or array
func extractRoleField(claims map[string]interface{}) []string {
	val, ok := claims["role"]
	if !ok {
		return nil
	}
	return toStringSlice(val)
}

// extractRolesField "roles" array
func extractRolesField(claims map[string]interface{}) []string {
	val, ok := claims["roles"]
	if !ok {
		return nil
	}
	return toStringSlice(val)
}

// extractClientRoles per-client role arrays under resource_access.
// Client keys are visited in sorted order so resolution stays deterministic.
func extractClientRoles(claims map[string]interface{}) []string {
	access, ok := claims["resource_access"].(map[string]interface{})
	if !ok {
		return nil
	}
	clients := make([]string, 0, len(access))
	for name := range access {
		clients = append(clients, name)
	}
	sort.Strings(clients)

	var out []string
	for _, name := range clients {
		entry, ok := access[name].(map[string]interface{})
		if !ok {
			continue
		}
		out = append(out, toStringSlice(entry["roles"])...)
	}
	return out
}

// extractRealmRoles realm-wide role array under realm_access.roles
func extractRealmRoles(claims map[string]interface{}) []string {
	realm, ok := claims["realm_access"].(map[string]interface{})
	if !ok {
		return nil
	}
	return toStringSlice(realm["roles"])
}

// knownRoleTokens literal tokens recognized by the generic claim scan
var knownRoleTokens = []string{"admin", "ppk", "kabalai", "user"}

// extractAnyRoleArray last resort: scan every array-valued claim for
// strings matching a known role token and take the first matching array.
// Claim keys are visited in sorted order so resolution stays deterministic.
func extractAnyRoleArray(claims map[string]interface{}) []string {
	keys := make([]string, 0, len(claims))
	for k := range claims {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		values := toStringSlice(claims[k])
		if len(values) == 0 {
			continue
		}
		if _, isArray := claims[k].([]interface{}); !isArray {
			if _, isStrings := claims[k].([]string); !isStrings {
				continue
			}
		}
		for _, v := range values {
			lower := strings.ToLower(v)
			for _, token := range knownRoleTokens {
				if strings.Contains(lower, token) {
					return values
				}
			}
		}
	}
	return nil
}

// toStringSlice normalizes string / []string / []interface{} claim values
func toStringSlice(val interface{}) []string {
	switch v := val.(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
