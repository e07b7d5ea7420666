package backoffice

import (
	"errors"
	"fmt"
	"strings"

	"github.com/edumeal/backoffice/pkg/enums/role"
	"github.com/golang-jwt/jwt/v5"
)

const (
	msRoleClaim   = "http://schemas.microsoft.com/ws/2008/06/identity/claims/role"
	msNameIDClaim = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier"
	msNameClaim   = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name"
	msEmailClaim  = "http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress"
)

var ErrNoRole = errors.New("token carries no known role")

// Identity is what the service reads from a backend access token.
type Identity struct {
	UserID string
	Name   string
	Email  string
	Roles  []role.Role
}

// ParseIdentity reads the access token claims. With a secret the HMAC
// signature is verified; without one the token is only decoded, and the
// backend remains the verifier on every call.
func ParseIdentity(token string, secret []byte) (Identity, error) {
	claims := jwt.MapClaims{}

	if len(secret) > 0 {
		_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		})
		if err != nil {
			return Identity{}, fmt.Errorf("invalid access token: %w", err)
		}
	} else {
		if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
			return Identity{}, fmt.Errorf("malformed access token: %w", err)
		}
	}

	id := Identity{
		UserID: claimString(claims, "sub", "nameid", msNameIDClaim, "userId"),
		Name:   claimString(claims, "name", "unique_name", msNameClaim, "fullName"),
		Email:  claimString(claims, "email", msEmailClaim),
		Roles:  claimRoles(claims),
	}
	if len(id.Roles) == 0 {
		return id, ErrNoRole
	}
	return id, nil
}

func claimString(claims jwt.MapClaims, keys ...string) string {
	for _, k := range keys {
		switch v := claims[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%.0f", v)
		}
	}
	return ""
}

// claimRoles collects roles from role, roles and the Microsoft role URI,
// each of which may be a string or an array.
func claimRoles(claims jwt.MapClaims) []role.Role {
	var names []string
	for _, k := range []string{"role", "roles", msRoleClaim} {
		switch v := claims[k].(type) {
		case string:
			names = append(names, v)
		case []interface{}:
			for _, item := range v {
				if s, ok := item.(string); ok {
					names = append(names, s)
				}
			}
		}
	}

	var roles []role.Role
	seen := make(map[string]struct{})
	for _, n := range names {
		r := role.ByName(n)
		if r == nil {
			continue
		}
		if _, dup := seen[r.Code()]; dup {
			continue
		}
		seen[r.Code()] = struct{}{}
		roles = append(roles, *r)
	}
	return roles
}
