package auth

import (
	"errors"
	"net/http"
	"strings"

	"crux-backend/pkg/common"
	pkgerrors "crux-backend/pkg/errors"
)

// Headers set by the Lambda entry point from the API Gateway authorizer
// context. They are only trusted by GatewayAuthenticator.
const (
	HeaderAuthorID  = "X-Author-ID"
	HeaderHomeID    = "X-Home-ID"
	HeaderUserRoles = "X-User-Roles"
)

const defaultRole = "authenticated"

// Authenticator turns a request into the acting author
type Authenticator interface {
	Authenticate(r *http.Request) (common.Actor, error)
}

// BearerAuthenticator verifies HS256 bearer tokens
type BearerAuthenticator struct {
	validator *JWTValidator
}

// NewBearerAuthenticator creates a new bearer token authenticator
func NewBearerAuthenticator(validator *JWTValidator) *BearerAuthenticator {
	return &BearerAuthenticator{validator: validator}
}

// Authenticate validates the bearer token and returns its author
func (a *BearerAuthenticator) Authenticate(r *http.Request) (common.Actor, error) {
	token := extractToken(r)
	if token == "" {
		return common.Actor{}, pkgerrors.NewUnauthorizedError("Missing authorization header")
	}

	claims, err := a.validator.ValidateToken(token)
	if err != nil {
		switch {
		case errors.Is(err, ErrExpiredToken):
			return common.Actor{}, pkgerrors.NewUnauthorizedError("Token has expired").WithCause(err)
		case errors.Is(err, ErrInvalidSignature):
			return common.Actor{}, pkgerrors.NewUnauthorizedError("Invalid token signature").WithCause(err)
		default:
			return common.Actor{}, pkgerrors.NewUnauthorizedError("Invalid token").WithCause(err)
		}
	}

	roles := claims.Roles
	if len(roles) == 0 {
		roles = []string{defaultRole}
	}
	return common.Actor{
		AuthorID: claims.AuthorID(),
		HomeID:   claims.HomeID,
		Roles:    roles,
	}, nil
}

// GatewayAuthenticator trusts the author headers API Gateway forwards after
// its own JWT authorizer has run
type GatewayAuthenticator struct{}

// Authenticate reads the actor from the forwarded headers
func (GatewayAuthenticator) Authenticate(r *http.Request) (common.Actor, error) {
	authorID := strings.TrimSpace(r.Header.Get(HeaderAuthorID))
	if authorID == "" {
		return common.Actor{}, pkgerrors.NewUnauthorizedError("Missing author context from API Gateway")
	}

	roles := []string{defaultRole}
	if raw := r.Header.Get(HeaderUserRoles); raw != "" {
		roles = splitRoles(raw)
	}

	return common.Actor{
		AuthorID: authorID,
		HomeID:   strings.TrimSpace(r.Header.Get(HeaderHomeID)),
		Roles:    roles,
	}, nil
}

// extractToken reads the Authorization header, falling back to the
// auth_token cookie
func extractToken(r *http.Request) string {
	if authHeader := r.Header.Get("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if cookie, err := r.Cookie("auth_token"); err == nil {
		return cookie.Value
	}
	return ""
}

func splitRoles(raw string) []string {
	parts := strings.Split(raw, ",")
	roles := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			roles = append(roles, p)
		}
	}
	if len(roles) == 0 {
		return []string{defaultRole}
	}
	return roles
}
