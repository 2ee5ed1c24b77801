package common

import (
	"context"
	"time"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyAuthorID  ContextKey = "author_id"
	ContextKeyHomeID    ContextKey = "home_id"
	ContextKeyUserRoles ContextKey = "user_roles"
	ContextKeyStartTime ContextKey = "start_time"
)

// RoleAdmin grants access to the tag administration surface
const RoleAdmin = "admin"

// Actor is the authenticated author on whose behalf an operation runs
type Actor struct {
	AuthorID string
	HomeID   string
	Roles    []string
}

// IsAdmin reports whether the actor holds the admin role
func (a Actor) IsAdmin() bool {
	for _, r := range a.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}

// WithActor stores the actor's author, home and roles in the context
func WithActor(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, ContextKeyAuthorID, actor.AuthorID)
	ctx = context.WithValue(ctx, ContextKeyHomeID, actor.HomeID)
	return context.WithValue(ctx, ContextKeyUserRoles, actor.Roles)
}

// GetActor rebuilds the actor from the context. ok is false when no
// author is present.
func GetActor(ctx context.Context) (Actor, bool) {
	authorID, ok := GetAuthorID(ctx)
	if !ok || authorID == "" {
		return Actor{}, false
	}
	homeID, _ := GetHomeID(ctx)
	roles, _ := GetUserRoles(ctx)
	return Actor{AuthorID: authorID, HomeID: homeID, Roles: roles}, true
}

// GetAuthorID extracts the author ID from context
func GetAuthorID(ctx context.Context) (string, bool) {
	authorID, ok := ctx.Value(ContextKeyAuthorID).(string)
	return authorID, ok
}

// GetHomeID extracts the tenant home ID from context
func GetHomeID(ctx context.Context) (string, bool) {
	homeID, ok := ctx.Value(ContextKeyHomeID).(string)
	return homeID, ok
}

// GetUserRoles extracts user roles from context
func GetUserRoles(ctx context.Context) ([]string, bool) {
	roles, ok := ctx.Value(ContextKeyUserRoles).([]string)
	return roles, ok
}

// HasRole checks if the caller has a specific role
func HasRole(ctx context.Context, role string) bool {
	roles, ok := GetUserRoles(ctx)
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// WithStartTime adds start time to context
func WithStartTime(ctx context.Context, startTime time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyStartTime, startTime)
}

// GetElapsedTime calculates elapsed time from start time in context
func GetElapsedTime(ctx context.Context) time.Duration {
	if startTime, ok := ctx.Value(ContextKeyStartTime).(time.Time); ok {
		return time.Since(startTime)
	}
	return 0
}
