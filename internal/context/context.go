// Package context carries the authenticated request principal. The two
// principal kinds are deliberately separate types and separate context
// keys: an applicant can never be mistaken for an admin by a handler.
package context

import (
	"context"
	"net/http"

	"github.com/cradoe/indigene/internal/models"
)

type contextKey string

const (
	authenticatedUserContextKey  = contextKey("authenticatedUser")
	authenticatedAdminContextKey = contextKey("authenticatedAdmin")
)

func ContextSetAuthenticatedUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), authenticatedUserContextKey, user)
	return r.WithContext(ctx)
}

func ContextGetAuthenticatedUser(r *http.Request) *models.User {
	user, ok := r.Context().Value(authenticatedUserContextKey).(*models.User)
	if !ok {
		return nil
	}

	return user
}

func ContextSetAuthenticatedAdmin(r *http.Request, admin *models.Admin) *http.Request {
	ctx := context.WithValue(r.Context(), authenticatedAdminContextKey, admin)
	return r.WithContext(ctx)
}

func ContextGetAuthenticatedAdmin(r *http.Request) *models.Admin {
	admin, ok := r.Context().Value(authenticatedAdminContextKey).(*models.Admin)
	if !ok {
		return nil
	}

	return admin
}
