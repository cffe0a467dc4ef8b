// ABOUTME: Request context helpers for the stub server
// ABOUTME: Carries the authenticated user between middleware and handlers

package apitest

import (
	"context"
	"net/http"

	"github.com/amanks009/feedback-client/models"
)

func contextWithUser(r *http.Request, u models.User) context.Context {
	return context.WithValue(r.Context(), ctxKey{}, u)
}

func userFromContext(r *http.Request) models.User {
	u, _ := r.Context().Value(ctxKey{}).(models.User)
	return u
}
