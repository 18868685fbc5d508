package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/fusionfit/storefront/pkg/auth"
	"github.com/fusionfit/storefront/pkg/response"
)

type ctxKey string

const (
	userIDKey ctxKey = "auth.user_id"
	roleKey   ctxKey = "auth.role"
)

// Auth validates the Bearer token and stores the caller's identity in the
// request context. Handlers read it back with UserIDFromCtx / RoleFromCtx.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")

		if token == "" || token == header {
			response.Unauthorized(w, "Authentication required")
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		ctx = context.WithValue(ctx, roleKey, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserIDFromCtx returns the authenticated user's ID, if any.
func UserIDFromCtx(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(userIDKey).(string)
	return id, ok && id != ""
}

// RoleFromCtx returns the authenticated user's role, if any.
func RoleFromCtx(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(roleKey).(string)
	return role, ok && role != ""
}
