package middleware

import (
	"net/http"
	"strings"

	"hrms/internal/auth"
	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
)

// Authenticate validates the bearer token and attaches the caller's identity
// to the request context.
func Authenticate(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				api.Unauthorized(w, r, "missing bearer token")
				return
			}
			claims, err := auth.ParseToken(jwtSecret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				api.Unauthorized(w, r, "invalid or expired token")
				return
			}
			ctx := requestctx.WithUser(r.Context(), requestctx.User{
				UserID:   claims.UserID,
				TenantID: claims.TenantID,
				RoleID:   claims.RoleID,
				RoleName: claims.RoleName,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
