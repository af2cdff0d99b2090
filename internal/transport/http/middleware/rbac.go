package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"hrms/internal/requestctx"
	"hrms/internal/transport/http/api"
)

type PermissionChecker interface {
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

// RequirePermission gates a route on a role grant. It assumes Authenticate
// ran earlier in the chain.
func RequirePermission(permission string, checker PermissionChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := requestctx.GetUser(r.Context())
			if !ok {
				api.Unauthorized(w, r, "not authenticated")
				return
			}
			allowed, err := checker.HasPermission(r.Context(), user.RoleID, permission)
			if err != nil {
				slog.Error("permission check failed", "permission", permission, "err", err)
				api.Internal(w, r)
				return
			}
			if !allowed {
				api.Forbidden(w, r, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
