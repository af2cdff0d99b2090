package shared

import (
	"net/http"

	domainauth "hrms/internal/domain/auth"
	"hrms/internal/requestctx"
)

// Actor extracts the authenticated caller for the domain services.
func Actor(r *http.Request) (domainauth.UserContext, bool) {
	user, ok := requestctx.GetUser(r.Context())
	if !ok {
		return domainauth.UserContext{}, false
	}
	return domainauth.UserContext{
		UserID:   user.UserID,
		TenantID: user.TenantID,
		RoleID:   user.RoleID,
		RoleName: user.RoleName,
	}, true
}
