package http

import (
	"net/http"

	"github.com/caitlynl22/homeward-tails/internal/identity/tenant"
	"github.com/caitlynl22/homeward-tails/pkg/httpx"
)

// OrganizationHeader carries the tenant binding for a request. Requests
// without it run in administrative scope; scoped operations then fail with
// missing_organization rather than reading across tenants.
const OrganizationHeader = "X-Organization-ID"

// TenantMiddleware binds the request's organization into its context. The
// binding is torn down with the request context on every exit path.
func TenantMiddleware() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if orgID := r.Header.Get(OrganizationHeader); orgID != "" {
				r = r.WithContext(tenant.WithOrganization(r.Context(), orgID))
			}
			next.ServeHTTP(w, r)
		})
	}
}
