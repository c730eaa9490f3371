package middleware

import (
	"net/http"

	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/internal/auth"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

const accessDeniedMessage = "You do not have permission to access this page"

// RequirePermission guards a route with one cell of the session's matrix.
// Denied requests get a 403 whose details point at the role's dashboard.
func RequirePermission(module string, action enums.PermissionAction, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := SessionFromContext(r.Context())
			if sess == nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !auth.CheckPermission(sess, module, action) {
				ctx := r.Context()
				if logg != nil {
					ctx = logg.WithFields(ctx, map[string]any{"module": module, "action": string(action)})
				}
				responses.WriteError(ctx, logg, w, AccessDenied(sess.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccessDenied is the 403 sent when a role may not open a page.
func AccessDenied(role enums.UserRole) error {
	return pkgerrors.New(pkgerrors.CodeForbidden, accessDeniedMessage).
		WithDetails(map[string]any{"redirect": auth.DashboardFor(role)})
}
