package controllers

import (
	"net/http"

	"github.com/damsoledevelopers/spireleap-console/api/middleware"
	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/api/validators"
	"github.com/damsoledevelopers/spireleap-console/internal/auth"
	"github.com/damsoledevelopers/spireleap-console/internal/permissions"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

// scopeBody selects the matrix being edited.
type scopeBody struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Role string `json:"role"`
}

type toggleBody struct {
	scopeBody
	Module string                 `json:"module" validate:"required"`
	Action enums.PermissionAction `json:"action" validate:"required"`
}

type toggleAllBody struct {
	scopeBody
	Module string `json:"module" validate:"required"`
	Value  *bool  `json:"value" validate:"required"`
}

type savedEditor struct {
	permissions.View
	Refreshed bool `json:"sessionRefreshed"`
}

// editorScope parses the selectors and applies the editor's access rule:
// role matrices belong to super_admin, the rest need permissions:edit.
func editorScope(w http.ResponseWriter, r *http.Request, logg *logger.Logger, sess *session.Record, body scopeBody) (permissions.Scope, bool) {
	scope, err := permissions.ParseScope(body.Type, body.ID, body.Role)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return permissions.Scope{}, false
	}
	allowed := sess.Role == enums.UserRoleSuperAdmin
	if !allowed && scope.Kind != enums.PermissionScopeRole {
		allowed = auth.CheckPermission(sess, permissions.ModulePermissions, enums.PermissionActionEdit)
	}
	if !allowed {
		responses.WriteError(r.Context(), logg, w, middleware.AccessDenied(sess.Role))
		return permissions.Scope{}, false
	}
	return scope, true
}

func PermissionsOpen(svc permissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		q := r.URL.Query()
		scope, ok := editorScope(w, r, logg, sess, scopeBody{Type: q.Get("type"), ID: q.Get("id"), Role: q.Get("role")})
		if !ok {
			return
		}
		editor, err := svc.Open(r.Context(), sess, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, editor.View())
	}
}

func PermissionsToggle(svc permissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		var body toggleBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope, ok := editorScope(w, r, logg, sess, body.scopeBody)
		if !ok {
			return
		}
		editor, err := svc.Toggle(r.Context(), sess, scope, body.Module, body.Action)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, editor.View())
	}
}

func PermissionsToggleAll(svc permissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		var body toggleAllBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope, ok := editorScope(w, r, logg, sess, body.scopeBody)
		if !ok {
			return
		}
		editor, err := svc.ToggleAll(r.Context(), sess, scope, body.Module, *body.Value)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, editor.View())
	}
}

func PermissionsReset(svc permissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		var body scopeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope, ok := editorScope(w, r, logg, sess, body)
		if !ok {
			return
		}
		editor, err := svc.Reset(r.Context(), sess, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, editor.View())
	}
}

func PermissionsSave(svc permissions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		var body scopeBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		scope, ok := editorScope(w, r, logg, sess, body)
		if !ok {
			return
		}
		result, err := svc.Save(r.Context(), sess, scope)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if result.Editor == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "permission draft missing after save"))
			return
		}
		responses.WriteNotice(w, http.StatusOK, savedEditor{View: result.Editor.View(), Refreshed: result.Refreshed}, result.Notice)
	}
}
