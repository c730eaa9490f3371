package controllers

import (
	"net/http"
	"strings"

	"github.com/damsoledevelopers/spireleap-console/api/middleware"
	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/api/validators"
	"github.com/damsoledevelopers/spireleap-console/internal/auth"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"github.com/damsoledevelopers/spireleap-console/pkg/types"
)

const tokenHeader = "X-Console-Token"

// AuthLogin opens a new tab session and returns the console token.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth")
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set(tokenHeader, snap.Token)
		responses.WriteSuccess(w, snap)
	}
}

func AuthRegister(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth")
			return
		}

		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snap, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if snap.Token != "" {
			w.Header().Set(tokenHeader, snap.Token)
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, snap)
	}
}

func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth")
			return
		}

		redirect, err := svc.Logout(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.Redirect{To: redirect})
	}
}

// AuthMe returns the cached session without calling the CRM.
func AuthMe(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		responses.WriteSuccess(w, auth.SnapshotOf(sess))
	}
}

// AuthRefresh re-hydrates the session. A rejected backend token yields an
// empty snapshot rather than an error.
func AuthRefresh(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			unavailable(w, r, logg, "auth")
			return
		}

		snap, err := svc.RefreshUser(r.Context(), middleware.SessionIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, snap)
	}
}

type permissionAnswer struct {
	Module  string                 `json:"module"`
	Action  enums.PermissionAction `json:"action"`
	Allowed bool                   `json:"allowed"`
}

func AuthCheck(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}

		module := strings.TrimSpace(r.URL.Query().Get("module"))
		action, err := enums.ParsePermissionAction(r.URL.Query().Get("action"))
		if err != nil || module == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "module and a valid action are required"))
			return
		}

		responses.WriteSuccess(w, permissionAnswer{
			Module:  module,
			Action:  action,
			Allowed: auth.CheckPermission(sess, module, action),
		})
	}
}
