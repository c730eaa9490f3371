package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/damsoledevelopers/spireleap-console/api/middleware"
	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

// currentSession returns the tab session Auth loaded, writing a 401 when it
// is missing.
func currentSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Record, bool) {
	sess := middleware.SessionFromContext(r.Context())
	if sess == nil {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
		return nil, false
	}
	return sess, true
}

func pathID(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, name))
	if id == "" {
		responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing "+name).WithDetails(map[string]any{"field": name}))
		return "", false
	}
	return id, true
}

func unavailable(w http.ResponseWriter, r *http.Request, logg *logger.Logger, name string) {
	responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, name+" service unavailable"))
}

// statusBody toggles an active flag.
type statusBody struct {
	Active *bool `json:"active" validate:"required"`
}
