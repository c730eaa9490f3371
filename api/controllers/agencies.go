package controllers

import (
	"net/http"

	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/api/validators"
	"github.com/damsoledevelopers/spireleap-console/internal/agencies"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

func AgencyGet(svc agencies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		agency, err := svc.Get(r.Context(), sess, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, agency)
	}
}

func AgencyUpdate(svc agencies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		var form agencies.Form
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Update(r.Context(), sess, id, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNotice(w, http.StatusOK, result, result.Notice)
	}
}

func AgencyStats(svc agencies.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		stats, err := svc.Stats(r.Context(), sess, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
