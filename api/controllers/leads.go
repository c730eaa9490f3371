package controllers

import (
	"net/http"

	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/api/validators"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/internal/leads"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"github.com/damsoledevelopers/spireleap-console/pkg/types"
)

type leadStatusBody struct {
	Status enums.LeadStatus `json:"status" validate:"required"`
}

func LeadGet(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		lead, err := svc.Get(r.Context(), sess, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, lead)
	}
}

// LeadCreate answers 201 with the lead, or 200 with a draft id and the
// duplicate candidates when the CRM flagged possible duplicates.
func LeadCreate(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		var form forms.LeadForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), sess, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeadCreate(w, result)
	}
}

func LeadCreateAnyway(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		draftID, ok := pathID(w, r, logg, "draftID")
		if !ok {
			return
		}
		result, err := svc.CreateAnyway(r.Context(), sess, draftID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		writeLeadCreate(w, result)
	}
}

func LeadCancelDraft(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		draftID, ok := pathID(w, r, logg, "draftID")
		if !ok {
			return
		}
		redirect, err := svc.CancelDraft(r.Context(), sess, draftID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, types.Redirect{To: redirect})
	}
}

func LeadUpdate(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		var form forms.LeadForm
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

func LeadUpdateStatus(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		var body leadStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.UpdateStatus(r.Context(), sess, id, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNotice(w, http.StatusOK, result, result.Notice)
	}
}

func LeadDelete(svc leads.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		result, err := svc.Delete(r.Context(), sess, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNotice(w, http.StatusOK, result, result.Notice)
	}
}

func writeLeadCreate(w http.ResponseWriter, result *leads.CreateResult) {
	if len(result.Duplicates) > 0 {
		responses.WriteSuccess(w, result)
		return
	}
	responses.WriteNotice(w, http.StatusCreated, result, result.Notice)
}
