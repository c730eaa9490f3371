package controllers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/api/validators"
	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/internal/properties"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

type approveBody struct {
	Approve *bool  `json:"approve" validate:"required"`
	Reason  string `json:"reason"`
}

type propertyStatusBody struct {
	Status string `json:"status" validate:"required"`
}

type compareBody struct {
	IDs []string `json:"ids" validate:"required"`
}

func PropertyGet(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		detail, err := svc.Get(r.Context(), sess, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

func PropertyCreate(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		var form forms.PropertyForm
		if err := validators.DecodeJSONBody(r, &form); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Create(r.Context(), sess, form)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNotice(w, http.StatusCreated, result, result.Notice)
	}
}

func PropertyUpdate(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		var form forms.PropertyForm
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

func PropertyApprove(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		var body approveBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Approve(r.Context(), sess, id, *body.Approve, strings.TrimSpace(body.Reason))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNotice(w, http.StatusOK, result, result.Notice)
	}
}

func PropertySetStatus(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		id, ok := pathID(w, r, logg, "id")
		if !ok {
			return
		}
		var body propertyStatusBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.SetStatus(r.Context(), sess, id, body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNotice(w, http.StatusOK, result, result.Notice)
	}
}

func PropertyCompare(svc properties.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		var body compareBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, err := svc.Compare(r.Context(), sess, body.IDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// PropertyUploadImages takes files under "images" and the form's current
// gallery as JSON in "current", and returns the merged gallery.
func PropertyUploadImages(svc properties.Service, limits UploadLimits, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		if err := parseMultipart(w, r, limits); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()

		var current []backend.Image
		if raw := strings.TrimSpace(r.FormValue("current")); raw != "" {
			if err := json.Unmarshal([]byte(raw), &current); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Invalid image list"))
				return
			}
		}

		files, release, err := formFiles(r, "images", limits)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		defer release()

		gallery, err := svc.UploadImages(r.Context(), sess, current, files)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteNotice(w, http.StatusOK, gallery, gallery.Notice)
	}
}
