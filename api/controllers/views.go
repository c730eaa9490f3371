package controllers

import (
	"context"
	"net/http"

	"github.com/damsoledevelopers/spireleap-console/api/middleware"
	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/api/validators"
	"github.com/damsoledevelopers/spireleap-console/internal/auth"
	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
)

// ListViews is the list-page controller seen from HTTP.
type ListViews interface {
	Load(ctx context.Context, sess *session.Record, viewKey string) (*listing.Result, error)
	Update(ctx context.Context, sess *session.Record, viewKey string, change listing.Change) (*listing.Result, error)
	Reset(ctx context.Context, sess *session.Record, viewKey string) (listing.State, error)
}

// viewSession resolves the session and checks that it may view the list.
// View keys double as permission module names.
func viewSession(w http.ResponseWriter, r *http.Request, logg *logger.Logger) (*session.Record, string, bool) {
	sess, ok := currentSession(w, r, logg)
	if !ok {
		return nil, "", false
	}
	view, ok := pathID(w, r, logg, "view")
	if !ok {
		return nil, "", false
	}
	if !auth.CheckPermission(sess, view, enums.PermissionActionView) {
		responses.WriteError(r.Context(), logg, w, middleware.AccessDenied(sess.Role))
		return nil, "", false
	}
	return sess, view, true
}

func ViewLoad(lists ListViews, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, view, ok := viewSession(w, r, logg)
		if !ok {
			return
		}
		result, err := lists.Load(r.Context(), sess, view)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ViewUpdate applies a partial filter/sort/page change. The reply may be
// stale when a newer change for the same view arrived meanwhile.
func ViewUpdate(lists ListViews, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, view, ok := viewSession(w, r, logg)
		if !ok {
			return
		}
		var change listing.Change
		if err := validators.DecodeJSONBody(r, &change); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := lists.Update(r.Context(), sess, view, change)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func ViewReset(lists ListViews, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, view, ok := viewSession(w, r, logg)
		if !ok {
			return
		}
		state, err := lists.Reset(r.Context(), sess, view)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"view": view, "state": state})
	}
}

// ViewInfo describes a list page the operator can open.
type ViewInfo struct {
	Key        string   `json:"key"`
	Filters    []string `json:"filters"`
	Statuses   []string `json:"statuses,omitempty"`
	Sortable   []string `json:"sortable"`
	ClientSort bool     `json:"clientSort,omitempty"`
}

// ViewIndex lists the views the session may view with their filter keys
// and sortable columns.
func ViewIndex(logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := currentSession(w, r, logg)
		if !ok {
			return
		}
		out := []ViewInfo{}
		for _, key := range listing.Views() {
			if !auth.CheckPermission(sess, key, enums.PermissionActionView) {
				continue
			}
			view, _ := listing.Lookup(key)
			info := ViewInfo{
				Key:        key,
				Filters:    append([]string{}, view.Filters...),
				Statuses:   view.Statuses,
				Sortable:   make([]string, 0, len(view.Columns)),
				ClientSort: view.ClientSort,
			}
			for _, c := range view.Columns {
				info.Sortable = append(info.Sortable, c.Name)
			}
			out = append(out, info)
		}
		responses.WriteSuccess(w, map[string]any{"views": out})
	}
}
