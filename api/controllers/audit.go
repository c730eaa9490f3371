package controllers

import (
	"context"
	"net/http"

	"github.com/damsoledevelopers/spireleap-console/api/responses"
	"github.com/damsoledevelopers/spireleap-console/api/validators"
	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/pkg/db/models"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"github.com/damsoledevelopers/spireleap-console/pkg/pagination"
)

// AuditLister reads the audit trail.
type AuditLister interface {
	List(ctx context.Context, filter audit.Filter) ([]models.AuditEvent, pagination.Meta, error)
}

type auditPage struct {
	Items      []models.AuditEvent `json:"items"`
	Pagination pagination.Meta     `json:"pagination"`
}

func AuditList(repo AuditLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if repo == nil {
			unavailable(w, r, logg, "audit")
			return
		}
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 100000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		items, meta, err := repo.List(r.Context(), audit.Filter{
			Page:     page,
			Limit:    limit,
			ActorID:  validators.QueryString(r, "actorId", 64),
			Resource: validators.QueryString(r, "resource", 64),
			Action:   validators.QueryString(r, "action", 64),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if items == nil {
			items = []models.AuditEvent{}
		}
		responses.WriteSuccess(w, auditPage{Items: items, Pagination: meta})
	}
}
