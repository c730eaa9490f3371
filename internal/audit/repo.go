package audit

import (
	"context"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/repo"
	"github.com/damsoledevelopers/spireleap-console/pkg/db/models"
	"github.com/damsoledevelopers/spireleap-console/pkg/pagination"
	"gorm.io/gorm"
)

// Filter narrows the audit listing.
type Filter struct {
	Page     int
	Limit    int
	ActorID  string
	Resource string
	Action   string
}

// Repository persists audit events via GORM.
type Repository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

func (r *Repository) Create(ctx context.Context, event *models.AuditEvent) error {
	return r.DB(ctx).Create(event).Error
}

// List returns one page of events, newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]models.AuditEvent, pagination.Meta, error) {
	params := pagination.Params{Page: filter.Page, Limit: filter.Limit}.Normalize()

	query := r.DB(ctx).Model(&models.AuditEvent{})
	if filter.ActorID != "" {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Resource != "" {
		query = query.Where("resource = ?", filter.Resource)
	}
	if filter.Action != "" {
		query = query.Where("action = ?", filter.Action)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, pagination.Meta{}, err
	}

	events := []models.AuditEvent{}
	if err := query.
		Order("created_at DESC").
		Order("id DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&events).Error; err != nil {
		return nil, pagination.Meta{}, err
	}
	return events, pagination.NewMeta(params.Page, params.Limit, int(total)), nil
}

// DeleteBefore removes events older than cutoff and reports how many went.
func (r *Repository) DeleteBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	res := r.DB(ctx, tx).Where("created_at < ?", cutoff).Delete(&models.AuditEvent{})
	return res.RowsAffected, res.Error
}
