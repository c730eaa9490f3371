package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"gorm.io/gorm"
)

const defaultAuditRetentionDays = 180

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type auditPruner interface {
	DeleteBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type AuditRetentionJobParams struct {
	Logger        *logger.Logger
	DB            txRunner
	Repository    auditPruner
	RetentionDays int
}

// NewAuditRetentionJob deletes audit events older than the retention window.
func NewAuditRetentionJob(params AuditRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("audit repository required")
	}
	days := params.RetentionDays
	if days <= 0 {
		days = defaultAuditRetentionDays
	}
	return &auditRetentionJob{
		logg: params.Logger,
		db:   params.DB,
		repo: params.Repository,
		days: days,
		now:  time.Now,
	}, nil
}

type auditRetentionJob struct {
	logg *logger.Logger
	db   txRunner
	repo auditPruner
	days int
	now  func() time.Time
}

func (j *auditRetentionJob) Name() string { return "audit-retention" }

func (j *auditRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)
	var deleted int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.repo.DeleteBefore(ctx, tx, cutoff)
		deleted = rows
		return err
	})
	if err != nil {
		return fmt.Errorf("audit retention: %w", err)
	}
	j.logg.Info(j.logg.WithFields(ctx, map[string]any{
		"cutoff":         cutoff,
		"retention_days": j.days,
		"rows_deleted":   deleted,
	}), "cron.audit_retention_complete")
	return nil
}
