package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"gorm.io/gorm"
)

type fakePruner struct {
	cutoff time.Time
	calls  int
	err    error
}

func (f *fakePruner) DeleteBefore(_ context.Context, _ *gorm.DB, cutoff time.Time) (int64, error) {
	f.calls++
	f.cutoff = cutoff
	return 4, f.err
}

type inlineTx struct{}

func (inlineTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error { return fn(nil) }

func newRetentionJob(t *testing.T, repo *fakePruner, days int) *auditRetentionJob {
	t.Helper()
	job, err := NewAuditRetentionJob(AuditRetentionJobParams{Logger: logger.Nop(), DB: inlineTx{}, Repository: repo, RetentionDays: days})
	if err != nil {
		t.Fatalf("new job: %v", err)
	}
	return job.(*auditRetentionJob)
}

func TestAuditRetentionCutoff(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	repo := &fakePruner{}
	job := newRetentionJob(t, repo, 30)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if repo.calls != 1 || !repo.cutoff.Equal(want) {
		t.Fatalf("expected cutoff %s, got %s after %d calls", want, repo.cutoff, repo.calls)
	}
}

func TestAuditRetentionDefaultsAndErrors(t *testing.T) {
	repo := &fakePruner{err: errors.New("db down")}
	job := newRetentionJob(t, repo, 0)
	if job.days != defaultAuditRetentionDays {
		t.Fatalf("expected default retention, got %d", job.days)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := NewAuditRetentionJob(AuditRetentionJobParams{Logger: logger.Nop(), DB: inlineTx{}}); err == nil {
		t.Fatal("expected missing repository error")
	}
}
