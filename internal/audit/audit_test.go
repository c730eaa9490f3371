package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/db/models"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	"github.com/damsoledevelopers/spireleap-console/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.AuditEvent{}))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewRepository(conn), conn
}

func TestRecorderWritesSuccessAndFailure(t *testing.T) {
	repo, _ := newTestRepo(t)
	rec := NewRecorder(repo, logger.Nop())
	sess := &session.Record{ID: "s1", UserID: "u1", Role: enums.UserRoleSuperAdmin}

	ctx := context.Background()
	rec.Record(ctx, FromSession(sess, "delete", "users", "u2", nil))
	rec.Record(ctx, FromSession(sess, "delete", "users", "u3", pkgerrors.New(pkgerrors.CodeForbidden, "Not allowed")))

	events, meta, err := repo.List(ctx, Filter{ActorID: "u1"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, 2, meta.Total)

	outcomes := map[string]string{}
	for _, e := range events {
		outcomes[e.ResourceID] = e.Outcome
		assert.Equal(t, "s1", e.SessionID)
		assert.Equal(t, "super_admin", e.ActorRole)
	}
	assert.Equal(t, OutcomeSuccess, outcomes["u2"])
	assert.Equal(t, OutcomeFailure, outcomes["u3"])
}

type failingWriter struct{}

func (failingWriter) Create(context.Context, *models.AuditEvent) error {
	return errors.New("db down")
}

func TestRecorderSwallowsWriteErrors(t *testing.T) {
	rec := NewRecorder(failingWriter{}, logger.Nop())
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), Event{Action: "save", Resource: "permissions"})
	})

	var nilRecorder *Recorder
	assert.NotPanics(t, func() { nilRecorder.Record(context.Background(), Event{}) })
}

func TestListPaginatesNewestFirst(t *testing.T) {
	repo, conn := newTestRepo(t)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, conn.Create(&models.AuditEvent{
			ID:        string(rune('a' + i)),
			ActorID:   "u1",
			ActorRole: "agent",
			Action:    "update",
			Resource:  "leads",
			Outcome:   OutcomeSuccess,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}).Error)
	}

	events, meta, err := repo.List(context.Background(), Filter{Page: 2, Limit: 2, Resource: "leads"})
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "c", events[0].ID)
	assert.Equal(t, "b", events[1].ID)
	assert.Equal(t, 2, meta.Current)
	assert.Equal(t, 3, meta.Pages)
	assert.Equal(t, 5, meta.Total)
}

func TestDeleteBefore(t *testing.T) {
	repo, conn := newTestRepo(t)
	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, conn.Create(&models.AuditEvent{ID: "old", ActorID: "u", ActorRole: "agent", Action: "a", Resource: "r", Outcome: OutcomeSuccess, CreatedAt: cutoff.Add(-time.Hour)}).Error)
	require.NoError(t, conn.Create(&models.AuditEvent{ID: "new", ActorID: "u", ActorRole: "agent", Action: "a", Resource: "r", Outcome: OutcomeSuccess, CreatedAt: cutoff.Add(time.Hour)}).Error)

	deleted, err := repo.DeleteBefore(context.Background(), nil, cutoff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	events, _, err := repo.List(context.Background(), Filter{})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].ID)
}
