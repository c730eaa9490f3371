package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := NewManager(redisclient.NewMemory(), config.SessionConfig{TTL: time.Hour})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return manager
}

func TestManagerCreateGetRevoke(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)

	rec, err := manager.Create(ctx, Record{
		BackendToken: "crm-token",
		UserID:       "u1",
		Role:         enums.UserRoleAgent,
		Permissions:  json.RawMessage(`{"leads":{"view":true}}`),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected generated session id")
	}

	loaded, err := manager.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.BackendToken != "crm-token" || loaded.Role != enums.UserRoleAgent {
		t.Fatalf("unexpected record %+v", loaded)
	}

	loaded.Role = enums.UserRoleAgencyAdmin
	if err := manager.Save(ctx, loaded); err != nil {
		t.Fatalf("save: %v", err)
	}

	if err := manager.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := manager.Get(ctx, rec.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := manager.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("revoking twice should not fail: %v", err)
	}
}

func TestManagerCreateAlwaysIssuesFreshID(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)

	first, err := manager.Create(ctx, Record{ID: "reused", BackendToken: "t"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	second, err := manager.Create(ctx, Record{ID: "reused", BackendToken: "t"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID == "reused" || first.ID == second.ID {
		t.Fatalf("expected distinct generated ids, got %s and %s", first.ID, second.ID)
	}
}

func TestManagerCreateRequiresBackendToken(t *testing.T) {
	if _, err := newTestManager(t).Create(context.Background(), Record{}); err == nil {
		t.Fatal("expected error without backend token")
	}
}

func TestManagerSaveUpdatesRecord(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)
	rec, err := manager.Create(ctx, Record{BackendToken: "t"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	rec.PermissionsLoaded = true
	if err := manager.Save(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := manager.Get(ctx, rec.ID)
	if err != nil || !loaded.PermissionsLoaded {
		t.Fatalf("expected saved flag, got %+v err=%v", loaded, err)
	}
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(nil, config.SessionConfig{TTL: time.Hour}); err == nil {
		t.Fatal("expected nil client error")
	}
	if _, err := NewManager(redisclient.NewMemory(), config.SessionConfig{}); err == nil {
		t.Fatal("expected ttl error")
	}
}

func TestManagerSaveAfterRevokeReportsNotFound(t *testing.T) {
	ctx := context.Background()
	manager := newTestManager(t)

	rec, err := manager.Create(ctx, Record{BackendToken: "t", UserID: "u1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := manager.Revoke(ctx, rec.ID); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if err := manager.Save(ctx, rec); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if _, err := manager.Get(ctx, rec.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("save must not recreate the session, got %v", err)
	}
}
