package subscriptions

import (
	"context"
	"net/http"
	"testing"

	"github.com/damsoledevelopers/spireleap-console/internal/backend/backendtest"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

var testSession = &session.Record{ID: "tab-1", BackendToken: "crm-token", UserID: "admin-1"}

func newTestService(t *testing.T, srv *backendtest.Server) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Backend: srv.Client(t)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestToggleUsesPatch(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodPatch, "/subscriptions/sub-1", http.StatusOK, map[string]any{
		"subscription": map[string]any{"_id": "sub-1", "isActive": false, "plan": map[string]any{"plan_name": "Gold", "price": 4999}},
	})
	svc := newTestService(t, srv)

	result, err := svc.Toggle(context.Background(), testSession, "sub-1", false)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if result.Subscription.IsActive || result.Subscription.Plan.Name != "Gold" || result.Notice != deactivatedNotice {
		t.Fatalf("unexpected result %+v", result)
	}
	if body := srv.Calls(http.MethodPatch, "/subscriptions/sub-1")[0].Body; body["isActive"] != false {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestForUserNeverReturnsNil(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodGet, "/subscriptions/user/u-1", http.StatusOK, map[string]any{"subscriptions": []any{}})
	svc := newTestService(t, srv)

	subs, err := svc.ForUser(context.Background(), testSession, "u-1")
	if err != nil {
		t.Fatalf("for user: %v", err)
	}
	if subs == nil || len(subs) != 0 {
		t.Fatalf("expected empty slice, got %#v", subs)
	}
}

func TestDeleteFallbackMessage(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodDelete, "/subscriptions/sub-1", http.StatusInternalServerError, map[string]any{})
	svc := newTestService(t, srv)

	_, err := svc.Delete(context.Background(), testSession, "sub-1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != "Failed to delete subscription" {
		t.Fatalf("unexpected error %v", err)
	}
}
