package stats

import (
	"context"
	"net/http"
	"testing"

	"github.com/damsoledevelopers/spireleap-console/internal/backend/backendtest"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
)

func TestForRolePicksEndpoint(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodGet, "/stats/dashboard", http.StatusOK, map[string]any{"stats": map[string]any{"totalUsers": 12}})
	srv.JSON(http.MethodGet, "/stats/customer", http.StatusOK, map[string]any{"stats": map[string]any{"savedProperties": 3}})
	svc, err := NewService(srv.Client(t))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	ctx := context.Background()

	admin, err := svc.ForRole(ctx, &session.Record{BackendToken: "crm", Role: enums.UserRoleAgencyAdmin})
	if err != nil || admin["totalUsers"] != float64(12) {
		t.Fatalf("unexpected admin stats %v %v", admin, err)
	}
	customer, err := svc.ForRole(ctx, &session.Record{BackendToken: "crm", Role: enums.UserRoleUser})
	if err != nil || customer["savedProperties"] != float64(3) {
		t.Fatalf("unexpected customer stats %v %v", customer, err)
	}
}
