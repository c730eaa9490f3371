package transactions

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/backend/backendtest"
	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
)

func TestSummarizeTotalsExactly(t *testing.T) {
	items, err := Decode([]map[string]any{
		{"_id": "t1", "type": "sale", "status": "completed", "amount": 0.1},
		{"_id": "t2", "type": "sale", "status": "completed", "amount": 0.2},
		{"_id": "t3", "type": "rent", "status": "pending", "amount": 25000},
		{"_id": "t4", "type": "commission", "status": "completed", "amount": "1500.50"},
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	sum := Summarize(items)

	if sum.All.Count != 4 || sum.All.Amount.String() != "26500.8" {
		t.Fatalf("unexpected total %+v", sum.All)
	}
	if got := sum.ByType[enums.TransactionTypeSale].Amount.String(); got != "0.3" {
		t.Fatalf("sale amounts must add exactly, got %s", got)
	}
	if sum.Revenue.String() != "0.3" {
		t.Fatalf("revenue should exclude pending and commission rows, got %s", sum.Revenue)
	}
	if sum.ByStatus[enums.TransactionStatusPending].Count != 1 {
		t.Fatalf("unexpected status buckets %+v", sum.ByStatus)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.All.Count != 0 || !sum.Revenue.IsZero() || !sum.All.Amount.IsZero() {
		t.Fatalf("unexpected empty summary %+v", sum)
	}
}

func TestRevenueForwardsKnownFilters(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodGet, "/transactions/analytics/revenue", http.StatusOK, map[string]any{"analytics": map[string]any{"total": 100}})
	client := srv.Client(t)
	ctrl, err := listing.NewController(listing.ControllerParams{Backend: client, Store: redisclient.NewMemory(), Config: config.ListConfig{DefaultLimit: 20, StateTTL: time.Hour}})
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	svc, err := NewService(ServiceParams{Backend: client, Lists: ctrl})
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	out, err := svc.Revenue(context.Background(), &session.Record{ID: "s", BackendToken: "crm"}, url.Values{"startDate": {"2024-01-01"}, "bogus": {"x"}})
	if err != nil {
		t.Fatalf("revenue: %v", err)
	}
	if out["total"] != float64(100) {
		t.Fatalf("unexpected analytics %v", out)
	}
	q := srv.Calls(http.MethodGet, "/transactions/analytics/revenue")[0].Query
	if q.Get("startDate") != "2024-01-01" || q.Has("bogus") {
		t.Fatalf("unexpected query %v", q)
	}
}
