package listing

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/backend/backendtest"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
)

var testListConfig = config.ListConfig{DefaultLimit: 20, MaxLimit: 100, TypingDebounce: 400 * time.Millisecond, StateTTL: time.Hour}

func serveAgents(srv *backendtest.Server, total int) {
	srv.Handle(http.MethodGet, "/users", func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		start := (page - 1) * limit
		end := min(start+limit, total)
		users := []map[string]any{}
		for i := start; i < end; i++ {
			users = append(users, map[string]any{"_id": fmt.Sprintf("agent-%d", i+1), "role": "agent"})
		}
		backendtest.Reply(w, http.StatusOK, map[string]any{
			"users":      users,
			"pagination": map[string]int{"current": page, "pages": (total + limit - 1) / limit, "total": total},
		})
	})
}

func newTestController(t *testing.T, srv *backendtest.Server) (*Controller, *redisclient.Client) {
	t.Helper()
	store := redisclient.NewMemory()
	ctrl, err := NewController(ControllerParams{Backend: srv.Client(t), Store: store, Config: testListConfig})
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	return ctrl, store
}

func TestAgentsSecondPage(t *testing.T) {
	srv := backendtest.New(t)
	serveAgents(srv, 45)
	ctrl, _ := newTestController(t, srv)
	sess := &session.Record{ID: "tab-1", BackendToken: "crm"}

	result, err := ctrl.Update(context.Background(), sess, ViewAgents, Change{Page: intPtr(2)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result.Stale {
		t.Fatalf("unexpected stale result")
	}
	if len(result.Items) != 20 || result.Items[0]["_id"] != "agent-21" || result.Items[19]["_id"] != "agent-40" {
		t.Fatalf("expected agents 21-40, got %d items", len(result.Items))
	}
	if result.Pagination.Current != 2 || result.Pagination.Pages != 3 || result.Pagination.Total != 45 {
		t.Fatalf("unexpected pagination %+v", result.Pagination)
	}
	call := srv.Calls(http.MethodGet, "/users")[0]
	if call.Query.Get("role") != "agent" || call.Query.Get("limit") != "20" {
		t.Fatalf("unexpected query %v", call.Query)
	}
}

func TestStatePersistsPerSessionAndView(t *testing.T) {
	srv := backendtest.New(t)
	serveAgents(srv, 45)
	ctrl, _ := newTestController(t, srv)
	ctx := context.Background()
	tabA := &session.Record{ID: "tab-a", BackendToken: "crm"}
	tabB := &session.Record{ID: "tab-b", BackendToken: "crm"}

	if _, err := ctrl.Update(ctx, tabA, ViewAgents, Change{Page: intPtr(3)}); err != nil {
		t.Fatalf("update: %v", err)
	}
	stateA, _ := ctrl.State(ctx, tabA, ViewAgents)
	stateB, _ := ctrl.State(ctx, tabB, ViewAgents)
	if stateA.Page != 3 || stateB.Page != 1 {
		t.Fatalf("tabs must not share list state: a=%d b=%d", stateA.Page, stateB.Page)
	}

	reloaded, err := ctrl.Load(ctx, tabA, ViewAgents)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if reloaded.Pagination.Current != 3 || len(reloaded.Items) != 5 {
		t.Fatalf("load must reuse stored state, got %+v", reloaded.Pagination)
	}

	reset, err := ctrl.Reset(ctx, tabA, ViewAgents)
	if err != nil || reset.Page != 1 {
		t.Fatalf("reset: %+v %v", reset, err)
	}
}

func TestResultDiscardedWhenNewerTicketArrives(t *testing.T) {
	srv := backendtest.New(t)
	ctrl, store := newTestController(t, srv)
	sess := &session.Record{ID: "tab-1", BackendToken: "crm"}
	srv.Handle(http.MethodGet, "/leads", func(w http.ResponseWriter, r *http.Request) {
		// another update for the same view lands while this fetch is in flight
		_, _ = store.Incr(r.Context(), store.ListTicketKey(sess.ID, ViewLeads))
		backendtest.Reply(w, http.StatusOK, map[string]any{"leads": []map[string]any{{"_id": "l1"}}})
	})

	result, err := ctrl.Update(context.Background(), sess, ViewLeads, Change{Status: strPtr("new")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !result.Stale || len(result.Items) != 0 {
		t.Fatalf("expected stale result without items, got %+v", result)
	}
}

func TestTypingUpdateAbandonedWhenSuperseded(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodGet, "/leads", http.StatusOK, map[string]any{"leads": []any{}})
	ctrl, store := newTestController(t, srv)
	sess := &session.Record{ID: "tab-1", BackendToken: "crm"}

	var waited time.Duration
	ctrl.sleep = func(ctx context.Context, d time.Duration) error {
		waited = d
		_, err := store.Incr(ctx, store.ListTicketKey(sess.ID, ViewLeads))
		return err
	}

	result, err := ctrl.Update(context.Background(), sess, ViewLeads, Change{Search: strPtr("ra")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if waited != 400*time.Millisecond {
		t.Fatalf("expected typing debounce, waited %v", waited)
	}
	if !result.Stale {
		t.Fatalf("superseded update must be stale")
	}
	if calls := srv.Calls(http.MethodGet, "/leads"); len(calls) != 0 {
		t.Fatalf("superseded update must not fetch, got %d calls", len(calls))
	}
	state, _ := ctrl.State(context.Background(), sess, ViewLeads)
	if state.Search != "ra" {
		t.Fatalf("state must still record the change")
	}
}

func TestClientSortAppliedToAgents(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodGet, "/users", http.StatusOK, map[string]any{"users": []map[string]any{
		{"_id": "1", "firstName": "Zara"},
		{"_id": "2", "firstName": "amit"},
	}})
	ctrl, _ := newTestController(t, srv)
	sess := &session.Record{ID: "tab-1", BackendToken: "crm"}

	result, err := ctrl.Update(context.Background(), sess, ViewAgents, Change{SortBy: strPtr("name")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result.Items[0]["_id"] != "2" {
		t.Fatalf("expected client-side sort, got %v", result.Items)
	}
	if q := srv.Calls(http.MethodGet, "/users")[0].Query; q.Has("sortBy") {
		t.Fatalf("client-sorted view must not send sortBy")
	}
}

func TestFetchErrorIsReturnedTyped(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodGet, "/transactions", http.StatusInternalServerError, map[string]any{})
	ctrl, _ := newTestController(t, srv)
	sess := &session.Record{ID: "tab-1", BackendToken: "crm"}

	_, err := ctrl.Load(context.Background(), sess, ViewTransactions)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != "Failed to load transactions" {
		t.Fatalf("expected fallback message, got %v", err)
	}
}

func TestUnknownViewIsNotFound(t *testing.T) {
	srv := backendtest.New(t)
	ctrl, _ := newTestController(t, srv)
	_, err := ctrl.Load(context.Background(), &session.Record{ID: "s"}, "orders")
	if !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
