package leads

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/audit"
	"github.com/damsoledevelopers/spireleap-console/internal/backend/backendtest"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/internal/listing"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
)

var testSession = &session.Record{ID: "tab-1", BackendToken: "crm-token", UserID: "agent-1", Role: enums.UserRoleAgent}

func newTestService(t *testing.T, srv *backendtest.Server, refresher viewRefresher) (*service, *redisclient.Client) {
	t.Helper()
	store := redisclient.NewMemory()
	svc, err := NewService(ServiceParams{Backend: srv.Client(t), Drafts: store, Refresher: refresher})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	impl := svc.(*service)
	impl.newID = func() string { return "draft-1" }
	return impl, store
}

func leadForm() forms.LeadForm {
	return forms.LeadForm{
		Contact:  forms.ContactForm{FirstName: "Meera", LastName: "Iyer", Email: "meera@example.com"},
		Priority: "warm",
		Tags:     []string{"referral"},
	}.WithBudget("2500000", "4000000")
}

func serveDuplicateCheck(srv *backendtest.Server) {
	srv.Handle(http.MethodPost, "/leads", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["ignoreDuplicates"] == true {
			backendtest.Reply(w, http.StatusCreated, map[string]any{"lead": map[string]any{"_id": "lead-new", "status": "new"}})
			return
		}
		backendtest.Reply(w, http.StatusOK, map[string]any{
			"duplicates": []map[string]any{{
				"_id":     "lead-9",
				"contact": map[string]any{"firstName": "Meera", "lastName": "I", "email": "meera@example.com", "phone": "98200"},
			}},
		})
	})
}

func TestDuplicateLeadFlow(t *testing.T) {
	srv := backendtest.New(t)
	serveDuplicateCheck(srv)
	svc, _ := newTestService(t, srv, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, testSession, leadForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.Lead != nil {
		t.Fatalf("lead must not count as created while duplicates are pending")
	}
	if first.DraftID != "draft-1" || len(first.Duplicates) != 1 {
		t.Fatalf("unexpected duplicate result %+v", first)
	}
	dup := first.Duplicates[0]
	if dup.ID != "lead-9" || dup.Name != "Meera I" || dup.Phone != "98200" || dup.Link != "/admin/leads/lead-9" {
		t.Fatalf("unexpected duplicate view %+v", dup)
	}

	second, err := svc.CreateAnyway(ctx, testSession, first.DraftID)
	if err != nil {
		t.Fatalf("create anyway: %v", err)
	}
	if second.Lead == nil || second.Lead.ID != "lead-new" || len(second.Duplicates) != 0 {
		t.Fatalf("unexpected create anyway result %+v", second)
	}
	if second.Notice != createdNotice {
		t.Fatalf("unexpected notice %q", second.Notice)
	}

	calls := srv.Calls(http.MethodPost, "/leads")
	if len(calls) != 2 {
		t.Fatalf("expected two create calls, got %d", len(calls))
	}
	resent := calls[1].Body
	if resent["ignoreDuplicates"] != true {
		t.Fatalf("resubmission must carry ignoreDuplicates, got %v", resent)
	}
	delete(resent, "ignoreDuplicates")
	if !reflect.DeepEqual(calls[0].Body, resent) {
		t.Fatalf("resubmitted payload differs:\nfirst  %v\nsecond %v", calls[0].Body, resent)
	}

	if _, err := svc.CreateAnyway(ctx, testSession, first.DraftID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("draft must be consumed, got %v", err)
	}
}

func TestDraftsAreSessionScoped(t *testing.T) {
	srv := backendtest.New(t)
	serveDuplicateCheck(srv)
	svc, _ := newTestService(t, srv, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, testSession, leadForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	otherTab := &session.Record{ID: "tab-2", BackendToken: "crm-token"}
	if _, err := svc.CreateAnyway(ctx, otherTab, first.DraftID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found from another tab, got %v", err)
	}
}

func TestCancelDraftReturnsToList(t *testing.T) {
	srv := backendtest.New(t)
	serveDuplicateCheck(srv)
	svc, store := newTestService(t, srv, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, testSession, leadForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	redirect, err := svc.CancelDraft(ctx, testSession, first.DraftID)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if redirect != "/admin/leads" {
		t.Fatalf("unexpected redirect %q", redirect)
	}
	if _, err := store.Get(ctx, store.DraftKey(draftKind, testSession.ID, first.DraftID)); !errors.Is(err, redisclient.ErrNil) {
		t.Fatalf("draft should be gone, got %v", err)
	}
	if len(srv.Calls(http.MethodPost, "/leads")) != 1 {
		t.Fatalf("cancel must not call the backend")
	}
}

func TestCreateWithoutDuplicates(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodPost, "/leads", http.StatusCreated, map[string]any{"lead": map[string]any{"_id": "lead-1"}, "duplicates": []any{}})
	svc, _ := newTestService(t, srv, nil)

	result, err := svc.Create(context.Background(), testSession, leadForm())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Lead == nil || result.Lead.ID != "lead-1" || result.DraftID != "" {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestCreateRejectsInvalidFormWithoutCallingBackend(t *testing.T) {
	srv := backendtest.New(t)
	svc, _ := newTestService(t, srv, nil)

	_, err := svc.Create(context.Background(), testSession, forms.LeadForm{Contact: forms.ContactForm{FirstName: "No contact"}})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(srv.Calls("", "")) != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to enums.LeadStatus
		ok       bool
	}{
		{enums.LeadStatusNew, enums.LeadStatusContacted, true},
		{enums.LeadStatusBooked, enums.LeadStatusContacted, true},
		{enums.LeadStatusNegotiation, enums.LeadStatusClosed, true},
		{enums.LeadStatusSiteVisit, enums.LeadStatusLost, true},
		{enums.LeadStatusNew, enums.LeadStatusLost, true},
		{enums.LeadStatusClosed, enums.LeadStatusNew, false},
		{enums.LeadStatusLost, enums.LeadStatusContacted, false},
		{enums.LeadStatusClosed, enums.LeadStatusClosed, true},
		{enums.LeadStatusNew, enums.LeadStatus("archived"), false},
	}
	for _, tc := range cases {
		err := CanTransition(tc.from, tc.to)
		if (err == nil) != tc.ok {
			t.Fatalf("%s -> %s: expected ok=%v, got %v", tc.from, tc.to, tc.ok, err)
		}
	}
}

func TestUpdateStatusRejectsTerminalLeadWithoutWriting(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodGet, "/leads/lead-1", http.StatusOK, map[string]any{"lead": map[string]any{"_id": "lead-1", "status": "closed"}})
	svc, _ := newTestService(t, srv, nil)

	_, err := svc.UpdateStatus(context.Background(), testSession, "lead-1", enums.LeadStatusContacted)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(srv.Calls(http.MethodPut, "/leads/lead-1")) != 0 {
		t.Fatalf("terminal lead must not be written")
	}
}

func TestUpdateCannotReopenTerminalLead(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodGet, "/leads/lead-1", http.StatusOK, map[string]any{"lead": map[string]any{"_id": "lead-1", "status": "closed"}})
	srv.JSON(http.MethodPut, "/leads/lead-1", http.StatusOK, map[string]any{"lead": map[string]any{"_id": "lead-1", "status": "new"}})
	svc, _ := newTestService(t, srv, nil)

	form := leadForm()
	form.Status = "new"
	_, err := svc.Update(context.Background(), testSession, "lead-1", form)
	if !pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(srv.Calls(http.MethodPut, "/leads/lead-1")) != 0 {
		t.Fatalf("closed lead must not be rewritten")
	}

	form.Status = "closed"
	if _, err := svc.Update(context.Background(), testSession, "lead-1", form); err != nil {
		t.Fatalf("editing a closed lead without moving it: %v", err)
	}
	if len(srv.Calls(http.MethodPut, "/leads/lead-1")) != 1 {
		t.Fatalf("expected one write")
	}
}

func TestUpdateWithoutStatusSkipsLifecycleLookup(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodPut, "/leads/lead-1", http.StatusOK, map[string]any{"lead": map[string]any{"_id": "lead-1"}})
	svc, _ := newTestService(t, srv, nil)

	if _, err := svc.Update(context.Background(), testSession, "lead-1", leadForm()); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(srv.Calls(http.MethodGet, "/leads/lead-1")) != 0 {
		t.Fatalf("no status change, no lookup expected")
	}
}

type recordingSink struct {
	events []audit.Event
}

func (r *recordingSink) Record(_ context.Context, e audit.Event) {
	r.events = append(r.events, e)
}

func TestCreateWithEmptyReplyIsAFailure(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodPost, "/leads", http.StatusOK, map[string]any{"duplicates": []any{}})
	sink := &recordingSink{}
	svc, err := NewService(ServiceParams{Backend: srv.Client(t), Drafts: redisclient.NewMemory(), Audit: sink})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.Create(context.Background(), testSession, leadForm())
	if !pkgerrors.IsCode(err, pkgerrors.CodeDependency) || result != nil {
		t.Fatalf("expected dependency error, got %+v %v", result, err)
	}
	if len(sink.events) != 1 || sink.events[0].Err == nil {
		t.Fatalf("expected one failed audit event, got %+v", sink.events)
	}
}

func TestDeleteRefreshesLeadsViewAndMetrics(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodDelete, "/leads/lead-1", http.StatusOK, map[string]any{"message": "deleted"})
	srv.JSON(http.MethodGet, "/leads", http.StatusOK, map[string]any{
		"leads":      []map[string]any{{"_id": "lead-2"}},
		"pagination": map[string]int{"current": 1, "pages": 1, "total": 1},
	})
	srv.JSON(http.MethodGet, "/stats/dashboard", http.StatusOK, map[string]any{"stats": map[string]any{"totalLeads": 1}})

	client := srv.Client(t)
	ctrl, err := listing.NewController(listing.ControllerParams{
		Backend: client,
		Store:   redisclient.NewMemory(),
		Config:  config.ListConfig{DefaultLimit: 10, MaxLimit: 100, StateTTL: time.Hour},
	})
	if err != nil {
		t.Fatalf("controller: %v", err)
	}
	svc, _ := newTestService(t, srv, listing.NewRefresher(ctrl, client))

	result, err := svc.Delete(context.Background(), testSession, "lead-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.Notice != deletedNotice {
		t.Fatalf("unexpected notice %q", result.Notice)
	}
	view := result.Refreshed.Views[listing.ViewLeads]
	if view == nil || len(view.Items) != 1 || view.Items[0]["_id"] != "lead-2" {
		t.Fatalf("leads view not refreshed: %+v", result.Refreshed)
	}
	if result.Refreshed.Metrics["totalLeads"] != float64(1) {
		t.Fatalf("metrics not refreshed: %+v", result.Refreshed.Metrics)
	}
}
