package properties

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/damsoledevelopers/spireleap-console/internal/backend"
	"github.com/damsoledevelopers/spireleap-console/internal/backend/backendtest"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

func sessionFor(role enums.UserRole) *session.Record {
	return &session.Record{ID: "tab-1", BackendToken: "crm-token", UserID: "u-1", Role: role}
}

func newTestService(t *testing.T, srv *backendtest.Server) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Backend: srv.Client(t)})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func rentForm() forms.PropertyForm {
	return forms.PropertyForm{Title: "2BHK near metro", ListingType: "rent"}.
		WithRent("32000", "monthly").
		WithSale("9000000")
}

func TestInitialStatus(t *testing.T) {
	cases := []struct {
		role      enums.UserRole
		requested enums.PropertyStatus
		want      enums.PropertyStatus
	}{
		{enums.UserRoleAgent, "", enums.PropertyStatusPending},
		{enums.UserRoleAgent, enums.PropertyStatusActive, enums.PropertyStatusPending},
		{enums.UserRoleStaff, "", enums.PropertyStatusPending},
		{enums.UserRoleSuperAdmin, "", enums.PropertyStatusActive},
		{enums.UserRoleAgencyAdmin, enums.PropertyStatusDraft, enums.PropertyStatusDraft},
	}
	for _, tc := range cases {
		if got := InitialStatus(tc.role, tc.requested); got != tc.want {
			t.Fatalf("%s/%q: expected %s, got %s", tc.role, tc.requested, tc.want, got)
		}
	}
}

func TestAgentCreateIsPendingAndDropsSaleBranch(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodPost, "/properties", http.StatusCreated, map[string]any{"property": map[string]any{"_id": "p-1", "status": "pending"}})
	svc := newTestService(t, srv)

	form := rentForm()
	form.Status = "active"
	result, err := svc.Create(context.Background(), sessionFor(enums.UserRoleAgent), form)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Notice != pendingNotice || result.Property.ID != "p-1" {
		t.Fatalf("unexpected result %+v", result)
	}
	body := srv.Calls(http.MethodPost, "/properties")[0].Body
	if body["status"] != "pending" {
		t.Fatalf("agent listing must be pending, got %v", body["status"])
	}
	price := body["price"].(map[string]any)
	if _, ok := price["sale"]; ok {
		t.Fatalf("rent listing must not carry a sale price: %v", price)
	}
	if rent := price["rent"].(map[string]any); rent["period"] != "monthly" {
		t.Fatalf("unexpected rent branch %v", rent)
	}
}

func TestCompareNeedsTwoToFourDistinctIDs(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodPost, "/properties/compare", http.StatusOK, map[string]any{"properties": []map[string]any{{"_id": "a"}, {"_id": "b"}}})
	svc := newTestService(t, srv)
	ctx := context.Background()
	sess := sessionFor(enums.UserRoleUser)

	for _, ids := range [][]string{{"a"}, {"a", "a"}, {"a", "b", "c", "d", "e"}} {
		if _, err := svc.Compare(ctx, sess, ids); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%v: expected validation error, got %v", ids, err)
		}
	}
	if len(srv.Calls("", "")) != 0 {
		t.Fatalf("invalid selections must not reach the backend")
	}

	got, err := svc.Compare(ctx, sess, []string{"a", " b ", "a"})
	if err != nil {
		t.Fatalf("compare: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected properties %+v", got)
	}
	sent := srv.Calls(http.MethodPost, "/properties/compare")[0].Body["propertyIds"].([]any)
	if len(sent) != 2 || sent[0] != "a" || sent[1] != "b" {
		t.Fatalf("unexpected ids %v", sent)
	}
}

func TestRejectSendsReason(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodPut, "/properties/p-1/approve", http.StatusOK, map[string]any{"message": "ok"})
	svc := newTestService(t, srv)

	result, err := svc.Approve(context.Background(), sessionFor(enums.UserRoleSuperAdmin), "p-1", false, " blurry photos ")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if result.Notice != rejectedNotice {
		t.Fatalf("unexpected notice %q", result.Notice)
	}
	body := srv.Calls(http.MethodPut, "/properties/p-1/approve")[0].Body
	if body["approved"] != false || body["rejectionReason"] != "blurry photos" {
		t.Fatalf("unexpected body %v", body)
	}
}

func TestSetStatusValidatesBeforeCalling(t *testing.T) {
	srv := backendtest.New(t)
	svc := newTestService(t, srv)

	if _, err := svc.SetStatus(context.Background(), sessionFor(enums.UserRoleSuperAdmin), "p-1", "archived"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(srv.Calls("", "")) != 0 {
		t.Fatalf("backend must not be called")
	}
}

func TestUploadImagesKeepsOnePrimary(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodPost, "/upload/property-images", http.StatusOK, map[string]any{"urls": []string{"new-1.jpg", "new-2.jpg"}})
	svc := newTestService(t, srv)

	current := []backend.Image{{URL: "old.jpg", IsPrimary: true}}
	files := []backend.File{{Name: "a.jpg", ContentType: "image/jpeg", Content: strings.NewReader("a")}}
	gallery, err := svc.UploadImages(context.Background(), sessionFor(enums.UserRoleAgent), current, files)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if len(gallery.Images) != 3 || gallery.Primary != "old.jpg" {
		t.Fatalf("unexpected gallery %+v", gallery)
	}
	primaries := 0
	for _, img := range gallery.Images {
		if img.IsPrimary {
			primaries++
		}
	}
	if primaries != 1 {
		t.Fatalf("expected one primary, got %d", primaries)
	}

	fresh, err := svc.UploadImages(context.Background(), sessionFor(enums.UserRoleAgent), nil, files)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if fresh.Primary != "new-1.jpg" {
		t.Fatalf("first uploaded image should become primary, got %q", fresh.Primary)
	}
}
