package agencies

import (
	"context"
	"net/http"
	"testing"

	"github.com/damsoledevelopers/spireleap-console/internal/backend/backendtest"
	"github.com/damsoledevelopers/spireleap-console/internal/forms"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

func TestUpdateCleansForm(t *testing.T) {
	srv := backendtest.New(t)
	srv.JSON(http.MethodPut, "/agencies/ag-1", http.StatusOK, map[string]any{"agency": map[string]any{"_id": "ag-1", "name": "Skyline"}})
	svc, err := NewService(ServiceParams{Backend: srv.Client(t)})
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	sess := &session.Record{ID: "s", BackendToken: "crm", UserID: "admin"}

	form := Form{Name: " Skyline ", Email: "Hello@Skyline.IN", Address: forms.AddressForm{City: " Pune "}}
	result, err := svc.Update(context.Background(), sess, "ag-1", form)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result.Agency.Name != "Skyline" || result.Notice != updatedNotice {
		t.Fatalf("unexpected result %+v", result)
	}
	body := srv.Calls(http.MethodPut, "/agencies/ag-1")[0].Body
	if body["name"] != "Skyline" || body["email"] != "hello@skyline.in" {
		t.Fatalf("unexpected body %v", body)
	}
	if addr := body["address"].(map[string]any); addr["city"] != "Pune" {
		t.Fatalf("unexpected address %v", addr)
	}
	if _, ok := body["phone"]; ok {
		t.Fatalf("blank phone must be omitted")
	}

	if _, err := svc.Update(context.Background(), sess, "ag-1", Form{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFormCleanMessages(t *testing.T) {
	_, err := Form{Email: "a@b.co"}.Clean()
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "Agency name is required" {
		t.Fatalf("unexpected error %v", err)
	}
	_, err = Form{Name: "Skyline", Email: "skyline"}.Clean()
	if typed := pkgerrors.As(err); typed == nil || typed.Message() != "Please enter a valid email" {
		t.Fatalf("unexpected error %v", err)
	}
	if _, err := (Form{Name: "Skyline"}).Clean(); err != nil {
		t.Fatalf("email is optional: %v", err)
	}
}
