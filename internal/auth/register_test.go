package auth

import (
	"context"
	"net/http"
	"testing"

	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
)

func TestRegistrationPayloadOmitsEmptyOptionalFields(t *testing.T) {
	payload, err := registrationPayload(RegisterRequest{
		FirstName:       " Asha ",
		LastName:        "Rao",
		Email:           "ASHA@example.com",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Phone:           "  ",
		Address:         &AddressInput{City: " Pune "},
	})
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	if _, ok := payload["confirmPassword"]; ok {
		t.Fatalf("confirmPassword must never be sent")
	}
	for _, key := range []string{"phone", "agency", "role"} {
		if _, ok := payload[key]; ok {
			t.Fatalf("empty %s must be omitted", key)
		}
	}
	if payload["email"] != "asha@example.com" || payload["firstName"] != "Asha" {
		t.Fatalf("unexpected payload %v", payload)
	}
	address := payload["address"].(map[string]string)
	if len(address) != 1 || address["city"] != "Pune" {
		t.Fatalf("unexpected address %v", address)
	}
}

func TestRegistrationPayloadRequiresMatchingPasswords(t *testing.T) {
	_, err := registrationPayload(RegisterRequest{Password: "a", ConfirmPassword: "b"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterInactiveAccountLandsOnPublicPage(t *testing.T) {
	svc, srv, _ := buildTestService(t)
	srv.JSON(http.MethodPost, "/auth/register", http.StatusCreated, map[string]any{"token": "crm", "user": agentUser(false)})
	srv.JSON(http.MethodGet, "/auth/me", http.StatusOK, map[string]any{"user": agentUser(false)})
	srv.JSON(http.MethodGet, "/users/agent-1/permissions", http.StatusOK, map[string]any{"permissions": map[string]any{}})

	snap, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Asha", LastName: "Rao", Email: "asha@example.com",
		Password: "secret1", ConfirmPassword: "secret1", Role: "agent",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if snap.Redirect != "/" {
		t.Fatalf("pending account must land on /, got %s", snap.Redirect)
	}
	if snap.Token == "" {
		t.Fatalf("expected a console session for the returned token")
	}
}

func TestRegisterActiveAccountGoesToDashboard(t *testing.T) {
	svc, srv, _ := buildTestService(t)
	srv.JSON(http.MethodPost, "/auth/register", http.StatusCreated, map[string]any{"token": "crm", "user": agentUser(true)})

	snap, err := svc.Register(context.Background(), RegisterRequest{
		FirstName: "Asha", LastName: "Rao", Email: "asha@example.com",
		Password: "secret1", ConfirmPassword: "secret1",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if snap.Redirect != "/agent/dashboard" {
		t.Fatalf("expected agent dashboard, got %s", snap.Redirect)
	}
	if calls := srv.Calls(http.MethodPost, "/auth/register"); len(calls) != 1 || calls[0].Body["confirmPassword"] != nil {
		t.Fatalf("unexpected register calls %+v", calls)
	}
}
