package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/damsoledevelopers/spireleap-console/internal/backend/backendtest"
	pkgAuth "github.com/damsoledevelopers/spireleap-console/pkg/auth"
	"github.com/damsoledevelopers/spireleap-console/pkg/auth/session"
	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
	pkgerrors "github.com/damsoledevelopers/spireleap-console/pkg/errors"
	redisclient "github.com/damsoledevelopers/spireleap-console/pkg/redis"
)

var testJWT = config.JWTConfig{Secret: "secret", Issuer: "spireleap-console", ExpirationMinutes: 30}

func buildTestService(t *testing.T) (Service, *backendtest.Server, *session.Manager) {
	t.Helper()
	srv := backendtest.New(t)
	sessions, err := session.NewManager(redisclient.NewMemory(), config.SessionConfig{TTL: time.Hour})
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	svc, err := NewService(ServiceParams{
		Backend:   srv.Client(t),
		Sessions:  sessions,
		JWTConfig: testJWT,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, srv, sessions
}

func agentUser(active bool) map[string]any {
	return map[string]any{
		"_id":       "agent-1",
		"firstName": "Asha",
		"lastName":  "Rao",
		"email":     "asha@example.com",
		"role":      "agent",
		"isActive":  active,
	}
}

func TestLoginCreatesTabScopedSession(t *testing.T) {
	svc, srv, sessions := buildTestService(t)
	srv.JSON(http.MethodPost, "/auth/login", http.StatusOK, map[string]any{"token": "crm-token", "user": agentUser(true)})
	srv.JSON(http.MethodGet, "/auth/me", http.StatusOK, map[string]any{"user": agentUser(true)})
	srv.JSON(http.MethodGet, "/users/agent-1/permissions", http.StatusOK, map[string]any{
		"permissions": map[string]any{"leads": map[string]bool{"view": true, "create": true}},
	})

	ctx := context.Background()
	first, err := svc.Login(ctx, LoginRequest{Email: " Asha@Example.com ", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	second, err := svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	if first.Redirect != "/agent/dashboard" {
		t.Fatalf("expected agent dashboard, got %s", first.Redirect)
	}
	if !first.PermissionsLoaded || !first.Permissions["leads"].Create {
		t.Fatalf("expected loaded matrix, got %+v", first.Permissions)
	}

	claimsA, err := pkgAuth.ParseAccessToken(testJWT, first.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	claimsB, err := pkgAuth.ParseAccessToken(testJWT, second.Token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claimsA.SessionID() == claimsB.SessionID() {
		t.Fatalf("each login must get its own session")
	}

	rec, err := sessions.Get(ctx, claimsA.SessionID())
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if rec.BackendToken != "crm-token" || rec.UserID != "agent-1" || rec.Role != enums.UserRoleAgent {
		t.Fatalf("unexpected session %+v", rec)
	}
	if !CheckPermission(rec, "leads", enums.PermissionActionCreate) || CheckPermission(rec, "leads", enums.PermissionActionDelete) {
		t.Fatalf("session matrix not applied")
	}

	login := srv.Calls(http.MethodPost, "/auth/login")
	if login[0].Body["email"] != "asha@example.com" {
		t.Fatalf("expected normalized email, got %v", login[0].Body["email"])
	}
}

func TestLoginSuperAdminSkipsPermissionFetch(t *testing.T) {
	svc, srv, _ := buildTestService(t)
	admin := map[string]any{"_id": "root", "firstName": "Root", "email": "root@example.com", "role": "super_admin", "isActive": true}
	srv.JSON(http.MethodPost, "/auth/login", http.StatusOK, map[string]any{"token": "crm", "user": admin})
	srv.JSON(http.MethodGet, "/auth/me", http.StatusOK, map[string]any{"user": admin})

	snap, err := svc.Login(context.Background(), LoginRequest{Email: "root@example.com", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if snap.Redirect != "/admin/dashboard" || !snap.PermissionsLoaded {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if calls := srv.Calls(http.MethodGet, "/users/root/permissions"); len(calls) != 0 {
		t.Fatalf("super_admin must not fetch permissions")
	}
}

func TestLoginFailureUsesBackendMessage(t *testing.T) {
	svc, srv, _ := buildTestService(t)
	srv.JSON(http.MethodPost, "/auth/login", http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "bad"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized || typed.Message() != "Invalid email or password" {
		t.Fatalf("expected backend message, got %v", err)
	}
}

func TestLoginFailureFallsBackToGenericMessage(t *testing.T) {
	svc, srv, _ := buildTestService(t)
	srv.JSON(http.MethodPost, "/auth/login", http.StatusInternalServerError, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "a@example.com", Password: "bad"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != loginFailedMessage {
		t.Fatalf("expected fallback message, got %v", err)
	}
}

func TestFetchUserResetsSilentlyOnRejectedToken(t *testing.T) {
	svc, srv, sessions := buildTestService(t)
	ctx := context.Background()
	rec, err := sessions.Create(ctx, session.Record{BackendToken: "expired", UserID: "agent-1", Role: enums.UserRoleAgent})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	srv.JSON(http.MethodGet, "/auth/me", http.StatusUnauthorized, map[string]any{"message": "Token expired"})

	snap, err := svc.FetchUser(ctx, rec.ID)
	if err != nil {
		t.Fatalf("fetch user must not fail: %v", err)
	}
	if snap.User != nil || snap.Redirect != "" {
		t.Fatalf("expected empty snapshot without redirect, got %+v", snap)
	}
	if _, err := sessions.Get(ctx, rec.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("rejected session must be cleared, got %v", err)
	}
}

func TestFetchUserMissingSessionIsEmpty(t *testing.T) {
	svc, _, _ := buildTestService(t)
	snap, err := svc.FetchUser(context.Background(), "gone")
	if err != nil || snap.User != nil {
		t.Fatalf("expected empty snapshot, got %+v %v", snap, err)
	}
}

func TestRefreshUserPicksUpNewPermissions(t *testing.T) {
	svc, srv, sessions := buildTestService(t)
	ctx := context.Background()
	rec, err := sessions.Create(ctx, session.Record{BackendToken: "crm", UserID: "agent-1", Role: enums.UserRoleAgent})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	srv.JSON(http.MethodGet, "/auth/me", http.StatusOK, map[string]any{"user": agentUser(true)})
	srv.JSON(http.MethodGet, "/users/agent-1/permissions", http.StatusOK, map[string]any{
		"permissions": map[string]any{"properties": map[string]bool{"edit": true}},
	})

	snap, err := svc.RefreshUser(ctx, rec.ID)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap.User == nil || !snap.Permissions["properties"].Edit {
		t.Fatalf("expected refreshed matrix, got %+v", snap)
	}
	stored, err := sessions.Get(ctx, rec.ID)
	if err != nil {
		t.Fatalf("load session: %v", err)
	}
	if !CheckPermission(stored, "properties", enums.PermissionActionEdit) {
		t.Fatalf("refreshed matrix must be persisted")
	}
}

func TestRefreshSessionDoesNotReviveLoggedOutSession(t *testing.T) {
	svc, srv, sessions := buildTestService(t)
	ctx := context.Background()
	rec, err := sessions.Create(ctx, session.Record{BackendToken: "crm", UserID: "agent-1", Role: enums.UserRoleAgent})
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	srv.JSON(http.MethodGet, "/auth/me", http.StatusOK, map[string]any{"user": agentUser(true)})
	srv.JSON(http.MethodGet, "/users/agent-1/permissions", http.StatusOK, map[string]any{"permissions": map[string]any{}})

	// Logout lands while the refresh is talking to the CRM.
	if _, err := svc.Logout(ctx, rec.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	err = svc.RefreshSession(ctx, rec)
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if _, err := sessions.Get(ctx, rec.ID); !errors.Is(err, session.ErrSessionNotFound) {
		t.Fatalf("logged out session must stay gone, got %v", err)
	}
}

func TestLogoutToleratesMissingSession(t *testing.T) {
	svc, _, _ := buildTestService(t)
	redirect, err := svc.Logout(context.Background(), "never-existed")
	if err != nil || redirect != "/login" {
		t.Fatalf("expected /login, got %q %v", redirect, err)
	}
}

func TestDashboardFor(t *testing.T) {
	cases := map[enums.UserRole]string{
		enums.UserRoleSuperAdmin:  "/admin/dashboard",
		enums.UserRoleAgencyAdmin: "/agency/dashboard",
		enums.UserRoleAgent:       "/agent/dashboard",
		enums.UserRoleStaff:       "/staff/dashboard",
		enums.UserRoleUser:        "/customer/dashboard",
		"owner":                   "/",
	}
	for role, want := range cases {
		if got := DashboardFor(role); got != want {
			t.Fatalf("%s: expected %s got %s", role, want, got)
		}
	}
}
