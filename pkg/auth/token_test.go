package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/damsoledevelopers/spireleap-console/pkg/config"
	"github.com/damsoledevelopers/spireleap-console/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "spireleap-console", ExpirationMinutes: 30}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		SessionID: "sess-1",
		UserID:    "64f0c0ffee",
		Role:      enums.UserRoleAgent,
	})
	if err != nil {
		t.Fatalf("mint access token: %v", err)
	}

	claims, err := ParseAccessToken(cfg, token)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.SessionID() != "sess-1" {
		t.Fatalf("expected session id sess-1, got %s", claims.SessionID())
	}
	if claims.UserID != "64f0c0ffee" || claims.Role != enums.UserRoleAgent {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.Time.After(now) {
		t.Fatalf("expected expiry in the future")
	}
}

func TestMintAccessTokenValidation(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	cases := map[string]AccessTokenPayload{
		"missing session": {UserID: "u", Role: enums.UserRoleUser},
		"missing user":    {SessionID: "s", Role: enums.UserRoleUser},
		"bad role":        {SessionID: "s", UserID: "u", Role: "owner"},
	}
	for name, payload := range cases {
		if _, err := MintAccessToken(cfg, now, payload); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}

	noSecret := cfg
	noSecret.Secret = ""
	if _, err := MintAccessToken(noSecret, now, AccessTokenPayload{SessionID: "s", UserID: "u", Role: enums.UserRoleUser}); err == nil {
		t.Fatal("expected missing secret error")
	}
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now().Add(-time.Hour), AccessTokenPayload{
		SessionID: "s", UserID: "u", Role: enums.UserRoleStaff,
	})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := ParseAccessToken(cfg, token); err == nil || !strings.Contains(err.Error(), "expired") {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{SessionID: "s", UserID: "u", Role: enums.UserRoleUser})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	other := cfg
	other.Issuer = "someone-else"
	if _, err := ParseAccessToken(other, token); err == nil {
		t.Fatal("expected issuer mismatch")
	}
}
