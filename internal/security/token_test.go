package security

import (
	"testing"
	"time"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	token, err := GenerateSessionToken("test-secret", "user-1", "admin", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	claims, err := ParseSessionToken(token, "test-secret")
	if err != nil {
		t.Fatalf("ParseSessionToken: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("Role = %q, want admin", claims.Role)
	}
}

func TestParseSessionTokenRejects(t *testing.T) {
	valid, err := GenerateSessionToken("test-secret", "user-1", "user", time.Hour)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	expired, err := GenerateSessionToken("test-secret", "user-1", "user", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	tests := []struct {
		name   string
		token  string
		secret string
	}{
		{"wrong secret", valid, "other-secret"},
		{"expired", expired, "test-secret"},
		{"malformed", "not.a.jwt", "test-secret"},
		{"empty", "", "test-secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseSessionToken(tt.token, tt.secret); err == nil {
				t.Error("expected verification failure")
			}
		})
	}
}

func TestResetTokenRoundTrip(t *testing.T) {
	plain, hash, expiresAt, err := GenerateResetToken(10 * time.Minute)
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}
	if plain == "" || len(hash) == 0 {
		t.Fatal("empty token or hash")
	}

	now := time.Now()
	if !VerifyResetToken(plain, hash, expiresAt, now) {
		t.Error("fresh token rejected")
	}
	if VerifyResetToken("wrong-token", hash, expiresAt, now) {
		t.Error("wrong token accepted")
	}
}

func TestResetTokenExpiry(t *testing.T) {
	plain, hash, expiresAt, err := GenerateResetToken(10 * time.Minute)
	if err != nil {
		t.Fatalf("GenerateResetToken: %v", err)
	}

	if !VerifyResetToken(plain, hash, expiresAt, expiresAt.Add(-time.Second)) {
		t.Error("token rejected one second before expiry")
	}
	if VerifyResetToken(plain, hash, expiresAt, expiresAt.Add(time.Second)) {
		t.Error("matching token accepted one second after expiry")
	}
	if VerifyResetToken(plain, hash, expiresAt, expiresAt.Add(11*time.Minute)) {
		t.Error("matching token accepted well after expiry")
	}
}

func TestVerifyResetTokenNoStoredHash(t *testing.T) {
	if VerifyResetToken("anything", nil, time.Now().Add(time.Hour), time.Now()) {
		t.Error("accepted with no stored hash")
	}
}
