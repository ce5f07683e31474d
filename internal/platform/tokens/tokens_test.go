package tokens

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestIssuer(t *testing.T, now func() time.Time) *Issuer {
	t.Helper()
	iss, err := NewIssuer(Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	}, WithClock(now))
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func TestAccessTokenRoundTrip(t *testing.T) {
	iss := newTestIssuer(t, time.Now)
	userID := uuid.New()

	tok, err := iss.IssueAccessToken(userID)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	got, ok := iss.VerifyAccessToken(tok)
	if !ok || got != userID {
		t.Fatalf("verify: got %s ok=%v want %s", got, ok, userID)
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	iss := newTestIssuer(t, time.Now)
	userID := uuid.New()

	pair, err := iss.IssuePair(userID)
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	got, ok := iss.VerifyRefreshToken(pair.RefreshToken)
	if !ok || got != userID {
		t.Fatalf("verify refresh: got %s ok=%v", got, ok)
	}
	if pair.ExpiresIn != time.Hour {
		t.Fatalf("expires in: got %v", pair.ExpiresIn)
	}
}

func TestExpiredTokenFailsVerification(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	iss := newTestIssuer(t, func() time.Time { return clock() })
	userID := uuid.New()

	tok, err := iss.IssueAccessToken(userID)
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	clock = func() time.Time { return now.Add(2 * time.Hour) }
	if _, ok := iss.VerifyAccessToken(tok); ok {
		t.Fatalf("expected expired token to fail")
	}
}

func TestTruncatedSignatureFailsVerification(t *testing.T) {
	iss := newTestIssuer(t, time.Now)
	tok, err := iss.IssueAccessToken(uuid.New())
	if err != nil {
		t.Fatalf("IssueAccessToken: %v", err)
	}
	if _, ok := iss.VerifyAccessToken(tok[:len(tok)-4]); ok {
		t.Fatalf("expected truncated token to fail")
	}
	if _, ok := iss.VerifyAccessToken("not-a-jwt"); ok {
		t.Fatalf("expected garbage to fail")
	}
	if _, ok := iss.VerifyAccessToken(""); ok {
		t.Fatalf("expected empty token to fail")
	}
}

func TestTokensAreNotInterchangeable(t *testing.T) {
	iss := newTestIssuer(t, time.Now)
	pair, err := iss.IssuePair(uuid.New())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if _, ok := iss.VerifyAccessToken(pair.RefreshToken); ok {
		t.Fatalf("refresh token must not verify as access token")
	}
	if _, ok := iss.VerifyRefreshToken(pair.AccessToken); ok {
		t.Fatalf("access token must not verify as refresh token")
	}
}

func TestNewIssuerRejectsSharedSecret(t *testing.T) {
	if _, err := NewIssuer(Config{AccessSecret: "x", RefreshSecret: "x"}); err == nil {
		t.Fatalf("expected error for identical secrets")
	}
	if _, err := NewIssuer(Config{AccessSecret: "x"}); err == nil {
		t.Fatalf("expected error for missing refresh secret")
	}
}
