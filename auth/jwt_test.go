package auth

import (
	"testing"
	"time"

	"swasthsetu/models"
)

func testUser() *models.User {
	return &models.User{
		ID:        7,
		Username:  "asha",
		Email:     "asha@example.com",
		FirstName: "Asha",
		LastName:  "Verma",
		IsDoctor:  true,
	}
}

func TestIssueAndValidatePair(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	pair, err := m.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatalf("expected non-empty token pair")
	}

	claims, err := m.Validate(pair.Access, TokenKindAccess)
	if err != nil {
		t.Fatalf("Validate access: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "asha" || !claims.IsDoctor {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.FullName != "Asha Verma" {
		t.Fatalf("expected full name claim, got %q", claims.FullName)
	}

	if _, err := m.Validate(pair.Refresh, TokenKindRefresh); err != nil {
		t.Fatalf("Validate refresh: %v", err)
	}
}

func TestValidateRejectsWrongKind(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)

	pair, err := m.IssuePair(testUser())
	if err != nil {
		t.Fatalf("IssuePair: %v", err)
	}

	if _, err := m.Validate(pair.Refresh, TokenKindAccess); err == nil {
		t.Fatalf("expected refresh token to be rejected as access token")
	}
	if _, err := m.Validate(pair.Access, TokenKindRefresh); err == nil {
		t.Fatalf("expected access token to be rejected as refresh token")
	}
}

func TestValidateRejectsExpired(t *testing.T) {
	m := NewTokenManager("test-secret", -time.Minute, time.Hour)

	token, err := m.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := m.Validate(token, TokenKindAccess); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	m := NewTokenManager("test-secret", time.Minute, time.Hour)
	other := NewTokenManager("other-secret", time.Minute, time.Hour)

	token, err := m.IssueAccess(testUser())
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if _, err := other.Validate(token, TokenKindAccess); err == nil {
		t.Fatalf("expected token signed with a different secret to be rejected")
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "secret123") {
		t.Fatalf("expected password to verify")
	}
	if CheckPassword(hash, "wrong-password") {
		t.Fatalf("expected wrong password to fail")
	}
}

func TestHashPasswordRejectsShort(t *testing.T) {
	if _, err := HashPassword("abc"); err == nil {
		t.Fatalf("expected short password to be rejected")
	}
}
