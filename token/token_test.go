package token

import (
	"errors"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	tok, err := manager.Issue("ABCDE", "player-1", time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if tok == "" {
		t.Fatal("Issue should return a non-empty token")
	}

	roomCode, playerID, err := manager.Verify(tok)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if roomCode != "ABCDE" || playerID != "player-1" {
		t.Errorf("Expected (ABCDE, player-1), got (%s, %s)", roomCode, playerID)
	}
}

func TestVerify_Garbage(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	if _, _, err := manager.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewManager("secret-a", time.Hour)
	verifier := NewManager("secret-b", time.Hour)

	tok, err := issuer.Issue("ABCDE", "player-1", time.Now())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := verifier.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("A token signed with another secret must be rejected, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	manager := NewManager("test-secret", time.Hour)

	tok, err := manager.Issue("ABCDE", "player-1", time.Now().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if _, _, err := manager.Verify(tok); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("An expired token must be rejected, got %v", err)
	}
}
