package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSignInRoundTrip(t *testing.T) {
	users := newFakeUserRepo()
	svc := NewAuthService(users, "test-secret")

	resp, err := svc.SignIn(context.Background(), "Alice", "http://a/alice.png")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if !strings.HasPrefix(resp.PlayerID, "u_") {
		t.Fatalf("unexpected player id %q", resp.PlayerID)
	}

	user, _ := users.Get(context.Background(), resp.PlayerID)
	if user == nil || user.Name != "Alice" {
		t.Fatalf("user record should be saved, got %+v", user)
	}

	claims, err := svc.ValidateToken(resp.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.PlayerID != resp.PlayerID || claims.Name != "Alice" {
		t.Fatalf("claims out of step: %+v", claims)
	}
}

func TestSignInRequiresName(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret")
	if _, err := svc.SignIn(context.Background(), "", ""); err == nil {
		t.Fatal("expected an error for an empty name")
	}
}

func TestValidateTokenRejectsForgeries(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), "test-secret")
	other := NewAuthService(newFakeUserRepo(), "other-secret")

	resp, err := other.SignIn(context.Background(), "Mallory", "")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if _, err := svc.ValidateToken(resp.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for a foreign signature, got %v", err)
	}
	if _, err := svc.ValidateToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}
