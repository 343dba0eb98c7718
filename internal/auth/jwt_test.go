package auth

import (
	"errors"
	"testing"
)

func TestGenerateAndVerifyAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateAccessToken("user-a")
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	userID, err := svc.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("VerifyAccessToken() error = %v", err)
	}
	if userID != "user-a" {
		t.Errorf("userID = %q, want user-a", userID)
	}
}

func TestVerifyRejectsRefreshToken(t *testing.T) {
	svc := NewJWTService("test-secret")

	token, err := svc.GenerateRefreshToken("user-a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.VerifyAccessToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("VerifyAccessToken(refresh) error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	issuer := NewJWTService("secret-one")
	verifier := NewJWTService("secret-two")

	token, err := issuer.GenerateAccessToken("user-a")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := verifier.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenAfterRotation(t *testing.T) {
	oldSvc := NewJWTService("old-secret")
	token, err := oldSvc.GenerateAccessToken("user-a")
	if err != nil {
		t.Fatal(err)
	}

	rotated := NewJWTServiceWithRotation("new-secret", "old-secret")
	claims, err := rotated.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() after rotation error = %v", err)
	}
	if claims.Subject != "user-a" {
		t.Errorf("Subject = %q, want user-a", claims.Subject)
	}
}

func TestGenerateEmptyUserID(t *testing.T) {
	svc := NewJWTService("test-secret")

	if _, err := svc.GenerateAccessToken(""); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("GenerateAccessToken(\"\") error = %v, want ErrEmptyUserID", err)
	}
}

func TestValidateGarbage(t *testing.T) {
	svc := NewJWTService("test-secret")

	if _, err := svc.ValidateToken("not.a.jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken(garbage) error = %v, want ErrInvalidToken", err)
	}
}
