package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hashed, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hashed == "s3cret-pass" {
		t.Fatal("password stored in plain text")
	}
	if !ValidatePassword(hashed, "s3cret-pass") {
		t.Error("correct password rejected")
	}
	if ValidatePassword(hashed, "wrong-pass") {
		t.Error("wrong password accepted")
	}
}

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	parsed, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT() error = %v", err)
	}
	if !parsed.Valid {
		t.Fatal("freshly issued token is not valid")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("claims are not MapClaims")
	}
	if email, _ := claims["email"].(string); email != "user@example.com" {
		t.Errorf("email claim = %q, want user@example.com", email)
	}
}

func TestRefreshTokenCarriesSession(t *testing.T) {
	token, err := GenerateRefreshToken("user@example.com", "session-123")
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	parsed, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT() error = %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if sessionID, _ := claims["sessionId"].(string); sessionID != "session-123" {
		t.Errorf("sessionId claim = %q, want session-123", sessionID)
	}
}

func TestValidateJWTRejectsGarbage(t *testing.T) {
	if _, err := ValidateJWT("not.a.token"); err == nil {
		t.Error("garbage token accepted")
	}
}
