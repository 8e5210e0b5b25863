package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func TestIssueAndValidate(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	claims, err := ValidateToken(token, testSecret)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if !claims.Admin {
		t.Error("expected admin claim")
	}
	if claims.Issuer != issuer {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ValidateToken(token, "other-secret"); err == nil {
		t.Error("expected signature error")
	}
}

func TestValidate_Expired(t *testing.T) {
	token, err := IssueToken(testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := ValidateToken(token, testSecret); !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidate_RejectsNoneAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Admin: true})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ValidateToken(signed, testSecret); err == nil {
		t.Error("unsigned token must be rejected")
	}
}

func TestIssueToken_RequiresSecret(t *testing.T) {
	if _, err := IssueToken("", time.Hour); err == nil {
		t.Error("expected error without secret")
	}
}
