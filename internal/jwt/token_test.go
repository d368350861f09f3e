package jwt

import (
	"errors"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)

	token, err := issuer.CreateToken("ABC1")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}
	code, err := issuer.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if code != "ABC1" {
		t.Fatalf("code = %q, want ABC1", code)
	}
}

func TestParseTokenRejects(t *testing.T) {
	issuer := NewIssuer("secret", time.Hour)
	other := NewIssuer("other", time.Hour)

	foreign, err := other.CreateToken("ABC1")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	expiredIssuer := NewIssuer("secret", time.Minute)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredIssuer.CreateToken("ABC1")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	for name, tok := range map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"signature": foreign,
		"expired":   expired,
	} {
		if _, err := issuer.ParseToken(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: err = %v, want ErrInvalidToken", name, err)
		}
	}
}

func TestCreateTokenWithoutSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Hour).CreateToken("ABC1"); err == nil {
		t.Fatal("expected error without secret")
	}
}

func TestPIN(t *testing.T) {
	hashed, err := HashPIN("1234")
	if err != nil {
		t.Fatalf("HashPIN: %v", err)
	}
	if hashed == "1234" {
		t.Fatal("pin stored in clear")
	}
	if !ValidatePIN(hashed, "1234") {
		t.Fatal("valid pin rejected")
	}
	if ValidatePIN(hashed, "4321") {
		t.Fatal("wrong pin accepted")
	}
}
