package session

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenSignParse(t *testing.T) {
	codec, err := NewTokenCodec(testSecret, "sharedauth")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}

	value, err := codec.Sign("sid-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	id, err := codec.Parse(value)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != "sid-1" {
		t.Fatalf("expected sid-1, got %q", id)
	}
}

func TestTokenRejectsTampering(t *testing.T) {
	codec, err := NewTokenCodec(testSecret, "")
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	value, err := codec.Sign("sid-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	parts := strings.Split(value, ".")
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	if _, err := codec.Parse(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := codec.Parse("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}
}

func TestTokenRejectsOtherSecret(t *testing.T) {
	a, _ := NewTokenCodec(testSecret, "")
	b, _ := NewTokenCodec([]byte("fedcba9876543210fedcba9876543210"), "")

	value, err := a.Sign("sid-1", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := b.Parse(value); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestTokenRejectsExpired(t *testing.T) {
	codec, _ := NewTokenCodec(testSecret, "")
	base := time.Unix(1_700_000_000, 0)
	codec.now = func() time.Time { return base }

	value, err := codec.Sign("sid-1", base.Add(time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	codec.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := codec.Parse(value); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
}

func TestTokenRejectsUnsignedAlgorithm(t *testing.T) {
	codec, _ := NewTokenCodec(testSecret, "")

	claims := jwt.RegisteredClaims{
		ID:        "sid-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	value, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := codec.Parse(value); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected alg=none to be rejected, got %v", err)
	}
}

func TestTokenRequiresSecret(t *testing.T) {
	if _, err := NewTokenCodec([]byte("short"), ""); err == nil {
		t.Fatal("expected short secret to be rejected")
	}
}
