package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestMintAndParse_Success(t *testing.T) {
	t.Parallel()

	is := NewIssuer([]byte("super-secret"))

	tok, err := is.Mint(42, "alice", "digest")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	claims, err := is.Parse(tok)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if claims.UserID != 42 || claims.UserName != "alice" || claims.Subject != "42" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID == "" || claims.IssuedAt == nil {
		t.Fatalf("expected jti and iat to be set: %+v", claims)
	}
	if claims.Fingerprint == "" || claims.Fingerprint == "digest" {
		t.Fatalf("fingerprint must be derived, not copied: %q", claims.Fingerprint)
	}
}

func TestMint_UniqueEvenAtSameInstant(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	is := NewIssuer([]byte("k"))
	is.now = func() time.Time { return fixed }

	a, err := is.Mint(1, "bob", "d")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	b, err := is.Mint(1, "bob", "d")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}
	if a == b {
		t.Fatalf("expected distinct tokens")
	}
}

func TestParse_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewIssuer([]byte("right-secret")).Mint(2, "u2", "d")
	if err != nil {
		t.Fatalf("Mint error: %v", err)
	}

	_, err = NewIssuer([]byte("wrong-secret")).Parse(tok)
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_MalformedString(t *testing.T) {
	t.Parallel()

	_, err := NewIssuer([]byte("k")).Parse("not.a.jwt")
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: 1})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("SignedString error: %v", err)
	}

	if _, err := NewIssuer([]byte("k")).Parse(s); err == nil {
		t.Fatalf("expected unsigned token to be rejected")
	}
}
