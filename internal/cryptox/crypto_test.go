package cryptox

import (
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/litmgmt/internal/common"
)

// cheap parameters keep the suite fast; production cost is covered by one test.
var testParams = Params{Time: 1, Memory: 1024, Threads: 1, SaltLen: 16, KeyLen: 32}

func TestHashPassword_Format(t *testing.T) {
	d := HashPassword("wayne", testParams)

	if !strings.HasPrefix(d, "$argon2id$v=19$m=1024,t=1,p=1$") {
		t.Fatalf("unexpected digest prefix: %s", d)
	}
	if strings.Contains(d, "wayne") {
		t.Fatalf("digest must not contain the clear-text password")
	}
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	a := HashPassword("secret-password", testParams)
	b := HashPassword("secret-password", testParams)

	if a == b {
		t.Errorf("expected different digests for the same password, got same")
	}
	if !VerifyPassword(a, "secret-password") || !VerifyPassword(b, "secret-password") {
		t.Errorf("both digests must verify")
	}
}

func TestVerifyPassword(t *testing.T) {
	d := HashPassword("right", testParams)

	tests := []struct {
		name     string
		digest   string
		password string
		want     bool
	}{
		{"match", d, "right", true},
		{"mismatch", d, "wrong", false},
		{"empty password", d, "", false},
		{"garbage digest", "not-a-digest", "right", false},
		{"truncated digest", d[:len(d)-10] + "$", "right", false},
		{"legacy match", LegacyDigest("wayne"), "wayne", true},
		{"legacy lower-case match", strings.ToLower(LegacyDigest("wayne")), "wayne", true},
		{"legacy mismatch", LegacyDigest("wayne"), "john", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifyPassword(tt.digest, tt.password); got != tt.want {
				t.Fatalf("VerifyPassword() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifyPassword_DefaultParams(t *testing.T) {
	d := HashPassword("production", DefaultParams)
	if !strings.Contains(d, "m=65536,t=1,p=4") {
		t.Fatalf("unexpected parameters in %s", d)
	}
	if !VerifyPassword(d, "production") {
		t.Fatalf("expected digest to verify")
	}
}

func TestLegacyDigest_KnownValue(t *testing.T) {
	// sha1("abc")
	const want = "A9993E364706816ABA3E25717850C26C9CD0D89D"
	if got := LegacyDigest("abc"); got != want {
		t.Fatalf("LegacyDigest() = %s, want %s", got, want)
	}
	if !IsLegacyDigest(want) {
		t.Fatalf("expected %s to be recognised as legacy", want)
	}
	if IsLegacyDigest(HashPassword("abc", testParams)) {
		t.Fatalf("argon2id digest must not be treated as legacy")
	}
}

func TestParseDigest_Errors(t *testing.T) {
	bad := []string{
		"",
		"$bcrypt$v=19$m=1,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=18$m=1,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=19$m=x,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=19$m=1,t=1,p=1$!!!!$AAAA",
		"$argon2id$v=19$m=1,t=1,p=1$AAAA$",
	}
	for _, d := range bad {
		if _, _, _, err := parseDigest(d); !errors.Is(err, common.ErrParseFailure) {
			t.Fatalf("parseDigest(%q) err = %v, want ErrParseFailure", d, err)
		}
	}
}
