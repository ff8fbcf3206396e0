// Package cryptox produces and checks one-way password digests.
//
// New digests use argon2id in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
//
// Digests written by the previous generation of the service (bare uppercase
// hex SHA-1) are still verifiable so old snapshots keep working; callers are
// expected to replace them via HashPassword after a successful login.
package cryptox

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"golang.org/x/crypto/argon2"
)

// Params tunes the argon2id cost.
type Params struct {
	Time    uint32
	Memory  uint32 // KiB
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams matches what the server uses in production.
var DefaultParams = Params{Time: 1, Memory: 64 * 1024, Threads: 4, SaltLen: 16, KeyLen: 32}

const legacyDigestLen = sha1.Size * 2

var b64 = base64.RawStdEncoding

// HashPassword returns a self-describing argon2id digest of password with a
// fresh random salt.
func HashPassword(password string, p Params) string {
	salt := common.GenerateRandByteArray(int(p.SaltLen))
	key := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, p.Memory, p.Time, p.Threads, b64.EncodeToString(salt), b64.EncodeToString(key))
}

// VerifyPassword reports whether password matches digest. Malformed digests
// never match.
func VerifyPassword(digest, password string) bool {
	if IsLegacyDigest(digest) {
		candidate := LegacyDigest(password)
		return subtle.ConstantTimeCompare([]byte(strings.ToUpper(digest)), []byte(candidate)) == 1
	}

	p, salt, key, err := parseDigest(digest)
	if err != nil {
		return false
	}
	candidate := argon2.IDKey([]byte(password), salt, p.Time, p.Memory, p.Threads, p.KeyLen)
	defer common.WipeByteArray(candidate)

	return subtle.ConstantTimeCompare(key, candidate) == 1
}

// IsLegacyDigest reports whether digest is a bare hex SHA-1 value.
func IsLegacyDigest(digest string) bool {
	if len(digest) != legacyDigestLen {
		return false
	}
	_, err := hex.DecodeString(digest)
	return err == nil
}

// LegacyDigest computes the old uppercase hex SHA-1 digest.
func LegacyDigest(password string) string {
	sum := sha1.Sum([]byte(password))
	return strings.ToUpper(hex.EncodeToString(sum[:]))
}

func parseDigest(digest string) (Params, []byte, []byte, error) {
	// "", "argon2id", "v=19", "m=..,t=..,p=..", salt, key
	parts := strings.Split(digest, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, fmt.Errorf("unsupported digest format: %w", common.ErrParseFailure)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("unsupported argon2 version: %w", common.ErrParseFailure)
	}

	var p Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return Params{}, nil, nil, fmt.Errorf("bad argon2 parameters: %w", common.ErrParseFailure)
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, fmt.Errorf("bad salt encoding: %w", common.ErrParseFailure)
	}
	key, err := b64.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return Params{}, nil, nil, fmt.Errorf("bad key encoding: %w", common.ErrParseFailure)
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))

	return p, salt, key, nil
}
