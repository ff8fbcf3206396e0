// Package auth mints and verifies session tokens.
//
// A token is an HS256 JWT carrying the user's id and name, a fingerprint of
// the password digest, the issue time and a random token id. Tokens carry no
// expiry: a session lasts until logout, and the directory's session map is the
// authority on whether a token is live. Signature checks only let the HTTP
// layer reject forged tokens before the map lookup.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dmitrijs2005/litmgmt/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID      int    `json:"uid"`
	UserName    string `json:"name"`
	Fingerprint string `json:"fp"`
}

type Issuer struct {
	secret []byte
	now    func() time.Time
}

func NewIssuer(secretKey []byte) *Issuer {
	return &Issuer{secret: secretKey, now: time.Now}
}

// Mint builds a new token for the user. Two calls never return the same
// string: the token id is a fresh random UUID.
func (i *Issuer) Mint(userID int, userName, passwordDigest string) (string, error) {
	sum := sha256.Sum256([]byte(passwordDigest))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       uuid.NewString(),
			Subject:  fmt.Sprint(userID),
			IssuedAt: jwt.NewNumericDate(i.now()),
		},
		UserID:      userID,
		UserName:    userName,
		Fingerprint: hex.EncodeToString(sum[:8]),
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Parse checks the signature and returns the claims.
func (i *Issuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
