package utils // package utils provides helper functions for token creation and hashing

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// ErrInvalidToken is returned by VerifyAccessToken when the token cannot be
// parsed, carries a bad signature, uses an unexpected algorithm, is expired,
// or lacks a usable subject claim.  Callers do not need to distinguish these
// cases; an invalid token always means re-authentication.
var ErrInvalidToken = errors.New("invalid token")

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived (one hour in production) and sent in the
// Authorization header when calling protected endpoints.  There is no
// refresh mechanism: expiry forces a fresh login.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken builds and signs an HS256 JWT for a user.  The token embeds
// only the user identifier (sub) plus exp and iat; rank and validation state
// are deliberately NOT claims, because they are re-read from storage on every
// request so that admin changes take effect immediately.
func NewAccessToken(secret string, userID uint64, ttlMin int) (AccessToken, error) {
	exp := time.Now().UTC().Add(time.Duration(ttlMin) * time.Minute)
	claims := jwt.MapClaims{
		"sub": userID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}

// VerifyAccessToken parses and validates a raw token string and returns the
// embedded user identifier.  Any failure collapses to ErrInvalidToken.
func VerifyAccessToken(secret, raw string) (uint64, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !tok.Valid {
		return 0, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrInvalidToken
	}
	// Numeric JSON values decode as float64.
	switch sub := claims["sub"].(type) {
	case float64:
		if sub <= 0 {
			return 0, ErrInvalidToken
		}
		return uint64(sub), nil
	}
	return 0, ErrInvalidToken
}
