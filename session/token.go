package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned by [TokenCodec.Parse] for any cookie value that
// is not a well-formed, correctly signed, unexpired session token.
var ErrInvalidToken = errors.New("invalid session token")

const minSecretBytes = 16

// TokenCodec signs session ids into cookie values (HS256 JWTs whose jti is
// the session id) and verifies them on the way back in.
type TokenCodec struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewTokenCodec returns a codec keyed by secret. issuer is optional; when
// set, tokens without a matching iss claim are rejected.
func NewTokenCodec(secret []byte, issuer string) (*TokenCodec, error) {
	if len(secret) < minSecretBytes {
		return nil, fmt.Errorf("session secret must be at least %d bytes", minSecretBytes)
	}
	key := make([]byte, len(secret))
	copy(key, secret)
	return &TokenCodec{key: key, issuer: issuer, now: time.Now}, nil
}

// Sign returns the cookie value for sessionID, valid until expiresAt.
func (c *TokenCodec) Sign(sessionID string, expiresAt time.Time) (string, error) {
	if sessionID == "" {
		return "", errors.New("empty session id")
	}

	claims := jwt.RegisteredClaims{
		ID:        sessionID,
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(c.now()),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
}

// Parse verifies value and returns the session id it carries.
func (c *TokenCodec) Parse(value string) (string, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.issuer != "" {
		options = append(options, jwt.WithIssuer(c.issuer))
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims, func(*jwt.Token) (interface{}, error) {
		return c.key, nil
	}, options...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" {
		return "", ErrInvalidToken
	}

	return claims.ID, nil
}
