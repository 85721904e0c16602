// Package auth issues and verifies the two JWT classes used by the server:
// short-lived access tokens and long-lived refresh tokens. Each class is
// signed with its own HS256 secret and carries an explicit type claim.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenType is the closed set of token classes.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

func (t TokenType) valid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

var (
	// ErrInvalidSignature covers malformed tokens, bad signatures and
	// unexpected algorithms.
	ErrInvalidSignature = errors.New("invalid token signature")

	// ErrWrongTokenType means a token of one class was presented as the other.
	ErrWrongTokenType = errors.New("wrong token type")

	// ErrTokenExpired is shared with common so transport layers can match it
	// without importing this package.
	ErrTokenExpired = common.ErrTokenExpired
)

// Claims is the signed payload of both token classes.
type Claims struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Type   TokenType `json:"type"`
	jwt.RegisteredClaims
}

// Identity is what a verified token says about its bearer.
type Identity struct {
	UserID string
	Email  string
}

// Codec signs and verifies tokens. It is safe for concurrent use.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// Option customizes a Codec.
type Option func(*Codec)

// WithClock replaces time.Now, used for issuing and for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) { c.now = now }
}

// NewCodec returns a Codec that signs access tokens with accessSecret and
// refresh tokens with refreshSecret. Each token expires after the TTL of its
// class.
func NewCodec(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration, opts ...Option) *Codec {
	c := &Codec{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// AccessTTL is the lifetime of issued access tokens.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL is the lifetime of issued refresh tokens and their records.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccessToken signs a short-lived access token for the user.
func (c *Codec) IssueAccessToken(userID, email string) (string, error) {
	return c.issue(TokenTypeAccess, userID, email)
}

// IssueRefreshToken signs a refresh token. The caller is responsible for
// recording it; a signed token alone does not authorize a refresh.
func (c *Codec) IssueRefreshToken(userID, email string) (string, error) {
	return c.issue(TokenTypeRefresh, userID, email)
}

func (c *Codec) issue(typ TokenType, userID, email string) (string, error) {
	secret, ttl := c.paramsFor(typ)
	now := c.now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		Email:  email,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})

	s, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return s, nil
}

// Verify checks the signature with the secret of the expected class, then
// expiry, then the type claim.
//
// Contract:
//   - a token of the other class yields ErrWrongTokenType, whether or not
//     the two secrets differ;
//   - an expired token with a valid signature yields ErrTokenExpired;
//   - anything else that fails to verify yields ErrInvalidSignature.
//
// The returned Identity is only ever built from verified claims.
func (c *Codec) Verify(tokenString string, expected TokenType) (*Identity, error) {
	if !expected.valid() {
		return nil, ErrWrongTokenType
	}
	secret, _ := c.paramsFor(expected)

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		if c.isOtherClass(tokenString, expected) {
			return nil, ErrWrongTokenType
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if claims.Type != expected {
		return nil, ErrWrongTokenType
	}

	return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
}

// isOtherClass reports whether the unverified type claim of tokenString
// names the valid class other than expected, and the token really is signed
// with that class's secret. Nothing from an unverified token is trusted
// beyond that decision.
func (c *Codec) isOtherClass(tokenString string, expected TokenType) bool {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return false
	}
	if !claims.Type.valid() || claims.Type == expected {
		return false
	}

	secret, _ := c.paramsFor(claims.Type)
	_, err := jwt.ParseWithClaims(tokenString, &Claims{},
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	return err == nil
}

func (c *Codec) paramsFor(typ TokenType) ([]byte, time.Duration) {
	if typ == TokenTypeRefresh {
		return c.refreshSecret, c.refreshTTL
	}
	return c.accessSecret, c.accessTTL
}
