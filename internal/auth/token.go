// Package auth issues and validates the signed session tokens that carry a
// caller's identity.
package auth

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-social/internal/apperr"
)

const issuer = "go-social"

// Claims is the payload of a session token. Subject holds the user id and
// ID (jti) identifies the token for revocation.
type Claims struct {
	jwt.RegisteredClaims
}

// UserID returns the numeric user id stored in the subject.
func (c *Claims) UserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || id < 1 {
		return 0, apperr.Unauthorized("invalid_token", "session token has an invalid subject")
	}
	return id, nil
}

// Revoker remembers logged out tokens until they would have expired anyway.
type Revoker interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type TokenService struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
}

// NewTokenService returns a TokenService signing HS256 tokens with secret.
// revoker may be nil, in which case tokens stay valid until they expire.
func NewTokenService(secret string, ttl time.Duration, revoker Revoker) *TokenService {
	return &TokenService{
		secret:  []byte(secret),
		ttl:     ttl,
		revoker: revoker,
	}
}

// Issue signs a new token for userID and returns it with its expiry time.
func (s *TokenService) Issue(userID int64) (string, time.Time, error) {
	now := time.Now()
	expires := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})

	ss, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return ss, expires, nil
}

// Validate checks signature, expiry and revocation of tokenString.
func (s *TokenService) Validate(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return nil, apperr.Unauthorized("token_revoked", "session has been closed, please log in again")
		}
	}
	return claims, nil
}

// Revoke invalidates tokenString until its expiry. Tokens that are already
// invalid need no revocation and are ignored.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	if s.revoker == nil || tokenString == "" {
		return nil
	}
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil
	}
	return s.revoker.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

func (s *TokenService) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		return nil, apperr.Unauthorized("invalid_token", "session token is missing or invalid")
	}
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	return claims, nil
}
