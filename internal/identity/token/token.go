// Package token issues and validates the HS256 bearer tokens handed out at sign-in.
package token

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/middleware/auth"
	"partnerdash/pkg/requestcontext"
)

const issuer = "partnerdash"

// AccessClaims is the JWT payload: sub is the user id, sid the server session.
type AccessClaims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// Service signs access tokens with a shared secret.
type Service struct {
	signingKey []byte
	ttl        time.Duration
	now        func() time.Time
}

func New(signingKey string, ttl time.Duration) *Service {
	return &Service{signingKey: []byte(signingKey), ttl: ttl, now: time.Now}
}

// TTL is how long issued tokens stay valid.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the session. The expiry is taken from the request time.
func (s *Service) Issue(ctx context.Context, userID id.UserID, sessionID id.SessionID, email string, expiresAt time.Time) (string, error) {
	jti, err := newJTI()
	if err != nil {
		return "", err
	}
	now := requestcontext.Now(ctx)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		SessionID: sessionID.String(),
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	})
	signed, err := tok.SignedString(s.signingKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature, algorithm, issuer and expiry. Expired
// tokens wrap auth.ErrTokenExpired.
func (s *Service) ValidateToken(tokenString string) (*auth.Claims, error) {
	claims := new(AccessClaims)
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("validate token: %w", auth.ErrTokenExpired)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	return &auth.Claims{
		UserID:    claims.Subject,
		SessionID: claims.SessionID,
		Email:     claims.Email,
		JTI:       claims.ID,
	}, nil
}

func newJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate jti: %w", err)
	}
	return hex.EncodeToString(b), nil
}
