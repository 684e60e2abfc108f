package token

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/middleware/auth"
	"partnerdash/pkg/requestcontext"
)

func TestIssueAndValidate(t *testing.T) {
	svc := New("test-key", time.Hour)
	userID := id.UserID(uuid.New())
	sessionID := id.SessionID(uuid.New())
	now := time.Now()
	ctx := requestcontext.WithTime(context.Background(), now)

	signed, err := svc.Issue(ctx, userID, sessionID, "anna@example.com", now.Add(time.Hour))
	require.NoError(t, err)

	claims, err := svc.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, sessionID.String(), claims.SessionID)
	assert.Equal(t, "anna@example.com", claims.Email)
	assert.Len(t, claims.JTI, 32)
}

func TestValidateRejects(t *testing.T) {
	svc := New("test-key", time.Hour)
	userID := id.UserID(uuid.New())
	sessionID := id.SessionID(uuid.New())
	now := time.Now()
	ctx := requestcontext.WithTime(context.Background(), now)

	t.Run("expired token wraps ErrTokenExpired", func(t *testing.T) {
		signed, err := svc.Issue(ctx, userID, sessionID, "a@example.com", now.Add(-time.Minute))
		require.NoError(t, err)
		_, err = svc.ValidateToken(signed)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("other signing key", func(t *testing.T) {
		other := New("other-key", time.Hour)
		signed, err := other.Issue(ctx, userID, sessionID, "a@example.com", now.Add(time.Hour))
		require.NoError(t, err)
		_, err = svc.ValidateToken(signed)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrTokenExpired)
	})

	t.Run("none algorithm", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, AccessClaims{
			SessionID: sessionID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})
		signed, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = svc.ValidateToken(signed)
		assert.Error(t, err)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
			SessionID: sessionID.String(),
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		})
		signed, err := tok.SignedString([]byte("test-key"))
		require.NoError(t, err)
		_, err = svc.ValidateToken(signed)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateToken("not.a.jwt")
		assert.Error(t, err)
	})
}
