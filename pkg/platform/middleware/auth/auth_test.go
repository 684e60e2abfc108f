package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	id "partnerdash/pkg/domain"
	"partnerdash/pkg/requestcontext"
)

const (
	testUserID    = "550e8400-e29b-41d4-a716-446655440001"
	testSessionID = "550e8400-e29b-41d4-a716-446655440002"
)

type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(tokenString string) (*Claims, error) {
	args := m.Called(tokenString)
	if claims := args.Get(0); claims != nil {
		return claims.(*Claims), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSessionChecker struct {
	mock.Mock
}

func (m *MockSessionChecker) SessionActive(ctx context.Context, sessionID id.SessionID) (bool, error) {
	args := m.Called(ctx, sessionID)
	return args.Bool(0), args.Error(1)
}

type countingRecorder struct {
	reasons []string
}

func (c *countingRecorder) IncrementAuthFailures(reason string) {
	c.reasons = append(c.reasons, reason)
}

type captureHandler struct {
	called bool
	ctx    context.Context
}

func (h *captureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.called = true
	h.ctx = r.Context()
	w.WriteHeader(http.StatusOK)
}

type AuthMiddlewareSuite struct {
	suite.Suite
	validator *MockTokenValidator
	sessions  *MockSessionChecker
	failures  *countingRecorder
	next      *captureHandler
	handler   http.Handler
}

func TestAuthMiddlewareSuite(t *testing.T) {
	suite.Run(t, new(AuthMiddlewareSuite))
}

func (s *AuthMiddlewareSuite) SetupTest() {
	s.validator = new(MockTokenValidator)
	s.sessions = new(MockSessionChecker)
	s.failures = &countingRecorder{}
	s.next = &captureHandler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.handler = RequireAuth(s.validator, s.sessions, s.failures, logger)(s.next)
}

func (s *AuthMiddlewareSuite) serve(authHeader string) (*httptest.ResponseRecorder, map[string]string) {
	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)

	var body map[string]string
	if rec.Code != http.StatusOK {
		s.Require().NoError(json.NewDecoder(rec.Body).Decode(&body))
	}
	return rec, body
}

func validClaims() *Claims {
	return &Claims{UserID: testUserID, SessionID: testSessionID, Email: "anna@example.com", JTI: "jti-1"}
}

func (s *AuthMiddlewareSuite) TestValidTokenPopulatesContext() {
	s.validator.On("ValidateToken", "good").Return(validClaims(), nil)
	s.sessions.On("SessionActive", mock.Anything, mustUUID(testSessionID)).Return(true, nil)

	rec, _ := s.serve("Bearer good")

	s.Equal(http.StatusOK, rec.Code)
	s.Require().True(s.next.called)
	s.Equal(testUserID, requestcontext.UserID(s.next.ctx).String())
	s.Equal(testSessionID, requestcontext.SessionID(s.next.ctx).String())
	s.Equal("anna@example.com", requestcontext.Email(s.next.ctx))
	s.Empty(s.failures.reasons)
}

func (s *AuthMiddlewareSuite) TestRejections() {
	s.Run("missing header", func() {
		rec, body := s.serve("")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Auth session missing!", body["error_description"])
	})

	s.Run("wrong scheme", func() {
		rec, _ := s.serve("Basic abc")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("expired token", func() {
		s.validator.On("ValidateToken", "old").Return(nil, fmt.Errorf("parse: %w", ErrTokenExpired)).Once()
		rec, body := s.serve("Bearer old")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("JWT expired", body["error_description"])
	})

	s.Run("invalid token", func() {
		s.validator.On("ValidateToken", "forged").Return(nil, errors.New("signature is invalid")).Once()
		rec, body := s.serve("Bearer forged")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Invalid or expired token", body["error_description"])
	})

	s.Run("malformed claims", func() {
		s.validator.On("ValidateToken", "weird").Return(&Claims{UserID: "nope", SessionID: testSessionID}, nil).Once()
		rec, _ := s.serve("Bearer weird")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("signed out session", func() {
		s.validator.On("ValidateToken", "ended").Return(validClaims(), nil).Once()
		s.sessions.On("SessionActive", mock.Anything, mock.Anything).Return(false, nil).Once()
		rec, body := s.serve("Bearer ended")
		s.Equal(http.StatusUnauthorized, rec.Code)
		s.Equal("Auth session missing!", body["error_description"])
	})

	s.False(s.next.called)
	s.Equal([]string{"missing_token", "missing_token", "expired_token", "invalid_token", "malformed_claims", "session_ended"}, s.failures.reasons)
}

func (s *AuthMiddlewareSuite) TestSessionStoreFailureIsInternal() {
	s.validator.On("ValidateToken", "good").Return(validClaims(), nil)
	s.sessions.On("SessionActive", mock.Anything, mock.Anything).Return(false, errors.New("redis down"))

	rec, body := s.serve("Bearer good")

	s.Equal(http.StatusInternalServerError, rec.Code)
	s.Equal("internal_error", body["error"])
	s.False(s.next.called)
}

func mustUUID(raw string) id.SessionID {
	sid, err := id.ParseSessionID(raw)
	if err != nil {
		panic(err)
	}
	return sid
}
