package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	credstore "partnerdash/internal/credentials/store"
	"partnerdash/internal/identity/service"
	sessionstore "partnerdash/internal/identity/store/session"
	"partnerdash/internal/identity/token"
	"partnerdash/pkg/platform/httputil"
	"partnerdash/pkg/platform/middleware/auth"
)

type HandlerSuite struct {
	suite.Suite
	router *chi.Mux
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens := token.New("handler-test-key", time.Hour)
	svc := service.New(credstore.NewInMemory(), sessionstore.NewInMemorySessionStore(), tokens,
		service.WithLogger(logger),
		service.WithBcryptCost(bcrypt.MinCost),
	)
	h := New(svc, logger)

	r := chi.NewRouter()
	h.RegisterPublic(r)
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens, svc, nil, logger))
		h.Register(r)
	})
	s.router = r
}

func (s *HandlerSuite) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) errorBody(w *httptest.ResponseRecorder) httputil.ErrorResponse {
	var resp httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (s *HandlerSuite) signUpAndIn(email string) string {
	creds := map[string]string{"email": email, "password": "Sunflower42"}
	w := s.do(http.MethodPost, "/auth/signup", "", creds)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/auth/signin", "", creds)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var resp SignInResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("bearer", resp.TokenType)
	s.NotEmpty(resp.SessionID)
	return resp.AccessToken
}

func (s *HandlerSuite) TestSignUpValidation() {
	w := s.do(http.MethodPost, "/auth/signup", "", map[string]string{"email": "not-an-email", "password": "Sunflower42"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("email must be a valid email", s.errorBody(w).Description)

	w = s.do(http.MethodPost, "/auth/signup", "", map[string]string{"email": "anna@example.com", "password": "short"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("Password should be at least 8 characters", s.errorBody(w).Description)
}

func (s *HandlerSuite) TestSignUpDuplicate() {
	s.signUpAndIn("anna@example.com")
	w := s.do(http.MethodPost, "/auth/signup", "", map[string]string{"email": "Anna@Example.com", "password": "Sunflower42"})
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("User already registered", s.errorBody(w).Description)
}

func (s *HandlerSuite) TestSignInWrongPassword() {
	s.signUpAndIn("anna@example.com")
	w := s.do(http.MethodPost, "/auth/signin", "", map[string]string{"email": "anna@example.com", "password": "Sunflower43"})
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Invalid login credentials", s.errorBody(w).Description)
}

func (s *HandlerSuite) TestSessionAndSignOut() {
	tok := s.signUpAndIn("anna@example.com")

	w := s.do(http.MethodGet, "/auth/session", tok, nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var session SessionResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &session))
	s.Equal("anna@example.com", session.User.Email)
	s.False(session.MFAVerified)

	w = s.do(http.MethodPost, "/auth/signout", tok, nil)
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/auth/session", tok, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Auth session missing!", s.errorBody(w).Description)
}

func (s *HandlerSuite) TestChangePassword() {
	tok := s.signUpAndIn("anna@example.com")

	w := s.do(http.MethodPost, "/auth/password", tok, map[string]string{
		"current_password": "Sunflower42",
		"new_password":     "Sunflower42",
	})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("New password should be different from the old password.", s.errorBody(w).Description)

	w = s.do(http.MethodPost, "/auth/password", tok, map[string]string{
		"current_password": "Sunflower42",
		"new_password":     "Moonflower77",
	})
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodPost, "/auth/signin", "", map[string]string{"email": "anna@example.com", "password": "Moonflower77"})
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlerSuite) TestAuthedRoutesNeedToken() {
	w := s.do(http.MethodGet, "/auth/session", "", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Auth session missing!", s.errorBody(w).Description)
}
