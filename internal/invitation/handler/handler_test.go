package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"partnerdash/internal/credentials"
	"partnerdash/internal/guard"
	credstore "partnerdash/internal/credentials/store"
	"partnerdash/internal/identity/token"
	"partnerdash/internal/invitation/models"
	"partnerdash/internal/invitation/service"
	mailermocks "partnerdash/internal/mailer/mocks"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/httputil"
	"partnerdash/pkg/platform/middleware/auth"
)

// stateSource hands the guard a fixed auth state.
type stateSource struct{ state guard.AuthState }

func (s *stateSource) Current(context.Context) (guard.AuthState, error) { return s.state, nil }

func admittedAdmin() guard.AuthState {
	return guard.AuthState{HasSession: true, IsApproved: true, IsAdmin: true, MFARequired: true, MFAConfigured: true, MFAVerified: true}
}

type HandlerSuite struct {
	suite.Suite
	source  *stateSource
	store   *credstore.InMemoryStore
	tokens  *token.Service
	router  *chi.Mux
	adminID id.UserID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctrl := gomock.NewController(s.T())
	sender := mailermocks.NewMockSender(ctrl)
	sender.EXPECT().Configured().Return(false).AnyTimes()

	s.store = credstore.NewInMemory()
	s.tokens = token.New("invite-handler-key", time.Hour)
	svc := service.New(s.store, s.store, s.store, sender, "https://dash.example.com", service.WithLogger(logger))

	s.source = &stateSource{state: admittedAdmin()}
	r := chi.NewRouter()
	New(svc, auth.RequireAuth(s.tokens, nil, nil, logger), s.source, logger).Register(r)
	s.router = r

	s.adminID = s.account("boss@example.com")
	s.Require().NoError(s.store.InsertRole(context.Background(), &credentials.RoleAssignment{UserID: s.adminID, Role: credentials.RoleAdmin}))
}

func (s *HandlerSuite) account(email string) id.UserID {
	userID := id.NewUserID()
	s.Require().NoError(s.store.CreateAccount(context.Background(), &credentials.Account{ID: userID, Email: email, CreatedAt: time.Now()}))
	return userID
}

func (s *HandlerSuite) bearer(userID id.UserID) string {
	tok, err := s.tokens.Issue(context.Background(), userID, id.NewSessionID(), "", time.Now().Add(time.Hour))
	s.Require().NoError(err)
	return tok
}

func (s *HandlerSuite) do(path, bearer string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *HandlerSuite) TestInviteRequiresToken() {
	w := s.do("/functions/invite", "", map[string]string{"action": "invite", "email": "new@example.com"})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlerSuite) TestInviteAndAccept() {
	w := s.do("/functions/invite", s.bearer(s.adminID), map[string]string{"action": "invite", "email": "new@example.com", "role": "user"})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var invite InviteResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &invite))
	s.True(invite.Success)
	s.Equal(models.WarnMailerNotConfigured, invite.Warning)
	s.Require().NotEmpty(invite.Token)

	w = s.do("/rpc/invitation", "", map[string]string{"token": invite.Token})
	s.Require().Equal(http.StatusOK, w.Code)
	var lookup LookupResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &lookup))
	s.Equal("new@example.com", lookup.Email)
	s.Equal("user", lookup.Role)

	invitee := s.account("NEW@example.com")
	w = s.do("/functions/invite", "", map[string]string{"action": "accept", "token": invite.Token, "userId": invitee.String()})
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.JSONEq(`{"success":true}`, w.Body.String())

	w = s.do("/rpc/invitation", "", map[string]string{"token": invite.Token})
	s.JSONEq(`{}`, w.Body.String())
}

func (s *HandlerSuite) TestInviteByNonAdmin() {
	plain := s.account("plain@example.com")
	w := s.do("/functions/invite", s.bearer(plain), map[string]string{"action": "invite", "email": "new@example.com"})
	s.Equal(http.StatusForbidden, w.Code)
	var resp httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(models.MsgAdminOnly, resp.Description)
}

func (s *HandlerSuite) TestInviteNeedsVerifiedSecondFactor() {
	s.source.state.MFAVerified = false
	w := s.do("/functions/invite", s.bearer(s.adminID), map[string]string{"action": "invite", "email": "new@example.com", "role": "admin"})
	s.Equal(http.StatusForbidden, w.Code)
	var denied guard.DeniedResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &denied))
	s.Equal(guard.OutcomeRedirect, denied.Decision)
	s.Equal(guard.PathMFAVerify, denied.Redirect)

	invitations, err := s.store.ListInvitations(context.Background())
	s.Require().NoError(err)
	s.Empty(invitations)
}

func (s *HandlerSuite) TestAcceptSkipsGuard() {
	s.source.state = guard.AuthState{}
	w := s.do("/functions/invite", "", map[string]string{"action": "accept", "token": "nope", "userId": id.NewUserID().String()})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlerSuite) TestAcceptErrors() {
	w := s.do("/functions/invite", "", map[string]string{"action": "accept"})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.do("/functions/invite", "", map[string]string{"action": "accept", "token": "nope", "userId": id.NewUserID().String()})
	s.Equal(http.StatusBadRequest, w.Code)
	var resp httputil.ErrorResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal(models.MsgInvalidInvitation, resp.Description)
}

func (s *HandlerSuite) TestUnknownAction() {
	w := s.do("/functions/invite", s.bearer(s.adminID), map[string]string{"action": "revoke"})
	s.Equal(http.StatusBadRequest, w.Code)
}
