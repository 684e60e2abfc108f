package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"partnerdash/internal/credentials"
	"partnerdash/internal/identity/models"
	"partnerdash/internal/identity/service/mocks"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/requestcontext"
)

func (s *ServiceSuite) TestSignUp() {
	s.Run("normalizes the email and stores a bcrypt hash", func() {
		user := s.signUp("  Anna@Example.COM ")
		s.Equal("anna@example.com", user.Email)

		account, err := s.accounts.FindAccountByID(s.ctx, user.ID)
		s.Require().NoError(err)
		s.NotEqual(validPass, account.PasswordHash)
		s.NoError(bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(validPass)))
	})

	s.Run("duplicate email is a conflict", func() {
		s.signUp("bela@example.com")
		_, err := s.service.SignUp(s.ctx, "BELA@example.com", validPass)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.EqualError(err, "User already registered")
	})

	s.Run("weak passwords are rejected before storage", func() {
		cases := map[string]string{
			"Ab1":      "Password should be at least 8 characters",
			"abcdefg1": "Password must contain an uppercase letter",
			"ABCDEFG1": "Password must contain a lowercase letter",
			"Abcdefgh": "Password must contain a number",
		}
		for password, msg := range cases {
			_, err := s.service.SignUp(s.ctx, "weak@example.com", password)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), password)
			s.EqualError(err, msg)
		}
		_, err := s.accounts.FindAccountByEmail(s.ctx, "weak@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ServiceSuite) TestSignIn() {
	user := s.signUp("anna@example.com")

	s.Run("issues a token bound to a new session", func() {
		s.events = nil
		result := s.signIn("ANNA@example.com")

		claims, err := s.tokens.ValidateToken(result.AccessToken)
		s.Require().NoError(err)
		s.Equal(user.ID.String(), claims.UserID)
		s.Equal(result.Session.ID.String(), claims.SessionID)

		session, err := s.service.Session(s.ctx, result.Session.ID)
		s.Require().NoError(err)
		s.Contains(session.Device, "Chrome on ")
		s.False(session.MFAVerified)

		s.Require().Len(s.events, 1)
		s.Equal(models.EventSignedIn, s.events[0].Type)
		s.Equal(user.ID, s.events[0].UserID)
	})

	s.Run("wrong password and unknown email look the same", func() {
		_, errWrong := s.service.SignIn(s.ctx, "anna@example.com", "Nope12345")
		_, errUnknown := s.service.SignIn(s.ctx, "nobody@example.com", validPass)
		for _, err := range []error{errWrong, errUnknown} {
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
			s.EqualError(err, "Invalid login credentials")
		}
	})
}

func (s *ServiceSuite) TestSignOut() {
	user := s.signUp("anna@example.com")
	result := s.signIn("anna@example.com")
	s.events = nil

	s.Require().NoError(s.service.SignOut(s.ctx, user.ID, result.Session.ID))

	active, err := s.service.SessionActive(s.ctx, result.Session.ID)
	s.Require().NoError(err)
	s.False(active)

	_, err = s.service.Session(s.ctx, result.Session.ID)
	s.EqualError(err, "Auth session missing!")

	s.Require().Len(s.events, 1)
	s.Equal(models.EventSignedOut, s.events[0].Type)
	s.Equal(result.Session.ID, s.events[0].SessionID)
}

func (s *ServiceSuite) TestSessionExpiry() {
	s.signUp("anna@example.com")
	result := s.signIn("anna@example.com")

	later := requestcontext.WithTime(s.ctx, result.ExpiresAt)
	active, err := s.service.SessionActive(later, result.Session.ID)
	s.Require().NoError(err)
	s.False(active, "a session is over at its expiry instant")
}

func (s *ServiceSuite) TestMarkSessionMFAVerified() {
	s.signUp("anna@example.com")
	result := s.signIn("anna@example.com")

	s.Require().NoError(s.service.MarkSessionMFAVerified(s.ctx, result.Session.ID))
	session, err := s.service.Session(s.ctx, result.Session.ID)
	s.Require().NoError(err)
	s.True(session.MFAVerified)

	err = s.service.MarkSessionMFAVerified(s.ctx, id.NewSessionID())
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *ServiceSuite) TestRevokeUserSessions() {
	user := s.signUp("anna@example.com")
	first := s.signIn("anna@example.com")
	second := s.signIn("anna@example.com")
	s.events = nil

	removed, err := s.service.RevokeUserSessions(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(2, removed)

	for _, r := range []*models.SignInResult{first, second} {
		active, err := s.service.SessionActive(s.ctx, r.Session.ID)
		s.Require().NoError(err)
		s.False(active)
	}
	s.Len(s.events, 1)

	removed, err = s.service.RevokeUserSessions(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Zero(removed)
	s.Len(s.events, 1, "nothing to revoke publishes nothing")
}

func (s *ServiceSuite) TestChangePassword() {
	user := s.signUp("anna@example.com")

	s.Run("same password is rejected", func() {
		err := s.service.ChangePassword(s.ctx, user.ID, validPass, validPass)
		s.EqualError(err, "New password should be different from the old password.")
	})

	s.Run("wrong current password", func() {
		err := s.service.ChangePassword(s.ctx, user.ID, "Wrong1234", "Brandnew77")
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("policy applies to the new password", func() {
		err := s.service.ChangePassword(s.ctx, user.ID, validPass, "short")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("success switches the password", func() {
		s.Require().NoError(s.service.ChangePassword(s.ctx, user.ID, validPass, "Brandnew77"))
		_, err := s.service.SignIn(s.ctx, "anna@example.com", validPass)
		s.Error(err)
		_, err = s.service.SignIn(s.ctx, "anna@example.com", "Brandnew77")
		s.NoError(err)
	})
}

func (s *ServiceSuite) TestUnsubscribe() {
	var calls int
	unsubscribe := s.service.Subscribe(func(models.Event) { calls++ })
	s.signUp("anna@example.com")
	s.signIn("anna@example.com")
	unsubscribe()
	s.signIn("anna@example.com")
	s.Equal(1, calls)
}

func TestSignInDropsSessionWhenTokenFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountStore(ctrl)
	sessions := mocks.NewMockSessionStore(ctrl)
	tokens := mocks.NewMockTokenIssuer(ctrl)

	hash, err := bcrypt.GenerateFromPassword([]byte(validPass), bcrypt.MinCost)
	require.NoError(t, err)
	account := &credentials.Account{ID: id.NewUserID(), Email: "anna@example.com", PasswordHash: string(hash)}

	var created id.SessionID
	accounts.EXPECT().FindAccountByEmail(gomock.Any(), "anna@example.com").Return(account, nil)
	tokens.EXPECT().TTL().Return(time.Hour)
	sessions.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, session *models.Session) error {
		created = session.ID
		return nil
	})
	tokens.EXPECT().Issue(gomock.Any(), account.ID, gomock.Any(), account.Email, gomock.Any()).Return("", errors.New("signer down"))
	sessions.EXPECT().Delete(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, sessionID id.SessionID) error {
		assert.Equal(t, created, sessionID)
		return nil
	})

	svc := New(accounts, sessions, tokens, WithBcryptCost(bcrypt.MinCost))
	_, err = svc.SignIn(context.Background(), "anna@example.com", validPass)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestSignInStoreFailureIsInternal(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountStore(ctrl)
	accounts.EXPECT().FindAccountByEmail(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

	svc := New(accounts, mocks.NewMockSessionStore(ctrl), mocks.NewMockTokenIssuer(ctrl))
	_, err := svc.SignIn(context.Background(), "anna@example.com", validPass)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestDeviceLabel(t *testing.T) {
	assert.Equal(t, "Unknown Device", deviceLabel(""))

	desktop := deviceLabel(chromeOnMac)
	assert.Contains(t, desktop, "Chrome on ")
	assert.NotContains(t, desktop, "  ")

	mobile := deviceLabel("Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	assert.Contains(t, mobile, "iPhone")

	assert.Contains(t, deviceLabel("Unknown/1.0"), " on ")
}
