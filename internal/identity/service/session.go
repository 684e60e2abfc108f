package service

import (
	"context"
	"errors"
	"strings"

	"github.com/mssola/useragent"
	"golang.org/x/crypto/bcrypt"

	"partnerdash/internal/identity/models"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/requestcontext"
	strutil "partnerdash/pkg/string"
)

// SignUp registers an account. It grants no role: the account stays pending
// until an invitation is accepted or an admin assigns one.
func (s *Service) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = strutil.NormalizeEmail(email)
	if err := CheckPasswordPolicy(password); err != nil {
		return nil, err
	}
	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	account := newAccount(ctx, id.NewUserID(), email, hashed)
	if err := s.accounts.CreateAccount(ctx, account); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyExists) {
			return nil, dErrors.New(dErrors.CodeConflict, "User already registered")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create account")
	}

	s.logAudit(ctx, "user_signed_up", "user_id", account.ID.String())
	s.metrics.IncrementSignUps()
	return &models.User{ID: account.ID, Email: account.Email, CreatedAt: account.CreatedAt}, nil
}

// SignIn checks the password, opens a server-side session and issues its token.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.SignInResult, error) {
	email = strutil.NormalizeEmail(email)
	account, err := s.accounts.FindAccountByEmail(ctx, email)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if account == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		s.authFailure(ctx, "unknown_email")
		s.metrics.IncrementSignIns("failure")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid login credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		s.authFailure(ctx, "wrong_password", "user_id", account.ID.String())
		s.metrics.IncrementSignIns("failure")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Invalid login credentials")
	}

	now := requestcontext.Now(ctx)
	session := &models.Session{
		ID:        id.NewSessionID(),
		UserID:    account.ID,
		Email:     account.Email,
		Device:    deviceLabel(requestcontext.UserAgent(ctx)),
		CreatedAt: now,
		ExpiresAt: now.Add(s.tokens.TTL()),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}

	token, err := s.tokens.Issue(ctx, account.ID, session.ID, account.Email, session.ExpiresAt)
	if err != nil {
		if delErr := s.sessions.Delete(ctx, session.ID); delErr != nil && s.logger != nil {
			s.logger.ErrorContext(ctx, "failed to drop session after token error",
				"error", delErr, "session_id", session.ID.String())
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue token")
	}

	s.logAudit(ctx, "user_signed_in",
		"user_id", account.ID.String(),
		"session_id", session.ID.String(),
		"device", session.Device)
	s.metrics.IncrementSignIns("success")
	s.metrics.IncrementActiveSessions()
	s.publish(models.Event{Type: models.EventSignedIn, UserID: account.ID, SessionID: session.ID, At: now})

	return &models.SignInResult{
		AccessToken: token,
		ExpiresAt:   session.ExpiresAt,
		Session:     session,
		User:        models.User{ID: account.ID, Email: account.Email, CreatedAt: account.CreatedAt},
	}, nil
}

// SignOut ends the session. Tokens referencing it are rejected from then on.
func (s *Service) SignOut(ctx context.Context, userID id.UserID, sessionID id.SessionID) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to end session")
	}
	s.logAudit(ctx, "user_signed_out", "user_id", userID.String(), "session_id", sessionID.String())
	s.metrics.DecrementActiveSessions()
	s.publish(models.Event{Type: models.EventSignedOut, UserID: userID, SessionID: sessionID, At: requestcontext.Now(ctx)})
	return nil
}

// Session returns the live session record. Missing and expired sessions are
// both "Auth session missing!".
func (s *Service) Session(ctx context.Context, sessionID id.SessionID) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Auth session missing!")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}
	if session.Expired(requestcontext.Now(ctx)) {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Auth session missing!")
	}
	return session, nil
}

// SessionActive satisfies the auth middleware's session check.
func (s *Service) SessionActive(ctx context.Context, sessionID id.SessionID) (bool, error) {
	_, err := s.Session(ctx, sessionID)
	if err == nil {
		return true, nil
	}
	if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
		return false, nil
	}
	return false, err
}

// MarkSessionMFAVerified records a successful second factor on the session.
func (s *Service) MarkSessionMFAVerified(ctx context.Context, sessionID id.SessionID) error {
	if err := s.sessions.SetMFAVerified(ctx, sessionID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeUnauthorized, "Auth session missing!")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update session")
	}
	return nil
}

// RevokeUserSessions signs the user out everywhere and returns how many
// sessions ended.
func (s *Service) RevokeUserSessions(ctx context.Context, userID id.UserID) (int, error) {
	removed, err := s.sessions.DeleteByUser(ctx, userID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke sessions")
	}
	for range removed {
		s.metrics.DecrementActiveSessions()
	}
	if removed > 0 {
		s.logAudit(ctx, "sessions_revoked", "user_id", userID.String(), "count", removed)
		s.publish(models.Event{Type: models.EventSignedOut, UserID: userID, At: requestcontext.Now(ctx)})
	}
	return removed, nil
}

// deviceLabel turns a User-Agent into "Browser on OS". Mobile clients report
// their platform instead of the OS string.
func deviceLabel(userAgent string) string {
	if userAgent == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	if ua.Mobile() {
		if platform := ua.Platform(); platform != "" {
			return strings.TrimSpace(browser + " on " + platform)
		}
	}
	os := ua.OS()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = "Unknown OS"
	}
	return browser + " on " + os
}
