// Package authstate derives a caller's AuthState on the server from the
// credential store and the session record, so protected endpoints can apply
// the same guard the client does.
package authstate

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"partnerdash/internal/credentials"
	"partnerdash/internal/guard"
	identity "partnerdash/internal/identity/models"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/requestcontext"
)

// Derive builds the guard state from what the store holds for one user.
// A nil role means not approved. MFA counts as configured only when the
// record is verified, and a configured factor is always required.
func Derive(hasSession bool, role *credentials.RoleAssignment, mfa *credentials.MFASettings, sessionVerified bool) guard.AuthState {
	if !hasSession {
		return guard.AuthState{}
	}
	configured := mfa != nil && mfa.IsVerified
	return guard.AuthState{
		HasSession:    true,
		IsApproved:    role != nil,
		IsAdmin:       role != nil && role.Role == credentials.RoleAdmin,
		MFARequired:   configured,
		MFAConfigured: configured,
		MFAVerified:   sessionVerified,
	}
}

type Store interface {
	FindRole(ctx context.Context, userID id.UserID) (*credentials.RoleAssignment, error)
	FindMFA(ctx context.Context, userID id.UserID) (*credentials.MFASettings, error)
}

type SessionFinder interface {
	Session(ctx context.Context, sessionID id.SessionID) (*identity.Session, error)
}

type Service struct {
	store    Store
	sessions SessionFinder
	logger   *slog.Logger
}

func New(store Store, sessions SessionFinder, logger *slog.Logger) *Service {
	return &Service{store: store, sessions: sessions, logger: logger}
}

// Role returns the caller's role assignment, or nil while pending approval.
func (s *Service) Role(ctx context.Context, userID id.UserID) (*credentials.RoleAssignment, error) {
	role, err := s.store.FindRole(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}
	return role, nil
}

func (s *Service) mfa(ctx context.Context, userID id.UserID) (*credentials.MFASettings, error) {
	settings, err := s.store.FindMFA(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load MFA settings")
	}
	return settings, nil
}

// Current derives the state of the authenticated caller in ctx. Without a
// caller it is the signed-out state.
func (s *Service) Current(ctx context.Context) (guard.AuthState, error) {
	userID := requestcontext.UserID(ctx)
	sessionID := requestcontext.SessionID(ctx)
	if userID.IsNil() {
		return Derive(false, nil, nil, false), nil
	}

	var (
		role     *credentials.RoleAssignment
		settings *credentials.MFASettings
		verified bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		role, err = s.Role(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		settings, err = s.mfa(gctx, userID)
		return err
	})
	g.Go(func() error {
		if sessionID.IsNil() {
			return nil
		}
		session, err := s.sessions.Session(gctx, sessionID)
		if err != nil {
			return err
		}
		verified = session.MFAVerified
		return nil
	})
	if err := g.Wait(); err != nil {
		return guard.AuthState{}, err
	}

	state := Derive(true, role, settings, verified)
	s.logger.DebugContext(ctx, "auth state derived",
		"user_id", userID.String(),
		"approved", state.IsApproved,
		"mfa_configured", state.MFAConfigured,
		"mfa_verified", state.MFAVerified,
		"request_id", requestcontext.RequestID(ctx))
	return state, nil
}
