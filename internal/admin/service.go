package admin

import (
	"context"
	"errors"
	"log/slog"

	"partnerdash/internal/admin/types"
	"partnerdash/internal/credentials"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/requestcontext"
)

const (
	msgAdminOnly       = "Only admins can perform this action"
	msgInvalidUserID   = "Invalid userId"
	msgDeleteSelf      = "You cannot delete your own account"
	msgDemoteSelf      = "You cannot change your own role"
	msgInvalidRole     = "Invalid role"
	msgInvalidInviteID = "Invalid invitation id"
)

// Store is the slice of the credential store user administration needs.
type Store interface {
	FindRole(ctx context.Context, userID id.UserID) (*credentials.RoleAssignment, error)
	UpdateRole(ctx context.Context, userID id.UserID, role credentials.Role) error
	ListUsers(ctx context.Context) ([]credentials.UserListing, error)
	FindAccountByID(ctx context.Context, userID id.UserID) (*credentials.Account, error)
	ListInvitations(ctx context.Context) ([]*credentials.Invitation, error)
	MarkInvitationDeleted(ctx context.Context, invitationID id.InvitationID) error
	DeleteUser(ctx context.Context, userID id.UserID, email string) error
}

// SessionRevoker ends every server-side session of a user.
type SessionRevoker interface {
	RevokeUserSessions(ctx context.Context, userID id.UserID) (int, error)
}

// Service provides user administration. Every method checks that the caller is an admin.
type Service struct {
	store    Store
	sessions SessionRevoker
	logger   *slog.Logger
}

func NewService(store Store, sessions SessionRevoker, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{store: store, sessions: sessions, logger: logger}
}

func (s *Service) requireAdmin(ctx context.Context, caller id.UserID) error {
	assignment, err := s.store.FindRole(ctx, caller)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}
	if assignment == nil || assignment.Role != credentials.RoleAdmin {
		s.logger.WarnContext(ctx, "non-admin request rejected",
			"caller_id", caller.String(),
			"request_id", requestcontext.RequestID(ctx))
		return dErrors.New(dErrors.CodeForbidden, msgAdminOnly)
	}
	return nil
}

// ListUsers returns approved users, oldest first. Users whose account is gone show "N/A".
func (s *Service) ListUsers(ctx context.Context, caller id.UserID) ([]types.UserRow, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	listings, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	rows := make([]types.UserRow, 0, len(listings))
	for _, l := range listings {
		email := l.Email
		if email == "" {
			email = "N/A"
		}
		rows = append(rows, types.UserRow{
			ID:        l.UserID.String(),
			UserID:    l.UserID.String(),
			Role:      l.Role.String(),
			Email:     email,
			CreatedAt: l.CreatedAt,
		})
	}
	return rows, nil
}

// DeleteUser removes a user's MFA settings, role and account, marks the
// invitations sent to their address deleted, and ends their sessions.
func (s *Service) DeleteUser(ctx context.Context, caller id.UserID, userID string) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	target, err := id.ParseUserID(userID)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, msgInvalidUserID)
	}
	if target == caller {
		return dErrors.New(dErrors.CodeBadRequest, msgDeleteSelf)
	}

	account, err := s.store.FindAccountByID(ctx, target)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lookup user")
	}

	if err := s.store.DeleteUser(ctx, target, account.Email); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete user")
	}
	s.logAudit(ctx, "user_deleted", "user_id", target.String(), "deleted_by", caller.String())

	if s.sessions != nil {
		revoked, err := s.sessions.RevokeUserSessions(ctx, target)
		if err != nil {
			// The account is gone, so its tokens already fail the session check.
			s.logger.ErrorContext(ctx, "failed to revoke sessions of deleted user",
				"error", err,
				"user_id", target.String(),
				"request_id", requestcontext.RequestID(ctx))
			return nil
		}
		s.logAudit(ctx, "sessions_revoked", "user_id", target.String(), "count", revoked)
	}
	return nil
}

// UpdateRole changes an approved user's role. Admins cannot change their own.
func (s *Service) UpdateRole(ctx context.Context, caller id.UserID, userID, role string) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	target, err := id.ParseUserID(userID)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, msgInvalidUserID)
	}
	next := credentials.Role(role)
	if !next.IsValid() {
		return dErrors.New(dErrors.CodeValidation, msgInvalidRole)
	}
	if target == caller {
		return dErrors.New(dErrors.CodeBadRequest, msgDemoteSelf)
	}

	if err := s.store.UpdateRole(ctx, target, next); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update role")
	}
	s.logAudit(ctx, "role_updated", "user_id", target.String(), "role", next.String(), "updated_by", caller.String())
	return nil
}

// ListInvitations returns invitations newest first, without tokens.
func (s *Service) ListInvitations(ctx context.Context, caller id.UserID) ([]types.InvitationRow, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	invitations, err := s.store.ListInvitations(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invitations")
	}
	rows := make([]types.InvitationRow, 0, len(invitations))
	for _, inv := range invitations {
		rows = append(rows, types.InvitationRow{
			ID:        inv.ID.String(),
			Email:     inv.Email,
			Role:      inv.Role.String(),
			ExpiresAt: inv.ExpiresAt,
			Used:      inv.Used,
			Deleted:   inv.Deleted,
			InvitedBy: inv.InvitedBy.String(),
			CreatedAt: inv.CreatedAt,
		})
	}
	return rows, nil
}

func (s *Service) DeleteInvitation(ctx context.Context, caller id.UserID, invitationID string) error {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return err
	}
	invID, err := id.ParseInvitationID(invitationID)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, msgInvalidInviteID)
	}
	if err := s.store.MarkInvitationDeleted(ctx, invID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "Invitation not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete invitation")
	}
	s.logAudit(ctx, "invitation_deleted", "invitation_id", invID.String(), "deleted_by", caller.String())
	return nil
}

// GetStats counts approved users, admins and invitations that can still be redeemed.
func (s *Service) GetStats(ctx context.Context, caller id.UserID) (*types.Stats, error) {
	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}
	listings, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	invitations, err := s.store.ListInvitations(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list invitations")
	}

	now := requestcontext.Now(ctx)
	stats := &types.Stats{TotalUsers: len(listings), Timestamp: now}
	for _, l := range listings {
		if l.Role == credentials.RoleAdmin {
			stats.Admins++
		}
	}
	for _, inv := range invitations {
		if inv.Redeemable(now) {
			stats.PendingInvitations++
		}
	}
	return stats, nil
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
