package credentials

import (
	"context"
	"time"

	id "partnerdash/pkg/domain"
)

// Stores return sentinel errors (wrapped): sentinel.ErrNotFound for missing rows,
// sentinel.ErrAlreadyExists for uniqueness conflicts, sentinel.ErrAlreadyUsed when
// an invitation was redeemed concurrently, sentinel.ErrStale when a conditional
// update lost its race.

type AccountStore interface {
	CreateAccount(ctx context.Context, account *Account) error
	FindAccountByID(ctx context.Context, userID id.UserID) (*Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*Account, error)
	UpdatePasswordHash(ctx context.Context, userID id.UserID, hash string, at time.Time) error
}

type RoleStore interface {
	FindRole(ctx context.Context, userID id.UserID) (*RoleAssignment, error)
	InsertRole(ctx context.Context, role *RoleAssignment) error
	UpdateRole(ctx context.Context, userID id.UserID, role Role) error
	ListUsers(ctx context.Context) ([]UserListing, error)
}

type MFAStore interface {
	FindMFA(ctx context.Context, userID id.UserID) (*MFASettings, error)
	// SaveMFA replaces the whole record, clearing any pending email code.
	SaveMFA(ctx context.Context, settings *MFASettings) error
	// SetEmailCode stores a fresh code with zero attempts. A user without a
	// record gets an unverified email-type record.
	SetEmailCode(ctx context.Context, userID id.UserID, code string, expiresAt, now time.Time) error
	IncrementEmailAttempts(ctx context.Context, userID id.UserID) error
	// ConsumeEmailCode clears code, expiry and attempts only while the stored
	// code still equals code. It returns sentinel.ErrStale otherwise.
	ConsumeEmailCode(ctx context.Context, userID id.UserID, code string) error
	MarkMFAVerified(ctx context.Context, userID id.UserID, at time.Time) error
	// ClearStaleEmailCodes drops codes that expired before cutoff.
	ClearStaleEmailCodes(ctx context.Context, cutoff time.Time) (int, error)
}

type InvitationStore interface {
	CreateInvitation(ctx context.Context, inv *Invitation) error
	// FindRedeemableInvitation returns an unused, undeleted invitation that has
	// not expired at now. Anything else is sentinel.ErrNotFound.
	FindRedeemableInvitation(ctx context.Context, token string, now time.Time) (*Invitation, error)
	ListInvitations(ctx context.Context) ([]*Invitation, error)
	MarkInvitationDeleted(ctx context.Context, invitationID id.InvitationID) error
	// AcceptInvitation inserts the role assignment and marks the invitation used
	// in one transaction, guarded on the invitation still being redeemable.
	AcceptInvitation(ctx context.Context, invitationID id.InvitationID, role *RoleAssignment, now time.Time) error
	// PurgeInvitations removes invitations whose expiry is before cutoff, whatever their state.
	PurgeInvitations(ctx context.Context, cutoff time.Time) (int, error)
}

// Store is the full credential store.
type Store interface {
	AccountStore
	RoleStore
	MFAStore
	InvitationStore
	// DeleteUser removes MFA settings and role, marks invitations for email
	// deleted, and deletes the account, atomically.
	DeleteUser(ctx context.Context, userID id.UserID, email string) error
}
