package testutil

import (
	"time"

	"github.com/google/uuid"

	"partnerdash/internal/credentials"
	id "partnerdash/pkg/domain"
)

// TestIDs provides pre-generated IDs for deterministic test data.
var TestIDs = struct {
	UserID1    id.UserID
	UserID2    id.UserID
	SessionID1 id.SessionID
	SessionID2 id.SessionID
}{
	UserID1:    id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2:    id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	SessionID1: id.SessionID(uuid.MustParse("eeee0000-0000-0000-0000-000000000001")),
	SessionID2: id.SessionID(uuid.MustParse("eeee0000-0000-0000-0000-000000000002")),
}

// AccountBuilder provides a fluent interface for building test accounts.
type AccountBuilder struct {
	account *credentials.Account
}

// NewAccountBuilder creates an AccountBuilder with a fresh ID and a unique email.
func NewAccountBuilder() *AccountBuilder {
	now := time.Now()
	return &AccountBuilder{
		account: &credentials.Account{
			ID:           id.UserID(uuid.New()),
			Email:        "user-" + uuid.NewString()[:8] + "@example.com",
			PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholderplacehol",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func (b *AccountBuilder) WithID(userID id.UserID) *AccountBuilder {
	b.account.ID = userID
	return b
}

func (b *AccountBuilder) WithEmail(email string) *AccountBuilder {
	b.account.Email = email
	return b
}

func (b *AccountBuilder) WithPasswordHash(hash string) *AccountBuilder {
	b.account.PasswordHash = hash
	return b
}

func (b *AccountBuilder) Build() *credentials.Account {
	return b.account
}

// InvitationBuilder provides a fluent interface for building test invitations.
type InvitationBuilder struct {
	inv *credentials.Invitation
}

// NewInvitationBuilder creates a redeemable user invitation expiring in seven days.
func NewInvitationBuilder() *InvitationBuilder {
	now := time.Now()
	return &InvitationBuilder{
		inv: &credentials.Invitation{
			ID:        id.InvitationID(uuid.New()),
			Email:     "invitee@example.com",
			Role:      credentials.RoleUser,
			Token:     uuid.NewString() + "-" + uuid.NewString(),
			ExpiresAt: now.Add(credentials.InvitationTTL),
			InvitedBy: TestIDs.UserID1,
			CreatedAt: now,
		},
	}
}

func (b *InvitationBuilder) WithEmail(email string) *InvitationBuilder {
	b.inv.Email = email
	return b
}

func (b *InvitationBuilder) WithRole(role credentials.Role) *InvitationBuilder {
	b.inv.Role = role
	return b
}

func (b *InvitationBuilder) WithToken(token string) *InvitationBuilder {
	b.inv.Token = token
	return b
}

func (b *InvitationBuilder) ExpiresAt(t time.Time) *InvitationBuilder {
	b.inv.ExpiresAt = t
	return b
}

func (b *InvitationBuilder) CreatedAt(t time.Time) *InvitationBuilder {
	b.inv.CreatedAt = t
	return b
}

func (b *InvitationBuilder) InvitedBy(userID id.UserID) *InvitationBuilder {
	b.inv.InvitedBy = userID
	return b
}

func (b *InvitationBuilder) Used() *InvitationBuilder {
	b.inv.Used = true
	return b
}

func (b *InvitationBuilder) Deleted() *InvitationBuilder {
	b.inv.Deleted = true
	return b
}

func (b *InvitationBuilder) Build() *credentials.Invitation {
	return b.inv
}
