// Package credentials holds the records that decide who may do what: accounts,
// role assignments, MFA settings and invitations.
package credentials

import (
	"time"

	id "partnerdash/pkg/domain"
)

// Role is the authorization level granted by a role assignment.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) IsValid() bool { return r == RoleAdmin || r == RoleUser }

func (r Role) String() string { return string(r) }

// MFAType is the second factor a user enrolled with.
type MFAType string

const (
	MFATypeTOTP  MFAType = "totp"
	MFATypeEmail MFAType = "email"
)

func (t MFAType) IsValid() bool { return t == MFATypeTOTP || t == MFATypeEmail }

func (t MFAType) String() string { return string(t) }

const (
	// EmailCodeTTL is how long an emailed code stays usable.
	EmailCodeTTL = 10 * time.Minute
	// MaxEmailCodeAttempts is the number of wrong guesses allowed per issued code.
	MaxEmailCodeAttempts = 5
	// InvitationTTL is how long an invitation can be redeemed.
	InvitationTTL = 7 * 24 * time.Hour
)

// Account is a local identity: email plus bcrypt password hash.
type Account struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleAssignment approves an account. Absence of a row means the account is pending.
type RoleAssignment struct {
	UserID    id.UserID
	Role      Role
	CreatedAt time.Time
}

// MFASettings is the single second-factor record of a user.
// IsVerified is the only signal that MFA is configured.
type MFASettings struct {
	UserID             id.UserID
	Type               MFAType
	TOTPSecret         string
	IsVerified         bool
	EmailCode          string
	EmailCodeExpiresAt *time.Time
	EmailCodeAttempts  int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasActiveEmailCode reports whether an email code and its expiry are both set.
func (m *MFASettings) HasActiveEmailCode() bool {
	return m.EmailCode != "" && m.EmailCodeExpiresAt != nil
}

// EmailCodeExpired reports whether the current email code is past its expiry at now.
func (m *MFASettings) EmailCodeExpired(now time.Time) bool {
	return m.EmailCodeExpiresAt != nil && m.EmailCodeExpiresAt.Before(now)
}

// Invitation grants a role to whoever registers with Email and redeems Token.
type Invitation struct {
	ID        id.InvitationID
	Email     string
	Role      Role
	Token     string
	ExpiresAt time.Time
	Used      bool
	Deleted   bool
	InvitedBy id.UserID
	CreatedAt time.Time
}

// Redeemable reports whether the invitation can still be accepted at now.
func (i *Invitation) Redeemable(now time.Time) bool {
	return !i.Used && !i.Deleted && now.Before(i.ExpiresAt)
}

// UserListing is one row of the admin user list.
type UserListing struct {
	UserID    id.UserID
	Role      Role
	Email     string
	CreatedAt time.Time
}
