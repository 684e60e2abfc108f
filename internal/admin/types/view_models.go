package types

import (
	"time"
)

// UserRow is one approved user as the admin list shows it.
type UserRow struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// InvitationRow is an invitation without its token.
type InvitationRow struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"used"`
	Deleted   bool      `json:"deleted"`
	InvitedBy string    `json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats summarizes the user base.
type Stats struct {
	TotalUsers         int       `json:"total_users"`
	Admins             int       `json:"admins"`
	PendingInvitations int       `json:"pending_invitations"`
	Timestamp          time.Time `json:"timestamp"`
}
