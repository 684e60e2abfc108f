// Package models holds invitation results and their client-facing messages.
package models

import "partnerdash/internal/credentials"

const (
	MsgAdminOnly          = "Only admins can invite users"
	MsgEmailRequired      = "Email is required"
	MsgInvalidEmail       = "Invalid email format"
	MsgInvalidRole        = "Invalid role"
	MsgMissingTokenOrUser = "Missing token or userId"
	MsgInvalidInvitation  = "Invalid or expired invitation"
	MsgUserNotFound       = "User not found"
	MsgEmailMismatch      = "Email does not match the invitation"
	MsgAlreadyApproved    = "User already has a role"

	WarnMailerNotConfigured = "Invitation created, but email delivery is not configured."
	WarnDeliveryFailed      = "Invitation created, but the email could not be sent."
)

// Delivery outcomes of the invitation email.
const (
	DeliverySent          = "sent"
	DeliveryNotConfigured = "not_configured"
	DeliveryFailed        = "failed"
)

// InviteResult describes a created invitation. Token is only set when the
// email did not go out, so an admin can pass the link on by hand.
type InviteResult struct {
	Invitation *credentials.Invitation
	Delivery   string
	Warning    string
	Token      string
}

// Lookup is the public view of a redeemable invitation.
type Lookup struct {
	ID    string
	Email string
	Role  credentials.Role
}
