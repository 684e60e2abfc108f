// Package models holds MFA verification results and the advisory messages
// returned when a code is not accepted.
package models

// Advisory messages. These are expected outcomes, returned inside a 200
// response rather than as HTTP errors.
const (
	MsgSettingsNotFound  = "MFA settings not found"
	MsgTooManyAttempts   = "Too many attempts. Request a new code."
	MsgNoActiveCode      = "No active code. Request a new code."
	MsgCodeExpired       = "The code has expired. Request a new code."
	MsgWrongEmailCode    = "Wrong code. Request a new code."
	MsgTOTPNotConfigured = "TOTP is not configured"
	MsgWrongCode         = "Wrong code"
	MsgWrongMFAType      = "This MFA method is not enabled for the account"
)

// VerifyResult is the answer to a code check.
type VerifyResult struct {
	Verified bool
	Error    string
	// Reason is a stable label for metrics and logs.
	Reason string
}

// Verified is the successful result.
func Verified() *VerifyResult {
	return &VerifyResult{Verified: true, Reason: "verified"}
}

// Rejected builds an advisory failure.
func Rejected(reason, message string) *VerifyResult {
	return &VerifyResult{Reason: reason, Error: message}
}

// Info is the caller-visible part of the MFA settings. The secret never leaves
// the server.
type Info struct {
	MFAType    string
	IsVerified bool
}

// TOTPSetup is handed to the user to enroll an authenticator app.
type TOTPSetup struct {
	Secret     string
	OTPAuthURI string
}
