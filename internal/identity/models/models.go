// Package models holds the identity provider's session records and events.
package models

import (
	"time"

	id "partnerdash/pkg/domain"
)

// Session is the server-side record behind a bearer token. Deleting it signs the token out.
type Session struct {
	ID          id.SessionID
	UserID      id.UserID
	Email       string
	Device      string
	CreatedAt   time.Time
	ExpiresAt   time.Time
	MFAVerified bool
}

// Expired reports whether the session is past its expiry at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// User is the public view of an account.
type User struct {
	ID        id.UserID
	Email     string
	CreatedAt time.Time
}

// SignInResult is returned by a successful password sign-in.
type SignInResult struct {
	AccessToken string
	ExpiresAt   time.Time
	Session     *Session
	User        User
}

// EventType distinguishes session-change notifications.
type EventType string

const (
	EventSignedIn  EventType = "SIGNED_IN"
	EventSignedOut EventType = "SIGNED_OUT"
)

// Event is published whenever a session starts or ends.
type Event struct {
	Type      EventType
	UserID    id.UserID
	SessionID id.SessionID
	At        time.Time
}
