package handler

import (
	"time"

	"partnerdash/internal/identity/models"
)

type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

type SignUpResponse struct {
	User UserResponse `json:"user"`
}

type SignInResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	SessionID   string       `json:"session_id"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

type SessionResponse struct {
	SessionID   string       `json:"session_id"`
	User        UserResponse `json:"user"`
	Device      string       `json:"device"`
	ExpiresAt   time.Time    `json:"expires_at"`
	MFAVerified bool         `json:"mfa_verified"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Email: u.Email, CreatedAt: u.CreatedAt}
}

func toSessionResponse(s *models.Session) *SessionResponse {
	return &SessionResponse{
		SessionID:   s.ID.String(),
		User:        UserResponse{ID: s.UserID.String(), Email: s.Email},
		Device:      s.Device,
		ExpiresAt:   s.ExpiresAt,
		MFAVerified: s.MFAVerified,
	}
}
