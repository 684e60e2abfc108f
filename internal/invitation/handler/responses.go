package handler

import "partnerdash/internal/invitation/models"

type InviteResponse struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
	Token   string `json:"token,omitempty"`
}

type AcceptResponse struct {
	Success bool `json:"success"`
}

// LookupResponse is empty when the token is not redeemable.
type LookupResponse struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

func toInviteResponse(result *models.InviteResult) *InviteResponse {
	return &InviteResponse{Success: true, Warning: result.Warning, Token: result.Token}
}

func toLookupResponse(lookup *models.Lookup) *LookupResponse {
	if lookup == nil {
		return &LookupResponse{}
	}
	return &LookupResponse{ID: lookup.ID, Email: lookup.Email, Role: lookup.Role.String()}
}
