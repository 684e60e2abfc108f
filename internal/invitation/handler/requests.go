package handler

import (
	dErrors "partnerdash/pkg/domain-errors"
	strutil "partnerdash/pkg/string"
)

const (
	actionInvite = "invite"
	actionAccept = "accept"
)

// InvitationRequest carries both actions of the invitation endpoint.
type InvitationRequest struct {
	Action string `json:"action"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	Token  string `json:"token,omitempty"`
	UserID string `json:"userId,omitempty"`
}

func (r *InvitationRequest) Sanitize() {
	if r == nil {
		return
	}
	strutil.TrimStrings(&r.Action, &r.Email, &r.Role, &r.Token, &r.UserID)
}

func (r *InvitationRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Action != actionInvite && r.Action != actionAccept {
		return dErrors.New(dErrors.CodeBadRequest, "Unknown action")
	}
	return nil
}

type LookupRequest struct {
	Token string `json:"token"`
}

func (r *LookupRequest) Sanitize() {
	if r == nil {
		return
	}
	strutil.TrimStrings(&r.Token)
}
