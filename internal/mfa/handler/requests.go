package handler

import (
	strutil "partnerdash/pkg/string"
)

// Field checks live in the service so that malformed input is rejected
// there before any storage access, whatever the caller.

type SendCodeRequest struct {
	UserID string `json:"userId"`
}

func (r *SendCodeRequest) Sanitize() {
	if r == nil {
		return
	}
	strutil.TrimStrings(&r.UserID)
}

type VerifyCodeRequest struct {
	UserID  string `json:"userId"`
	Code    string `json:"code"`
	MFAType string `json:"mfaType"`
}

func (r *VerifyCodeRequest) Sanitize() {
	if r == nil {
		return
	}
	strutil.TrimStrings(&r.UserID, &r.Code, &r.MFAType)
}

type ConfirmSetupRequest struct {
	Code string `json:"code"`
}

func (r *ConfirmSetupRequest) Sanitize() {
	if r == nil {
		return
	}
	strutil.TrimStrings(&r.Code)
}
