package handler

import "partnerdash/internal/mfa/models"

type SendCodeResponse struct {
	Success bool `json:"success"`
}

type VerifyCodeResponse struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}

// InfoResponse is empty when the caller has no MFA record.
type InfoResponse struct {
	MFAType    string `json:"mfa_type,omitempty"`
	IsVerified *bool  `json:"is_verified,omitempty"`
}

type TOTPSetupResponse struct {
	Secret     string `json:"secret"`
	OTPAuthURI string `json:"otpauth_uri"`
}

func toVerifyCodeResponse(result *models.VerifyResult) *VerifyCodeResponse {
	return &VerifyCodeResponse{Verified: result.Verified, Error: result.Error}
}

func toInfoResponse(info *models.Info) *InfoResponse {
	if info == nil {
		return &InfoResponse{}
	}
	verified := info.IsVerified
	return &InfoResponse{MFAType: info.MFAType, IsVerified: &verified}
}
