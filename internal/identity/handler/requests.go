package handler

import (
	"strings"

	dErrors "partnerdash/pkg/domain-errors"
	strutil "partnerdash/pkg/string"
	"partnerdash/pkg/validation"
)

type CredentialsRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

func (r *CredentialsRequest) Normalize() {
	if r == nil {
		return
	}
	r.Email = strutil.NormalizeEmail(r.Email)
}

func (r *CredentialsRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,max=72"`
	NewPassword     string `json:"new_password" validate:"required,max=72"`
}

func (r *ChangePasswordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if strings.TrimSpace(r.NewPassword) != r.NewPassword {
		return dErrors.New(dErrors.CodeValidation, "new_password must not start or end with whitespace")
	}
	return validation.Validate(r)
}
