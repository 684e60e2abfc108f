package service

import (
	"context"
	"errors"

	"partnerdash/internal/credentials"
	"partnerdash/internal/mfa/models"
	"partnerdash/internal/otp"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/platform/tracer"
	"partnerdash/pkg/requestcontext"
	"partnerdash/pkg/validation"
)

const msgAlreadyConfigured = "MFA is already configured"

// existingSettings loads the caller's record, refusing to overwrite a verified one.
func (s *Service) existingSettings(ctx context.Context, caller id.UserID) (*credentials.MFASettings, error) {
	settings, err := s.store.FindMFA(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load MFA settings")
	}
	if settings.IsVerified {
		return nil, dErrors.New(dErrors.CodeConflict, msgAlreadyConfigured)
	}
	return settings, nil
}

func (s *Service) saveUnverified(ctx context.Context, caller id.UserID, existing *credentials.MFASettings, kind credentials.MFAType, secret string) error {
	now := requestcontext.Now(ctx)
	settings := &credentials.MFASettings{
		UserID:     caller,
		Type:       kind,
		TOTPSecret: secret,
		IsVerified: false,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if existing != nil {
		settings.CreatedAt = existing.CreatedAt
	}
	if err := s.store.SaveMFA(ctx, settings); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save MFA settings")
	}
	return nil
}

// BeginTOTPSetup starts (or restarts) authenticator enrollment with a fresh
// secret. The record stays unverified until ConfirmSetup succeeds.
func (s *Service) BeginTOTPSetup(ctx context.Context, caller id.UserID) (*models.TOTPSetup, error) {
	existing, err := s.existingSettings(ctx, caller)
	if err != nil {
		return nil, err
	}
	account, err := s.accounts.FindAccountByID(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	secret, err := s.newKey()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate secret")
	}
	if err := s.saveUnverified(ctx, caller, existing, credentials.MFATypeTOTP, secret); err != nil {
		return nil, err
	}

	s.logAudit(ctx, "mfa_setup_started", "user_id", caller.String(), "mfa_type", "totp")
	return &models.TOTPSetup{
		Secret:     secret,
		OTPAuthURI: otp.ProvisioningURI(secret, account.Email, TOTPIssuer),
	}, nil
}

// BeginEmailSetup switches the caller to email codes and sends the first one.
func (s *Service) BeginEmailSetup(ctx context.Context, caller id.UserID) error {
	existing, err := s.existingSettings(ctx, caller)
	if err != nil {
		return err
	}
	if !s.mailer.Configured() {
		return dErrors.New(dErrors.CodeUnavailable, msgMailerNotConfigured)
	}
	if err := s.saveUnverified(ctx, caller, existing, credentials.MFATypeEmail, ""); err != nil {
		return err
	}
	s.logAudit(ctx, "mfa_setup_started", "user_id", caller.String(), "mfa_type", "email")
	return s.sendCode(ctx, caller)
}

// ConfirmSetup proves possession of the enrolled factor. Only then does the
// record become verified, which is what makes MFA required at sign-in.
func (s *Service) ConfirmSetup(ctx context.Context, caller id.UserID, code string) (result *models.VerifyResult, err error) {
	if !validation.IsOTPCode(code) {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid code format")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanMFAConfirmSetup, tracer.String(tracer.AttrUserID, caller.String()))
	defer func() { span.End(err) }()

	settings, err := s.store.FindMFA(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "No MFA setup in progress")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load MFA settings")
	}
	if settings.IsVerified {
		return nil, dErrors.New(dErrors.CodeConflict, msgAlreadyConfigured)
	}

	result, err = s.checkCode(ctx, settings, settings.Type, code)
	if err != nil {
		return nil, err
	}
	s.recordVerification(ctx, settings.Type, result)
	if !result.Verified {
		return result, nil
	}

	if err := s.store.MarkMFAVerified(ctx, caller, requestcontext.Now(ctx)); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to activate MFA")
	}
	s.markSession(ctx)
	s.logAudit(ctx, "mfa_setup_completed", "user_id", caller.String(), "mfa_type", settings.Type.String())
	return result, nil
}
