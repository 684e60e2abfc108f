package service

import (
	"context"
	"crypto/subtle"
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

// Verify checks a code for targetUserID. Malformed input and a target other
// than the caller fail before any storage access. Wrong, expired and
// rate-limited codes are results, not errors.
func (s *Service) Verify(ctx context.Context, caller id.UserID, targetUserID, code, mfaType string) (result *models.VerifyResult, err error) {
	target, kind, err := validateVerifyInput(targetUserID, code, mfaType)
	if err != nil {
		return nil, err
	}
	if target != caller {
		s.logger.WarnContext(ctx, "mfa verify for another user rejected",
			"caller_id", caller.String(),
			"request_id", requestcontext.RequestID(ctx))
		return nil, dErrors.New(dErrors.CodeForbidden, "Forbidden")
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanMFAVerify,
		tracer.String(tracer.AttrUserID, target.String()),
		tracer.String(tracer.AttrMFAType, kind.String()))
	defer func() {
		if result != nil {
			span.SetAttributes(tracer.Bool(tracer.AttrVerified, result.Verified), tracer.String(tracer.AttrReason, result.Reason))
		}
		span.End(err)
	}()

	settings, err := s.store.FindMFA(ctx, target)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			result = models.Rejected("not_found", models.MsgSettingsNotFound)
			s.recordVerification(ctx, kind, result)
			return result, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load MFA settings")
	}

	result, err = s.checkCode(ctx, settings, kind, code)
	if err != nil {
		return nil, err
	}
	s.recordVerification(ctx, kind, result)
	if result.Verified {
		s.markSession(ctx)
	}
	return result, nil
}

func validateVerifyInput(targetUserID, code, mfaType string) (id.UserID, credentials.MFAType, error) {
	target, err := id.ParseUserID(targetUserID)
	if err != nil {
		return id.UserID{}, "", dErrors.New(dErrors.CodeValidation, "Invalid userId")
	}
	if !validation.IsOTPCode(code) {
		return id.UserID{}, "", dErrors.New(dErrors.CodeValidation, "Invalid code format")
	}
	kind := credentials.MFAType(mfaType)
	if !kind.IsValid() {
		return id.UserID{}, "", dErrors.New(dErrors.CodeValidation, "Invalid MFA type")
	}
	return target, kind, nil
}

// checkCode tests code as a kind factor. An enrolled account only answers with
// the factor it enrolled.
func (s *Service) checkCode(ctx context.Context, settings *credentials.MFASettings, kind credentials.MFAType, code string) (*models.VerifyResult, error) {
	if settings.IsVerified && kind != settings.Type {
		return models.Rejected("wrong_type", models.MsgWrongMFAType), nil
	}
	if kind == credentials.MFATypeTOTP {
		if settings.TOTPSecret == "" {
			return models.Rejected("not_configured", models.MsgTOTPNotConfigured), nil
		}
		if !otp.VerifyTOTP(settings.TOTPSecret, code, requestcontext.Now(ctx)) {
			return models.Rejected("wrong_code", models.MsgWrongCode), nil
		}
		return models.Verified(), nil
	}
	return s.checkEmailCode(ctx, settings, code)
}

// checkEmailCode applies the email rules in order: attempt cap, active code,
// expiry, match. A match is consumed with a conditional clear so a code is
// accepted at most once even under concurrent submissions.
func (s *Service) checkEmailCode(ctx context.Context, settings *credentials.MFASettings, code string) (*models.VerifyResult, error) {
	if settings.EmailCodeAttempts >= credentials.MaxEmailCodeAttempts {
		return models.Rejected("too_many_attempts", models.MsgTooManyAttempts), nil
	}
	if !settings.HasActiveEmailCode() {
		return models.Rejected("no_active_code", models.MsgNoActiveCode), nil
	}
	if settings.EmailCodeExpired(requestcontext.Now(ctx)) {
		return models.Rejected("expired", models.MsgCodeExpired), nil
	}
	if subtle.ConstantTimeCompare([]byte(settings.EmailCode), []byte(code)) != 1 {
		if err := s.store.IncrementEmailAttempts(ctx, settings.UserID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to record attempt")
		}
		return models.Rejected("wrong_code", models.MsgWrongEmailCode), nil
	}

	if err := s.store.ConsumeEmailCode(ctx, settings.UserID, code); err != nil {
		if errors.Is(err, sentinel.ErrStale) || errors.Is(err, sentinel.ErrNotFound) {
			return models.Rejected("no_active_code", models.MsgNoActiveCode), nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume code")
	}
	return models.Verified(), nil
}

func (s *Service) markSession(ctx context.Context) {
	sessionID := requestcontext.SessionID(ctx)
	if s.sessions == nil || sessionID.IsNil() {
		return
	}
	if err := s.sessions.MarkSessionMFAVerified(ctx, sessionID); err != nil {
		s.logger.ErrorContext(ctx, "failed to mark session verified",
			"error", err,
			"session_id", sessionID.String(),
			"request_id", requestcontext.RequestID(ctx))
	}
}

// Info returns the caller's MFA type and verification flag, or nil when
// nothing is enrolled.
func (s *Service) Info(ctx context.Context, caller id.UserID) (*models.Info, error) {
	settings, err := s.store.FindMFA(ctx, caller)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load MFA settings")
	}
	return &models.Info{MFAType: settings.Type.String(), IsVerified: settings.IsVerified}, nil
}
