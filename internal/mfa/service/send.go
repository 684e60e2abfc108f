package service

import (
	"context"
	"errors"

	"partnerdash/internal/credentials"
	"partnerdash/internal/mailer"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/platform/tracer"
	"partnerdash/pkg/requestcontext"
)

const (
	msgMailerNotConfigured = "Email service is not configured"
	msgSendCooldown        = "For security purposes, you can only request this once every 60 seconds"
	msgSendFailed          = "Failed to send email"
)

// SendCode emails a fresh code to the caller. The new code replaces any
// previous one and resets the attempt counter.
func (s *Service) SendCode(ctx context.Context, caller id.UserID, targetUserID string) error {
	target, err := id.ParseUserID(targetUserID)
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "Invalid userId")
	}
	if target != caller {
		return dErrors.New(dErrors.CodeForbidden, "Forbidden")
	}
	return s.sendCode(ctx, target)
}

func (s *Service) sendCode(ctx context.Context, userID id.UserID) (err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanMFASendCode, tracer.String(tracer.AttrUserID, userID.String()))
	defer func() { span.End(err) }()

	if !s.mailer.Configured() {
		s.metrics.IncrementCodesSent("not_configured")
		return dErrors.New(dErrors.CodeUnavailable, msgMailerNotConfigured)
	}

	account, err := s.accounts.FindAccountByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeBadRequest, "No email found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}

	cooldownKey := "mfa_send:" + userID.String()
	if s.cooldown != nil {
		ok, err := s.cooldown.Acquire(ctx, cooldownKey, SendCooldown)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check send cooldown")
		}
		if !ok {
			s.metrics.IncrementCodesSent("throttled")
			return dErrors.New(dErrors.CodeRateLimited, msgSendCooldown)
		}
	}

	code, err := s.newCode()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate code")
	}
	now := requestcontext.Now(ctx)
	if err := s.store.SetEmailCode(ctx, userID, code, now.Add(credentials.EmailCodeTTL), now); err != nil {
		s.releaseCooldown(ctx, cooldownKey)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store code")
	}

	msg, err := mailer.MFACodeMessage(account.Email, code, credentials.EmailCodeTTL)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to render email")
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "mfa code email failed",
			"error", err,
			"user_id", userID.String(),
			"request_id", requestcontext.RequestID(ctx))
		s.metrics.IncrementCodesSent("failed")
		s.releaseCooldown(ctx, cooldownKey)
		return dErrors.Wrap(err, dErrors.CodeDelivery, msgSendFailed)
	}

	s.metrics.IncrementCodesSent("sent")
	s.logAudit(ctx, "mfa_code_sent", "user_id", userID.String())
	return nil
}

func (s *Service) releaseCooldown(ctx context.Context, key string) {
	if s.cooldown == nil {
		return
	}
	if err := s.cooldown.Release(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to release send cooldown", "error", err, "key", key)
	}
}
