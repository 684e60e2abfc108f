package service

import (
	"context"

	"partnerdash/internal/credentials"
	"partnerdash/internal/mfa/models"
	"partnerdash/pkg/requestcontext"
)

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	if requestID := requestcontext.RequestID(ctx); requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}

func (s *Service) recordVerification(ctx context.Context, kind credentials.MFAType, result *models.VerifyResult) {
	s.metrics.ObserveMFAVerification(kind.String(), result.Reason)
	if result.Verified {
		s.logAudit(ctx, "mfa_verified", "user_id", requestcontext.UserID(ctx).String(), "mfa_type", kind.String())
		return
	}
	s.logger.InfoContext(ctx, "mfa code rejected",
		"reason", result.Reason,
		"mfa_type", kind.String(),
		"request_id", requestcontext.RequestID(ctx))
}
