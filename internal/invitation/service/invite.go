package service

import (
	"context"
	"errors"

	"partnerdash/internal/credentials"
	"partnerdash/internal/invitation/models"
	"partnerdash/internal/mailer"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/platform/tracer"
	"partnerdash/pkg/requestcontext"
	strutil "partnerdash/pkg/string"
	"partnerdash/pkg/validation"
)

// Invite records an invitation for email and mails the accept link. A missing
// or failing mailer does not undo the invitation; the result carries a
// warning and the token instead.
func (s *Service) Invite(ctx context.Context, caller id.UserID, email, role string) (result *models.InviteResult, err error) {
	ctx, span := s.tracer.Start(ctx, tracer.SpanInvitationInvite, tracer.String(tracer.AttrUserID, caller.String()))
	defer func() {
		if result != nil {
			span.SetAttributes(tracer.String(tracer.AttrDelivery, result.Delivery))
		}
		span.End(err)
	}()

	if err := s.requireAdmin(ctx, caller); err != nil {
		return nil, err
	}

	email = strutil.NormalizeEmail(email)
	if email == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, models.MsgEmailRequired)
	}
	if !validation.IsEmail(email) {
		return nil, dErrors.New(dErrors.CodeValidation, models.MsgInvalidEmail)
	}
	assigned := credentials.RoleUser
	if role != "" {
		assigned = credentials.Role(role)
		if !assigned.IsValid() {
			return nil, dErrors.New(dErrors.CodeValidation, models.MsgInvalidRole)
		}
	}
	span.SetAttributes(tracer.String(tracer.AttrEmailHash, tracer.HashEmail(email)), tracer.String(tracer.AttrRole, assigned.String()))

	now := requestcontext.Now(ctx)
	inv := &credentials.Invitation{
		ID:        id.NewInvitationID(),
		Email:     email,
		Role:      assigned,
		Token:     s.newToken(),
		ExpiresAt: now.Add(credentials.InvitationTTL),
		InvitedBy: caller,
		CreatedAt: now,
	}
	if err := s.store.CreateInvitation(ctx, inv); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create invitation")
	}
	s.logAudit(ctx, "invitation_created",
		"invitation_id", inv.ID.String(),
		"invited_by", caller.String(),
		"role", assigned.String(),
		"request_id", requestcontext.RequestID(ctx))

	result = s.deliver(ctx, inv)
	s.metrics.IncrementInvitationsSent(result.Delivery)
	return result, nil
}

func (s *Service) deliver(ctx context.Context, inv *credentials.Invitation) *models.InviteResult {
	result := &models.InviteResult{Invitation: inv}
	if !s.mailer.Configured() {
		result.Delivery = models.DeliveryNotConfigured
		result.Warning = models.WarnMailerNotConfigured
		result.Token = inv.Token
		return result
	}

	msg, err := mailer.InvitationMessage(inv.Email, mailer.InvitationLink(s.appURL, inv.Token), inv.Role.String(), credentials.InvitationTTL)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "invitation email failed",
			"error", err,
			"invitation_id", inv.ID.String(),
			"request_id", requestcontext.RequestID(ctx))
		result.Delivery = models.DeliveryFailed
		result.Warning = models.WarnDeliveryFailed
		result.Token = inv.Token
		return result
	}

	result.Delivery = models.DeliverySent
	return result
}

func (s *Service) requireAdmin(ctx context.Context, caller id.UserID) error {
	assignment, err := s.roles.FindRole(ctx, caller)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load role")
	}
	if assignment == nil || assignment.Role != credentials.RoleAdmin {
		s.logger.WarnContext(ctx, "non-admin invite rejected",
			"caller_id", caller.String(),
			"request_id", requestcontext.RequestID(ctx))
		return dErrors.New(dErrors.CodeForbidden, models.MsgAdminOnly)
	}
	return nil
}
