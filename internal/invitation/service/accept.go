package service

import (
	"context"
	"errors"

	"partnerdash/internal/credentials"
	"partnerdash/internal/invitation/models"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/platform/tracer"
	"partnerdash/pkg/requestcontext"
	strutil "partnerdash/pkg/string"
	"partnerdash/pkg/validation"
)

// Accept redeems token for userID. Unknown, used, deleted and expired tokens
// are all reported the same way.
func (s *Service) Accept(ctx context.Context, token, userID string) (err error) {
	if token == "" || userID == "" {
		return dErrors.New(dErrors.CodeBadRequest, models.MsgMissingTokenOrUser)
	}
	if err := validation.CheckStringLength("token", token, validation.MaxTokenLength); err != nil {
		return dErrors.New(dErrors.CodeBadRequest, models.MsgInvalidInvitation)
	}
	uid, err := id.ParseUserID(userID)
	if err != nil {
		return dErrors.New(dErrors.CodeBadRequest, models.MsgUserNotFound)
	}

	ctx, span := s.tracer.Start(ctx, tracer.SpanInvitationAccept, tracer.String(tracer.AttrUserID, uid.String()))
	defer func() { span.End(err) }()

	now := requestcontext.Now(ctx)
	inv, err := s.store.FindRedeemableInvitation(ctx, token, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeBadRequest, models.MsgInvalidInvitation)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load invitation")
	}

	account, err := s.accounts.FindAccountByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeBadRequest, models.MsgUserNotFound)
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if !strutil.EqualFoldEmail(account.Email, inv.Email) {
		s.logger.WarnContext(ctx, "invitation email mismatch",
			"invitation_id", inv.ID.String(),
			"user_id", uid.String(),
			"request_id", requestcontext.RequestID(ctx))
		return dErrors.New(dErrors.CodeForbidden, models.MsgEmailMismatch)
	}

	assignment := &credentials.RoleAssignment{UserID: uid, Role: inv.Role, CreatedAt: now}
	if err := s.store.AcceptInvitation(ctx, inv.ID, assignment, now); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed), errors.Is(err, sentinel.ErrNotFound):
			return dErrors.New(dErrors.CodeBadRequest, models.MsgInvalidInvitation)
		case errors.Is(err, sentinel.ErrAlreadyExists):
			return dErrors.New(dErrors.CodeConflict, models.MsgAlreadyApproved)
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to accept invitation")
		}
	}

	s.metrics.IncrementInvitationsAccepted()
	s.logAudit(ctx, "invitation_accepted",
		"invitation_id", inv.ID.String(),
		"user_id", uid.String(),
		"role", inv.Role.String(),
		"request_id", requestcontext.RequestID(ctx))
	return nil
}

// Lookup returns the public fields of a redeemable invitation, or nil.
func (s *Service) Lookup(ctx context.Context, token string) (*models.Lookup, error) {
	if token == "" || len(token) > validation.MaxTokenLength {
		return nil, nil
	}
	inv, err := s.store.FindRedeemableInvitation(ctx, token, requestcontext.Now(ctx))
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load invitation")
	}
	return &models.Lookup{ID: inv.ID.String(), Email: inv.Email, Role: inv.Role}, nil
}
