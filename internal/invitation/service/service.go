// Package service creates and redeems invitations. Redeeming one is what
// approves an account.
package service

import (
	"context"
	"log/slog"
	"time"

	"partnerdash/internal/credentials"
	"partnerdash/internal/mailer"
	"partnerdash/internal/platform/metrics"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/tracer"
)

type Store interface {
	CreateInvitation(ctx context.Context, inv *credentials.Invitation) error
	FindRedeemableInvitation(ctx context.Context, token string, now time.Time) (*credentials.Invitation, error)
	AcceptInvitation(ctx context.Context, invitationID id.InvitationID, role *credentials.RoleAssignment, now time.Time) error
}

type RoleFinder interface {
	FindRole(ctx context.Context, userID id.UserID) (*credentials.RoleAssignment, error)
}

type AccountFinder interface {
	FindAccountByID(ctx context.Context, userID id.UserID) (*credentials.Account, error)
}

type Service struct {
	store    Store
	roles    RoleFinder
	accounts AccountFinder
	mailer   mailer.Sender
	appURL   string
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	newToken func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

// WithTokenGenerator replaces the invitation token source.
func WithTokenGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newToken = fn
	}
}

// New builds the service. appURL is the base of the accept link in emails.
func New(store Store, roles RoleFinder, accounts AccountFinder, sender mailer.Sender, appURL string, opts ...Option) *Service {
	s := &Service{
		store:    store,
		roles:    roles,
		accounts: accounts,
		mailer:   sender,
		appURL:   appURL,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   tracer.NewNoop(),
		newToken: newToken,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newToken joins two random UUIDs.
func newToken() string {
	return id.NewInvitationID().String() + "-" + id.NewInvitationID().String()
}

func (s *Service) logAudit(ctx context.Context, event string, attributes ...any) {
	args := append(attributes, "event", event, "log_type", "audit")
	s.logger.InfoContext(ctx, event, args...)
}
