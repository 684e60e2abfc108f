// Package service is the server-side authority on second-factor codes. The
// client never decides on its own that a code was correct.
package service

import (
	"context"
	"log/slog"
	"time"

	"partnerdash/internal/credentials"
	"partnerdash/internal/mailer"
	"partnerdash/internal/otp"
	"partnerdash/internal/platform/metrics"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/tracer"
)

const (
	// SendCooldown is the minimum gap between two code emails to one user.
	SendCooldown = 60 * time.Second
	// TOTPIssuer labels the account in authenticator apps.
	TOTPIssuer = "Umbroll"
)

type Store interface {
	FindMFA(ctx context.Context, userID id.UserID) (*credentials.MFASettings, error)
	SaveMFA(ctx context.Context, settings *credentials.MFASettings) error
	SetEmailCode(ctx context.Context, userID id.UserID, code string, expiresAt, now time.Time) error
	IncrementEmailAttempts(ctx context.Context, userID id.UserID) error
	ConsumeEmailCode(ctx context.Context, userID id.UserID, code string) error
	MarkMFAVerified(ctx context.Context, userID id.UserID, at time.Time) error
}

type AccountFinder interface {
	FindAccountByID(ctx context.Context, userID id.UserID) (*credentials.Account, error)
}

// SessionMarker records on the caller's session that the second factor passed.
type SessionMarker interface {
	MarkSessionMFAVerified(ctx context.Context, sessionID id.SessionID) error
}

type Cooldown interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type Service struct {
	store    Store
	accounts AccountFinder
	mailer   mailer.Sender
	sessions SessionMarker
	cooldown Cooldown
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   tracer.Tracer
	newCode  func() (string, error)
	newKey   func() (string, error)
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

func WithSessionMarker(m SessionMarker) Option {
	return func(s *Service) {
		s.sessions = m
	}
}

func WithCooldown(c Cooldown) Option {
	return func(s *Service) {
		s.cooldown = c
	}
}

// WithCodeGenerator replaces the email code source.
func WithCodeGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newCode = fn
	}
}

// WithSecretGenerator replaces the TOTP secret source.
func WithSecretGenerator(fn func() (string, error)) Option {
	return func(s *Service) {
		s.newKey = fn
	}
}

func New(store Store, accounts AccountFinder, sender mailer.Sender, opts ...Option) *Service {
	s := &Service{
		store:    store,
		accounts: accounts,
		mailer:   sender,
		logger:   slog.New(slog.DiscardHandler),
		tracer:   tracer.NewNoop(),
		newCode:  otp.GenerateEmailCode,
		newKey:   otp.GenerateSecret,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}
