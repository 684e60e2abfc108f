// Package service is the local identity provider: accounts, password sign-in,
// server-side sessions and session-change notifications.
package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"partnerdash/internal/credentials"
	"partnerdash/internal/identity/models"
	"partnerdash/internal/platform/metrics"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/middleware/auth"
)

type AccountStore interface {
	CreateAccount(ctx context.Context, account *credentials.Account) error
	FindAccountByID(ctx context.Context, userID id.UserID) (*credentials.Account, error)
	FindAccountByEmail(ctx context.Context, email string) (*credentials.Account, error)
	UpdatePasswordHash(ctx context.Context, userID id.UserID, hash string, at time.Time) error
}

type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error
	DeleteByUser(ctx context.Context, userID id.UserID) (int, error)
	SetMFAVerified(ctx context.Context, sessionID id.SessionID) error
}

type TokenIssuer interface {
	Issue(ctx context.Context, userID id.UserID, sessionID id.SessionID, email string, expiresAt time.Time) (string, error)
	ValidateToken(tokenString string) (*auth.Claims, error)
	TTL() time.Duration
}

// Service owns sign-up, sign-in and the session records behind issued tokens.
type Service struct {
	accounts AccountStore
	sessions SessionStore
	tokens   TokenIssuer
	logger   *slog.Logger
	metrics  *metrics.Metrics
	cost     int

	mu          sync.RWMutex
	nextSubID   int
	subscribers map[int]func(models.Event)
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

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

func New(accounts AccountStore, sessions SessionStore, tokens TokenIssuer, opts ...Option) *Service {
	s := &Service{
		accounts:    accounts,
		sessions:    sessions,
		tokens:      tokens,
		cost:        defaultBcryptCost,
		subscribers: make(map[int]func(models.Event)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for sign-in and sign-out events. The returned func
// removes the subscription.
func (s *Service) Subscribe(fn func(models.Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	subID := s.nextSubID
	s.nextSubID++
	s.subscribers[subID] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, subID)
	}
}

func (s *Service) publish(event models.Event) {
	s.mu.RLock()
	listeners := make([]func(models.Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()

	for _, fn := range listeners {
		fn(event)
	}
}
