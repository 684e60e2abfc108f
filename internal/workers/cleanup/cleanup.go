// Package cleanup periodically removes credential data nobody can use anymore.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"partnerdash/internal/platform/metrics"
)

const (
	// emailCodeGrace keeps an expired code long enough for a late verify to
	// still be told "expired" rather than "no active code".
	emailCodeGrace = time.Hour
	// invitationRetention keeps finished or expired invitations visible to admins.
	invitationRetention = 30 * 24 * time.Hour
)

// CredentialStore exposes cleanup for email codes and invitations.
type CredentialStore interface {
	ClearStaleEmailCodes(ctx context.Context, cutoff time.Time) (int, error)
	PurgeInvitations(ctx context.Context, cutoff time.Time) (int, error)
}

// SessionStore exposes cleanup for expired sessions. Stores that expire keys
// on their own need not be registered.
type SessionStore interface {
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// Result summarizes the deletions performed by a cleanup run.
type Result struct {
	ClearedEmailCodes int
	PurgedInvitations int
	DeletedSessions   int
}

// Service periodically removes stale credential data.
type Service struct {
	credentials CredentialStore
	sessions    SessionStore
	interval    time.Duration
	now         func() time.Time
	logger      *slog.Logger
	metrics     *metrics.Metrics
}

type Option func(*Service)

// WithInterval overrides the cleanup interval when greater than zero.
func WithInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.interval = interval
		}
	}
}

func WithSessionStore(store SessionStore) Option {
	return func(s *Service) {
		s.sessions = store
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(credentials CredentialStore, opts ...Option) (*Service, error) {
	if credentials == nil {
		return nil, fmt.Errorf("credential store is required")
	}
	svc := &Service{
		credentials: credentials,
		interval:    15 * time.Minute,
		now:         time.Now,
		logger:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// Start runs cleanup periodically until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := s.RunOnce(ctx)
			if err != nil {
				s.logger.ErrorContext(ctx, "credential cleanup failed", "error", err)
			}
			s.logger.DebugContext(ctx, "credential cleanup finished",
				"email_codes", res.ClearedEmailCodes,
				"invitations", res.PurgedInvitations,
				"sessions", res.DeletedSessions,
			)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// RunOnce performs a single pass. Every step runs even when an earlier one
// fails; the failures are joined.
func (s *Service) RunOnce(ctx context.Context) (Result, error) {
	now := s.now()
	var res Result
	var errs []error

	cleared, err := s.credentials.ClearStaleEmailCodes(ctx, now.Add(-emailCodeGrace))
	if err != nil {
		errs = append(errs, fmt.Errorf("clear stale email codes: %w", err))
	} else {
		res.ClearedEmailCodes = cleared
		s.metrics.AddCleanupRemoved("email_code", cleared)
	}

	purged, err := s.credentials.PurgeInvitations(ctx, now.Add(-invitationRetention))
	if err != nil {
		errs = append(errs, fmt.Errorf("purge invitations: %w", err))
	} else {
		res.PurgedInvitations = purged
		s.metrics.AddCleanupRemoved("invitation", purged)
	}

	if s.sessions != nil {
		deleted, err := s.sessions.DeleteExpired(ctx, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("delete expired sessions: %w", err))
		} else {
			res.DeletedSessions = deleted
			s.metrics.AddCleanupRemoved("session", deleted)
		}
	}

	return res, errors.Join(errs...)
}
