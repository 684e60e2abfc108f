// Package seeder creates the first admin so a fresh deployment can start
// inviting users.
package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"partnerdash/internal/credentials"
	"partnerdash/internal/identity/models"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/sentinel"
	strutil "partnerdash/pkg/string"
)

// Accounts registers accounts with a hashed password.
type Accounts interface {
	SignUp(ctx context.Context, email, password string) (*models.User, error)
}

type Store interface {
	FindAccountByEmail(ctx context.Context, email string) (*credentials.Account, error)
	FindRole(ctx context.Context, userID id.UserID) (*credentials.RoleAssignment, error)
	InsertRole(ctx context.Context, role *credentials.RoleAssignment) error
}

type Seeder struct {
	accounts Accounts
	store    Store
	logger   *slog.Logger
}

func New(accounts Accounts, store Store, logger *slog.Logger) *Seeder {
	return &Seeder{accounts: accounts, store: store, logger: logger}
}

// SeedAdmin makes sure an account for email exists and holds the admin role.
// An existing account keeps its password. Running it again changes nothing.
func (s *Seeder) SeedAdmin(ctx context.Context, email, password string) error {
	email = strutil.NormalizeEmail(email)
	if email == "" {
		return nil
	}

	account, err := s.store.FindAccountByEmail(ctx, email)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		if password == "" {
			return fmt.Errorf("seed admin %s: password required to create the account", email)
		}
		if _, err := s.accounts.SignUp(ctx, email, password); err != nil {
			return fmt.Errorf("seed admin %s: %w", email, err)
		}
		if account, err = s.store.FindAccountByEmail(ctx, email); err != nil {
			return fmt.Errorf("seed admin %s: %w", email, err)
		}
	case err != nil:
		return fmt.Errorf("seed admin %s: %w", email, err)
	}

	role, err := s.store.FindRole(ctx, account.ID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return fmt.Errorf("seed admin %s: %w", email, err)
	}
	if role != nil {
		if role.Role != credentials.RoleAdmin {
			s.logger.Warn("bootstrap admin already holds another role; leaving it", "role", role.Role.String())
		}
		return nil
	}

	err = s.store.InsertRole(ctx, &credentials.RoleAssignment{
		UserID:    account.ID,
		Role:      credentials.RoleAdmin,
		CreatedAt: time.Now(),
	})
	if err != nil && !errors.Is(err, sentinel.ErrAlreadyExists) {
		return fmt.Errorf("seed admin %s: %w", email, err)
	}

	s.logger.Info("bootstrap admin seeded", "user_id", account.ID.String())
	return nil
}
