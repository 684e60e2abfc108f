package service

import (
	"context"
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"partnerdash/internal/credentials"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/requestcontext"
)

const (
	defaultBcryptCost = 12
	minPasswordLength = 8
)

// dummyHash is compared against when the account does not exist so unknown
// and known emails take the same time to reject.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("partnerdash-timing-pad"), bcrypt.MinCost)

// CheckPasswordPolicy reports the first rule the password breaks.
func CheckPasswordPolicy(password string) error {
	if len([]rune(password)) < minPasswordLength {
		return dErrors.New(dErrors.CodeValidation, "Password should be at least 8 characters")
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	switch {
	case !upper:
		return dErrors.New(dErrors.CodeValidation, "Password must contain an uppercase letter")
	case !lower:
		return dErrors.New(dErrors.CodeValidation, "Password must contain a lowercase letter")
	case !digit:
		return dErrors.New(dErrors.CodeValidation, "Password must contain a number")
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return string(hashed), nil
}

// ChangePassword re-checks the current password before storing the new one.
// Other sessions of the user stay signed in.
func (s *Service) ChangePassword(ctx context.Context, userID id.UserID, current, next string) error {
	if current == next {
		return dErrors.New(dErrors.CodeValidation, "New password should be different from the old password.")
	}
	if err := CheckPasswordPolicy(next); err != nil {
		return err
	}

	account, err := s.accounts.FindAccountByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "User not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account")
	}
	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(current)) != nil {
		s.authFailure(ctx, "wrong_current_password", "user_id", userID.String())
		return dErrors.New(dErrors.CodeUnauthorized, "Invalid login credentials")
	}

	hashed, err := s.hash(next)
	if err != nil {
		return err
	}
	if err := s.accounts.UpdatePasswordHash(ctx, userID, hashed, requestcontext.Now(ctx)); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update password")
	}
	s.logAudit(ctx, "password_changed", "user_id", userID.String())
	return nil
}

func newAccount(ctx context.Context, userID id.UserID, email, hash string) *credentials.Account {
	now := requestcontext.Now(ctx)
	return &credentials.Account{
		ID:           userID,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
