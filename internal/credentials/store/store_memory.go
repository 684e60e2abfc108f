package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"partnerdash/internal/credentials"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/sentinel"
)

// InMemoryStore keeps every credential record in process memory. One mutex
// guards all maps so multi-record operations are atomic. Records are copied
// in and out so callers never share state with the store.
type InMemoryStore struct {
	mu          sync.RWMutex
	accounts    map[id.UserID]*credentials.Account
	roles       map[id.UserID]*credentials.RoleAssignment
	mfa         map[id.UserID]*credentials.MFASettings
	invitations map[id.InvitationID]*credentials.Invitation
}

var _ credentials.Store = (*InMemoryStore)(nil)

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		accounts:    make(map[id.UserID]*credentials.Account),
		roles:       make(map[id.UserID]*credentials.RoleAssignment),
		mfa:         make(map[id.UserID]*credentials.MFASettings),
		invitations: make(map[id.InvitationID]*credentials.Invitation),
	}
}

func (s *InMemoryStore) CreateAccount(_ context.Context, account *credentials.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[account.ID]; ok {
		return fmt.Errorf("account already exists: %w", sentinel.ErrAlreadyExists)
	}
	for _, existing := range s.accounts {
		if strings.EqualFold(existing.Email, account.Email) {
			return fmt.Errorf("email already registered: %w", sentinel.ErrAlreadyExists)
		}
	}
	cp := *account
	s.accounts[account.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindAccountByID(_ context.Context, userID id.UserID) (*credentials.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if account, ok := s.accounts[userID]; ok {
		cp := *account
		return &cp, nil
	}
	return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) FindAccountByEmail(_ context.Context, email string) (*credentials.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, account := range s.accounts {
		if strings.EqualFold(account.Email, email) {
			cp := *account
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) UpdatePasswordHash(_ context.Context, userID id.UserID, hash string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	account, ok := s.accounts[userID]
	if !ok {
		return fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	account.PasswordHash = hash
	account.UpdatedAt = at
	return nil
}

func (s *InMemoryStore) FindRole(_ context.Context, userID id.UserID) (*credentials.RoleAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if role, ok := s.roles[userID]; ok {
		cp := *role
		return &cp, nil
	}
	return nil, fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) InsertRole(_ context.Context, role *credentials.RoleAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertRoleLocked(role)
}

func (s *InMemoryStore) insertRoleLocked(role *credentials.RoleAssignment) error {
	if _, ok := s.roles[role.UserID]; ok {
		return fmt.Errorf("role already assigned: %w", sentinel.ErrAlreadyExists)
	}
	cp := *role
	s.roles[role.UserID] = &cp
	return nil
}

func (s *InMemoryStore) UpdateRole(_ context.Context, userID id.UserID, role credentials.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.roles[userID]
	if !ok {
		return fmt.Errorf("role not found: %w", sentinel.ErrNotFound)
	}
	existing.Role = role
	return nil
}

// ListUsers returns approved users, oldest role assignment first.
func (s *InMemoryStore) ListUsers(_ context.Context) ([]credentials.UserListing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]credentials.UserListing, 0, len(s.roles))
	for userID, role := range s.roles {
		listing := credentials.UserListing{UserID: userID, Role: role.Role, CreatedAt: role.CreatedAt}
		if account, ok := s.accounts[userID]; ok {
			listing.Email = account.Email
		}
		out = append(out, listing)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) FindMFA(_ context.Context, userID id.UserID) (*credentials.MFASettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if settings, ok := s.mfa[userID]; ok {
		return copyMFA(settings), nil
	}
	return nil, fmt.Errorf("mfa settings not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryStore) SaveMFA(_ context.Context, settings *credentials.MFASettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := copyMFA(settings)
	cp.EmailCode = ""
	cp.EmailCodeExpiresAt = nil
	cp.EmailCodeAttempts = 0
	if existing, ok := s.mfa[settings.UserID]; ok {
		cp.CreatedAt = existing.CreatedAt
	}
	s.mfa[settings.UserID] = cp
	return nil
}

func (s *InMemoryStore) SetEmailCode(_ context.Context, userID id.UserID, code string, expiresAt, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.mfa[userID]
	if !ok {
		settings = &credentials.MFASettings{
			UserID:    userID,
			Type:      credentials.MFATypeEmail,
			CreatedAt: now,
		}
		s.mfa[userID] = settings
	}
	exp := expiresAt
	settings.EmailCode = code
	settings.EmailCodeExpiresAt = &exp
	settings.EmailCodeAttempts = 0
	settings.UpdatedAt = now
	return nil
}

func (s *InMemoryStore) IncrementEmailAttempts(_ context.Context, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.mfa[userID]
	if !ok {
		return fmt.Errorf("mfa settings not found: %w", sentinel.ErrNotFound)
	}
	settings.EmailCodeAttempts++
	return nil
}

func (s *InMemoryStore) ConsumeEmailCode(_ context.Context, userID id.UserID, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.mfa[userID]
	if !ok || settings.EmailCode == "" || settings.EmailCode != code {
		return fmt.Errorf("email code already consumed: %w", sentinel.ErrStale)
	}
	settings.EmailCode = ""
	settings.EmailCodeExpiresAt = nil
	settings.EmailCodeAttempts = 0
	return nil
}

func (s *InMemoryStore) MarkMFAVerified(_ context.Context, userID id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	settings, ok := s.mfa[userID]
	if !ok {
		return fmt.Errorf("mfa settings not found: %w", sentinel.ErrNotFound)
	}
	settings.IsVerified = true
	settings.UpdatedAt = at
	return nil
}

func (s *InMemoryStore) ClearStaleEmailCodes(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cleared := 0
	for _, settings := range s.mfa {
		if settings.EmailCodeExpiresAt != nil && settings.EmailCodeExpiresAt.Before(cutoff) {
			settings.EmailCode = ""
			settings.EmailCodeExpiresAt = nil
			settings.EmailCodeAttempts = 0
			cleared++
		}
	}
	return cleared, nil
}

func (s *InMemoryStore) CreateInvitation(_ context.Context, inv *credentials.Invitation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.invitations {
		if existing.Token == inv.Token {
			return fmt.Errorf("invitation token collision: %w", sentinel.ErrAlreadyExists)
		}
	}
	cp := *inv
	s.invitations[inv.ID] = &cp
	return nil
}

func (s *InMemoryStore) FindRedeemableInvitation(_ context.Context, token string, now time.Time) (*credentials.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invitations {
		if inv.Token == token && inv.Redeemable(now) {
			cp := *inv
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("invitation not found: %w", sentinel.ErrNotFound)
}

// ListInvitations returns invitations newest first.
func (s *InMemoryStore) ListInvitations(_ context.Context) ([]*credentials.Invitation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*credentials.Invitation, 0, len(s.invitations))
	for _, inv := range s.invitations {
		cp := *inv
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) MarkInvitationDeleted(_ context.Context, invitationID id.InvitationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[invitationID]
	if !ok {
		return fmt.Errorf("invitation not found: %w", sentinel.ErrNotFound)
	}
	inv.Deleted = true
	return nil
}

func (s *InMemoryStore) AcceptInvitation(_ context.Context, invitationID id.InvitationID, role *credentials.RoleAssignment, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invitations[invitationID]
	if !ok || !inv.Redeemable(now) {
		return fmt.Errorf("invitation no longer redeemable: %w", sentinel.ErrAlreadyUsed)
	}
	if err := s.insertRoleLocked(role); err != nil {
		return err
	}
	inv.Used = true
	return nil
}

func (s *InMemoryStore) PurgeInvitations(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	purged := 0
	for invID, inv := range s.invitations {
		if inv.ExpiresAt.Before(cutoff) {
			delete(s.invitations, invID)
			purged++
		}
	}
	return purged, nil
}

func (s *InMemoryStore) DeleteUser(_ context.Context, userID id.UserID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		return fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	delete(s.mfa, userID)
	delete(s.roles, userID)
	if email != "" {
		for _, inv := range s.invitations {
			if strings.EqualFold(inv.Email, email) {
				inv.Deleted = true
			}
		}
	}
	delete(s.accounts, userID)
	return nil
}

func copyMFA(in *credentials.MFASettings) *credentials.MFASettings {
	cp := *in
	if in.EmailCodeExpiresAt != nil {
		exp := *in.EmailCodeExpiresAt
		cp.EmailCodeExpiresAt = &exp
	}
	return &cp
}
