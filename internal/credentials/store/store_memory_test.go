package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"partnerdash/internal/credentials"
	id "partnerdash/pkg/domain"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/testutil"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
	ctx   context.Context
	now   time.Time
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func (s *InMemoryStoreSuite) createAccount(email string) *credentials.Account {
	account := testutil.NewAccountBuilder().WithEmail(email).Build()
	s.Require().NoError(s.store.CreateAccount(s.ctx, account))
	return account
}

func (s *InMemoryStoreSuite) TestAccounts() {
	s.Run("email lookup is case-insensitive", func() {
		account := s.createAccount("Anna@Example.com")
		found, err := s.store.FindAccountByEmail(s.ctx, "anna@example.COM")
		s.Require().NoError(err)
		s.Equal(account.ID, found.ID)
	})

	s.Run("duplicate email differing in case is rejected", func() {
		s.createAccount("dup@example.com")
		err := s.store.CreateAccount(s.ctx, testutil.NewAccountBuilder().WithEmail("DUP@example.com").Build())
		s.ErrorIs(err, sentinel.ErrAlreadyExists)
	})

	s.Run("returned records are copies", func() {
		account := s.createAccount("copy@example.com")
		found, err := s.store.FindAccountByID(s.ctx, account.ID)
		s.Require().NoError(err)
		found.Email = "mutated@example.com"

		again, err := s.store.FindAccountByID(s.ctx, account.ID)
		s.Require().NoError(err)
		s.Equal("copy@example.com", again.Email)
	})

	s.Run("password update on unknown account", func() {
		err := s.store.UpdatePasswordHash(s.ctx, id.UserID(uuid.New()), "hash", s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *InMemoryStoreSuite) TestRoles() {
	userID := id.UserID(uuid.New())
	_, err := s.store.FindRole(s.ctx, userID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.InsertRole(s.ctx, &credentials.RoleAssignment{UserID: userID, Role: credentials.RoleUser, CreatedAt: s.now}))
	err = s.store.InsertRole(s.ctx, &credentials.RoleAssignment{UserID: userID, Role: credentials.RoleAdmin, CreatedAt: s.now})
	s.ErrorIs(err, sentinel.ErrAlreadyExists)

	s.Require().NoError(s.store.UpdateRole(s.ctx, userID, credentials.RoleAdmin))
	role, err := s.store.FindRole(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(credentials.RoleAdmin, role.Role)
}

func (s *InMemoryStoreSuite) TestListUsersOrdersByRoleCreation() {
	later := s.createAccount("later@example.com")
	earlier := s.createAccount("earlier@example.com")
	s.Require().NoError(s.store.InsertRole(s.ctx, &credentials.RoleAssignment{UserID: later.ID, Role: credentials.RoleUser, CreatedAt: s.now.Add(time.Hour)}))
	s.Require().NoError(s.store.InsertRole(s.ctx, &credentials.RoleAssignment{UserID: earlier.ID, Role: credentials.RoleAdmin, CreatedAt: s.now}))

	users, err := s.store.ListUsers(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("earlier@example.com", users[0].Email)
	s.Equal(credentials.RoleAdmin, users[0].Role)
	s.Equal("later@example.com", users[1].Email)
}

func (s *InMemoryStoreSuite) TestEmailCodeLifecycle() {
	userID := id.UserID(uuid.New())

	s.Run("setting a code without settings creates an unverified email row", func() {
		s.Require().NoError(s.store.SetEmailCode(s.ctx, userID, "123456", s.now.Add(credentials.EmailCodeTTL), s.now))
		settings, err := s.store.FindMFA(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(credentials.MFATypeEmail, settings.Type)
		s.False(settings.IsVerified)
		s.True(settings.HasActiveEmailCode())
		s.Equal(0, settings.EmailCodeAttempts)
	})

	s.Run("attempts increment and reset with a new code", func() {
		s.Require().NoError(s.store.IncrementEmailAttempts(s.ctx, userID))
		s.Require().NoError(s.store.IncrementEmailAttempts(s.ctx, userID))
		settings, err := s.store.FindMFA(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(2, settings.EmailCodeAttempts)

		s.Require().NoError(s.store.SetEmailCode(s.ctx, userID, "654321", s.now.Add(credentials.EmailCodeTTL), s.now))
		settings, err = s.store.FindMFA(s.ctx, userID)
		s.Require().NoError(err)
		s.Equal(0, settings.EmailCodeAttempts)
		s.Equal("654321", settings.EmailCode)
	})

	s.Run("a code can be consumed once", func() {
		s.Require().NoError(s.store.ConsumeEmailCode(s.ctx, userID, "654321"))
		err := s.store.ConsumeEmailCode(s.ctx, userID, "654321")
		s.ErrorIs(err, sentinel.ErrStale)

		settings, err := s.store.FindMFA(s.ctx, userID)
		s.Require().NoError(err)
		s.False(settings.HasActiveEmailCode())
	})

	s.Run("consuming a different code than stored is stale", func() {
		s.Require().NoError(s.store.SetEmailCode(s.ctx, userID, "111111", s.now.Add(credentials.EmailCodeTTL), s.now))
		err := s.store.ConsumeEmailCode(s.ctx, userID, "222222")
		s.ErrorIs(err, sentinel.ErrStale)
	})
}

func (s *InMemoryStoreSuite) TestConcurrentConsumeHasOneWinner() {
	userID := id.UserID(uuid.New())
	s.Require().NoError(s.store.SetEmailCode(s.ctx, userID, "424242", s.now.Add(credentials.EmailCodeTTL), s.now))

	result := testutil.RunConcurrent(20, func(int) error {
		return s.store.ConsumeEmailCode(s.ctx, userID, "424242")
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
}

func (s *InMemoryStoreSuite) TestSaveMFAClearsCodeAndKeepsCreatedAt() {
	userID := id.UserID(uuid.New())
	s.Require().NoError(s.store.SetEmailCode(s.ctx, userID, "123456", s.now.Add(credentials.EmailCodeTTL), s.now))

	s.Require().NoError(s.store.SaveMFA(s.ctx, &credentials.MFASettings{
		UserID:     userID,
		Type:       credentials.MFATypeTOTP,
		TOTPSecret: "JBSWY3DPEHPK3PXP",
		CreatedAt:  s.now.Add(time.Hour),
		UpdatedAt:  s.now.Add(time.Hour),
	}))

	settings, err := s.store.FindMFA(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(credentials.MFATypeTOTP, settings.Type)
	s.False(settings.HasActiveEmailCode())
	s.Equal(s.now, settings.CreatedAt)

	s.Require().NoError(s.store.MarkMFAVerified(s.ctx, userID, s.now))
	settings, err = s.store.FindMFA(s.ctx, userID)
	s.Require().NoError(err)
	s.True(settings.IsVerified)
}

func (s *InMemoryStoreSuite) TestClearStaleEmailCodes() {
	stale := id.UserID(uuid.New())
	fresh := id.UserID(uuid.New())
	s.Require().NoError(s.store.SetEmailCode(s.ctx, stale, "111111", s.now.Add(-2*time.Hour), s.now))
	s.Require().NoError(s.store.SetEmailCode(s.ctx, fresh, "222222", s.now.Add(credentials.EmailCodeTTL), s.now))

	cleared, err := s.store.ClearStaleEmailCodes(s.ctx, s.now.Add(-time.Hour))
	s.Require().NoError(err)
	s.Equal(1, cleared)

	settings, err := s.store.FindMFA(s.ctx, stale)
	s.Require().NoError(err)
	s.False(settings.HasActiveEmailCode())

	settings, err = s.store.FindMFA(s.ctx, fresh)
	s.Require().NoError(err)
	s.True(settings.HasActiveEmailCode())
}

func (s *InMemoryStoreSuite) TestInvitations() {
	s.Run("redeemable lookup skips used, deleted and expired", func() {
		used := testutil.NewInvitationBuilder().Used().Build()
		deleted := testutil.NewInvitationBuilder().Deleted().Build()
		expired := testutil.NewInvitationBuilder().ExpiresAt(s.now.Add(-time.Minute)).Build()
		for _, inv := range []*credentials.Invitation{used, deleted, expired} {
			s.Require().NoError(s.store.CreateInvitation(s.ctx, inv))
			_, err := s.store.FindRedeemableInvitation(s.ctx, inv.Token, s.now)
			s.ErrorIs(err, sentinel.ErrNotFound)
		}
	})

	s.Run("token collision is rejected", func() {
		first := testutil.NewInvitationBuilder().WithToken("same-token").Build()
		second := testutil.NewInvitationBuilder().WithToken("same-token").Build()
		s.Require().NoError(s.store.CreateInvitation(s.ctx, first))
		s.ErrorIs(s.store.CreateInvitation(s.ctx, second), sentinel.ErrAlreadyExists)
	})

	s.Run("list is newest first", func() {
		st := NewInMemory()
		older := testutil.NewInvitationBuilder().CreatedAt(s.now).Build()
		newer := testutil.NewInvitationBuilder().CreatedAt(s.now.Add(time.Hour)).Build()
		s.Require().NoError(st.CreateInvitation(s.ctx, older))
		s.Require().NoError(st.CreateInvitation(s.ctx, newer))

		list, err := st.ListInvitations(s.ctx)
		s.Require().NoError(err)
		s.Require().Len(list, 2)
		s.Equal(newer.ID, list[0].ID)
	})
}

func (s *InMemoryStoreSuite) TestAcceptInvitation() {
	inv := testutil.NewInvitationBuilder().ExpiresAt(s.now.Add(credentials.InvitationTTL)).Build()
	s.Require().NoError(s.store.CreateInvitation(s.ctx, inv))
	userID := id.UserID(uuid.New())

	found, err := s.store.FindRedeemableInvitation(s.ctx, inv.Token, s.now)
	s.Require().NoError(err)

	role := &credentials.RoleAssignment{UserID: userID, Role: found.Role, CreatedAt: s.now}
	s.Require().NoError(s.store.AcceptInvitation(s.ctx, found.ID, role, s.now))

	assigned, err := s.store.FindRole(s.ctx, userID)
	s.Require().NoError(err)
	s.Equal(credentials.RoleUser, assigned.Role)

	s.Run("second accept fails and lookup no longer finds it", func() {
		err := s.store.AcceptInvitation(s.ctx, found.ID, &credentials.RoleAssignment{UserID: id.UserID(uuid.New()), Role: credentials.RoleUser}, s.now)
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)

		_, err = s.store.FindRedeemableInvitation(s.ctx, inv.Token, s.now)
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("existing role leaves the invitation unused", func() {
		other := testutil.NewInvitationBuilder().ExpiresAt(s.now.Add(time.Hour)).Build()
		s.Require().NoError(s.store.CreateInvitation(s.ctx, other))

		err := s.store.AcceptInvitation(s.ctx, other.ID, &credentials.RoleAssignment{UserID: userID, Role: credentials.RoleAdmin}, s.now)
		s.ErrorIs(err, sentinel.ErrAlreadyExists)

		_, err = s.store.FindRedeemableInvitation(s.ctx, other.Token, s.now)
		s.NoError(err)
	})

	s.Run("expired invitation cannot be accepted", func() {
		other := testutil.NewInvitationBuilder().ExpiresAt(s.now.Add(-time.Second)).Build()
		s.Require().NoError(s.store.CreateInvitation(s.ctx, other))
		err := s.store.AcceptInvitation(s.ctx, other.ID, &credentials.RoleAssignment{UserID: id.UserID(uuid.New()), Role: credentials.RoleUser}, s.now)
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
	})
}

func (s *InMemoryStoreSuite) TestConcurrentAcceptHasOneWinner() {
	inv := testutil.NewInvitationBuilder().ExpiresAt(s.now.Add(time.Hour)).Build()
	s.Require().NoError(s.store.CreateInvitation(s.ctx, inv))

	result := testutil.RunConcurrent(20, func(int) error {
		role := &credentials.RoleAssignment{UserID: id.UserID(uuid.New()), Role: credentials.RoleUser, CreatedAt: s.now}
		return s.store.AcceptInvitation(s.ctx, inv.ID, role, s.now)
	})
	s.Equal(int32(1), result.Successes)
	s.Equal(int32(19), result.Conflicts)
}

func (s *InMemoryStoreSuite) TestPurgeInvitations() {
	cutoff := s.now.Add(-30 * 24 * time.Hour)
	old := testutil.NewInvitationBuilder().ExpiresAt(cutoff.Add(-time.Hour)).Build()
	oldUsed := testutil.NewInvitationBuilder().ExpiresAt(cutoff.Add(-time.Hour)).Used().Build()
	recentDeleted := testutil.NewInvitationBuilder().ExpiresAt(s.now.Add(-time.Hour)).Deleted().Build()
	for _, inv := range []*credentials.Invitation{old, oldUsed, recentDeleted} {
		s.Require().NoError(s.store.CreateInvitation(s.ctx, inv))
	}

	purged, err := s.store.PurgeInvitations(s.ctx, cutoff)
	s.Require().NoError(err)
	s.Equal(2, purged)

	list, err := s.store.ListInvitations(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(recentDeleted.ID, list[0].ID)
}

func (s *InMemoryStoreSuite) TestDeleteUserCascades() {
	account := s.createAccount("leaver@example.com")
	s.Require().NoError(s.store.InsertRole(s.ctx, &credentials.RoleAssignment{UserID: account.ID, Role: credentials.RoleUser, CreatedAt: s.now}))
	s.Require().NoError(s.store.SetEmailCode(s.ctx, account.ID, "123456", s.now.Add(time.Minute), s.now))
	inv := testutil.NewInvitationBuilder().WithEmail("LEAVER@example.com").ExpiresAt(s.now.Add(time.Hour)).Build()
	s.Require().NoError(s.store.CreateInvitation(s.ctx, inv))

	s.Require().NoError(s.store.DeleteUser(s.ctx, account.ID, account.Email))

	_, err := s.store.FindAccountByID(s.ctx, account.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindRole(s.ctx, account.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindMFA(s.ctx, account.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	_, err = s.store.FindRedeemableInvitation(s.ctx, inv.Token, s.now)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.DeleteUser(s.ctx, account.ID, account.Email), sentinel.ErrNotFound)
}
