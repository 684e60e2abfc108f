package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"partnerdash/internal/credentials"
	"partnerdash/internal/mfa/models"
	"partnerdash/internal/mfa/service/mocks"
	"partnerdash/internal/otp"
	id "partnerdash/pkg/domain"
	dErrors "partnerdash/pkg/domain-errors"
	"partnerdash/pkg/platform/sentinel"
	"partnerdash/pkg/requestcontext"
)

func (s *ServiceSuite) TestEmailCodeIsSingleUse() {
	code := s.sendCode()
	s.Equal(1, s.outbox.count())
	s.Contains(s.outbox.sent[0].Text, code)
	s.Equal("anna@example.com", s.outbox.sent[0].To)

	result := s.verifyEmail(s.ctx, code)
	s.True(result.Verified)
	s.Empty(result.Error)

	result = s.verifyEmail(s.ctx, code)
	s.False(result.Verified)
	s.Equal(models.MsgNoActiveCode, result.Error)
}

func (s *ServiceSuite) TestWrongCodesExhaustAttempts() {
	code := s.sendCode()

	for i := 0; i < credentials.MaxEmailCodeAttempts; i++ {
		result := s.verifyEmail(s.ctx, "000000")
		s.False(result.Verified)
		s.Equal(models.MsgWrongEmailCode, result.Error)
	}

	// The right code no longer helps once the cap is reached.
	result := s.verifyEmail(s.ctx, code)
	s.False(result.Verified)
	s.Equal(models.MsgTooManyAttempts, result.Error)

	settings, err := s.store.FindMFA(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(credentials.MaxEmailCodeAttempts, settings.EmailCodeAttempts)

	s.Require().NoError(s.cooldown.Release(s.ctx, "mfa_send:"+s.userID.String()))
	fresh := s.sendCode()
	s.NotEqual(code, fresh)
	s.True(s.verifyEmail(s.ctx, fresh).Verified)
}

func (s *ServiceSuite) TestExpiredEmailCode() {
	code := s.sendCode()

	result := s.verifyEmail(s.at(s.now.Add(credentials.EmailCodeTTL+time.Second)), code)
	s.False(result.Verified)
	s.Equal(models.MsgCodeExpired, result.Error)

	result = s.verifyEmail(s.at(s.now.Add(credentials.EmailCodeTTL-time.Second)), code)
	s.True(result.Verified)
}

func (s *ServiceSuite) TestNoRecordAndNoCode() {
	result := s.verifyEmail(s.ctx, "123456")
	s.False(result.Verified)
	s.Equal(models.MsgSettingsNotFound, result.Error)

	s.Require().NoError(s.store.SaveMFA(s.ctx, &credentials.MFASettings{UserID: s.userID, Type: credentials.MFATypeEmail}))
	result = s.verifyEmail(s.ctx, "123456")
	s.Equal(models.MsgNoActiveCode, result.Error)

	result, err := s.service.Verify(s.ctx, s.userID, s.userID.String(), "123456", "totp")
	s.Require().NoError(err)
	s.Equal(models.MsgTOTPNotConfigured, result.Error)
}

func (s *ServiceSuite) TestConcurrentVerifyAcceptsOnce() {
	code := s.sendCode()

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		verified int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.service.Verify(s.ctx, s.userID, s.userID.String(), code, "email")
			if err != nil || !result.Verified {
				return
			}
			mu.Lock()
			verified++
			mu.Unlock()
		}()
	}
	wg.Wait()
	s.Equal(1, verified)
}

func (s *ServiceSuite) TestSendCodeCooldown() {
	s.sendCode()

	err := s.service.SendCode(s.ctx, s.userID, s.userID.String())
	s.True(dErrors.HasCode(err, dErrors.CodeRateLimited))
	s.Equal(1, s.outbox.count())
}

func (s *ServiceSuite) TestSendFailureReleasesCooldown() {
	s.outbox.err = errors.New("provider returned 502")

	err := s.service.SendCode(s.ctx, s.userID, s.userID.String())
	s.True(dErrors.HasCode(err, dErrors.CodeDelivery))
	s.Equal("Failed to send email", err.Error())

	s.outbox.err = nil
	s.sendCode()
	s.Equal(1, s.outbox.count())
}

func (s *ServiceSuite) TestSendCodeMailerNotConfigured() {
	s.outbox.configured = false

	err := s.service.SendCode(s.ctx, s.userID, s.userID.String())
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Empty(s.codes)
}

func (s *ServiceSuite) TestSendCodeUnknownAccount() {
	other := id.NewUserID()
	err := s.service.SendCode(s.ctx, other, other.String())
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func (s *ServiceSuite) TestTOTPSetupAndWindow() {
	setup, err := s.service.BeginTOTPSetup(s.ctx, s.userID)
	s.Require().NoError(err)
	s.NotEmpty(setup.Secret)
	s.Contains(setup.OTPAuthURI, "otpauth://totp/Umbroll:anna@example.com")

	info, err := s.service.Info(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal("totp", info.MFAType)
	s.False(info.IsVerified)

	step := otp.Counter(s.now)
	result, err := s.service.ConfirmSetup(s.ctx, s.userID, otp.ComputeHOTP(setup.Secret, uint64(step)))
	s.Require().NoError(err)
	s.True(result.Verified)

	info, err = s.service.Info(s.ctx, s.userID)
	s.Require().NoError(err)
	s.True(info.IsVerified)

	for _, tc := range []struct {
		offset int64
		want   bool
	}{
		{offset: -2, want: false},
		{offset: -1, want: true},
		{offset: 0, want: true},
		{offset: 1, want: true},
		{offset: 2, want: false},
	} {
		code := otp.ComputeHOTP(setup.Secret, uint64(step+tc.offset))
		result, err := s.service.Verify(s.ctx, s.userID, s.userID.String(), code, "totp")
		s.Require().NoError(err)
		s.Equal(tc.want, result.Verified, "offset %d", tc.offset)
	}
}

func (s *ServiceSuite) TestSetupRejectedOnceVerified() {
	setup, err := s.service.BeginTOTPSetup(s.ctx, s.userID)
	s.Require().NoError(err)
	_, err = s.service.ConfirmSetup(s.ctx, s.userID, otp.ComputeHOTP(setup.Secret, uint64(otp.Counter(s.now))))
	s.Require().NoError(err)

	_, err = s.service.BeginTOTPSetup(s.ctx, s.userID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	err = s.service.BeginEmailSetup(s.ctx, s.userID)
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	_, err = s.service.ConfirmSetup(s.ctx, s.userID, "123456")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestEmailSetup() {
	s.Require().NoError(s.service.BeginEmailSetup(s.ctx, s.userID))
	s.Equal(1, s.outbox.count())

	result, err := s.service.ConfirmSetup(s.ctx, s.userID, "999999")
	s.Require().NoError(err)
	s.False(result.Verified)

	result, err = s.service.ConfirmSetup(s.ctx, s.userID, s.lastCode())
	s.Require().NoError(err)
	s.True(result.Verified)

	info, err := s.service.Info(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Equal("email", info.MFAType)
	s.True(info.IsVerified)
}

func (s *ServiceSuite) TestEnrolledFactorOnly() {
	setup, err := s.service.BeginTOTPSetup(s.ctx, s.userID)
	s.Require().NoError(err)
	result, err := s.service.ConfirmSetup(s.ctx, s.userID, otp.ComputeHOTP(setup.Secret, uint64(otp.Counter(s.now))))
	s.Require().NoError(err)
	s.Require().True(result.Verified)

	code := s.sendCode()
	result = s.verifyEmail(s.ctx, code)
	s.False(result.Verified)
	s.Equal(models.MsgWrongMFAType, result.Error)

	result, err = s.service.Verify(s.ctx, s.userID, s.userID.String(), otp.ComputeHOTP(setup.Secret, uint64(otp.Counter(s.now))), "totp")
	s.Require().NoError(err)
	s.True(result.Verified)
}

func (s *ServiceSuite) TestConfirmWithoutSetup() {
	_, err := s.service.ConfirmSetup(s.ctx, s.userID, "123456")
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.service.ConfirmSetup(s.ctx, s.userID, "12345")
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *ServiceSuite) TestInfoWithoutRecord() {
	info, err := s.service.Info(s.ctx, s.userID)
	s.Require().NoError(err)
	s.Nil(info)
}

func TestVerifyRejectsBeforeStorage(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := New(store, mocks.NewMockAccountFinder(ctrl), &outbox{configured: true})

	caller := id.NewUserID()
	other := id.NewUserID()
	ctx := context.Background()

	tests := []struct {
		name   string
		target string
		code   string
		kind   string
		want   dErrors.Code
		msg    string
	}{
		{"malformed user id", "not-a-uuid", "123456", "email", dErrors.CodeValidation, "Invalid userId"},
		{"short code", caller.String(), "12345", "email", dErrors.CodeValidation, "Invalid code format"},
		{"letters in code", caller.String(), "12a456", "totp", dErrors.CodeValidation, "Invalid code format"},
		{"unknown type", caller.String(), "123456", "sms", dErrors.CodeValidation, "Invalid MFA type"},
		{"other user", other.String(), "123456", "email", dErrors.CodeForbidden, "Forbidden"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Verify(ctx, caller, tt.target, tt.code, tt.kind)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, dErrors.HasCode(err, tt.want))
			assert.Equal(t, tt.msg, err.Error())
		})
	}

	err := svc.SendCode(ctx, caller, other.String())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
}

func TestVerifyMarksSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	marker := mocks.NewMockSessionMarker(ctrl)
	svc := New(store, mocks.NewMockAccountFinder(ctrl), &outbox{}, WithSessionMarker(marker))

	userID := id.NewUserID()
	sessionID := id.NewSessionID()
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	expires := now.Add(time.Minute)
	ctx := requestcontext.WithSessionID(requestcontext.WithTime(context.Background(), now), sessionID)

	store.EXPECT().FindMFA(gomock.Any(), userID).Return(&credentials.MFASettings{
		UserID:             userID,
		Type:               credentials.MFATypeEmail,
		EmailCode:          "424242",
		EmailCodeExpiresAt: &expires,
	}, nil)
	store.EXPECT().ConsumeEmailCode(gomock.Any(), userID, "424242").Return(nil)
	marker.EXPECT().MarkSessionMFAVerified(gomock.Any(), sessionID).Return(nil)

	result, err := svc.Verify(ctx, userID, userID.String(), "424242", "email")
	require.NoError(t, err)
	assert.True(t, result.Verified)
}

func TestVerifyLostConsumeRace(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := New(store, mocks.NewMockAccountFinder(ctrl), &outbox{})

	userID := id.NewUserID()
	expires := time.Now().Add(time.Minute)
	store.EXPECT().FindMFA(gomock.Any(), userID).Return(&credentials.MFASettings{
		UserID:             userID,
		Type:               credentials.MFATypeEmail,
		EmailCode:          "424242",
		EmailCodeExpiresAt: &expires,
	}, nil)
	store.EXPECT().ConsumeEmailCode(gomock.Any(), userID, "424242").Return(sentinel.ErrStale)

	result, err := svc.Verify(context.Background(), userID, userID.String(), "424242", "email")
	require.NoError(t, err)
	assert.False(t, result.Verified)
	assert.Equal(t, models.MsgNoActiveCode, result.Error)
}

func TestVerifyStoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	svc := New(store, mocks.NewMockAccountFinder(ctrl), &outbox{})

	userID := id.NewUserID()
	store.EXPECT().FindMFA(gomock.Any(), userID).Return(nil, errors.New("connection reset"))

	_, err := svc.Verify(context.Background(), userID, userID.String(), "424242", "email")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

func TestSendCodeCooldownError(t *testing.T) {
	ctrl := gomock.NewController(t)
	accounts := mocks.NewMockAccountFinder(ctrl)
	cd := mocks.NewMockCooldown(ctrl)
	svc := New(mocks.NewMockStore(ctrl), accounts, &outbox{configured: true}, WithCooldown(cd))

	userID := id.NewUserID()
	accounts.EXPECT().FindAccountByID(gomock.Any(), userID).Return(&credentials.Account{ID: userID, Email: "b@example.com"}, nil)
	cd.EXPECT().Acquire(gomock.Any(), "mfa_send:"+userID.String(), SendCooldown).Return(false, errors.New("redis down"))

	err := svc.SendCode(context.Background(), userID, userID.String())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}
