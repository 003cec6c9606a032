package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/notify"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/pkg/cryptox"
	"github.com/arolux/auth-service/pkg/idx"
	"github.com/arolux/auth-service/pkg/slogx"
)

const (
	phoneCodeLength  = 4
	emailTokenLength = 32
)

// OTPService owns the short-lived credential lifecycles: SMS login codes,
// email verification tokens and password recovery tokens. TTLs and cooldowns
// come from the configuration row on every call, so operator changes apply
// without a restart.
type OTPService struct {
	Store  store.Store
	Config *ConfigService
	Mailer notify.Mailer
	SMS    notify.SMSSender

	// Now overrides the clock, for tests. Nil means time.Now.
	Now func() time.Time
}

func (s *OTPService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// RequestPhoneCode issues a fresh SMS code for the phone number. A number
// already attached to a user gets the code on their row; an unknown number
// gets (or refreshes) a pending account. Re-requesting always invalidates
// the previous code.
func (s *OTPService) RequestPhoneCode(ctx context.Context, countryCode, phoneNumber string) error {
	cfg, err := s.Config.Get(ctx)
	if err != nil {
		return err
	}

	code, err := cryptox.GenerateNumericCode(phoneCodeLength)
	if err != nil {
		return err
	}

	now := s.now()
	expiry := now.Add(cfg.PhoneVerificationExpiry())

	user, err := s.Store.Users().GetUserByPhone(ctx, countryCode, phoneNumber)
	switch {
	case err == nil:
		if !user.Active() {
			return ErrDeactivated
		}
		if err := s.Store.Users().SetPhoneVerificationCode(ctx, user.ID, code, expiry); err != nil {
			return err
		}
	case errors.Is(err, store.ErrNotFound):
		pending := domain.PendingAccount{
			ID:                     idx.New().String(),
			CountryCode:            countryCode,
			PhoneNumber:            phoneNumber,
			VerificationCode:       code,
			VerificationCodeExpiry: expiry,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := s.Store.PendingAccounts().UpsertPendingAccount(ctx, pending); err != nil {
			return err
		}
	default:
		return err
	}

	if err := s.SMS.SendVerificationCode(ctx, countryCode, phoneNumber, code); err != nil {
		slogx.FromContext(ctx).Error("failed to send sms code", "error", err)
		return err
	}
	return nil
}

// PhoneVerification is the outcome of checking an SMS code.
type PhoneVerification struct {
	// IsNewUser is true when the number belongs to a pending account: the
	// caller verified ownership but still has to complete signup.
	IsNewUser bool

	// User is set when IsNewUser is false.
	User domain.User
}

// CheckPhoneCode validates an SMS code against either a user or a pending
// account. For users, a correct code marks the phone verified. The pending
// row is left in place so the follow-up signup can re-check the code.
func (s *OTPService) CheckPhoneCode(ctx context.Context, countryCode, phoneNumber, code string) (PhoneVerification, error) {
	now := s.now()

	user, err := s.Store.Users().GetUserByPhone(ctx, countryCode, phoneNumber)
	if err == nil {
		if !user.Active() {
			return PhoneVerification{}, ErrDeactivated
		}
		if err := checkCode(user.VerificationCode, user.VerificationCodeExpiry, code, now); err != nil {
			return PhoneVerification{}, err
		}
		if err := s.Store.Users().MarkPhoneVerified(ctx, user.ID); err != nil {
			return PhoneVerification{}, err
		}
		user.IsPhoneVerified = true
		return PhoneVerification{User: user}, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return PhoneVerification{}, err
	}

	pending, err := s.Store.PendingAccounts().GetPendingByPhone(ctx, countryCode, phoneNumber)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return PhoneVerification{}, ErrCodeMismatch
		}
		return PhoneVerification{}, err
	}
	if pending.Expired(now) {
		return PhoneVerification{}, ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(pending.VerificationCode), []byte(code)) != 1 {
		return PhoneVerification{}, ErrCodeMismatch
	}

	return PhoneVerification{IsNewUser: true}, nil
}

func checkCode(stored *string, expiry *time.Time, presented string, now time.Time) error {
	if stored == nil || expiry == nil {
		return ErrCodeMismatch
	}
	if !now.Before(*expiry) {
		return ErrCodeExpired
	}
	if subtle.ConstantTimeCompare([]byte(*stored), []byte(presented)) != 1 {
		return ErrCodeMismatch
	}
	return nil
}

// RequestEmailVerification issues and emails a fresh verification token,
// subject to the configured cooldown.
func (s *OTPService) RequestEmailVerification(ctx context.Context, userID string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if user.IsEmailVerified {
		return ErrAlreadyVerified
	}

	cfg, err := s.Config.Get(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	if tooSoon(user.EmailVerificationRequestedAt, cfg.EmailVerificationInterval(), now) {
		return ErrTooSoon
	}

	token, err := cryptox.GenerateAlphanumericToken(emailTokenLength)
	if err != nil {
		return err
	}

	expiry := now.Add(cfg.EmailVerificationExpiry())
	if err := s.Store.Users().SetEmailVerificationToken(ctx, user.ID, token, now, expiry); err != nil {
		return err
	}

	if err := s.Mailer.SendEmailVerification(ctx, user.Email, token); err != nil {
		slogx.FromContext(ctx).Error("failed to send verification email", "error", err)
		return err
	}
	return nil
}

// ConfirmEmail consumes a verification token.
func (s *OTPService) ConfirmEmail(ctx context.Context, token string) (domain.User, error) {
	user, err := s.Store.Users().ConsumeEmailVerificationToken(ctx, token, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, err
	}
	return user, nil
}

// RequestPasswordRecovery issues and emails a recovery token for the
// account, subject to the configured cooldown.
func (s *OTPService) RequestPasswordRecovery(ctx context.Context, email string) error {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if !user.Active() {
		return ErrDeactivated
	}

	cfg, err := s.Config.Get(ctx)
	if err != nil {
		return err
	}

	now := s.now()
	if tooSoon(user.PasswordRecoveryRequestedAt, cfg.PasswordRecoveryInterval(), now) {
		return ErrTooSoon
	}

	token, err := cryptox.GenerateAlphanumericToken(emailTokenLength)
	if err != nil {
		return err
	}

	expiry := now.Add(cfg.PasswordRecoveryExpiry())
	if err := s.Store.Users().SetPasswordRecoveryToken(ctx, user.ID, token, now, expiry); err != nil {
		return err
	}

	if err := s.Mailer.SendPasswordRecovery(ctx, user.Email, token); err != nil {
		slogx.FromContext(ctx).Error("failed to send recovery email", "error", err)
		return err
	}
	return nil
}

// RecoverPassword consumes a recovery token, setting the new password. The
// token clears on first use: a second reset with the same token fails even
// inside the expiry window.
func (s *OTPService) RecoverPassword(ctx context.Context, token, newPassword string) (domain.User, error) {
	if !cryptox.CheckPasswordFormat(newPassword) {
		return domain.User{}, ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return domain.User{}, err
	}

	user, err := s.Store.Users().ConsumePasswordRecoveryToken(ctx, token, hash, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrInvalidToken
		}
		return domain.User{}, err
	}
	return user, nil
}

// tooSoon enforces a request cooldown. A zero interval means no cooldown.
func tooSoon(lastRequested *time.Time, interval time.Duration, now time.Time) bool {
	if lastRequested == nil || interval <= 0 {
		return false
	}
	return now.Before(lastRequested.Add(interval))
}
