package service

import (
	"context"
	"errors"
	"time"

	"github.com/arolux/auth-service/internal/auth/domain"
	"github.com/arolux/auth-service/internal/auth/store"
	"github.com/arolux/auth-service/pkg/cryptox"
	"github.com/arolux/auth-service/pkg/idx"
	"github.com/arolux/auth-service/pkg/jwtx"
	"github.com/arolux/auth-service/pkg/slogx"
)

// UserService implements the user-facing authentication flows.
type UserService struct {
	Store store.Store
	Codec *jwtx.Codec
	OTP   *OTPService
	Audit *AuditService

	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// SignupParams carries everything the signup endpoints collect. Phone signup
// additionally supplies the SMS code it verified moments earlier.
type SignupParams struct {
	FirstName        string
	LastName         string
	Email            string
	Password         string
	CountryCode      string
	PhoneNumber      string
	DeviceType       string
	DeviceToken      string
	VerificationCode string
}

// Session bundles what login-shaped operations hand back.
type Session struct {
	User   domain.User
	Tokens jwtx.SessionPair
}

// SignupEmail registers an account by email and password and logs it in.
func (s *UserService) SignupEmail(ctx context.Context, p SignupParams) (Session, error) {
	if !cryptox.CheckPasswordFormat(p.Password) {
		return Session{}, ErrWeakPassword
	}

	exists, err := s.Store.Users().ExistsByEmail(ctx, p.Email)
	if err != nil {
		return Session{}, err
	}
	if exists {
		return Session{}, ErrDuplicateEmail
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	user := domain.User{
		ID:           idx.New().String(),
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Email:        p.Email,
		PasswordHash: hash,
		CountryCode:  p.CountryCode,
		PhoneNumber:  p.PhoneNumber,
		DeviceType:   p.DeviceType,
		DeviceToken:  p.DeviceToken,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return Session{}, ErrDuplicateEmail
		}
		return Session{}, err
	}

	tokens, err := s.issueFor(ctx, &user, now)
	if err != nil {
		return Session{}, err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogUserSignedUp,
		ActorID:   user.ID,
		ActorKind: "user",
	})

	// Kick off email verification; signup succeeds regardless.
	if err := s.OTP.RequestEmailVerification(ctx, user.ID); err != nil {
		slogx.FromContext(ctx).Warn("post-signup verification email failed", "error", err)
	}

	return Session{User: user, Tokens: tokens}, nil
}

// SignupPhone promotes a verified pending account into a real user. The SMS
// code is re-checked inside the transaction so a stale or replayed signup
// can't ride on someone else's verification.
func (s *UserService) SignupPhone(ctx context.Context, p SignupParams) (Session, error) {
	if !cryptox.CheckPasswordFormat(p.Password) {
		return Session{}, ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	user := domain.User{
		ID:              idx.New().String(),
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		Email:           p.Email,
		PasswordHash:    hash,
		CountryCode:     p.CountryCode,
		PhoneNumber:     p.PhoneNumber,
		DeviceType:      p.DeviceType,
		DeviceToken:     p.DeviceToken,
		Status:          domain.StatusActive,
		IsPhoneVerified: true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		pending, err := tx.PendingAccounts().GetPendingByPhone(ctx, p.CountryCode, p.PhoneNumber)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrCodeMismatch
			}
			return err
		}
		if pending.Expired(now) {
			return ErrCodeExpired
		}
		if pending.VerificationCode != p.VerificationCode {
			return ErrCodeMismatch
		}

		if p.Email != "" {
			exists, err := tx.Users().ExistsByEmail(ctx, p.Email)
			if err != nil {
				return err
			}
			if exists {
				return ErrDuplicateEmail
			}
		}

		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicatePhone
			}
			return err
		}

		return tx.PendingAccounts().DeletePendingAccount(ctx, pending.ID)
	})
	if err != nil {
		return Session{}, err
	}

	tokens, err := s.issueFor(ctx, &user, now)
	if err != nil {
		return Session{}, err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogUserSignedUp,
		ActorID:   user.ID,
		ActorKind: "user",
	})

	return Session{User: user, Tokens: tokens}, nil
}

// Login authenticates by email and password.
func (s *UserService) Login(ctx context.Context, email, password, deviceType, deviceToken string) (Session, error) {
	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	if !user.Active() {
		return Session{}, ErrDeactivated
	}

	if deviceType != "" {
		if err := s.Store.Users().UpdateDevice(ctx, user.ID, deviceType, deviceToken); err != nil {
			return Session{}, err
		}
		user.DeviceType = deviceType
		user.DeviceToken = deviceToken
	}

	tokens, err := s.issueFor(ctx, &user, s.now())
	if err != nil {
		return Session{}, err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogUserSignedIn,
		ActorID:   user.ID,
		ActorKind: "user",
	})

	return Session{User: user, Tokens: tokens}, nil
}

// PhoneLoginResult is the verify-code outcome: either a logged-in session or
// a signal that the caller must complete signup first.
type PhoneLoginResult struct {
	IsNewUser bool
	Session   Session
}

// VerifyPhoneLogin checks an SMS code. Known numbers get a session; unknown
// ones come back with IsNewUser set and no tokens.
func (s *UserService) VerifyPhoneLogin(ctx context.Context, countryCode, phoneNumber, code string) (PhoneLoginResult, error) {
	v, err := s.OTP.CheckPhoneCode(ctx, countryCode, phoneNumber, code)
	if err != nil {
		return PhoneLoginResult{}, err
	}

	if v.IsNewUser {
		return PhoneLoginResult{IsNewUser: true}, nil
	}

	user := v.User
	tokens, err := s.issueFor(ctx, &user, s.now())
	if err != nil {
		return PhoneLoginResult{}, err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogUserSignedIn,
		ActorID:   user.ID,
		ActorKind: "user",
		Detail:    "phone",
	})

	return PhoneLoginResult{Session: Session{User: user, Tokens: tokens}}, nil
}

// Refresh exchanges a valid refresh token for a brand-new session pair. The
// account is re-checked so deactivation takes effect at the next refresh at
// the latest.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	id, err := s.Codec.VerifyRefresh(refreshToken)
	if err != nil {
		return Session{}, ErrInvalidToken
	}
	if id.IsAdmin() {
		return Session{}, ErrInvalidToken
	}

	user, err := s.Store.Users().GetUserByIDAndEmail(ctx, id.ID, id.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrInvalidToken
		}
		return Session{}, err
	}
	if !user.Active() {
		return Session{}, ErrDeactivated
	}

	tokens, err := s.Codec.IssueSession(jwtx.Identity{
		ID:      user.ID,
		Email:   user.Email,
		AdminID: id.AdminID, // impersonated sessions stay marked across refreshes
	})
	if err != nil {
		return Session{}, err
	}

	return Session{User: user, Tokens: tokens}, nil
}

// Logout records the sign-out. Tokens are stateless so nothing is revoked;
// clients discard their copies.
func (s *UserService) Logout(ctx context.Context, userID, adminID string) {
	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogUserSignedOut,
		ActorID:   userID,
		ActorKind: "user",
		AdminID:   adminID,
	})
}

// Profile returns the account backing a session.
func (s *UserService) Profile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

// ChangePassword swaps the password after verifying the current one.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := cryptox.VerifyPassword(oldPassword, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}
	if !cryptox.CheckPasswordFormat(newPassword) {
		return ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.Store.Users().UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogUserPasswordChanged,
		ActorID:   user.ID,
		ActorKind: "user",
	})
	return nil
}

// ForgotPassword kicks off the recovery email flow.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	return s.OTP.RequestPasswordRecovery(ctx, email)
}

// ResetPassword completes the recovery flow with the emailed token.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.OTP.RecoverPassword(ctx, token, newPassword)
	if err != nil {
		return err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogUserPasswordRecovered,
		ActorID:   user.ID,
		ActorKind: "user",
	})
	return nil
}

// SendEmailVerification re-issues the verification email for the session's
// account.
func (s *UserService) SendEmailVerification(ctx context.Context, userID string) error {
	return s.OTP.RequestEmailVerification(ctx, userID)
}

// VerifyEmail consumes an emailed verification token.
func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	user, err := s.OTP.ConfirmEmail(ctx, token)
	if err != nil {
		return err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogUserEmailVerified,
		ActorID:   user.ID,
		ActorKind: "user",
	})
	return nil
}

func (s *UserService) issueFor(ctx context.Context, user *domain.User, now time.Time) (jwtx.SessionPair, error) {
	tokens, err := s.Codec.IssueSession(jwtx.Identity{ID: user.ID, Email: user.Email})
	if err != nil {
		return jwtx.SessionPair{}, err
	}

	if err := s.Store.Users().TouchLastLogin(ctx, user.ID, now); err != nil {
		slogx.FromContext(ctx).Warn("failed to record last login", "user_id", user.ID, "error", err)
	}
	user.LastLoginTime = &now

	return tokens, nil
}
