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

// AdminService implements the back-office authentication and account
// management flows.
type AdminService struct {
	Store store.Store
	Codec *jwtx.Codec
	Audit *AuditService

	Now func() time.Time
}

func (s *AdminService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// AdminSession is what admin login hands back.
type AdminSession struct {
	Admin  domain.Admin
	Tokens jwtx.SessionPair
}

// Login authenticates an admin by email and password.
func (s *AdminService) Login(ctx context.Context, email, password string) (AdminSession, error) {
	admin, err := s.Store.Admins().GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return AdminSession{}, ErrInvalidCredentials
		}
		return AdminSession{}, err
	}

	if err := cryptox.VerifyPassword(password, admin.PasswordHash); err != nil {
		return AdminSession{}, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return AdminSession{}, ErrDeactivated
	}

	tokens, err := s.Codec.IssueSession(jwtx.Identity{
		ID:    admin.ID,
		Email: admin.Email,
		Type:  jwtx.TypeAdmin,
	})
	if err != nil {
		return AdminSession{}, err
	}

	now := s.now()
	if err := s.Store.Admins().TouchLastLogin(ctx, admin.ID, now); err != nil {
		slogx.FromContext(ctx).Warn("failed to record admin last login", "admin_id", admin.ID, "error", err)
	}
	admin.LastLoginTime = &now

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogAdminSignedIn,
		ActorID:   admin.ID,
		ActorKind: "admin",
	})

	return AdminSession{Admin: admin, Tokens: tokens}, nil
}

// Logout records the sign-out; tokens simply lapse.
func (s *AdminService) Logout(ctx context.Context, adminID string) {
	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogAdminSignedOut,
		ActorID:   adminID,
		ActorKind: "admin",
	})
}

// Profile returns the admin backing a session.
func (s *AdminService) Profile(ctx context.Context, adminID string) (domain.Admin, error) {
	admin, err := s.Store.Admins().GetAdminByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Admin{}, ErrNotFound
		}
		return domain.Admin{}, err
	}
	return admin, nil
}

// CreateAccountParams carries the fields for provisioning a new admin.
type CreateAccountParams struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string
	Role        domain.AdminRole
}

// CreateAccount provisions a new admin account. The HTTP layer restricts
// this to super-admins; here we only enforce data validity.
func (s *AdminService) CreateAccount(ctx context.Context, creatorID string, p CreateAccountParams) (domain.Admin, error) {
	if !p.Role.Valid() {
		return domain.Admin{}, ErrNotAuthorized
	}
	if !cryptox.CheckPasswordFormat(p.Password) {
		return domain.Admin{}, ErrWeakPassword
	}

	exists, err := s.Store.Admins().ExistsByEmail(ctx, p.Email)
	if err != nil {
		return domain.Admin{}, err
	}
	if exists {
		return domain.Admin{}, ErrDuplicateEmail
	}

	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.Admin{}, err
	}

	now := s.now()
	admin := domain.Admin{
		ID:           idx.New().String(),
		Name:         p.Name,
		Email:        p.Email,
		PhoneNumber:  p.PhoneNumber,
		PasswordHash: hash,
		Role:         p.Role,
		IsActive:     true,
		CreatedBy:    creatorID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Admins().CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Admin{}, ErrDuplicateEmail
		}
		return domain.Admin{}, err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogAdminCreated,
		ActorID:   creatorID,
		ActorKind: "admin",
		Detail:    string(admin.Role),
	})

	return admin, nil
}

// UpdatePassword sets a new password on the target admin account.
func (s *AdminService) UpdatePassword(ctx context.Context, actorID, targetID, newPassword string) error {
	if !cryptox.CheckPasswordFormat(newPassword) {
		return ErrWeakPassword
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return err
	}

	if err := s.Store.Admins().UpdatePasswordHash(ctx, targetID, hash); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogAdminPasswordChanged,
		ActorID:   actorID,
		ActorKind: "admin",
		Detail:    targetID,
	})
	return nil
}

// UpdateStatus toggles an admin account. A deactivated admin fails the
// middleware re-check on their very next request.
func (s *AdminService) UpdateStatus(ctx context.Context, actorID, targetID string, active bool) error {
	if err := s.Store.Admins().UpdateActive(ctx, targetID, active); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogAdminStatusChanged,
		ActorID:   actorID,
		ActorKind: "admin",
		Detail:    targetID,
	})
	return nil
}

// List returns all admin accounts, newest first.
func (s *AdminService) List(ctx context.Context) ([]domain.Admin, error) {
	return s.Store.Admins().ListAdmins(ctx)
}

// Get returns a single admin account.
func (s *AdminService) Get(ctx context.Context, adminID string) (domain.Admin, error) {
	return s.Profile(ctx, adminID)
}

// ImpersonateUser mints a user session on behalf of an admin. The pair
// carries the admin's id so downstream guards can tell the session apart
// from a genuine user login.
func (s *AdminService) ImpersonateUser(ctx context.Context, adminID, userID string) (Session, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Session{}, ErrNotFound
		}
		return Session{}, err
	}
	if !user.Active() {
		return Session{}, ErrDeactivated
	}

	tokens, err := s.Codec.IssueSession(jwtx.Identity{
		ID:      user.ID,
		Email:   user.Email,
		AdminID: adminID,
	})
	if err != nil {
		return Session{}, err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogAdminLoggedInAsUser,
		ActorID:   user.ID,
		ActorKind: "user",
		AdminID:   adminID,
	})

	return Session{User: user, Tokens: tokens}, nil
}

// SetUserStatus activates or deactivates a user account.
func (s *AdminService) SetUserStatus(ctx context.Context, adminID, userID string, active bool) error {
	status := domain.StatusInactive
	if active {
		status = domain.StatusActive
	}

	if err := s.Store.Users().UpdateStatus(ctx, userID, status); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	s.Audit.Action(domain.ActionLog{
		Type:      domain.LogUserStatusChanged,
		ActorID:   userID,
		ActorKind: "user",
		AdminID:   adminID,
		Detail:    status,
	})
	return nil
}

// SeedRootAdmin creates the initial super-admin when the table is empty.
// Subsequent starts are no-ops.
func (s *AdminService) SeedRootAdmin(ctx context.Context, email, password string) error {
	empty, err := s.Store.Admins().IsEmpty(ctx)
	if err != nil {
		return err
	}
	if !empty {
		return nil
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return err
	}

	now := s.now()
	admin := domain.Admin{
		ID:           idx.New().String(),
		Name:         "Super Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.Store.Admins().CreateAdmin(ctx, admin); err != nil {
		// Another instance won the race; that copy is just as good.
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil
		}
		return err
	}

	slogx.FromContext(ctx).Info("seeded root admin", "email", email)
	return nil
}
