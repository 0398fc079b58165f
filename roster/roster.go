/*
Package roster manages the user list: sales agents, admins, and the
first-admin bootstrap.

PURPOSE:
  Creating a user touches two systems that must stay paired: the external
  identity provider (the login) and the catalog store (the profile row with
  the role). If the profile insert fails after the login was provisioned,
  the login is deleted again - the same compensating-write pattern the
  inventory ledger uses for stock and sales, via ledger.Compensate.

ROLE MODEL:
  Roles live on the profile row and are read server-side by the ledger on
  every call. Granting or revoking admin is a plain profile update here.
*/
package roster

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/profitpro/inventory-engine/ledger"
)

// MinPasswordLen matches the identity provider's minimum.
const MinPasswordLen = 6

var (
	// ErrPasswordTooShort is returned for passwords under MinPasswordLen.
	ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters long", MinPasswordLen)

	// ErrAdminExists is returned when setup is attempted after an admin
	// account already exists.
	ErrAdminExists = errors.New("an admin account already exists")

	// ErrInvalidRole is returned for roles other than admin/agent.
	ErrInvalidRole = errors.New("role must be admin or agent")
)

// Service manages users across the identity provider and the catalog store.
type Service struct {
	ids   IdentityProvider
	store ledger.CatalogStore
	log   *zap.Logger

	now func() time.Time
}

// NewService creates a roster service.
func NewService(ids IdentityProvider, store ledger.CatalogStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{ids: ids, store: store, log: log, now: time.Now}
}

// =============================================================================
// USER LIFECYCLE
// =============================================================================

// NewUser is the input for CreateUser.
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      ledger.Role
}

// CreateUser provisions a login and inserts the profile row. If the profile
// insert fails, the login is deleted before the error is returned, so a
// half-created user is never left behind.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*ledger.User, error) {
	if len(in.Password) < MinPasswordLen {
		return nil, ErrPasswordTooShort
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	identityID, err := s.ids.CreateIdentity(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	user := &ledger.User{
		ID:        identityID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Role:      in.Role,
		CreatedAt: s.now().UTC(),
	}

	err = ledger.Compensate(ctx, s.log, "create user",
		func(ctx context.Context) error { return s.store.InsertUser(ctx, user) },
		func(ctx context.Context) error { return s.ids.DeleteIdentity(ctx, identityID) },
	)
	if err != nil {
		return nil, err
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)),
	)
	return user, nil
}

// UserUpdate carries optional profile changes; empty fields are kept.
type UserUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Role      ledger.Role
}

// UpdateUser applies non-empty fields to the profile and, when the email
// changed, pushes it to the identity provider. The identity email update is
// best-effort: the profile row is authoritative for everything this app
// reads, and a failed push only affects the next login.
func (s *Service) UpdateUser(ctx context.Context, id string, upd UserUpdate) error {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return err
	}

	emailChanged := upd.Email != "" && upd.Email != user.Email
	if upd.FirstName != "" {
		user.FirstName = upd.FirstName
	}
	if upd.LastName != "" {
		user.LastName = upd.LastName
	}
	if upd.Email != "" {
		user.Email = upd.Email
	}
	if upd.Role != "" {
		if !upd.Role.Valid() {
			return ErrInvalidRole
		}
		user.Role = upd.Role
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		return err
	}
	if emailChanged {
		if err := s.ids.UpdateIdentityEmail(ctx, id, user.Email); err != nil {
			s.log.Warn("failed to update identity email",
				zap.String("user_id", id),
				zap.Error(err),
			)
		}
	}
	return nil
}

// DeleteUser removes the login first, then the profile row, mirroring the
// provider-side cascade of the hosted backends.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	if err := s.ids.DeleteIdentity(ctx, id); err != nil && !errors.Is(err, ErrIdentityNotFound) {
		return err
	}
	return s.store.DeleteUser(ctx, id)
}

// ListUsers returns all users, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]*ledger.User, error) {
	return s.store.ListUsers(ctx)
}

// =============================================================================
// ADMIN ROLE
// =============================================================================

// SetAdminRole grants admin to the user with the given email.
func (s *Service) SetAdminRole(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	user.Role = ledger.RoleAdmin
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return err
	}
	s.log.Info("admin role granted", zap.String("user_id", user.ID), zap.String("email", email))
	return nil
}

// HasAdmin reports whether any admin account exists.
func (s *Service) HasAdmin(ctx context.Context) (bool, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.Role == ledger.RoleAdmin {
			return true, nil
		}
	}
	return false, nil
}

// Setup creates the first admin account. It refuses to run once an admin
// exists, so the unauthenticated setup endpoint cannot be replayed.
func (s *Service) Setup(ctx context.Context, in NewUser) (*ledger.User, error) {
	exists, err := s.HasAdmin(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrAdminExists
	}
	in.Role = ledger.RoleAdmin
	return s.CreateUser(ctx, in)
}
