/*
identity.go - Port to the external identity provider

PURPOSE:
  Authentication lives in a hosted identity service; this repo only needs
  three capabilities from it: create a login, change its email, delete it.
  MemoryIdentity is the in-tree fake used for development and tests.
*/
package roster

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrEmailTaken is returned when an identity already exists for the email.
var ErrEmailTaken = errors.New("an identity already exists for this email")

// ErrIdentityNotFound is returned when no identity matches the given id.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityProvider is the capability set consumed from the external
// authentication service.
type IdentityProvider interface {
	// CreateIdentity provisions a login and returns its identity id.
	CreateIdentity(ctx context.Context, email, password string) (string, error)

	// UpdateIdentityEmail changes the login email for an identity.
	UpdateIdentityEmail(ctx context.Context, id, email string) error

	// DeleteIdentity removes a login. Used directly and as the
	// compensating write when profile creation fails.
	DeleteIdentity(ctx context.Context, id string) error
}

// =============================================================================
// MEMORY IDENTITY - In-tree fake (dev/tests)
// =============================================================================

type MemoryIdentity struct {
	mu     sync.Mutex
	emails map[string]string // identity id -> email
}

func NewMemoryIdentity() *MemoryIdentity {
	return &MemoryIdentity{emails: make(map[string]string)}
}

func (m *MemoryIdentity) CreateIdentity(_ context.Context, email, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.emails {
		if existing == email {
			return "", ErrEmailTaken
		}
	}
	id := uuid.NewString()
	m.emails[id] = email
	return id, nil
}

func (m *MemoryIdentity) UpdateIdentityEmail(_ context.Context, id, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.emails[id]; !ok {
		return ErrIdentityNotFound
	}
	m.emails[id] = email
	return nil
}

func (m *MemoryIdentity) DeleteIdentity(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.emails[id]; !ok {
		return ErrIdentityNotFound
	}
	delete(m.emails, id)
	return nil
}
