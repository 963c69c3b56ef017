// Package session keeps track of who is signed in on the client.
package session

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/credhex/internal/common"
)

// User is the signed-in identity. Email is for display only.
type User struct {
	ID    string
	Email string
}

// IdentityProvider answers who the current user is. CurrentUser returns a
// nil user without error when nobody is signed in.
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*User, error)
	SignOut(ctx context.Context) error
}

// Binding caches the user resolved from an IdentityProvider.
type Binding struct {
	provider IdentityProvider

	mu   sync.RWMutex
	user *User
}

func NewBinding(p IdentityProvider) *Binding {
	return &Binding{provider: p}
}

// Resolve asks the provider for the current user and caches it. When the
// provider reports nobody, the cache is cleared and
// common.ErrNotAuthenticated is returned.
func (b *Binding) Resolve(ctx context.Context) (*User, error) {
	u, err := b.provider.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if u == nil || u.ID == "" {
		b.user = nil
		return nil, common.ErrNotAuthenticated
	}
	b.user = &User{ID: u.ID, Email: u.Email}
	return &User{ID: u.ID, Email: u.Email}, nil
}

// SignOut signs out at the provider and drops the cached user even if the
// provider call fails.
func (b *Binding) SignOut(ctx context.Context) error {
	err := b.provider.SignOut(ctx)

	b.mu.Lock()
	b.user = nil
	b.mu.Unlock()

	return err
}

// Current returns a copy of the cached user, or nil.
func (b *Binding) Current() *User {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.user == nil {
		return nil
	}
	u := *b.user
	return &u
}
