// Package mem provides an in-memory AccountStore for tests and development.
package mem

import (
	"context"
	"sync"
	"time"

	"github.com/campusvendor/authkit"
)

// AccountStore keeps accounts in process memory, keyed by (kind, email).
// Safe for concurrent use; uniqueness is enforced under the store mutex, so
// racing creates for the same email resolve to exactly one winner.
type AccountStore struct {
	mu   sync.Mutex
	byID map[string]*authkit.Account
	keys map[string]string // kind:email -> id
}

func NewAccountStore() *AccountStore {
	return &AccountStore{
		byID: make(map[string]*authkit.Account),
		keys: make(map[string]string),
	}
}

func key(kind authkit.Kind, email string) string {
	return string(kind) + ":" + email
}

func (s *AccountStore) FindByEmail(ctx context.Context, kind authkit.Kind, email string) (*authkit.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.keys[key(kind, email)]
	if !ok {
		return nil, authkit.ErrAccountNotFound
	}
	return copyAccount(s.byID[id]), nil
}

func (s *AccountStore) Create(ctx context.Context, account *authkit.Account) (*authkit.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(account.Kind, account.Email)
	if _, taken := s.keys[k]; taken {
		return nil, authkit.ErrDuplicateAccount
	}

	stored := copyAccount(account)
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	s.byID[stored.ID] = stored
	s.keys[k] = stored.ID
	return copyAccount(stored), nil
}

func (s *AccountStore) Update(ctx context.Context, kind authkit.Kind, id string, updates authkit.AccountUpdates) (*authkit.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.byID[id]
	if !ok || stored.Kind != kind {
		return nil, authkit.ErrAccountNotFound
	}

	if updates.PasswordHash != nil {
		stored.PasswordHash = *updates.PasswordHash
	}
	if updates.Verified != nil {
		stored.Verified = *updates.Verified
	}
	if updates.TwoFAEnabled != nil {
		stored.TwoFAEnabled = *updates.TwoFAEnabled
	}
	if updates.OTPCode != nil {
		stored.OTPCode = *updates.OTPCode
	}
	stored.UpdatedAt = time.Now()

	return copyAccount(stored), nil
}

// copyAccount keeps callers from mutating store-owned records.
func copyAccount(a *authkit.Account) *authkit.Account {
	dup := *a
	return &dup
}
