package mem_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/campusvendor/authkit"
	"github.com/campusvendor/authkit/stores/mem"
)

func testAccount(kind authkit.Kind, email string) *authkit.Account {
	return &authkit.Account{
		ID:           "id-" + string(kind) + "-" + email,
		Kind:         kind,
		Name:         "Test Account",
		Email:        email,
		PasswordHash: "$2a$10$fakehash",
		Verified:     true,
	}
}

func TestCreateAndFind(t *testing.T) {
	store := mem.NewAccountStore()
	ctx := context.Background()

	created, err := store.Create(ctx, testAccount(authkit.KindStudent, "a@b.com"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("timestamps not stamped on create")
	}

	found, err := store.FindByEmail(ctx, authkit.KindStudent, "a@b.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found.ID != created.ID || found.Email != "a@b.com" {
		t.Errorf("found %+v", found)
	}

	// Kind partitions the namespace.
	if _, err := store.FindByEmail(ctx, authkit.KindVendor, "a@b.com"); !errors.Is(err, authkit.ErrAccountNotFound) {
		t.Errorf("vendor lookup should miss, got %v", err)
	}
	if _, err := store.Create(ctx, testAccount(authkit.KindVendor, "a@b.com")); err != nil {
		t.Errorf("vendor create with same email: %v", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	store := mem.NewAccountStore()
	ctx := context.Background()

	if _, err := store.Create(ctx, testAccount(authkit.KindStudent, "a@b.com")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := store.Create(ctx, testAccount(authkit.KindStudent, "a@b.com"))
	if !errors.Is(err, authkit.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}
}

func TestConcurrentCreateOneWinner(t *testing.T) {
	store := mem.NewAccountStore()
	ctx := context.Background()

	const racers = 16
	var wg sync.WaitGroup
	errs := make([]error, racers)
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			acct := testAccount(authkit.KindStudent, "a@b.com")
			acct.ID = acct.ID + string(rune('a'+i))
			_, errs[i] = store.Create(ctx, acct)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
		} else if !errors.Is(err, authkit.ErrDuplicateAccount) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("winners = %d, want exactly 1", wins)
	}
}

func TestUpdate(t *testing.T) {
	store := mem.NewAccountStore()
	ctx := context.Background()

	created, err := store.Create(ctx, testAccount(authkit.KindStudent, "a@b.com"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	enabled := true
	code := "123456"
	updated, err := store.Update(ctx, authkit.KindStudent, created.ID, authkit.AccountUpdates{
		TwoFAEnabled: &enabled,
		OTPCode:      &code,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.TwoFAEnabled || updated.OTPCode != "123456" {
		t.Errorf("updates not applied: %+v", updated)
	}
	if updated.PasswordHash != created.PasswordHash {
		t.Error("untouched field changed")
	}

	// Clearing the code with an empty value is a real update, not a no-op.
	empty := ""
	updated, err = store.Update(ctx, authkit.KindStudent, created.ID, authkit.AccountUpdates{OTPCode: &empty})
	if err != nil {
		t.Fatalf("Update clear: %v", err)
	}
	if updated.OTPCode != "" {
		t.Errorf("code not cleared: %q", updated.OTPCode)
	}

	if _, err := store.Update(ctx, authkit.KindStudent, "missing", authkit.AccountUpdates{}); !errors.Is(err, authkit.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	// Wrong kind for a real id is also a miss.
	if _, err := store.Update(ctx, authkit.KindVendor, created.ID, authkit.AccountUpdates{}); !errors.Is(err, authkit.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound for kind mismatch, got %v", err)
	}
}

func TestCopyOnReturn(t *testing.T) {
	store := mem.NewAccountStore()
	ctx := context.Background()

	created, err := store.Create(ctx, testAccount(authkit.KindStudent, "a@b.com"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Name = "Mutated"
	found, err := store.FindByEmail(ctx, authkit.KindStudent, "a@b.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found.Name != "Test Account" {
		t.Errorf("store record was mutated through a returned copy: %q", found.Name)
	}
}
