package gorm_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	gormdb "gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/campusvendor/authkit"
	gormstore "github.com/campusvendor/authkit/stores/gorm"
)

func newTestStore(t *testing.T) *gormstore.AccountStore {
	t.Helper()

	// A named in-memory database keeps the schema alive across pooled
	// connections without sharing state between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gormdb.Open(sqlite.Open(dsn), &gormdb.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return gormstore.NewAccountStore(db)
}

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
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, testAccount(authkit.KindVendor, "a@b.com"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	found, err := store.FindByEmail(ctx, authkit.KindVendor, "a@b.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found.ID != created.ID || found.Kind != authkit.KindVendor || !found.Verified {
		t.Errorf("found %+v", found)
	}

	if _, err := store.FindByEmail(ctx, authkit.KindStudent, "a@b.com"); !errors.Is(err, authkit.ErrAccountNotFound) {
		t.Errorf("student lookup should miss, got %v", err)
	}
	if _, err := store.FindByEmail(ctx, authkit.KindVendor, "other@b.com"); !errors.Is(err, authkit.ErrAccountNotFound) {
		t.Errorf("unknown email should miss, got %v", err)
	}
}

func TestCreateDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Create(ctx, testAccount(authkit.KindStudent, "a@b.com")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	dup := testAccount(authkit.KindStudent, "a@b.com")
	dup.ID = "another-id"
	if _, err := store.Create(ctx, dup); !errors.Is(err, authkit.ErrDuplicateAccount) {
		t.Fatalf("expected ErrDuplicateAccount, got %v", err)
	}

	// The unique index is on (kind, email), so the other kind is free.
	other := testAccount(authkit.KindVendor, "a@b.com")
	if _, err := store.Create(ctx, other); err != nil {
		t.Errorf("vendor create with same email: %v", err)
	}
}

func TestUpdate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, testAccount(authkit.KindStudent, "a@b.com"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	hash := "$2a$10$newhash"
	enabled := true
	updated, err := store.Update(ctx, authkit.KindStudent, created.ID, authkit.AccountUpdates{
		PasswordHash: &hash,
		TwoFAEnabled: &enabled,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.PasswordHash != hash || !updated.TwoFAEnabled {
		t.Errorf("updates not applied: %+v", updated)
	}
	if updated.Email != "a@b.com" || !updated.Verified {
		t.Errorf("untouched fields changed: %+v", updated)
	}

	// Zero values must persist when the pointer is set.
	code := ""
	disabled := false
	updated, err = store.Update(ctx, authkit.KindStudent, created.ID, authkit.AccountUpdates{
		OTPCode:      &code,
		TwoFAEnabled: &disabled,
	})
	if err != nil {
		t.Fatalf("Update with zero values: %v", err)
	}
	if updated.OTPCode != "" || updated.TwoFAEnabled {
		t.Errorf("zero-value updates not applied: %+v", updated)
	}

	if _, err := store.Update(ctx, authkit.KindStudent, "missing", authkit.AccountUpdates{}); !errors.Is(err, authkit.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound, got %v", err)
	}
	if _, err := store.Update(ctx, authkit.KindVendor, created.ID, authkit.AccountUpdates{}); !errors.Is(err, authkit.ErrAccountNotFound) {
		t.Errorf("expected ErrAccountNotFound for kind mismatch, got %v", err)
	}
}

func TestVendorProfilePersistence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	acct := testAccount(authkit.KindVendor, "v@b.com")
	acct.EnterpriseName = "Compiler Cafe"
	acct.Phone = "+1-555-0100"
	acct.Location = "Building 7"
	acct.Description = "Coffee and snacks"

	if _, err := store.Create(ctx, acct); err != nil {
		t.Fatalf("Create: %v", err)
	}
	found, err := store.FindByEmail(ctx, authkit.KindVendor, "v@b.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if found.EnterpriseName != "Compiler Cafe" || found.Phone != "+1-555-0100" ||
		found.Location != "Building 7" || found.Description != "Coffee and snacks" {
		t.Errorf("vendor profile lost: %+v", found)
	}
}
