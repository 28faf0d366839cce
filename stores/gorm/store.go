// Package gorm implements the authkit AccountStore on a GORM-managed
// database.
package gorm

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/campusvendor/authkit"
)

// AutoMigrate runs database migrations for all authkit tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&AccountModel{})
}

// AccountStore implements authkit.AccountStore using GORM.
type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

func (s *AccountStore) FindByEmail(ctx context.Context, kind authkit.Kind, email string) (*authkit.Account, error) {
	var model AccountModel
	err := s.db.WithContext(ctx).First(&model, "kind = ? AND email = ?", string(kind), email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authkit.ErrAccountNotFound
		}
		return nil, err
	}
	return model.ToAccount(), nil
}

func (s *AccountStore) Create(ctx context.Context, account *authkit.Account) (*authkit.Account, error) {
	model := AccountToModel(account)
	if err := s.db.WithContext(ctx).Create(model).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, authkit.ErrDuplicateAccount
		}
		return nil, err
	}
	return model.ToAccount(), nil
}

func (s *AccountStore) Update(ctx context.Context, kind authkit.Kind, id string, updates authkit.AccountUpdates) (*authkit.Account, error) {
	values := map[string]any{}
	if updates.PasswordHash != nil {
		values["password_hash"] = *updates.PasswordHash
	}
	if updates.Verified != nil {
		values["verified"] = *updates.Verified
	}
	if updates.TwoFAEnabled != nil {
		values["two_fa_enabled"] = *updates.TwoFAEnabled
	}
	if updates.OTPCode != nil {
		values["otp_code"] = *updates.OTPCode
	}

	db := s.db.WithContext(ctx)

	var model AccountModel
	if err := db.First(&model, "id = ? AND kind = ?", id, string(kind)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, authkit.ErrAccountNotFound
		}
		return nil, err
	}

	if len(values) > 0 {
		if err := db.Model(&model).Updates(values).Error; err != nil {
			return nil, err
		}
		if err := db.First(&model, "id = ?", id).Error; err != nil {
			return nil, err
		}
	}
	return model.ToAccount(), nil
}

// isDuplicateKey detects unique-constraint violations across dialects. GORM
// translates them for some drivers; the message check covers the rest
// (sqlite reports "UNIQUE constraint failed").
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "duplicate key")
}
