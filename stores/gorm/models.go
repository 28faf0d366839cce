package gorm

import (
	"time"

	"github.com/campusvendor/authkit"
)

// AccountModel is the GORM model for accounts. Students and vendors share a
// table; the composite unique index on (kind, email) is the database-level
// safety net against two registration completions racing for the same email.
type AccountModel struct {
	ID           string    `gorm:"primaryKey;size:64"`
	Kind         string    `gorm:"size:16;uniqueIndex:idx_accounts_kind_email"`
	Email        string    `gorm:"size:255;uniqueIndex:idx_accounts_kind_email"`
	Name         string    `gorm:"size:255"`
	PasswordHash string    `gorm:"size:255"`
	Verified     bool      `gorm:"default:false"`
	TwoFAEnabled bool      `gorm:"column:two_fa_enabled;default:false"`
	OTPCode      string    `gorm:"column:otp_code;size:16"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`

	EnterpriseName string `gorm:"size:255"`
	Phone          string `gorm:"size:64"`
	Location       string `gorm:"size:255"`
	Description    string
}

func (AccountModel) TableName() string {
	return "accounts"
}

// ToAccount converts the model to the domain type.
func (m *AccountModel) ToAccount() *authkit.Account {
	return &authkit.Account{
		ID:             m.ID,
		Kind:           authkit.Kind(m.Kind),
		Name:           m.Name,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		Verified:       m.Verified,
		TwoFAEnabled:   m.TwoFAEnabled,
		OTPCode:        m.OTPCode,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
		EnterpriseName: m.EnterpriseName,
		Phone:          m.Phone,
		Location:       m.Location,
		Description:    m.Description,
	}
}

// AccountToModel converts the domain type to the model.
func AccountToModel(a *authkit.Account) *AccountModel {
	return &AccountModel{
		ID:             a.ID,
		Kind:           string(a.Kind),
		Email:          a.Email,
		Name:           a.Name,
		PasswordHash:   a.PasswordHash,
		Verified:       a.Verified,
		TwoFAEnabled:   a.TwoFAEnabled,
		OTPCode:        a.OTPCode,
		EnterpriseName: a.EnterpriseName,
		Phone:          a.Phone,
		Location:       a.Location,
		Description:    a.Description,
	}
}
