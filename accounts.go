package authkit

import (
	"context"
	"errors"
	"time"
)

// Kind distinguishes the two account variants sharing the marketplace.
type Kind string

const (
	KindStudent Kind = "student"
	KindVendor  Kind = "vendor"
)

// Kinds lists all account kinds in the order kind-agnostic lookups search them.
func Kinds() []Kind {
	return []Kind{KindStudent, KindVendor}
}

// Valid reports whether k names a known account kind.
func (k Kind) Valid() bool {
	return k == KindStudent || k == KindVendor
}

// Account is an identity record. It exists only after the signup OTP was
// verified, so Verified is true for every stored account. OTPCode holds the
// current login second-factor code and is empty whenever no challenge is
// outstanding.
type Account struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Verified     bool      `json:"verified"`
	TwoFAEnabled bool      `json:"two_fa_enabled"`
	OTPCode      string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Vendor profile. Empty for students.
	EnterpriseName string `json:"enterprise_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Location       string `json:"location,omitempty"`
	Description    string `json:"description,omitempty"`
}

// PublicAccount is the caller-facing projection of an Account. It never
// carries the password hash or the current OTP.
type PublicAccount struct {
	ID           string `json:"id"`
	Kind         Kind   `json:"kind"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	TwoFAEnabled bool   `json:"two_fa_enabled"`

	EnterpriseName string `json:"enterprise_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Location       string `json:"location,omitempty"`
	Description    string `json:"description,omitempty"`
}

// Public returns the projection of the account safe to hand to callers.
func (a *Account) Public() *PublicAccount {
	return &PublicAccount{
		ID:             a.ID,
		Kind:           a.Kind,
		Name:           a.Name,
		Email:          a.Email,
		TwoFAEnabled:   a.TwoFAEnabled,
		EnterpriseName: a.EnterpriseName,
		Phone:          a.Phone,
		Location:       a.Location,
		Description:    a.Description,
	}
}

// AccountUpdates is a partial update for Update. Nil fields are left untouched.
type AccountUpdates struct {
	PasswordHash *string
	Verified     *bool
	TwoFAEnabled *bool
	OTPCode      *string
}

// Sentinel errors returned by AccountStore implementations. The Authority
// maps them onto the AuthError taxonomy; anything else a store returns is
// treated as an internal fault.
var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrDuplicateAccount = errors.New("account already exists")
)

// AccountStore is the persistence contract the Authority depends on.
// Implementations must enforce email uniqueness per kind at write time:
// Create for an existing (kind, email) pair must fail with
// ErrDuplicateAccount even when two creates race.
type AccountStore interface {
	// FindByEmail returns the account of the given kind with that email, or
	// ErrAccountNotFound.
	FindByEmail(ctx context.Context, kind Kind, email string) (*Account, error)

	// Create persists a new account and returns the stored record. Fails
	// with ErrDuplicateAccount when (kind, email) is taken.
	Create(ctx context.Context, account *Account) (*Account, error)

	// Update applies the set fields of updates to the account identified by
	// kind and id, returning the updated record or ErrAccountNotFound.
	Update(ctx context.Context, kind Kind, id string, updates AccountUpdates) (*Account, error)
}
