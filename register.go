package authkit

import (
	"context"
	"crypto/subtle"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// RegistrationInput carries the profile fields of a signup request. The
// vendor-only fields are ignored for students.
type RegistrationInput struct {
	Kind     Kind   `json:"kind"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`

	EnterpriseName string `json:"enterprise_name,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Location       string `json:"location,omitempty"`
	Description    string `json:"description,omitempty"`
}

func (in *RegistrationInput) validate() *AuthError {
	if !in.Kind.Valid() {
		return NewAuthError(ErrCodeInvalidRequest, "kind must be student or vendor", "kind")
	}
	if in.Name == "" {
		return NewAuthError(ErrCodeInvalidRequest, "name is required", "name")
	}
	if !emailRegex.MatchString(in.Email) {
		return NewAuthError(ErrCodeInvalidRequest, "invalid email format", "email")
	}
	if len(in.Password) < 8 {
		return NewAuthError(ErrCodeInvalidRequest, "password must be at least 8 characters", "password")
	}
	if in.Kind == KindVendor && in.EnterpriseName == "" {
		return NewAuthError(ErrCodeInvalidRequest, "enterprise name is required for vendors", "enterprise_name")
	}
	return nil
}

// PendingRegistration is the result of BeginRegistration: a signed token
// encoding the unconfirmed signup, to be presented back with the OTP. It is
// not stored server-side.
type PendingRegistration struct {
	Token     string    `json:"registration_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// BeginRegistration starts a signup. It verifies the email is free for the
// kind, hashes the password, emails a one-time code, and returns a
// pending-registration token embedding the full future account. Nothing is
// written to the account store; a delivery failure aborts with
// notification_failed and leaves no trace.
func (a *Authority) BeginRegistration(ctx context.Context, in RegistrationInput) (*PendingRegistration, error) {
	if verr := in.validate(); verr != nil {
		return nil, verr
	}

	_, err := a.Store.FindByEmail(ctx, in.Kind, in.Email)
	if err == nil {
		return nil, NewAuthError(ErrCodeConflict, "this email is already registered", "email")
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return nil, a.serverError(ctx, "begin_registration", err)
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, a.serverError(ctx, "begin_registration", err)
	}

	code, err := GenerateOTP()
	if err != nil {
		return nil, a.serverError(ctx, "begin_registration", err)
	}

	if err := a.Notifier.SendCode(ctx, in.Name, in.Email, code); err != nil {
		a.Logger.WarnContext(ctx, "code delivery failed", "email", in.Email, "error", err)
		return nil, NewAuthError(ErrCodeNotification, "could not send the verification code", "email")
	}

	claims := map[string]any{
		"kind":          string(in.Kind),
		"name":          in.Name,
		"email":         in.Email,
		"password_hash": hash,
		"otp":           code,
	}
	if in.Kind == KindVendor {
		claims["enterprise_name"] = in.EnterpriseName
		claims["phone"] = in.Phone
		claims["location"] = in.Location
		claims["description"] = in.Description
	}

	token, err := a.Codec.Sign(claims, PurposePendingRegistration, TokenExpiryPendingRegistration)
	if err != nil {
		return nil, a.serverError(ctx, "begin_registration", err)
	}

	a.Logger.InfoContext(ctx, "registration started", "kind", in.Kind, "email", in.Email)
	return &PendingRegistration{
		Token:     token,
		ExpiresAt: time.Now().Add(TokenExpiryPendingRegistration),
	}, nil
}

// CompleteRegistration verifies the submitted code against a
// pending-registration token and materializes the account, marked verified.
// An expired token fails token_expired (restart signup); a wrong code fails
// otp_mismatch and creates nothing. When two completions race for the same
// email the store's uniqueness constraint lets the first writer win and the
// second fails with conflict.
func (a *Authority) CompleteRegistration(ctx context.Context, code, registrationToken string) (*PublicAccount, error) {
	claims, err := a.Codec.Verify(registrationToken, PurposePendingRegistration)
	if err != nil {
		return nil, err
	}

	expected := stringClaim(claims, "otp")
	if expected == "" {
		return nil, NewAuthError(ErrCodeTokenInvalid, "malformed registration token", "")
	}
	if !codesEqual(code, expected) {
		return nil, NewAuthError(ErrCodeOTPMismatch, "invalid verification code", "code")
	}

	kind := Kind(stringClaim(claims, "kind"))
	if !kind.Valid() {
		return nil, NewAuthError(ErrCodeTokenInvalid, "malformed registration token", "")
	}

	acct := &Account{
		ID:             uuid.NewString(),
		Kind:           kind,
		Name:           stringClaim(claims, "name"),
		Email:          stringClaim(claims, "email"),
		PasswordHash:   stringClaim(claims, "password_hash"),
		Verified:       true,
		EnterpriseName: stringClaim(claims, "enterprise_name"),
		Phone:          stringClaim(claims, "phone"),
		Location:       stringClaim(claims, "location"),
		Description:    stringClaim(claims, "description"),
	}

	created, err := a.Store.Create(ctx, acct)
	if err != nil {
		if errors.Is(err, ErrDuplicateAccount) {
			return nil, NewAuthError(ErrCodeConflict, "this email is already registered", "email")
		}
		return nil, a.serverError(ctx, "complete_registration", err)
	}

	a.Logger.InfoContext(ctx, "account created", "kind", created.Kind, "id", created.ID)
	return created.Public(), nil
}

// codesEqual compares two one-time codes in constant time. Exact string
// equality, no normalization.
func codesEqual(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// hashPassword runs the deliberately slow one-way hash used for every stored
// password.
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
