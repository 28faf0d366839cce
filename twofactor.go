package authkit

import (
	"context"
	"errors"
)

// TwoFactorResult reports the state of the second-factor flag after a toggle.
type TwoFactorResult struct {
	Enabled bool `json:"enabled"`
}

// SetTwoFactor enables or disables the email second factor for the identity
// a session token names. Requires a valid session (unauthorized otherwise).
// The update is unconditional and idempotent: setting an already-set state
// succeeds and reports the resulting state.
func (a *Authority) SetTwoFactor(ctx context.Context, sessionToken string, enabled bool) (*TwoFactorResult, error) {
	sc, err := a.Authenticate(ctx, sessionToken)
	if err != nil {
		return nil, NewAuthError(ErrCodeUnauthorized, "a valid session is required", "")
	}

	updated, err := a.Store.Update(ctx, sc.Kind, sc.AccountID, AccountUpdates{TwoFAEnabled: &enabled})
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			// Session outlived the account; treat as a stale credential.
			return nil, NewAuthError(ErrCodeUnauthorized, "a valid session is required", "")
		}
		return nil, a.serverError(ctx, "set_two_factor", err)
	}

	a.Logger.InfoContext(ctx, "two-factor toggled", "kind", updated.Kind, "id", updated.ID, "enabled", updated.TwoFAEnabled)
	return &TwoFactorResult{Enabled: updated.TwoFAEnabled}, nil
}

// ResendCode generates a fresh one-time code for the account with that email
// (searched across both kinds), persists it, and dispatches it. The previous
// code stops validating as soon as the new one is stored.
func (a *Authority) ResendCode(ctx context.Context, email string) error {
	acct, err := a.findByEmailAnyKind(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return NewAuthError(ErrCodeNotFound, "no account with this email", "email")
		}
		return a.serverError(ctx, "resend_code", err)
	}

	code, err := GenerateOTP()
	if err != nil {
		return a.serverError(ctx, "resend_code", err)
	}
	if _, err := a.Store.Update(ctx, acct.Kind, acct.ID, AccountUpdates{OTPCode: &code}); err != nil {
		return a.serverError(ctx, "resend_code", err)
	}
	if err := a.Notifier.SendCode(ctx, acct.Name, acct.Email, code); err != nil {
		a.Logger.WarnContext(ctx, "code delivery failed", "email", acct.Email, "error", err)
		return NewAuthError(ErrCodeNotification, "could not send the verification code", "email")
	}
	return nil
}

// ResetPassword overwrites the password of the account with that email. No
// current-password check and no OTP step.
func (a *Authority) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 8 {
		return NewAuthError(ErrCodeInvalidRequest, "password must be at least 8 characters", "new_password")
	}

	acct, err := a.findByEmailAnyKind(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return NewAuthError(ErrCodeNotFound, "no account with this email", "email")
		}
		return a.serverError(ctx, "reset_password", err)
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return a.serverError(ctx, "reset_password", err)
	}
	if _, err := a.Store.Update(ctx, acct.Kind, acct.ID, AccountUpdates{PasswordHash: &hash}); err != nil {
		return a.serverError(ctx, "reset_password", err)
	}

	a.Logger.InfoContext(ctx, "password reset", "kind", acct.Kind, "id", acct.ID)
	return nil
}
