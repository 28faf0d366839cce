package authkit

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// LoginResult is the outcome of a successful Login or CompleteLogin. When
// TwoFactorRequired is set only ChallengeToken is populated; otherwise
// SessionToken carries a usable session and Account the public profile.
type LoginResult struct {
	TwoFactorRequired bool           `json:"two_factor_required"`
	SessionToken      string         `json:"session_token,omitempty"`
	ChallengeToken    string         `json:"challenge_token,omitempty"`
	ExpiresIn         int64          `json:"expires_in"`
	Account           *PublicAccount `json:"account,omitempty"`
}

// Login checks an email/password pair. The lookup is kind-agnostic: students
// are searched first, then vendors. With the second factor disabled a session
// is issued immediately; with it enabled a fresh code is persisted onto the
// account (replacing any earlier one), emailed, and a login-challenge token
// is returned instead of a session.
func (a *Authority) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	acct, err := a.findByEmailAnyKind(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, NewAuthError(ErrCodeNotFound, "no account with this email", "email")
		}
		return nil, a.serverError(ctx, "login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, NewAuthError(ErrCodeInvalidCredentials, "invalid password", "password")
	}

	if !acct.TwoFAEnabled {
		token, expiresIn, err := a.issueSession(acct)
		if err != nil {
			return nil, a.serverError(ctx, "login", err)
		}
		a.Logger.InfoContext(ctx, "login", "kind", acct.Kind, "id", acct.ID)
		return &LoginResult{
			SessionToken: token,
			ExpiresIn:    expiresIn,
			Account:      acct.Public(),
		}, nil
	}

	// Second factor: park the code on the account and hand back a challenge.
	code, err := GenerateOTP()
	if err != nil {
		return nil, a.serverError(ctx, "login", err)
	}
	if _, err := a.Store.Update(ctx, acct.Kind, acct.ID, AccountUpdates{OTPCode: &code}); err != nil {
		return nil, a.serverError(ctx, "login", err)
	}
	if err := a.Notifier.SendCode(ctx, acct.Name, acct.Email, code); err != nil {
		a.Logger.WarnContext(ctx, "code delivery failed", "email", acct.Email, "error", err)
		return nil, NewAuthError(ErrCodeNotification, "could not send the verification code", "email")
	}

	challenge, err := a.Codec.Sign(map[string]any{
		"sub":   acct.ID,
		"email": acct.Email,
		"kind":  string(acct.Kind),
	}, PurposeLoginChallenge, TokenExpiryLoginChallenge)
	if err != nil {
		return nil, a.serverError(ctx, "login", err)
	}

	a.Logger.InfoContext(ctx, "login challenge issued", "kind", acct.Kind, "id", acct.ID)
	return &LoginResult{
		TwoFactorRequired: true,
		ChallengeToken:    challenge,
		ExpiresIn:         int64(TokenExpiryLoginChallenge.Seconds()),
	}, nil
}

// CompleteLogin finishes a second-factor login. The submitted code must
// exactly match the code stored on the account the challenge names; the
// stored code has no TTL of its own, only the challenge token expires. On
// success the code is cleared before the session is issued, so a consumed
// code can never validate twice.
func (a *Authority) CompleteLogin(ctx context.Context, code, challengeToken string) (*LoginResult, error) {
	claims, err := a.Codec.Verify(challengeToken, PurposeLoginChallenge)
	if err != nil {
		return nil, err
	}

	id := stringClaim(claims, "sub")
	email := stringClaim(claims, "email")
	kind := Kind(stringClaim(claims, "kind"))
	if id == "" || email == "" || !kind.Valid() {
		return nil, NewAuthError(ErrCodeTokenInvalid, "malformed challenge token", "")
	}

	acct, err := a.Store.FindByEmail(ctx, kind, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, NewAuthError(ErrCodeNotFound, "no account with this email", "email")
		}
		return nil, a.serverError(ctx, "complete_login", err)
	}
	if acct.ID != id {
		return nil, NewAuthError(ErrCodeTokenInvalid, "challenge does not match this account", "")
	}

	if acct.OTPCode == "" || !codesEqual(code, acct.OTPCode) {
		return nil, NewAuthError(ErrCodeOTPMismatch, "invalid verification code", "code")
	}

	empty := ""
	if _, err := a.Store.Update(ctx, acct.Kind, acct.ID, AccountUpdates{OTPCode: &empty}); err != nil {
		return nil, a.serverError(ctx, "complete_login", err)
	}

	token, expiresIn, err := a.issueSession(acct)
	if err != nil {
		return nil, a.serverError(ctx, "complete_login", err)
	}

	a.Logger.InfoContext(ctx, "login", "kind", acct.Kind, "id", acct.ID, "second_factor", true)
	return &LoginResult{
		SessionToken: token,
		ExpiresIn:    expiresIn,
		Account:      acct.Public(),
	}, nil
}
