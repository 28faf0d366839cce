package authkit

import (
	"context"
	"errors"
	"log/slog"
)

// Authority is the verification and session state machine. It owns no state
// of its own: accounts live in the injected store, and every token it issues
// is self-contained.
type Authority struct {
	Store    AccountStore
	Notifier Notifier
	Codec    TokenCodec
	Logger   *slog.Logger
}

// NewAuthority wires an Authority from its collaborators. A nil logger falls
// back to slog.Default().
func NewAuthority(store AccountStore, notifier Notifier, codec TokenCodec, logger *slog.Logger) *Authority {
	if logger == nil {
		logger = slog.Default()
	}
	return &Authority{
		Store:    store,
		Notifier: notifier,
		Codec:    codec,
		Logger:   logger,
	}
}

// SessionClaims is the identity carried by a validated session token.
type SessionClaims struct {
	AccountID string
	Email     string
	Kind      Kind
}

// Authenticate validates a session token and returns the identity it names.
// Fails with token_invalid or token_expired.
func (a *Authority) Authenticate(ctx context.Context, sessionToken string) (*SessionClaims, error) {
	claims, err := a.Codec.Verify(sessionToken, PurposeSession)
	if err != nil {
		return nil, err
	}

	sc := &SessionClaims{
		AccountID: stringClaim(claims, "sub"),
		Email:     stringClaim(claims, "email"),
		Kind:      Kind(stringClaim(claims, "kind")),
	}
	if sc.AccountID == "" || sc.Email == "" || !sc.Kind.Valid() {
		return nil, NewAuthError(ErrCodeTokenInvalid, "malformed session token", "")
	}
	return sc, nil
}

// issueSession signs a session token for an account.
func (a *Authority) issueSession(acct *Account) (string, int64, error) {
	token, err := a.Codec.Sign(map[string]any{
		"sub":   acct.ID,
		"email": acct.Email,
		"kind":  string(acct.Kind),
	}, PurposeSession, TokenExpirySession)
	if err != nil {
		return "", 0, err
	}
	return token, int64(TokenExpirySession.Seconds()), nil
}

// findByEmailAnyKind looks an email up across both kinds in search order,
// returning ErrAccountNotFound when neither store row matches.
func (a *Authority) findByEmailAnyKind(ctx context.Context, email string) (*Account, error) {
	for _, kind := range Kinds() {
		acct, err := a.Store.FindByEmail(ctx, kind, email)
		if err == nil {
			return acct, nil
		}
		if !errors.Is(err, ErrAccountNotFound) {
			return nil, err
		}
	}
	return nil, ErrAccountNotFound
}

// serverError logs an unexpected fault and returns the generic server error,
// never leaking internals to the caller.
func (a *Authority) serverError(ctx context.Context, op string, err error) *AuthError {
	a.Logger.ErrorContext(ctx, "internal fault", "op", op, "error", err)
	return NewAuthError(ErrCodeServer, "something went wrong, please try again", "")
}
