package authkit

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose tags what a signed token may be exchanged for. Every Verify
// call names the purpose it expects, so a token minted for one step of the
// flow can never be replayed into another.
type TokenPurpose string

const (
	PurposePendingRegistration TokenPurpose = "pending_registration"
	PurposeLoginChallenge      TokenPurpose = "login_challenge"
	PurposeSession             TokenPurpose = "session"
)

// Default token lifetimes.
const (
	TokenExpiryPendingRegistration = 5 * time.Minute
	TokenExpiryLoginChallenge      = 5 * time.Minute
	TokenExpirySession             = 7 * 24 * time.Hour
)

// TokenCodec signs and verifies the stateless tokens the Authority issues.
type TokenCodec interface {
	// Sign mints a token carrying the given claims plus purpose, issued-at
	// and expiry.
	Sign(claims map[string]any, purpose TokenPurpose, ttl time.Duration) (string, error)

	// Verify checks signature, expiry and purpose, returning the embedded
	// claims. Expiry is reported distinctly (ErrCodeTokenExpired) from any
	// other defect (ErrCodeTokenInvalid) so callers know whether to restart
	// the flow or reject the token outright.
	Verify(tokenString string, purpose TokenPurpose) (map[string]any, error)
}

// JWTCodec implements TokenCodec with HS256-signed JWTs.
type JWTCodec struct {
	// SecretKey is the HMAC key used for signing and verification.
	SecretKey string

	// Issuer is embedded as the iss claim and checked on Verify when set.
	Issuer string

	// Now overrides the clock, for tests. Defaults to time.Now.
	Now func() time.Time
}

func (c *JWTCodec) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Sign mints an HS256 token with the purpose, iat and exp claims set.
func (c *JWTCodec) Sign(claims map[string]any, purpose TokenPurpose, ttl time.Duration) (string, error) {
	now := c.now()

	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	mc["purpose"] = string(purpose)
	mc["iat"] = now.Unix()
	mc["exp"] = now.Add(ttl).Unix()
	if c.Issuer != "" {
		mc["iss"] = c.Issuer
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, mc)
	signed, err := token.SignedString([]byte(c.SecretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims. The returned
// error is always an *AuthError with code token_expired or token_invalid.
func (c *JWTCodec) Verify(tokenString string, purpose TokenPurpose) (map[string]any, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(c.SecretKey), nil
	}, jwt.WithTimeFunc(c.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, NewAuthError(ErrCodeTokenExpired, "token has expired", "")
		}
		return nil, NewAuthError(ErrCodeTokenInvalid, "invalid token", "")
	}
	if !token.Valid {
		return nil, NewAuthError(ErrCodeTokenInvalid, "invalid token", "")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, NewAuthError(ErrCodeTokenInvalid, "invalid token claims", "")
	}

	if got, _ := claims["purpose"].(string); got != string(purpose) {
		return nil, NewAuthError(ErrCodeTokenInvalid, "token purpose mismatch", "")
	}

	if c.Issuer != "" {
		if iss, _ := claims["iss"].(string); iss != c.Issuer {
			return nil, NewAuthError(ErrCodeTokenInvalid, "invalid token issuer", "")
		}
	}

	return claims, nil
}

// stringClaim reads a string-valued claim, returning "" when absent or of
// another type.
func stringClaim(claims map[string]any, key string) string {
	v, _ := claims[key].(string)
	return v
}
