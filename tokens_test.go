package authkit_test

import (
	"strings"
	"testing"
	"time"

	"github.com/campusvendor/authkit"
)

func TestJWTCodecRoundTrip(t *testing.T) {
	codec := &authkit.JWTCodec{SecretKey: "s3cret", Issuer: "authkit-test"}

	token, err := codec.Sign(map[string]any{"sub": "abc", "email": "a@b.com"}, authkit.PurposeSession, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := codec.Verify(token, authkit.PurposeSession)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims["sub"] != "abc" || claims["email"] != "a@b.com" {
		t.Errorf("claims lost in transit: %v", claims)
	}
}

func TestJWTCodecPurpose(t *testing.T) {
	codec := &authkit.JWTCodec{SecretKey: "s3cret"}

	purposes := []authkit.TokenPurpose{
		authkit.PurposePendingRegistration,
		authkit.PurposeLoginChallenge,
		authkit.PurposeSession,
	}

	for _, signed := range purposes {
		token, err := codec.Sign(map[string]any{"sub": "abc"}, signed, time.Hour)
		if err != nil {
			t.Fatalf("Sign(%s): %v", signed, err)
		}
		for _, wanted := range purposes {
			_, err := codec.Verify(token, wanted)
			if signed == wanted {
				if err != nil {
					t.Errorf("Verify(%s as %s): %v", signed, wanted, err)
				}
				continue
			}
			if !authkit.IsCode(err, authkit.ErrCodeTokenInvalid) {
				t.Errorf("Verify(%s as %s) should be token_invalid, got %v", signed, wanted, err)
			}
		}
	}
}

func TestJWTCodecTamper(t *testing.T) {
	codec := &authkit.JWTCodec{SecretKey: "s3cret"}

	token, err := codec.Sign(map[string]any{"sub": "abc"}, authkit.PurposeSession, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not.a.token"},
		{"empty", ""},
		{"flipped payload", tamper(token)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.Verify(tt.token, authkit.PurposeSession); !authkit.IsCode(err, authkit.ErrCodeTokenInvalid) {
				t.Errorf("expected token_invalid, got %v", err)
			}
		})
	}

	// A token from a codec with a different key is foreign.
	other := &authkit.JWTCodec{SecretKey: "different"}
	foreign, _ := other.Sign(map[string]any{"sub": "abc"}, authkit.PurposeSession, time.Hour)
	if _, err := codec.Verify(foreign, authkit.PurposeSession); !authkit.IsCode(err, authkit.ErrCodeTokenInvalid) {
		t.Errorf("foreign token should be token_invalid, got %v", err)
	}
}

func TestJWTCodecExpiry(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	signer := &authkit.JWTCodec{
		SecretKey: "s3cret",
		Now:       func() time.Time { return past },
	}
	verifier := &authkit.JWTCodec{SecretKey: "s3cret"}

	token, err := signer.Sign(map[string]any{"sub": "abc"}, authkit.PurposeSession, 5*time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	_, err = verifier.Verify(token, authkit.PurposeSession)
	if !authkit.IsCode(err, authkit.ErrCodeTokenExpired) {
		t.Fatalf("expected token_expired, got %v", err)
	}
	if authkit.IsCode(err, authkit.ErrCodeTokenInvalid) {
		t.Error("expiry must not be reported as token_invalid")
	}
}

func TestJWTCodecIssuer(t *testing.T) {
	signer := &authkit.JWTCodec{SecretKey: "s3cret", Issuer: "service-a"}
	verifier := &authkit.JWTCodec{SecretKey: "s3cret", Issuer: "service-b"}

	token, err := signer.Sign(map[string]any{"sub": "abc"}, authkit.PurposeSession, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	if _, err := verifier.Verify(token, authkit.PurposeSession); !authkit.IsCode(err, authkit.ErrCodeTokenInvalid) {
		t.Errorf("issuer mismatch should be token_invalid, got %v", err)
	}
}

// tamper flips payload bytes while keeping the signature intact.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return token + "x"
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	return parts[0] + "." + string(payload) + "." + parts[2]
}
