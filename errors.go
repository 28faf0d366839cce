package authkit

import "errors"

// Error codes returned by Authority operations. Codes are stable; messages
// are advisory and may change.
const (
	ErrCodeInvalidRequest     = "invalid_request"     // malformed or incomplete input
	ErrCodeConflict           = "conflict"            // an account with that email already exists for the kind
	ErrCodeNotFound           = "not_found"           // no matching account
	ErrCodeInvalidCredentials = "invalid_credentials" // password comparison failed
	ErrCodeOTPMismatch        = "otp_mismatch"        // submitted code does not match the expected one
	ErrCodeTokenInvalid       = "token_invalid"       // bad signature, malformed, or wrong purpose
	ErrCodeTokenExpired       = "token_expired"       // valid signature, past its TTL
	ErrCodeNotification       = "notification_failed" // OTP delivery failed; the operation did not complete
	ErrCodeUnauthorized       = "unauthorized"        // missing or invalid session on a protected operation
	ErrCodeServer             = "server_error"        // unexpected store or notifier fault; details are logged, not returned
)

// AuthError is the failure type for every Authority operation. Code is one of
// the ErrCode* constants; Field names the offending input when known.
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func (e *AuthError) Error() string {
	return e.Message
}

// NewAuthError creates a new AuthError
func NewAuthError(code, message, field string) *AuthError {
	return &AuthError{Code: code, Message: message, Field: field}
}

// ErrorCode extracts the code from an AuthError, or ErrCodeServer for any
// other error. Nil returns "".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeServer
}

// IsCode reports whether err is an AuthError carrying the given code.
func IsCode(err error, code string) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Code == code
}
