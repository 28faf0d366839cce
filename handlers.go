package authkit

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/gorilla/mux"
)

// Handlers exposes each Authority operation as a JSON endpoint. Mount the
// result of Router under the auth prefix of your application:
//
//	h := &authkit.Handlers{Authority: auth, Session: sessionManager}
//	app.PathPrefix("/auth").Handler(http.StripPrefix("/auth", h.Router()))
type Handlers struct {
	Authority *Authority

	// Session, when set, stores the session token in the scs-managed cookie
	// session on login so browser clients need not track the bearer token
	// themselves. API clients can ignore it and use the Authorization header.
	Session *scs.SessionManager

	// SessionTokenVar names the session variable holding the token.
	// Defaults to "AuthSessionToken".
	SessionTokenVar string

	Logger *slog.Logger
}

func (h *Handlers) sessionTokenVar() string {
	if h.SessionTokenVar != "" {
		return h.SessionTokenVar
	}
	return "AuthSessionToken"
}

func (h *Handlers) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Router builds the route tree for all auth operations.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/signup/{kind}", h.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/signup/verify", h.handleVerifySignup).Methods(http.MethodPost)
	r.HandleFunc("/login", h.handleLogin).Methods(http.MethodPost)
	r.HandleFunc("/login/verify", h.handleVerifyLogin).Methods(http.MethodPost)
	r.HandleFunc("/2fa", h.handleTwoFactor).Methods(http.MethodPost)
	r.HandleFunc("/resend-code", h.handleResendCode).Methods(http.MethodPost)
	r.HandleFunc("/reset-password", h.handleResetPassword).Methods(http.MethodPost)
	r.HandleFunc("/logout", h.handleLogout).Methods(http.MethodPost)
	return r
}

func (h *Handlers) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in RegistrationInput
	if !h.decode(w, r, &in) {
		return
	}
	in.Kind = Kind(mux.Vars(r)["kind"])

	pending, err := h.Authority.BeginRegistration(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message":            "Please check your email for the verification code.",
		"registration_token": pending.Token,
		"expires_at":         pending.ExpiresAt,
	})
}

func (h *Handlers) handleVerifySignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code              string `json:"code"`
		RegistrationToken string `json:"registration_token"`
	}
	if !h.decode(w, r, &body) {
		return
	}

	account, err := h.Authority.CompleteRegistration(r.Context(), body.Code, body.RegistrationToken)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Email verified successfully",
		"account": account,
	})
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !h.decode(w, r, &body) {
		return
	}

	result, err := h.Authority.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if !result.TwoFactorRequired {
		h.saveSessionToken(r, result.SessionToken)
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleVerifyLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Code           string `json:"code"`
		ChallengeToken string `json:"challenge_token"`
	}
	if !h.decode(w, r, &body) {
		return
	}

	result, err := h.Authority.CompleteLogin(r.Context(), body.Code, body.ChallengeToken)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.saveSessionToken(r, result.SessionToken)
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleTwoFactor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if !h.decode(w, r, &body) {
		return
	}

	token := h.requestSessionToken(r)
	result, err := h.Authority.SetTwoFactor(r.Context(), token, body.Enabled)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) handleResendCode(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if !h.decode(w, r, &body) {
		return
	}

	if err := h.Authority.ResendCode(r.Context(), body.Email); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "A new verification code has been sent to your email",
	})
}

func (h *Handlers) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		NewPassword string `json:"new_password"`
	}
	if !h.decode(w, r, &body) {
		return
	}

	if err := h.Authority.ResetPassword(r.Context(), body.Email, body.NewPassword); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Password updated successfully",
	})
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if h.Session != nil {
		h.Session.Remove(r.Context(), h.sessionTokenVar())
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"message": "Logged out successfully",
	})
}

// requestSessionToken finds the caller's session token: the scs session
// first, then the Authorization header.
func (h *Handlers) requestSessionToken(r *http.Request) string {
	if h.Session != nil {
		if token := h.Session.GetString(r.Context(), h.sessionTokenVar()); token != "" {
			return token
		}
	}
	return bearerToken(r)
}

// saveSessionToken stashes a freshly issued session token in the scs session
// when one is configured.
func (h *Handlers) saveSessionToken(r *http.Request, token string) {
	if h.Session != nil && token != "" {
		h.Session.Put(r.Context(), h.sessionTokenVar(), token)
	}
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, NewAuthError(ErrCodeInvalidRequest, "invalid request body", ""))
		return false
	}
	return true
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger().Warn("failed to encode response", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, err error) {
	var ae *AuthError
	if !errors.As(err, &ae) {
		ae = NewAuthError(ErrCodeServer, "something went wrong, please try again", "")
	}
	h.writeJSON(w, statusForCode(ae.Code), map[string]any{
		"error": ae.Message,
		"code":  ae.Code,
		"field": ae.Field,
	})
}

// statusForCode maps the error taxonomy onto HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case ErrCodeInvalidRequest, ErrCodeOTPMismatch:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidCredentials, ErrCodeTokenInvalid, ErrCodeTokenExpired, ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeNotification:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
