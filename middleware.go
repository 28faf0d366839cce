package authkit

import (
	"context"
	"net/http"
	"strings"

	"github.com/alexedwards/scs/v2"
)

type contextKey string

const claimsContextKey contextKey = "authkit_session_claims"

// ClaimsFromContext retrieves the session claims placed by
// Middleware.RequireSession, or nil when the request is unauthenticated.
func ClaimsFromContext(ctx context.Context) *SessionClaims {
	sc, _ := ctx.Value(claimsContextKey).(*SessionClaims)
	return sc
}

func withClaims(ctx context.Context, sc *SessionClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, sc)
}

// Middleware guards application routes with the Authority's session
// validation. The token is looked up in the scs session, then a cookie, then
// the Authorization header, in that order.
type Middleware struct {
	Authority *Authority

	// Session is the optional scs manager shared with Handlers.
	Session *scs.SessionManager

	// SessionTokenVar must match the Handlers setting. Defaults to
	// "AuthSessionToken".
	SessionTokenVar string

	// CookieName is an optional cookie the token may arrive in.
	CookieName string
}

func (m *Middleware) sessionTokenVar() string {
	if m.SessionTokenVar != "" {
		return m.SessionTokenVar
	}
	return "AuthSessionToken"
}

// SessionToken extracts the caller's session token from the request, or ""
// when none is present.
func (m *Middleware) SessionToken(r *http.Request) string {
	if m.Session != nil {
		if token := m.Session.GetString(r.Context(), m.sessionTokenVar()); token != "" {
			return token
		}
	}
	if m.CookieName != "" {
		if cookie, err := r.Cookie(m.CookieName); err == nil && cookie.Value != "" {
			return cookie.Value
		}
	}
	return bearerToken(r)
}

// RequireSession rejects requests without a valid session token and puts the
// authenticated claims in the request context for downstream handlers.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.SessionToken(r)
		if token == "" {
			unauthorized(w)
			return
		}
		sc, err := m.Authority.Authenticate(r.Context(), token)
		if err != nil {
			unauthorized(w)
			return
		}
		next.ServeHTTP(w, r.WithContext(withClaims(r.Context(), sc)))
	})
}

// Optional lets unauthenticated requests through but attaches claims when a
// valid token is present.
func (m *Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := m.SessionToken(r); token != "" {
			if sc, err := m.Authority.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(withClaims(r.Context(), sc))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// bearerToken pulls the token out of an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="auth"`)
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error": "a valid session is required", "code": "unauthorized"}`))
}
