// Package authkit implements the account verification and session flows for
// the CampusVendor marketplace: OTP-confirmed registration, password login
// with an optional email second factor, and stateless bearer sessions.
//
// # Architecture
//
// Account: a student or vendor record. Accounts are created only after the
// signup OTP has been verified, and live in an AccountStore owned by the
// application (in-memory and GORM backends ship under stores/).
//
// Token: a signed, self-contained credential. There is no server-side token
// state; signature and embedded expiry decide validity. Three purposes exist
// and are never interchangeable: a pending registration (an unconfirmed
// signup, including the expected OTP), a login challenge (password accepted,
// second factor outstanding), and a session (a completed authentication).
//
// Authority: the state machine tying the two together. It consumes an
// AccountStore, a Notifier for OTP delivery, and a TokenCodec, all injected
// at construction so tests can substitute fakes.
//
// # Basic Usage
//
// Wire an Authority with the stores and a codec:
//
//	store := mem.NewAccountStore()
//	auth := authkit.NewAuthority(store, &authkit.ConsoleNotifier{}, &authkit.JWTCodec{
//	    SecretKey: os.Getenv("AUTHKIT_JWT_SECRET"),
//	}, nil)
//
// Registration is a two-step exchange. BeginRegistration emails an OTP and
// returns a signed pending-registration token; nothing is persisted until
// CompleteRegistration sees the matching code:
//
//	pending, err := auth.BeginRegistration(ctx, authkit.RegistrationInput{
//	    Kind:     authkit.KindStudent,
//	    Name:     "Ada",
//	    Email:    "ada@campus.edu",
//	    Password: "correct horse battery",
//	})
//	account, err := auth.CompleteRegistration(ctx, submittedCode, pending.Token)
//
// Login either returns a session directly or, when the account has the email
// second factor enabled, a short-lived challenge token to be completed with
// CompleteLogin.
//
// The Handlers type exposes each operation as a JSON endpoint on a
// gorilla/mux router, and Middleware guards protected routes by validating
// the session token from the scs session, a cookie, or a Bearer header.
package authkit
