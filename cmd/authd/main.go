// Command authd runs the CampusVendor authentication service: JSON endpoints
// for signup, OTP verification, login, the email second factor, and session
// management, backed by sqlite or an in-memory store.
package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/alexedwards/scs/v2"
	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/campusvendor/authkit"
	gormstore "github.com/campusvendor/authkit/stores/gorm"
	"github.com/campusvendor/authkit/stores/mem"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on the environment")
	}
	cfg := LoadConfig()
	if cfg.JWTSecret == "" {
		log.Fatal("AUTHD_JWT_SECRET must be set")
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store, err := buildStore(cfg)
	if err != nil {
		log.Fatalf("failed to open account store: %v", err)
	}

	authority := authkit.NewAuthority(store, buildNotifier(cfg), &authkit.JWTCodec{
		SecretKey: cfg.JWTSecret,
		Issuer:    cfg.Issuer,
	}, logger)

	session := scs.New()
	session.Lifetime = authkit.TokenExpirySession

	handlers := &authkit.Handlers{
		Authority: authority,
		Session:   session,
		Logger:    logger,
	}

	mux := http.NewServeMux()
	mux.Handle("/auth/", http.StripPrefix("/auth", handlers.Router()))

	logger.Info("starting authd", "addr", cfg.Addr, "database", cfg.DatabasePath)
	if err := http.ListenAndServe(cfg.Addr, session.LoadAndSave(mux)); err != nil {
		log.Fatal(err)
	}
}

// buildStore selects sqlite when a database path is configured, otherwise
// the in-memory store (development only; contents vanish on restart).
func buildStore(cfg *Config) (authkit.AccountStore, error) {
	if cfg.DatabasePath == "" {
		log.Println("AUTHD_DATABASE_PATH not set, using the in-memory store")
		return mem.NewAccountStore(), nil
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := gormstore.AutoMigrate(db); err != nil {
		return nil, err
	}
	return gormstore.NewAccountStore(db), nil
}

// buildNotifier selects SMTP when a host is configured, otherwise the
// console notifier.
func buildNotifier(cfg *Config) authkit.Notifier {
	if cfg.SMTPHost == "" {
		log.Println("AUTHD_SMTP_HOST not set, codes will be logged to the console")
		return &authkit.ConsoleNotifier{}
	}
	return &authkit.SMTPNotifier{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		AppName:  cfg.AppName,
	}
}
