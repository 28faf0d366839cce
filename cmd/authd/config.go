package main

import (
	"log"
	"os"
	"strconv"
)

// Config holds runtime settings for the auth daemon. Every field can be set
// through the environment; defaults suit local development only.
type Config struct {
	Addr         string
	JWTSecret    string
	Issuer       string
	DatabasePath string // sqlite file; empty selects the in-memory store

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	AppName      string
}

// LoadConfig builds a Config from the environment, applying defaults.
func LoadConfig() *Config {
	return &Config{
		Addr:         getEnvAsStr("AUTHD_ADDR", ":8080"),
		JWTSecret:    getEnv("AUTHD_JWT_SECRET"),
		Issuer:       getEnvAsStr("AUTHD_ISSUER", "campusvendor-authd"),
		DatabasePath: getEnvAsStr("AUTHD_DATABASE_PATH", ""),
		SMTPHost:     getEnvAsStr("AUTHD_SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("AUTHD_SMTP_PORT", 587),
		SMTPUser:     getEnvAsStr("AUTHD_SMTP_USER", ""),
		SMTPPassword: getEnvAsStr("AUTHD_SMTP_PASSWORD", ""),
		AppName:      getEnvAsStr("AUTHD_APP_NAME", "CampusVendor"),
	}
}

// getEnv fetches a key or returns an empty string. Critical vars use this so
// the missing key is logged loudly.
func getEnv(key string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	log.Printf("Critical: environment variable %s not set", key)
	return ""
}

func getEnvAsStr(key string, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	if valueStr, ok := os.LookupEnv(key); ok {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
		log.Printf("Warning: environment variable %s is not an integer, using fallback", key)
	}
	return fallback
}
