package app

import (
	"errors"
	"fmt"
	"net/smtp"
	"os"
	"time"
)

// Config is the full service configuration, sourced from the
// environment.
type Config struct {
	// Addr is the listen address, built from PORT.
	Addr string

	// DBFile is the sqlite database file. ":memory:" works for tests.
	DBFile string

	// JWTSecret signs tenant-scoped session tokens.
	JWTSecret string

	// AdminJWTSecret signs company staff session tokens. Must differ
	// from JWTSecret so one leaked secret exposes only one class of
	// session.
	AdminJWTSecret string

	// Issuer is the "iss" claim on all tokens and the TOTP issuer shown
	// in authenticator apps.
	Issuer string

	// SuperAdminEmail and SuperAdminPassword seed the singleton
	// superadmin account on first boot.
	SuperAdminEmail    string
	SuperAdminPassword string

	// OTPTTL is how long an issued login code stays valid.
	OTPTTL time.Duration

	// ShutdownGrace bounds graceful shutdown on SIGTERM.
	ShutdownGrace time.Duration

	// HousekeepingInterval is the expired-challenge sweep cadence.
	HousekeepingInterval time.Duration

	// SMTP delivery for login codes. Leave SMTPAddr empty to log codes
	// instead (development).
	SMTPAddr string
	SMTPFrom string
	SMTPUser string
	SMTPPass string
	SMTPHost string

	// ExposeChallengeCode echoes issued codes in API responses.
	// Development only.
	ExposeChallengeCode bool

	Env       string
	LogLevel  string
	LogFormat string
}

// LoadConfig reads configuration from the environment, applying
// defaults for everything except the signing secrets.
func LoadConfig() (Config, error) {
	cfg := Config{
		Addr:                ":" + getEnvOrDefault("PORT", "8080"),
		DBFile:              getEnvOrDefault("AUTH_DATABASE_FILE", "auth.db"),
		JWTSecret:           os.Getenv("JWT_SECRET"),
		AdminJWTSecret:      os.Getenv("ADMIN_JWT_SECRET"),
		Issuer:              getEnvOrDefault("AUTH_ISSUER", "FuelOS"),
		SuperAdminEmail:     os.Getenv("SUPERADMIN_EMAIL"),
		SuperAdminPassword:  os.Getenv("SUPERADMIN_PASSWORD"),
		SMTPAddr:            os.Getenv("SMTP_ADDR"),
		SMTPFrom:            os.Getenv("SMTP_FROM"),
		SMTPUser:            os.Getenv("SMTP_USER"),
		SMTPPass:            os.Getenv("SMTP_PASS"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		ExposeChallengeCode: os.Getenv("AUTH_EXPOSE_CHALLENGE_CODE") == "true",
		Env:                 getEnvOrDefault("ENV", "development"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           os.Getenv("LOG_FORMAT"),
	}

	var err error
	if cfg.OTPTTL, err = parseDurationEnv("OTP_TTL", 10*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.ShutdownGrace, err = parseDurationEnv("SHUTDOWN_GRACE_PERIOD", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.HousekeepingInterval, err = parseDurationEnv("HOUSEKEEPING_INTERVAL", 5*time.Minute); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET is required")
	}
	if cfg.AdminJWTSecret == "" {
		return Config{}, errors.New("ADMIN_JWT_SECRET is required")
	}
	if cfg.JWTSecret == cfg.AdminJWTSecret {
		return Config{}, errors.New("JWT_SECRET and ADMIN_JWT_SECRET must differ")
	}

	return cfg, nil
}

// SMTPAuth builds the smtp.Auth for the configured account, or nil when
// the server needs none.
func (c Config) SMTPAuth() smtp.Auth {
	if c.SMTPUser == "" {
		return nil
	}
	return smtp.PlainAuth("", c.SMTPUser, c.SMTPPass, c.SMTPHost)
}

func parseDurationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
