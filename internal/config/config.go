// Package config loads and exposes application configuration (TOML).
package config

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Default configuration values used when a field is missing in TOML.
const (
	DefaultConfigPath         = "config.toml"
	DefaultHTTPAddr           = ":8080"
	DefaultJWTExpiresIn       = "24h"
	DefaultPGHost             = "127.0.0.1"
	DefaultPGPort             = 5432
	DefaultPGUser             = "postgres"
	DefaultPGDatabase         = "wabridge"
	DefaultPGSSLMode          = "disable"
	DefaultGraphBaseURL       = "https://graph.facebook.com"
	DefaultGraphVersion       = "v19.0"
	DefaultSendTimeoutSeconds = 30
)

// Config is the root application configuration loaded from TOML.
type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Admin    AdminConfig    `toml:"admin"`
	Auth     AuthConfig     `toml:"auth"`
	Postgres PostgresConfig `toml:"postgres"`
	WhatsApp WhatsAppConfig `toml:"whatsapp"`
}

// LogConfig holds logging level and format (e.g. level=info, format=text).
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// ServerConfig holds the HTTP server listen address.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// AdminConfig holds the initial admin account (username, password, email).
type AdminConfig struct {
	Username string `toml:"username"`
	Password string `toml:"password"`
	Email    string `toml:"email"`
}

// AuthConfig holds JWT secret and token expiry (e.g. 24h).
type AuthConfig struct {
	JWTSecret    string `toml:"jwt_secret"`
	JWTExpiresIn string `toml:"jwt_expires_in"`
}

// PostgresConfig holds PostgreSQL connection parameters.
type PostgresConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	SSLMode  string `toml:"sslmode"`
}

// WhatsAppConfig holds Meta Graph API credentials and webhook secrets.
// AppSecret is optional; when empty, webhook signature checking is skipped.
type WhatsAppConfig struct {
	BaseURL            string `toml:"base_url"`
	APIVersion         string `toml:"api_version"`
	PhoneNumberID      string `toml:"phone_number_id"`
	AccessToken        string `toml:"access_token"`
	VerifyToken        string `toml:"verify_token"`
	AppSecret          string `toml:"app_secret"`
	SendTimeoutSeconds int    `toml:"send_timeout_seconds"`
}

// Load reads the TOML config at path, falling back to DefaultConfigPath and
// in-code defaults. A missing config file is not an error.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "change-your-password-here",
			Email:    "you@example.com",
		},
		Auth: AuthConfig{
			JWTExpiresIn: DefaultJWTExpiresIn,
		},
		Postgres: PostgresConfig{
			Host:     DefaultPGHost,
			Port:     DefaultPGPort,
			User:     DefaultPGUser,
			Database: DefaultPGDatabase,
			SSLMode:  DefaultPGSSLMode,
		},
		WhatsApp: WhatsAppConfig{
			BaseURL:            DefaultGraphBaseURL,
			APIVersion:         DefaultGraphVersion,
			SendTimeoutSeconds: DefaultSendTimeoutSeconds,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}
