// Package config loads the immutable process configuration. It is built once
// in main and passed into every component constructor; nothing reads it from
// ambient globals afterwards.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `yaml:"addr"`
	// SpreadsheetID identifies the Google Sheet backing all tables.
	SpreadsheetID string `yaml:"spreadsheet_id"`
	// CredentialsFile is the path to the service account key JSON used to
	// authenticate against the Sheets API.
	CredentialsFile string `yaml:"credentials_file"`
	// LoginPassword is the shared plaintext password checked by the
	// simulated login endpoint. Not real authentication.
	LoginPassword string `yaml:"login_password"`
	// JWTSecret signs the placeholder token returned on login.
	JWTSecret string `yaml:"jwt_secret"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped if it does not exist), then environment variables. The
// spreadsheet id is the only hard requirement.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr:            ":3001",
		CredentialsFile: "credentials.json",
		LoginPassword:   "password",
		JWTSecret:       "dev-secret-do-not-use-in-prod",
		LogLevel:        "info",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.Addr = getEnv("OPSCHED_ADDR", cfg.Addr)
	cfg.SpreadsheetID = getEnv("OPSCHED_SPREADSHEET_ID", cfg.SpreadsheetID)
	cfg.CredentialsFile = getEnv("OPSCHED_CREDENTIALS_FILE", cfg.CredentialsFile)
	cfg.LoginPassword = getEnv("OPSCHED_LOGIN_PASSWORD", cfg.LoginPassword)
	cfg.JWTSecret = getEnv("OPSCHED_JWT_SECRET", cfg.JWTSecret)
	cfg.LogLevel = getEnv("OPSCHED_LOG_LEVEL", cfg.LogLevel)

	if cfg.SpreadsheetID == "" {
		return nil, errors.New("spreadsheet_id is required (config file or OPSCHED_SPREADSHEET_ID)")
	}
	return cfg, nil
}

// getEnv returns the environment variable's value, or fallback when unset.
// An explicitly empty variable counts as unset.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
