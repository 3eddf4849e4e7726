// Package secrets stores the lead store credential in the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups the agent's secrets in the OS keychain.
	KeyringService = "lead_agent"
	// DatabaseURLAccount holds the store connection URL.
	DatabaseURLAccount = "database_url"
)

// ErrNotFound is returned when no credential is stored.
var ErrNotFound = errors.New("database URL not found in keychain")

// GetDatabaseURL returns the stored connection URL.
func GetDatabaseURL() (string, error) {
	v, err := keyring.Get(KeyringService, DatabaseURLAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read keychain: %w", err)
	}
	if strings.TrimSpace(v) == "" {
		return "", ErrNotFound
	}
	return v, nil
}

// SetDatabaseURL stores the connection URL, replacing any previous value.
func SetDatabaseURL(url string) error {
	if strings.TrimSpace(url) == "" {
		return errors.New("database URL is empty")
	}
	if err := keyring.Set(KeyringService, DatabaseURLAccount, strings.TrimSpace(url)); err != nil {
		return fmt.Errorf("failed to write keychain: %w", err)
	}
	return nil
}

// DeleteDatabaseURL removes the stored connection URL.
func DeleteDatabaseURL() error {
	err := keyring.Delete(KeyringService, DatabaseURLAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to delete keychain entry: %w", err)
	}
	return nil
}

// ResolveDatabaseURL picks the first non-empty of flag, env, then the keychain.
func ResolveDatabaseURL(flag, env string) (string, error) {
	if v := strings.TrimSpace(flag); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(env); v != "" {
		return v, nil
	}
	v, err := GetDatabaseURL()
	if err != nil {
		return "", fmt.Errorf("no database URL: pass --db-url, set DATABASE_URL or run 'lead_agent credentials set': %w", err)
	}
	return v, nil
}
