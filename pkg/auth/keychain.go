// Package auth keeps the portal bearer token in the system keychain so it
// does not have to live in the config file.
package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const serviceName = "kubeportal"

// ErrKeychainUnavailable indicates that the system keychain is not available
var ErrKeychainUnavailable = errors.New("keychain is not available on this system")

// ErrNotFound indicates that no token is stored for the server
var ErrNotFound = errors.New("token not found in keychain")

// TokenStore holds one bearer token per portal server.
type TokenStore interface {
	StoreToken(serverURL, token string) error
	LoadToken(serverURL string) (string, error)
	DeleteToken(serverURL string) error
}

// KeychainStore is a TokenStore backed by go-keyring.
type KeychainStore struct{}

// NewKeychainStore creates a new keychain store
func NewKeychainStore() *KeychainStore {
	return &KeychainStore{}
}

// tokenKey is the keychain entry of a server. Trailing slashes do not make a
// different server.
func tokenKey(serverURL string) string {
	hash := sha256.Sum256([]byte(strings.TrimRight(strings.TrimSpace(serverURL), "/")))
	return fmt.Sprintf("%s:%s:token", serviceName, hex.EncodeToString(hash[:8]))
}

// StoreToken stores the token of serverURL, replacing any previous one.
func (k *KeychainStore) StoreToken(serverURL, token string) error {
	if err := keyring.Set(serviceName, tokenKey(serverURL), token); err != nil {
		if isKeychainUnavailable(err) {
			return ErrKeychainUnavailable
		}
		return fmt.Errorf("failed to store token in keychain: %w", err)
	}
	return nil
}

// LoadToken returns the token of serverURL.
func (k *KeychainStore) LoadToken(serverURL string) (string, error) {
	token, err := keyring.Get(serviceName, tokenKey(serverURL))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		if isKeychainUnavailable(err) {
			return "", ErrKeychainUnavailable
		}
		return "", fmt.Errorf("failed to load token from keychain: %w", err)
	}
	return token, nil
}

// DeleteToken removes the token of serverURL. A missing token is not an error.
func (k *KeychainStore) DeleteToken(serverURL string) error {
	err := keyring.Delete(serviceName, tokenKey(serverURL))
	switch {
	case err == nil, errors.Is(err, keyring.ErrNotFound):
		return nil
	case isKeychainUnavailable(err):
		return ErrKeychainUnavailable
	}
	return fmt.Errorf("failed to delete token from keychain: %w", err)
}

// go-keyring has no error for a missing backend; the platform messages name it.
func isKeychainUnavailable(err error) bool {
	if errors.Is(err, keyring.ErrUnsupportedPlatform) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, s := range []string{"secret service", "dbus", "keychain", "credential manager"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}
