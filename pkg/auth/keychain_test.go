package auth

import (
	"errors"
	"testing"

	"github.com/zalando/go-keyring"
)

func TestKeychainStoreRoundTrip(t *testing.T) {
	keyring.MockInit()
	store := NewKeychainStore()

	if _, err := store.LoadToken("https://portal.example"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty keychain: err = %v, want ErrNotFound", err)
	}

	if err := store.StoreToken("https://portal.example/", "s3cret"); err != nil {
		t.Fatalf("store: %v", err)
	}
	got, err := store.LoadToken("https://portal.example")
	if err != nil || got != "s3cret" {
		t.Fatalf("load = %q, %v", got, err)
	}

	if _, err := store.LoadToken("https://other.example"); !errors.Is(err, ErrNotFound) {
		t.Errorf("other server should have no token, err = %v", err)
	}

	if err := store.DeleteToken("https://portal.example"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.DeleteToken("https://portal.example"); err != nil {
		t.Errorf("second delete should be a no-op, got %v", err)
	}
}

func TestKeychainUnavailable(t *testing.T) {
	keyring.MockInitWithError(errors.New("org.freedesktop.DBus.Error.ServiceUnknown: dbus not running"))
	t.Cleanup(keyring.MockInit)
	store := NewKeychainStore()

	if err := store.StoreToken("https://portal.example", "x"); !errors.Is(err, ErrKeychainUnavailable) {
		t.Errorf("store err = %v", err)
	}
	if _, err := store.LoadToken("https://portal.example"); !errors.Is(err, ErrKeychainUnavailable) {
		t.Errorf("load err = %v", err)
	}
}

func TestTokenKeyIgnoresTrailingSlash(t *testing.T) {
	if tokenKey("https://p.example/") != tokenKey("https://p.example") {
		t.Error("trailing slash changed the key")
	}
	if tokenKey("https://a.example") == tokenKey("https://b.example") {
		t.Error("different servers share a key")
	}
}
