package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
)

// KeyringStore persists the credential in the OS-native secure store
// (macOS Keychain, Windows Credential Manager, or Linux Secret Service)
// instead of the local database.
type KeyringStore struct {
	service string
	user    string
}

// Compile-time check to ensure KeyringStore implements CredentialStorer
var _ CredentialStorer = (*KeyringStore)(nil)

// NewKeyringStore creates a KeyringStore using the given service and user identifiers.
func NewKeyringStore(service, user string) (*KeyringStore, error) {
	if service == "" {
		return nil, fmt.Errorf("service cannot be empty")
	}
	if user == "" {
		return nil, fmt.Errorf("user cannot be empty")
	}
	return &KeyringStore{service: service, user: user}, nil
}

// keyringCredential is the JSON shape stored in the keyring entry.
type keyringCredential struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// GetCredential returns the stored credential, or nil when none exists.
func (k *KeyringStore) GetCredential(ctx context.Context) (*Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	payload, err := keyring.Get(k.service, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credential from keyring: %w", err)
	}

	var kc keyringCredential
	if err := json.Unmarshal([]byte(payload), &kc); err != nil {
		return nil, fmt.Errorf("failed to decode keyring credential: %w", err)
	}
	return &Credential{
		AccessToken:  kc.AccessToken,
		RefreshToken: kc.RefreshToken,
		ExpiresAt:    kc.ExpiresAt,
		Persist:      true,
	}, nil
}

// SaveCredential writes the credential to the keyring, overwriting any existing entry.
func (k *KeyringStore) SaveCredential(ctx context.Context, cred *Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(keyringCredential{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		ExpiresAt:    cred.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}
	if err := keyring.Set(k.service, k.user, string(payload)); err != nil {
		return fmt.Errorf("failed to write credential to keyring: %w", err)
	}
	return nil
}

// DeleteCredential removes the keyring entry; a missing entry is not an error.
func (k *KeyringStore) DeleteCredential(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := keyring.Delete(k.service, k.user)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to delete credential from keyring: %w", err)
	}
	return nil
}
