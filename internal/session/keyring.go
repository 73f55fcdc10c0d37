package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// KeyringService is the credential-manager service name entries live under
const KeyringService = "starlab-cli"

// KeyringPersister stores the session in the OS keychain/credential manager
type KeyringPersister struct {
	service string
	key     string
}

func NewKeyringPersister(service, key string) *KeyringPersister {
	return &KeyringPersister{service: service, key: key}
}

func (k *KeyringPersister) Load(ctx context.Context) ([]byte, bool, error) {
	secret, err := keyring.Get(k.service, k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load session from keyring: %w", err)
	}
	return []byte(secret), true, nil
}

func (k *KeyringPersister) Save(ctx context.Context, data []byte) error {
	if err := keyring.Set(k.service, k.key, string(data)); err != nil {
		return fmt.Errorf("failed to save session to keyring: %w", err)
	}
	return nil
}

// Delete removes the entry. A missing entry is not an error.
func (k *KeyringPersister) Delete() error {
	if err := keyring.Delete(k.service, k.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete session from keyring: %w", err)
	}
	return nil
}
