package auth

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = appName
	keyringPrefix  = "vk_"
	keyringIndex   = "logins"
)

// KeyringStore keeps accounts in the system keychain. The keychain cannot
// enumerate entries, so the stored logins are tracked in an index entry.
type KeyringStore struct{}

// NewKeyringStore probes the keychain and fails when it is unusable
func NewKeyringStore() (*KeyringStore, error) {
	const probe = "test_availability"
	if err := keyring.Set(keyringService, probe, "test"); err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, probe)

	return &KeyringStore{}, nil
}

func (k *KeyringStore) Store(account *Account) error {
	if account == nil || account.Login == "" {
		return ErrInvalidCredentials
	}

	data, err := json.Marshal(account)
	if err != nil {
		return fmt.Errorf("failed to marshal account: %w", err)
	}
	if err := keyring.Set(keyringService, keyringPrefix+account.Login, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	logins := k.logins()
	for _, login := range logins {
		if login == account.Login {
			return nil
		}
	}
	return k.saveLogins(append(logins, account.Login))
}

func (k *KeyringStore) Retrieve(login string) (*Account, error) {
	if login == "" {
		return nil, ErrInvalidCredentials
	}

	data, err := keyring.Get(keyringService, keyringPrefix+login)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var account Account
	if err := json.Unmarshal([]byte(data), &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}
	return &account, nil
}

func (k *KeyringStore) List() ([]*Account, error) {
	var accounts []*Account
	for _, login := range k.logins() {
		account, err := k.Retrieve(login)
		if err != nil {
			continue
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}

func (k *KeyringStore) Delete(login string) error {
	if login == "" {
		return ErrInvalidCredentials
	}

	if err := keyring.Delete(keyringService, keyringPrefix+login); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrCredentialsNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	logins := k.logins()
	remaining := logins[:0]
	for _, l := range logins {
		if l != login {
			remaining = append(remaining, l)
		}
	}
	return k.saveLogins(remaining)
}

func (k *KeyringStore) Exists(login string) bool {
	if login == "" {
		return false
	}
	_, err := keyring.Get(keyringService, keyringPrefix+login)
	return err == nil
}

func (k *KeyringStore) logins() []string {
	data, err := keyring.Get(keyringService, keyringIndex)
	if err != nil {
		return nil
	}
	var logins []string
	if err := json.Unmarshal([]byte(data), &logins); err != nil {
		return nil
	}
	return logins
}

func (k *KeyringStore) saveLogins(logins []string) error {
	data, err := json.Marshal(logins)
	if err != nil {
		return fmt.Errorf("failed to marshal login index: %w", err)
	}
	if err := keyring.Set(keyringService, keyringIndex, string(data)); err != nil {
		return fmt.Errorf("failed to store login index: %w", err)
	}
	return nil
}
