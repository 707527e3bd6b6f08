package auth

import (
	"os"
	"time"
)

const (
	envAccessToken = "VKARCHIVE_ACCESS_TOKEN"
	envAudioToken  = "VKARCHIVE_AUDIO_TOKEN"
	envLogin       = "VKARCHIVE_LOGIN"
	envUserAgent   = "VKARCHIVE_USER_AGENT"
)

// EnvironmentStore is a read-only store over VKARCHIVE_* variables
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve builds an account from the environment. An empty login matches
// whatever login the environment names.
func (e *EnvironmentStore) Retrieve(login string) (*Account, error) {
	token := os.Getenv(envAccessToken)
	if token == "" {
		return nil, ErrCredentialsNotFound
	}

	envName := os.Getenv(envLogin)
	if envName == "" {
		envName = "default"
	}
	if login != "" && login != envName {
		return nil, ErrCredentialsNotFound
	}

	return &Account{
		Login:        envName,
		AccessToken:  token,
		AudioToken:   os.Getenv(envAudioToken),
		UserAgent:    os.Getenv(envUserAgent),
		LastModified: time.Now(),
	}, nil
}

func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported
func (e *EnvironmentStore) Delete(login string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(login string) bool {
	_, err := e.Retrieve(login)
	return err == nil
}
