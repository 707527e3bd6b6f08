package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

const appName = "vkarchive"

// Account holds the tokens of one VK login. AccessToken authorizes the
// listing session; AudioToken authorizes audio lookups and may be empty.
type Account struct {
	Login        string    `json:"login"`
	AccessToken  string    `json:"access_token"`
	AudioToken   string    `json:"audio_token,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	LastModified time.Time `json:"last_modified"`
}

// ArchivingToken returns the token used for audio lookups
func (a *Account) ArchivingToken() string {
	if a.AudioToken != "" {
		return a.AudioToken
	}
	return a.AccessToken
}

// CredentialStore persists accounts keyed by login
type CredentialStore interface {
	Store(account *Account) error
	Retrieve(login string) (*Account, error)
	List() ([]*Account, error)
	Delete(login string) error
	Exists(login string) bool
}

// Manager reads and writes accounts across stores in priority order
type Manager struct {
	stores []CredentialStore
}

// NewManager creates a manager backed by the system keychain when it is
// available, an encrypted file, and the environment
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if keyringStore, err := NewKeyringStore(); err == nil {
		stores = append(stores, keyringStore)
	}

	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores creates a manager over the given stores
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves an account in the first store that accepts it
func (m *Manager) Store(account *Account) error {
	if account == nil || account.Login == "" {
		return errors.New("login is required")
	}
	if account.AccessToken == "" {
		return errors.New("access token is required")
	}

	account.LastModified = time.Now()

	var lastErr error
	for _, store := range m.stores {
		err := store.Store(account)
		if err == nil {
			return nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve returns the account from the first store that has it
func (m *Manager) Retrieve(login string) (*Account, error) {
	for _, store := range m.stores {
		if account, err := store.Retrieve(login); err == nil && account != nil {
			return account, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, login)
}

// RetrieveDefault prefers environment tokens, then the most recently
// modified stored account
func (m *Manager) RetrieveDefault() (*Account, error) {
	for _, store := range m.stores {
		if env, ok := store.(*EnvironmentStore); ok {
			if account, err := env.Retrieve(""); err == nil {
				return account, nil
			}
		}
	}

	accounts, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(accounts) == 0 {
		return nil, ErrCredentialsNotFound
	}
	return accounts[0], nil
}

// List merges the accounts of every store, newest first. When a login is
// held by several stores the most recent copy wins.
func (m *Manager) List() ([]*Account, error) {
	byLogin := make(map[string]*Account)

	for _, store := range m.stores {
		accounts, err := store.List()
		if err != nil {
			continue
		}
		for _, account := range accounts {
			if existing, ok := byLogin[account.Login]; !ok || account.LastModified.After(existing.LastModified) {
				byLogin[account.Login] = account
			}
		}
	}

	result := make([]*Account, 0, len(byLogin))
	for _, account := range byLogin {
		result = append(result, account)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].LastModified.Equal(result[j].LastModified) {
			return result[i].LastModified.After(result[j].LastModified)
		}
		return result[i].Login < result[j].Login
	})

	return result, nil
}

// Delete removes an account from every store holding it
func (m *Manager) Delete(login string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(login); err == nil {
			deleted = true
		} else if !errors.Is(err, ErrCredentialsNotFound) && !errors.Is(err, ErrStoreUnavailable) {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrCredentialsNotFound, login)
}

func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", appName)
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, appName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", appName)
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeAccount returns a copy with tokens masked for display
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}

	sanitized := *account
	sanitized.AccessToken = maskString(account.AccessToken)
	if account.AudioToken != "" {
		sanitized.AudioToken = maskString(account.AudioToken)
	}
	return &sanitized
}

// maskString keeps the first and last 4 characters
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
