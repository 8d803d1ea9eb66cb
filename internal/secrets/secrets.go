// Package secrets resolves API keys from the environment or the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "careerbot"

var ErrNotFound = errors.New("api key not found")

// APIKey returns the value of envVar when set, else the keychain entry for
// account.
func APIKey(envVar, account string) (string, error) {
	if envVar != "" {
		if v := strings.TrimSpace(os.Getenv(envVar)); v != "" {
			return v, nil
		}
	}
	if strings.TrimSpace(account) != "" {
		v, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(v) != "" {
			return v, nil
		}
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("read keychain: %w", err)
		}
	}
	return "", fmt.Errorf("%w (set %s or store it with `careerbot key set %s`)", ErrNotFound, envVar, account)
}

func SetAPIKey(account, key string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("api key is empty")
	}
	return keyring.Set(KeyringService, account, key)
}

func DeleteAPIKey(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
