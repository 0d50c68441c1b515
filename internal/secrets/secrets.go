// Package secrets resolves API credentials from the process environment.
// Credentials never live in the config file.
package secrets

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// ExchangeCredentials is an API key pair for one exchange environment.
type ExchangeCredentials struct {
	APIKey    string `envconfig:"API_KEY" required:"true"`
	APISecret string `envconfig:"API_SECRET" required:"true"`
}

// NotificationCredentials is the push-notification provider bundle.
type NotificationCredentials struct {
	FCMServerKey string `envconfig:"FCM_SERVER_KEY"`
}

// Store retrieves credentials for external services.
type Store interface {
	// ExchangeCredentials returns the key pair for the given environment
	// ("sandbox" or "live"). Sandbox and live keys are separate secrets.
	ExchangeCredentials(environment string) (ExchangeCredentials, error)
	NotificationCredentials() (NotificationCredentials, error)
}

// EnvStore reads secrets from environment variables:
// BINANCE_TESTNET_API_KEY / BINANCE_TESTNET_API_SECRET for sandbox,
// BINANCE_API_KEY / BINANCE_API_SECRET for live, and FCM_SERVER_KEY.
type EnvStore struct{}

var _ Store = EnvStore{}

func (EnvStore) ExchangeCredentials(environment string) (ExchangeCredentials, error) {
	prefix := "BINANCE"
	if environment != "live" {
		prefix = "BINANCE_TESTNET"
	}

	var creds ExchangeCredentials
	if err := envconfig.Process(prefix, &creds); err != nil {
		return ExchangeCredentials{}, fmt.Errorf("failed to load %s exchange credentials: %w", environment, err)
	}
	return creds, nil
}

func (EnvStore) NotificationCredentials() (NotificationCredentials, error) {
	var creds NotificationCredentials
	if err := envconfig.Process("", &creds); err != nil {
		return NotificationCredentials{}, fmt.Errorf("failed to load notification credentials: %w", err)
	}
	return creds, nil
}
