package config

import (
	"errors"
	"os"

	"github.com/andrew-solarstorm/go-packages/common"
)

type RPCConfig struct {
	RPCUrl string

	// RequestTimeoutSeconds bounds every eth_call batch.
	// Default: 10
	RequestTimeoutSeconds int

	// MaxRetries and RetryBaseDelayMs shape the exponential backoff applied to
	// transient RPC failures. Defaults: 3 retries starting at 200ms.
	MaxRetries       int
	RetryBaseDelayMs int
}

func (r *RPCConfig) Key() string {
	return RPC_CONFIG_KEY
}

func (r *RPCConfig) Load() error {
	r.RPCUrl = os.Getenv("RPC_URL")
	r.RequestTimeoutSeconds = common.GetEnvOrDefaultInt("RPC_REQUEST_TIMEOUT_SECONDS", 10)
	r.MaxRetries = common.GetEnvOrDefaultInt("RPC_MAX_RETRIES", 3)
	r.RetryBaseDelayMs = common.GetEnvOrDefaultInt("RPC_RETRY_BASE_DELAY_MS", 200)
	return nil
}

func (r *RPCConfig) Validate() error {
	if r.RPCUrl == "" {
		return errors.New("invalid rpc config")
	}
	if r.RequestTimeoutSeconds <= 0 || r.MaxRetries < 0 || r.RetryBaseDelayMs <= 0 {
		return errors.New("invalid rpc timing config")
	}
	return nil
}
