package walletcfg

import (
	"fmt"
	"net/url"
	"time"
)

const (
	// DefaultEsploraRequestTimeout is the default timeout for HTTP
	// requests to the Esplora API.
	DefaultEsploraRequestTimeout = 30 * time.Second

	// DefaultEsploraMaxRetries is the default number of times a failed
	// request is retried. Failures are surfaced to the caller right away
	// unless retries are enabled.
	DefaultEsploraMaxRetries = 0

	// DefaultEsploraRateLimit is the default number of requests per second
	// sent to the Esplora API. Public instances throttle aggressively.
	DefaultEsploraRateLimit = 10.0
)

// Esplora holds the configuration options for the wallet's connection to an
// Esplora HTTP API server (e.g., mempool.space, blockstream.info, or a local
// electrs instance).
//
//nolint:ll
type Esplora struct {
	// URL is the base URL of the Esplora API to connect to. Examples:
	//   - http://localhost:3002 (local electrs)
	//   - https://blockstream.info/api (Blockstream mainnet)
	//   - https://mempool.space/testnet/api (mempool.space testnet)
	URL string `long:"url" description:"The base URL of the Esplora API. Defaults to mempool.space for the active network."`

	RequestTimeout time.Duration `long:"requesttimeout" description:"Timeout for HTTP requests to the Esplora API."`

	MaxRetries int `long:"maxretries" description:"Maximum number of times to retry a failed request."`

	RateLimit float64 `long:"ratelimit" description:"Maximum requests per second sent to the Esplora API (0 disables the limit)."`

	// Proxy is a SOCKS5 proxy, typically Tor, that every request is
	// routed through.
	Proxy string `long:"proxy" description:"Connect to the Esplora API through a SOCKS5 proxy, e.g. 127.0.0.1:9050."`

	TorIsolation bool `long:"torisolation" description:"Use a fresh Tor circuit for every request when a proxy is set."`
}

// DefaultEsploraConfig returns a new Esplora config with default values
// populated.
func DefaultEsploraConfig() *Esplora {
	return &Esplora{
		RequestTimeout: DefaultEsploraRequestTimeout,
		MaxRetries:     DefaultEsploraMaxRetries,
		RateLimit:      DefaultEsploraRateLimit,
	}
}

// Validate checks the Esplora options.
func (e *Esplora) Validate() error {
	if e.URL != "" {
		u, err := url.Parse(e.URL)
		if err != nil {
			return fmt.Errorf("invalid esplora url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("esplora url must be http or https, "+
				"got %q", u.Scheme)
		}
	}

	if e.RequestTimeout <= 0 {
		return fmt.Errorf("esplora request timeout must be positive")
	}
	if e.MaxRetries < 0 {
		return fmt.Errorf("esplora max retries must not be negative")
	}
	if e.RateLimit < 0 {
		return fmt.Errorf("esplora rate limit must not be negative")
	}
	if e.TorIsolation && e.Proxy == "" {
		return fmt.Errorf("torisolation requires a proxy")
	}

	return nil
}
