package params

import (
	"errors"
	"fmt"
	"time"
)

// Default settings for an upstream connection.
const (
	// DefaultPollInterval is how often the block-height poller queries the
	// upstream for the latest block number.
	DefaultPollInterval = 4 * time.Second

	// DefaultRequestTimeout bounds a single transport attempt.
	DefaultRequestTimeout = 30 * time.Second
)

// ----------
// UpstreamConfig
// ----------

// UpstreamConfig stores configuration for the upstream rpc connection.
// It is set once at construction; changing network or credential requires
// tearing down the pipeline and building a new one.
type UpstreamConfig struct {
	// URL sets the upstream endpoint directly. When empty, the endpoint is
	// assembled from ProviderHost, NetworkName and ProjectID.
	URL string

	// ProviderHost is the provider's base host, e.g. "infura.io".
	ProviderHost string

	// ProjectID is the project credential embedded in the endpoint path.
	ProjectID string

	// NetworkName selects the chain, e.g. "mainnet" or "ropsten".
	NetworkName string

	// ClientVersion is reported for web3_clientVersion queries.
	ClientVersion string

	// PollInterval is the block-height poll period. Zero means
	// DefaultPollInterval.
	PollInterval time.Duration

	// RequestTimeout bounds a single upstream attempt. Zero means
	// DefaultRequestTimeout.
	RequestTimeout time.Duration
}

// Validate checks that the config describes a reachable upstream.
func (c *UpstreamConfig) Validate() error {
	if c.NetworkName == "" {
		return errors.New("upstream config: network name is required")
	}
	if c.URL == "" {
		if c.ProviderHost == "" {
			return errors.New("upstream config: provider host is required")
		}
		if c.ProjectID == "" {
			return errors.New("upstream config: project id is required")
		}
	}
	return nil
}

// UpstreamURL returns the endpoint RPC calls are sent to.
func (c *UpstreamConfig) UpstreamURL() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf("https://%s.%s/v3/%s", c.NetworkName, c.ProviderHost, c.ProjectID)
}

// WithDefaults returns a copy with unset optional fields filled in.
func (c UpstreamConfig) WithDefaults() UpstreamConfig {
	if c.PollInterval == 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	if c.ClientVersion == "" {
		c.ClientVersion = "web3pipe/v" + Version
	}
	return c
}
