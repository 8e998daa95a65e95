package walletcfg

import (
	"fmt"
	"time"
)

const (
	// DefaultFeeUpdateInterval is the interval at which cached fee
	// estimates are refreshed from the Esplora API.
	DefaultFeeUpdateInterval = 5 * time.Minute

	// DefaultFallbackFeeRate is the rate in sat/vB used when the API
	// can't provide an estimate.
	DefaultFallbackFeeRate = 20

	// DefaultMinFeeRate is the lowest rate in sat/vB we'll ever use.
	DefaultMinFeeRate = 1
)

// Fee holds the configuration options for fee estimation.
//
//nolint:ll
type Fee struct {
	FallbackFeeRate uint64        `long:"fallbackfeerate" description:"Fee rate in sat/vB used when no estimate is available."`
	MinFeeRate      uint64        `long:"minfeerate" description:"Lowest fee rate in sat/vB the wallet will pay."`
	UpdateInterval  time.Duration `long:"updateinterval" description:"How often cached fee estimates are refreshed."`
}

// DefaultFeeConfig returns the default fee estimation options.
func DefaultFeeConfig() *Fee {
	return &Fee{
		FallbackFeeRate: DefaultFallbackFeeRate,
		MinFeeRate:      DefaultMinFeeRate,
		UpdateInterval:  DefaultFeeUpdateInterval,
	}
}

// Validate checks the fee options.
func (f *Fee) Validate() error {
	if f.MinFeeRate == 0 {
		return fmt.Errorf("minfeerate must be at least 1 sat/vB")
	}
	if f.FallbackFeeRate < f.MinFeeRate {
		return fmt.Errorf("fallbackfeerate (%d) below minfeerate (%d)",
			f.FallbackFeeRate, f.MinFeeRate)
	}
	if f.UpdateInterval <= 0 {
		return fmt.Errorf("fee update interval must be positive")
	}

	return nil
}
