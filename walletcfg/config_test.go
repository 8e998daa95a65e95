package walletcfg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultsValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, DefaultEsploraConfig().Validate())
	require.NoError(t, DefaultFeeConfig().Validate())
	require.NoError(t, DefaultWalletConfig().Validate())
}

func TestEsploraValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		mutate func(*Esplora)
		valid  bool
	}{
		{
			name: "https url",
			mutate: func(e *Esplora) {
				e.URL = "https://mempool.space/api"
			},
			valid: true,
		},
		{
			name: "bad scheme",
			mutate: func(e *Esplora) {
				e.URL = "ftp://mempool.space/api"
			},
		},
		{
			name: "zero timeout",
			mutate: func(e *Esplora) {
				e.RequestTimeout = 0
			},
		},
		{
			name: "negative retries",
			mutate: func(e *Esplora) {
				e.MaxRetries = -1
			},
		},
		{
			name: "isolation without proxy",
			mutate: func(e *Esplora) {
				e.TorIsolation = true
			},
		},
		{
			name: "isolation with proxy",
			mutate: func(e *Esplora) {
				e.Proxy = "127.0.0.1:9050"
				e.TorIsolation = true
			},
			valid: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultEsploraConfig()
			tc.mutate(cfg)

			err := cfg.Validate()
			if tc.valid {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestFeeValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultFeeConfig()
	cfg.MinFeeRate = 0
	require.Error(t, cfg.Validate())

	cfg = DefaultFeeConfig()
	cfg.FallbackFeeRate = 1
	cfg.MinFeeRate = 2
	require.Error(t, cfg.Validate())

	cfg = DefaultFeeConfig()
	cfg.UpdateInterval = -time.Second
	require.Error(t, cfg.Validate())
}

func TestWalletValidate(t *testing.T) {
	t.Parallel()

	cfg := DefaultWalletConfig()
	cfg.CoinSelection = "random"
	require.Error(t, cfg.Validate())

	cfg = DefaultWalletConfig()
	cfg.SizeEstimation = "guess"
	require.Error(t, cfg.Validate())

	cfg = DefaultWalletConfig()
	cfg.CoinSelection = CoinSelectionLargest
	cfg.SizeEstimation = SizeEstimationFormula
	require.NoError(t, cfg.Validate())

	cfg.SizeEstimation = SizeEstimationSegwit
	require.NoError(t, cfg.Validate())
}
