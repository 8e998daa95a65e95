package xchainbtc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"github.com/xchainjs/xchainjs-lib-sub000/walletcfg"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	return path
}

// TestDefaultConfigValid checks the defaults pass validation and pick the
// mainnet services.
func TestDefaultConfigValid(t *testing.T) {
	t.Parallel()

	cfg, err := ValidateConfig(DefaultConfig())
	require.NoError(t, err)
	require.Equal(t, &chaincfg.MainNetParams, cfg.ActiveNetParams().Params)
	require.Equal(t, "https://blockstream.info/api", cfg.Esplora.URL)
	require.Equal(t, "https://blockstream.info", cfg.ExplorerURL)
	require.Equal(t, filepath.Join(DefaultAppDir, "data", "mainnet"),
		cfg.NetworkDataDir())
}

// TestLoadConfig checks file values override defaults and options override
// the file.
func TestLoadConfig(t *testing.T) {
	t.Parallel()

	appDir := t.TempDir()
	path := writeConfig(t, `
[Application Options]
appdir=`+appDir+`
network=testnet

[esplora]
esplora.url=http://localhost:3002
esplora.maxretries=3

[wallet]
wallet.coinselection=largest
wallet.index=7
`)

	cfg, err := LoadConfig(path, func(c *Config) {
		c.Fee.MinFeeRate = 2
	})
	require.NoError(t, err)

	require.Equal(t, &chaincfg.TestNet3Params, cfg.ActiveNetParams().Params)
	require.Equal(t, "http://localhost:3002", cfg.Esplora.URL)
	require.Equal(t, 3, cfg.Esplora.MaxRetries)
	require.Equal(t, walletcfg.CoinSelectionLargest, cfg.Wallet.CoinSelection)
	require.EqualValues(t, 7, cfg.Wallet.Index)
	require.EqualValues(t, 2, cfg.Fee.MinFeeRate)
	require.Equal(t, "https://blockstream.info/testnet", cfg.ExplorerURL)

	require.Equal(t, filepath.Join(appDir, "data"), cfg.DataDir)
	require.Equal(t, filepath.Join(appDir, "logs"), cfg.LogDir)
	require.Equal(t, filepath.Join(appDir, "data", "testnet"),
		cfg.NetworkDataDir())
}

// TestLoadConfigStagenet checks stagenet is accepted in the config file and
// runs on mainnet.
func TestLoadConfigStagenet(t *testing.T) {
	t.Parallel()

	appDir := t.TempDir()
	path := writeConfig(t, `
[Application Options]
appdir=`+appDir+`
network=stagenet
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "stagenet", cfg.Network)
	require.Equal(t, &chaincfg.MainNetParams, cfg.ActiveNetParams().Params)
	require.Equal(t, filepath.Join(appDir, "data", "mainnet"),
		cfg.NetworkDataDir())
}

// TestLoadConfigMissingFile checks a missing file falls back to defaults.
func TestLoadConfigMissingFile(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.conf"))
	require.NoError(t, err)
	require.Equal(t, "mainnet", cfg.Network)
}

// TestLoadConfigErrors checks malformed files and invalid values are
// rejected.
func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		opt     ConfigOption
	}{{
		name:    "unknown option",
		content: "[Application Options]\nnosuchoption=1\n",
	}, {
		name:    "bad network",
		content: "[Application Options]\nnetwork=moonnet\n",
	}, {
		name: "bad esplora url",
		opt: func(c *Config) {
			c.Esplora.URL = "ftp://example.com"
		},
	}, {
		name: "fallback below min",
		opt: func(c *Config) {
			c.Fee.FallbackFeeRate = 1
			c.Fee.MinFeeRate = 5
		},
	}, {
		name: "bad coin selection",
		opt: func(c *Config) {
			c.Wallet.CoinSelection = "random"
		},
	}, {
		name: "bad compressor",
		opt: func(c *Config) {
			c.LogConfig.Compressor = "lz4"
		},
	}}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			path := writeConfig(t, test.content)

			var opts []ConfigOption
			if test.opt != nil {
				opts = append(opts, test.opt)
			}

			_, err := LoadConfig(path, opts...)
			require.Error(t, err)
		})
	}
}

// TestNetworkParams checks names and aliases.
func TestNetworkParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params *chaincfg.Params
		dir    string
	}{
		{"mainnet", &chaincfg.MainNetParams, "mainnet"},
		{"stagenet", &chaincfg.MainNetParams, "mainnet"},
		{"Testnet", &chaincfg.TestNet3Params, "testnet"},
		{"testnet3", &chaincfg.TestNet3Params, "testnet"},
		{"signet", &chaincfg.SigNetParams, "signet"},
		{"regtest", &chaincfg.RegressionNetParams, "regtest"},
	}
	for _, test := range tests {
		params, err := NetworkParams(test.name)
		require.NoError(t, err, test.name)
		require.Equal(t, test.params, params.Params)
		require.NotEmpty(t, params.EsploraURL)
		require.Equal(t, test.dir, NormalizeNetwork(params.Params))
	}

	_, err := NetworkParams("litecoin")
	require.Error(t, err)

	// The returned params are a copy.
	params, err := NetworkParams("mainnet")
	require.NoError(t, err)
	params.EsploraURL = "changed"
	params, err = NetworkParams("mainnet")
	require.NoError(t, err)
	require.Equal(t, "https://blockstream.info/api", params.EsploraURL)
}

// TestCleanAndExpandPath checks home and variable expansion.
func TestCleanAndExpandPath(t *testing.T) {
	t.Setenv("XBTC_TEST_DIR", "/tmp/xbtc")

	require.Empty(t, CleanAndExpandPath(""))
	require.Equal(t, "/tmp/xbtc/data",
		CleanAndExpandPath("$XBTC_TEST_DIR/data/"))
	require.Equal(t, "/a/c", CleanAndExpandPath("/a/b/../c"))

	expanded := CleanAndExpandPath("~/.xbtc")
	require.NotContains(t, expanded, "~")
	require.Equal(t, ".xbtc", filepath.Base(expanded))
}
