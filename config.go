package xchainbtc

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	flags "github.com/jessevdk/go-flags"
	"github.com/xchainjs/xchainjs-lib-sub000/build"
	"github.com/xchainjs/xchainjs-lib-sub000/walletcfg"
)

const (
	// DefaultConfigFilename is the name of the config file inside the app
	// directory.
	DefaultConfigFilename = "xbtc.conf"

	defaultDataDirname = "data"
	defaultLogDirname  = "logs"
	defaultNetwork     = "mainnet"
	defaultDebugLevel  = "info"
)

var (
	// DefaultAppDir is the default home of config, data and logs.
	DefaultAppDir = btcutil.AppDataDir("xbtc", false)

	// DefaultConfigFile is the default path of the config file.
	DefaultConfigFile = filepath.Join(DefaultAppDir, DefaultConfigFilename)

	defaultDataDir = filepath.Join(DefaultAppDir, defaultDataDirname)
	defaultLogDir  = filepath.Join(DefaultAppDir, defaultLogDirname)
)

// Config is the configuration of a wallet, read from an ini file over the
// defaults.
//
//nolint:ll
type Config struct {
	AppDir  string `long:"appdir" description:"The base directory that contains config, data and logs."`
	DataDir string `long:"datadir" description:"The directory to store the broadcast journal within."`
	LogDir  string `long:"logdir" description:"Directory to log output."`

	Network     string `long:"network" description:"The network to operate on." choice:"mainnet" choice:"testnet" choice:"signet" choice:"regtest" choice:"stagenet"`
	ExplorerURL string `long:"explorerurl" description:"Block explorer web UI used for links. Defaults to the network's explorer."`

	DebugLevel string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <global-level>,<subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems."`
	NoFileLog  bool   `long:"nofilelog" description:"Only log to stdout."`

	LogConfig *build.FileLoggerConfig `group:"logging" namespace:"logging"`

	Esplora *walletcfg.Esplora `group:"esplora" namespace:"esplora"`

	Fee *walletcfg.Fee `group:"fee" namespace:"fee"`

	Wallet *walletcfg.Wallet `group:"wallet" namespace:"wallet"`

	Journal *walletcfg.Journal `group:"journal" namespace:"journal"`

	// activeNetParams are the parameters of Network, set by
	// ValidateConfig.
	activeNetParams *NetParams
}

// DefaultConfig returns all default values for the Config struct.
func DefaultConfig() Config {
	return Config{
		AppDir:     DefaultAppDir,
		DataDir:    defaultDataDir,
		LogDir:     defaultLogDir,
		Network:    defaultNetwork,
		DebugLevel: defaultDebugLevel,
		LogConfig:  build.DefaultFileLoggerConfig(),
		Esplora:    walletcfg.DefaultEsploraConfig(),
		Fee:        walletcfg.DefaultFeeConfig(),
		Wallet:     walletcfg.DefaultWalletConfig(),
		Journal:    walletcfg.DefaultJournalConfig(),
	}
}

// ConfigOption modifies a config after the file has been read and before it
// is validated, e.g. to apply command line overrides.
type ConfigOption func(*Config)

// LoadConfig reads configFile over the defaults, applies the options and
// validates the result. A missing file is fine, a malformed one is not. An
// empty configFile means the default path.
func LoadConfig(configFile string, opts ...ConfigOption) (*Config, error) {
	cfg := DefaultConfig()

	if configFile == "" {
		configFile = DefaultConfigFile
	}
	configFile = CleanAndExpandPath(configFile)

	var configFileError error
	if err := flags.IniParse(configFile, &cfg); err != nil {
		var iniErr *flags.IniError
		if errors.As(err, &iniErr) {
			return nil, err
		}

		configFileError = err
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	cleanCfg, err := ValidateConfig(cfg)
	if err != nil {
		return nil, err
	}

	if configFileError != nil && !os.IsNotExist(configFileError) {
		log.Warnf("%v", configFileError)
	}

	return cleanCfg, nil
}

// ValidateConfig checks the given configuration, fills in the network
// dependent defaults and normalizes file system paths. The cleaned up config
// is returned on success.
func ValidateConfig(cfg Config) (*Config, error) {
	// Files live inside a non-default app dir unless they were moved
	// explicitly.
	appDir := CleanAndExpandPath(cfg.AppDir)
	if appDir != DefaultAppDir {
		if cfg.DataDir == defaultDataDir {
			cfg.DataDir = filepath.Join(appDir, defaultDataDirname)
		}
		if cfg.LogDir == defaultLogDir {
			cfg.LogDir = filepath.Join(appDir, defaultLogDirname)
		}
	}
	cfg.AppDir = appDir
	cfg.DataDir = CleanAndExpandPath(cfg.DataDir)
	cfg.LogDir = CleanAndExpandPath(cfg.LogDir)

	params, err := NetworkParams(cfg.Network)
	if err != nil {
		return nil, err
	}
	cfg.activeNetParams = params

	if cfg.Esplora == nil {
		cfg.Esplora = walletcfg.DefaultEsploraConfig()
	}
	if cfg.Esplora.URL == "" {
		cfg.Esplora.URL = params.EsploraURL
	}
	if cfg.ExplorerURL == "" {
		cfg.ExplorerURL = params.ExplorerURL
	}

	if cfg.LogConfig == nil {
		cfg.LogConfig = build.DefaultFileLoggerConfig()
	}
	if cfg.Fee == nil {
		cfg.Fee = walletcfg.DefaultFeeConfig()
	}
	if cfg.Wallet == nil {
		cfg.Wallet = walletcfg.DefaultWalletConfig()
	}
	if cfg.Journal == nil {
		cfg.Journal = walletcfg.DefaultJournalConfig()
	}

	if !build.SupportedLogCompressor(cfg.LogConfig.Compressor) {
		return nil, fmt.Errorf("invalid log compressor %q, supported "+
			"compressors are %v", cfg.LogConfig.Compressor,
			build.SupportedLogCompressors())
	}

	if err := cfg.Esplora.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Fee.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Wallet.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ActiveNetParams returns the parameters of the configured network. It is
// nil until the config has been validated.
func (c *Config) ActiveNetParams() *NetParams {
	return c.activeNetParams
}

// NetworkDataDir is the directory of the network's journal.
func (c *Config) NetworkDataDir() string {
	return filepath.Join(
		c.DataDir, NormalizeNetwork(c.activeNetParams.Params),
	)
}

// ApplyLogging sets the configured debug levels and, unless disabled,
// starts logging to a rotating file in the network's log directory.
func (c *Config) ApplyLogging(m *SubLoggerManager) error {
	if err := build.ParseAndSetDebugLevels(c.DebugLevel, m); err != nil {
		return err
	}

	if c.NoFileLog {
		return nil
	}

	logDir := filepath.Join(
		c.LogDir, NormalizeNetwork(c.activeNetParams.Params),
	)

	return m.InitFileLogging(logDir, c.LogConfig)
}

// CleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
// This function is taken from https://github.com/btcsuite/btcd
func CleanAndExpandPath(path string) string {
	if path == "" {
		return ""
	}

	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		var homeDir string
		u, err := user.Current()
		if err == nil {
			homeDir = u.HomeDir
		} else {
			homeDir = os.Getenv("HOME")
		}

		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but the variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}
