package xchainbtc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xchainjs/xchainjs-lib-sub000/build"
)

// TestSubLoggerManager checks the registry and debug level parsing.
func TestSubLoggerManager(t *testing.T) {
	m := NewSubLoggerManager()
	m.SetQuiet(true)

	require.Equal(t, []string{"CFEE", "ESPL", "JRNL", "WLLT", "XBTC"},
		m.SupportedSubsystems())

	require.NoError(t, build.ParseAndSetDebugLevels("warn,ESPL=debug", m))
	level, ok := m.LogLevel("ESPL")
	require.True(t, ok)
	require.Equal(t, "DBG", level)
	level, ok = m.LogLevel("WLLT")
	require.True(t, ok)
	require.Equal(t, "WRN", level)

	require.Error(t, build.ParseAndSetDebugLevels("info,NOPE=debug", m))
	require.Error(t, build.ParseAndSetDebugLevels("loud", m))

	// Unknown subsystems are ignored.
	m.SetLogLevel("NOPE", "trace")
	_, ok = m.LogLevel("NOPE")
	require.False(t, ok)
}

// TestApplyLogging checks file logging lands in the network log dir.
func TestApplyLogging(t *testing.T) {
	cfg := DefaultConfig()
	cfg.AppDir = t.TempDir()
	cfg.DebugLevel = "debug"

	clean, err := ValidateConfig(cfg)
	require.NoError(t, err)

	m := NewSubLoggerManager()
	m.SetQuiet(true)
	require.NoError(t, clean.ApplyLogging(m))

	log.Infof("hello")
	require.NoError(t, m.Close())

	_, err = os.Stat(filepath.Join(
		cfg.AppDir, "logs", "mainnet", DefaultLogFilename,
	))
	require.NoError(t, err)
}
