package build

import (
	"sort"
	"testing"

	"github.com/btcsuite/btclog"
	"github.com/stretchr/testify/require"
)

// mockLeveledLogger records the levels that were requested per subsystem.
type mockLeveledLogger struct {
	levels map[string]string
}

func newMockLeveledLogger(subsystems ...string) *mockLeveledLogger {
	m := &mockLeveledLogger{levels: make(map[string]string)}
	for _, s := range subsystems {
		m.levels[s] = ""
	}

	return m
}

func (m *mockLeveledLogger) SubLoggers() SubLoggers {
	loggers := make(SubLoggers, len(m.levels))
	for s := range m.levels {
		loggers[s] = btclog.Disabled
	}

	return loggers
}

func (m *mockLeveledLogger) SupportedSubsystems() []string {
	var subsystems []string
	for s := range m.levels {
		subsystems = append(subsystems, s)
	}
	sort.Strings(subsystems)

	return subsystems
}

func (m *mockLeveledLogger) SetLogLevel(subsystemID, logLevel string) {
	m.levels[subsystemID] = logLevel
}

func (m *mockLeveledLogger) SetLogLevels(logLevel string) {
	for s := range m.levels {
		m.levels[s] = logLevel
	}
}

// TestParseAndSetDebugLevels checks the global and per-subsystem forms of the
// debug level string.
func TestParseAndSetDebugLevels(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name      string
		level     string
		expected  map[string]string
		expectErr bool
	}{
		{
			name:  "global level",
			level: "debug",
			expected: map[string]string{
				"WLLT": "debug", "ESPL": "debug",
			},
		},
		{
			name:  "global and subsystem",
			level: "info,ESPL=trace",
			expected: map[string]string{
				"WLLT": "info", "ESPL": "trace",
			},
		},
		{
			name:  "subsystem only",
			level: "WLLT=warn",
			expected: map[string]string{
				"WLLT": "warn", "ESPL": "",
			},
		},
		{
			name:      "invalid global level",
			level:     "loud",
			expectErr: true,
		},
		{
			name:      "unknown subsystem",
			level:     "info,NOPE=debug",
			expectErr: true,
		},
		{
			name:      "malformed pair",
			level:     "info,ESPL=debug=trace",
			expectErr: true,
		},
		{
			name:      "invalid subsystem level",
			level:     "ESPL=chatty",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			logger := newMockLeveledLogger("WLLT", "ESPL")
			err := ParseAndSetDebugLevels(tc.level, logger)
			if tc.expectErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, logger.levels)
		})
	}
}

// TestNewSubLoggerDisabled makes sure a missing generator disables logging.
func TestNewSubLoggerDisabled(t *testing.T) {
	t.Parallel()

	require.Equal(t, btclog.Disabled, NewSubLogger("TEST", nil))

	backend := btclog.NewBackend(&LogWriter{Quiet: true})
	logger := NewSubLogger("TEST", backend.Logger)
	require.NotEqual(t, btclog.Disabled, logger)
}

func TestSupportedLogCompressor(t *testing.T) {
	t.Parallel()

	require.True(t, SupportedLogCompressor(Gzip))
	require.True(t, SupportedLogCompressor(Zstd))
	require.False(t, SupportedLogCompressor("lz4"))
	require.Equal(t, []string{Gzip, Zstd}, SupportedLogCompressors())
}
