package xchainbtc

import (
	"path/filepath"
	"sort"
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/xchainjs/xchainjs-lib-sub000/build"
	"github.com/xchainjs/xchainjs-lib-sub000/chainfee"
	"github.com/xchainjs/xchainjs-lib-sub000/esplora"
	"github.com/xchainjs/xchainjs-lib-sub000/journal"
	"github.com/xchainjs/xchainjs-lib-sub000/wallet"
)

// Subsystem is the logging code of the root package.
const Subsystem = "XBTC"

// DefaultLogFilename is the name of the log file inside the log directory.
const DefaultLogFilename = "xbtc.log"

// SubLoggerManager owns the logging backend and one logger per subsystem.
// Loggers write to stdout and, once InitFileLogging has been called, to a
// rotating log file.
type SubLoggerManager struct {
	writer  *build.LogWriter
	rotator *build.RotatingLogWriter
	backend *btclog.Backend

	mu          sync.Mutex
	subLoggers  build.SubLoggers
	currentLvls map[string]string
}

// A compile time check to ensure SubLoggerManager implements
// build.LeveledSubLogger.
var _ build.LeveledSubLogger = (*SubLoggerManager)(nil)

// NewSubLoggerManager creates a manager with every package logger of the
// module registered and set to info.
func NewSubLoggerManager() *SubLoggerManager {
	writer := &build.LogWriter{}
	m := &SubLoggerManager{
		writer:      writer,
		rotator:     build.NewRotatingLogWriter(),
		backend:     btclog.NewBackend(writer),
		subLoggers:  make(build.SubLoggers),
		currentLvls: make(map[string]string),
	}

	m.register(Subsystem, func(l btclog.Logger) { log = l })
	m.register(esplora.Subsystem, esplora.UseLogger)
	m.register(chainfee.Subsystem, chainfee.UseLogger)
	m.register(wallet.Subsystem, wallet.UseLogger)
	m.register(journal.Subsystem, journal.UseLogger)

	m.SetLogLevels("info")

	return m
}

// register creates the logger of a subsystem and hands it to the package.
func (m *SubLoggerManager) register(subsystem string,
	useLogger func(btclog.Logger)) {

	logger := build.NewSubLogger(subsystem, m.backend.Logger)
	useLogger(logger)

	m.mu.Lock()
	m.subLoggers[subsystem] = logger
	m.mu.Unlock()
}

// SetQuiet stops the stdout copy of log lines.
func (m *SubLoggerManager) SetQuiet(quiet bool) {
	m.writer.Quiet = quiet
}

// InitFileLogging starts writing logs to logDir/DefaultLogFilename with
// rotation.
func (m *SubLoggerManager) InitFileLogging(logDir string,
	cfg *build.FileLoggerConfig) error {

	logFile := filepath.Join(logDir, DefaultLogFilename)
	if err := m.rotator.InitLogRotator(cfg, logFile); err != nil {
		return err
	}
	m.writer.RotatorPipe = m.rotator.Pipe()

	return nil
}

// Close flushes and closes the log file, if any.
func (m *SubLoggerManager) Close() error {
	m.writer.RotatorPipe = nil

	return m.rotator.Close()
}

// SubLoggers returns every registered subsystem logger.
//
// NOTE: This is part of the build.LeveledSubLogger interface.
func (m *SubLoggerManager) SubLoggers() build.SubLoggers {
	m.mu.Lock()
	defer m.mu.Unlock()

	loggers := make(build.SubLoggers, len(m.subLoggers))
	for k, v := range m.subLoggers {
		loggers[k] = v
	}

	return loggers
}

// SupportedSubsystems returns the sorted subsystem names.
//
// NOTE: This is part of the build.LeveledSubLogger interface.
func (m *SubLoggerManager) SupportedSubsystems() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	subsystems := make([]string, 0, len(m.subLoggers))
	for subsystem := range m.subLoggers {
		subsystems = append(subsystems, subsystem)
	}
	sort.Strings(subsystems)

	return subsystems
}

// SetLogLevel sets the level of one subsystem. Unknown subsystems are
// ignored and invalid levels default to info.
//
// NOTE: This is part of the build.LeveledSubLogger interface.
func (m *SubLoggerManager) SetLogLevel(subsystemID string, logLevel string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.setLogLevel(subsystemID, logLevel)
}

// setLogLevel must be called with the mutex held.
func (m *SubLoggerManager) setLogLevel(subsystemID, logLevel string) {
	logger, ok := m.subLoggers[subsystemID]
	if !ok {
		return
	}

	level, _ := btclog.LevelFromString(logLevel)
	logger.SetLevel(level)
	m.currentLvls[subsystemID] = level.String()
}

// SetLogLevels sets the level of every subsystem.
//
// NOTE: This is part of the build.LeveledSubLogger interface.
func (m *SubLoggerManager) SetLogLevels(logLevel string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for subsystemID := range m.subLoggers {
		m.setLogLevel(subsystemID, logLevel)
	}
}

// LogLevel returns the current level of a subsystem.
func (m *SubLoggerManager) LogLevel(subsystemID string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	level, ok := m.currentLvls[subsystemID]

	return level, ok
}

// log is the root package logger.
var log = build.NewSubLogger(Subsystem, nil)
