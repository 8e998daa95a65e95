package walletcfg

import "time"

const (
	// DefaultJournalFilename is the name of the broadcast journal file.
	DefaultJournalFilename = "journal.db"

	// DefaultJournalDBTimeout is how long we wait for the file lock.
	DefaultJournalDBTimeout = 10 * time.Second
)

// Journal holds the options of the local broadcast journal.
//
//nolint:ll
type Journal struct {
	Disable   bool          `long:"disable" description:"Don't record broadcast transactions locally."`
	DBTimeout time.Duration `long:"dbtimeout" description:"How long to wait for the journal file lock."`
}

// DefaultJournalConfig returns the default journal options.
func DefaultJournalConfig() *Journal {
	return &Journal{
		DBTimeout: DefaultJournalDBTimeout,
	}
}
