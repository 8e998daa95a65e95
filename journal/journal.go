package journal

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/kvdb"
)

var (
	// txBucket is the top-level bucket of the journal, keyed by txid.
	txBucket = []byte("broadcast-txs")

	// ErrTxNotFound is returned when the journal has no entry for a
	// txid.
	ErrTxNotFound = errors.New("tx not found in journal")
)

// Entry is a broadcast transaction.
type Entry struct {
	// Tx is the signed transaction.
	Tx *wire.MsgTx

	// Fee is the fee paid, zero if unknown.
	Fee btcutil.Amount

	// Memo is the OP_RETURN payload, if any.
	Memo fn.Option[[]byte]

	// BroadcastTime is when the transaction was published, with second
	// precision.
	BroadcastTime time.Time

	// Vault marks transactions built as vault deposits.
	Vault bool
}

// TxID returns the id of the journalled transaction.
func (e *Entry) TxID() chainhash.Hash {
	return e.Tx.TxHash()
}

// Config houses the parameters of a Journal.
type Config struct {
	// DBPath is the directory of the journal file. It is created if it
	// doesn't exist.
	DBPath string

	// DBFileName is the name of the journal file.
	DBFileName string

	// DBTimeout is how long to wait for the file lock.
	DBTimeout time.Duration

	// Clock stamps entries put without a broadcast time.
	Clock clock.Clock
}

// Journal is a bbolt backed record of broadcast transactions.
type Journal struct {
	cfg *Config

	db kvdb.Backend
}

// Open opens, creating it if needed, the journal file described by cfg.
func Open(cfg *Config) (*Journal, error) {
	if cfg.Clock == nil {
		cfg.Clock = clock.NewDefaultClock()
	}
	if cfg.DBTimeout == 0 {
		cfg.DBTimeout = kvdb.DefaultDBTimeout
	}

	db, err := kvdb.GetBoltBackend(&kvdb.BoltBackendConfig{
		DBPath:            cfg.DBPath,
		DBFileName:        cfg.DBFileName,
		NoFreelistSync:    true,
		AutoCompactMinAge: kvdb.DefaultBoltAutoCompactMinAge,
		DBTimeout:         cfg.DBTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to open journal: %w", err)
	}

	err = kvdb.Update(db, func(tx kvdb.RwTx) error {
		_, err := tx.CreateTopLevelBucket(txBucket)
		return err
	}, func() {})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Debugf("Opened journal at %v/%v", cfg.DBPath, cfg.DBFileName)

	return &Journal{cfg: cfg, db: db}, nil
}

// Close closes the journal file.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Put stores an entry, replacing any entry for the same txid.
func (j *Journal) Put(entry *Entry) error {
	if entry.Tx == nil {
		return fmt.Errorf("journal entry without tx")
	}
	if entry.BroadcastTime.IsZero() {
		entry.BroadcastTime = j.cfg.Clock.Now()
	}

	var b bytes.Buffer
	if err := encodeEntry(&b, entry); err != nil {
		return err
	}

	txid := entry.TxID()

	return kvdb.Update(j.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(txBucket)
		if bucket == nil {
			return kvdb.ErrBucketNotFound
		}

		return bucket.Put(txid[:], b.Bytes())
	}, func() {})
}

// Fetch returns the entry of txid or ErrTxNotFound.
func (j *Journal) Fetch(txid chainhash.Hash) (*Entry, error) {
	var entry *Entry
	err := kvdb.View(j.db, func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(txBucket)
		if bucket == nil {
			return kvdb.ErrBucketNotFound
		}

		v := bucket.Get(txid[:])
		if v == nil {
			return ErrTxNotFound
		}

		var err error
		entry, err = decodeEntry(bytes.NewReader(v))

		return err
	}, func() {
		entry = nil
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// List returns every entry, oldest broadcast first.
func (j *Journal) List() ([]*Entry, error) {
	var entries []*Entry
	err := kvdb.View(j.db, func(tx kvdb.RTx) error {
		bucket := tx.ReadBucket(txBucket)
		if bucket == nil {
			return kvdb.ErrBucketNotFound
		}

		return bucket.ForEach(func(_, v []byte) error {
			entry, err := decodeEntry(bytes.NewReader(v))
			if err != nil {
				return err
			}
			entries = append(entries, entry)

			return nil
		})
	}, func() {
		entries = nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, k int) bool {
		return entries[i].BroadcastTime.Before(
			entries[k].BroadcastTime,
		)
	})

	return entries, nil
}

// Delete removes the entry of txid, returning ErrTxNotFound if there is
// none.
func (j *Journal) Delete(txid chainhash.Hash) error {
	return kvdb.Update(j.db, func(tx kvdb.RwTx) error {
		bucket := tx.ReadWriteBucket(txBucket)
		if bucket == nil {
			return kvdb.ErrBucketNotFound
		}
		if bucket.Get(txid[:]) == nil {
			return ErrTxNotFound
		}

		return bucket.Delete(txid[:])
	}, func() {})
}
