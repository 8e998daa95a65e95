package journal

import (
	"bytes"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

func openTestJournal(t *testing.T) (*Journal, *clock.TestClock) {
	t.Helper()

	testClock := clock.NewTestClock(testTime)
	j, err := Open(&Config{
		DBPath:     t.TempDir(),
		DBFileName: "journal.db",
		DBTimeout:  time.Second,
		Clock:      testClock,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, j.Close())
	})

	return j, testClock
}

// testTx returns a distinct transaction per seed.
func testTx(seed byte) *wire.MsgTx {
	tx := wire.NewMsgTx(2)
	tx.AddTxIn(wire.NewTxIn(
		wire.NewOutPoint(&chainhash.Hash{seed}, uint32(seed)), nil,
		[][]byte{{seed, 1}, {seed, 2}},
	))
	tx.AddTxOut(wire.NewTxOut(int64(seed)*1000, []byte{0x00, 0x14, seed}))

	return tx
}

func serialize(t *testing.T, tx *wire.MsgTx) []byte {
	t.Helper()

	var b bytes.Buffer
	require.NoError(t, tx.Serialize(&b))

	return b.Bytes()
}

// TestPutFetch checks an entry comes back as it was stored.
func TestPutFetch(t *testing.T) {
	t.Parallel()

	j, _ := openTestJournal(t)

	entry := &Entry{
		Tx:            testTx(1),
		Fee:           btcutil.Amount(1410),
		Memo:          fn.Some([]byte("SWAP:THOR.RUNE")),
		BroadcastTime: testTime.Add(-time.Minute),
		Vault:         true,
	}
	require.NoError(t, j.Put(entry))

	got, err := j.Fetch(entry.TxID())
	require.NoError(t, err)

	require.Equal(t, serialize(t, entry.Tx), serialize(t, got.Tx))
	require.Equal(t, entry.Fee, got.Fee)
	require.Equal(t, []byte("SWAP:THOR.RUNE"), got.Memo.UnwrapOr(nil))
	require.Equal(t, entry.BroadcastTime.Unix(), got.BroadcastTime.Unix())
	require.True(t, got.Vault)
}

// TestPutWithoutMemo checks an entry without memo decodes to None and that
// a missing broadcast time is taken from the clock.
func TestPutWithoutMemo(t *testing.T) {
	t.Parallel()

	j, _ := openTestJournal(t)

	entry := &Entry{Tx: testTx(2)}
	require.NoError(t, j.Put(entry))

	got, err := j.Fetch(entry.TxID())
	require.NoError(t, err)
	require.True(t, got.Memo.IsNone())
	require.False(t, got.Vault)
	require.Equal(t, testTime.Unix(), got.BroadcastTime.Unix())
}

// TestPutReplaces checks a second put of the same tx overwrites the first.
func TestPutReplaces(t *testing.T) {
	t.Parallel()

	j, _ := openTestJournal(t)

	tx := testTx(3)
	require.NoError(t, j.Put(&Entry{Tx: tx, Fee: 100}))
	require.NoError(t, j.Put(&Entry{Tx: tx, Fee: 200}))

	entries, err := j.List()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, btcutil.Amount(200), entries[0].Fee)
}

// TestListOrder checks entries are listed oldest first regardless of txid
// order.
func TestListOrder(t *testing.T) {
	t.Parallel()

	j, _ := openTestJournal(t)

	times := []time.Duration{3 * time.Hour, time.Hour, 2 * time.Hour}
	for i, d := range times {
		require.NoError(t, j.Put(&Entry{
			Tx:            testTx(byte(10 + i)),
			BroadcastTime: testTime.Add(d),
		}))
	}

	entries, err := j.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		require.False(t, entries[i].BroadcastTime.Before(
			entries[i-1].BroadcastTime,
		))
	}
	require.Equal(t, testTime.Add(time.Hour).Unix(),
		entries[0].BroadcastTime.Unix())
}

// TestFetchDelete checks the not found paths.
func TestFetchDelete(t *testing.T) {
	t.Parallel()

	j, _ := openTestJournal(t)

	entry := &Entry{Tx: testTx(4)}
	_, err := j.Fetch(entry.TxID())
	require.ErrorIs(t, err, ErrTxNotFound)
	require.ErrorIs(t, j.Delete(entry.TxID()), ErrTxNotFound)

	require.NoError(t, j.Put(entry))
	require.NoError(t, j.Delete(entry.TxID()))

	_, err = j.Fetch(entry.TxID())
	require.ErrorIs(t, err, ErrTxNotFound)

	entries, err := j.List()
	require.NoError(t, err)
	require.Empty(t, entries)
}

// TestReopen checks entries survive closing the file.
func TestReopen(t *testing.T) {
	t.Parallel()

	cfg := &Config{
		DBPath:     t.TempDir(),
		DBFileName: "journal.db",
		Clock:      clock.NewTestClock(testTime),
	}

	j, err := Open(cfg)
	require.NoError(t, err)
	entry := &Entry{Tx: testTx(5), Fee: 42}
	require.NoError(t, j.Put(entry))
	require.NoError(t, j.Close())

	j, err = Open(cfg)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, j.Close())
	}()

	got, err := j.Fetch(entry.TxID())
	require.NoError(t, err)
	require.Equal(t, btcutil.Amount(42), got.Fee)
}

// TestPutNoTx checks entries without a transaction are refused.
func TestPutNoTx(t *testing.T) {
	t.Parallel()

	j, _ := openTestJournal(t)
	require.Error(t, j.Put(&Entry{}))
}
