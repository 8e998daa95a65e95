package main

import (
	"strings"
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
	"github.com/xchainjs/xchainjs-lib-sub000/chainfee"
	"github.com/xchainjs/xchainjs-lib-sub000/journal"
	"github.com/xchainjs/xchainjs-lib-sub000/wallet"
)

func TestNewTxResp(t *testing.T) {
	t.Parallel()

	data := &wallet.TxData{
		TxID:      "ab",
		Confirmed: true,
		Height:    100,
		Date:      time.Unix(1700000000, 0).UTC(),
		Fee:       500,
		From:      []wallet.TxIO{{Address: "a", Amount: 2000}},
		To: []wallet.TxIO{
			{Address: "b", Amount: 1000},
			{Address: "a", Amount: 500},
		},
		Memo: []byte("hi"),
	}

	resp := newTxResp(data)
	require.Equal(t, "2023-11-14T22:13:20Z", resp.Date)
	require.Equal(t, "hi", resp.Memo)
	require.Len(t, resp.From, 1)
	require.Len(t, resp.To, 2)
	require.Equal(t, int64(1000), resp.To[0].Amount)

	// Mempool transactions have no date.
	resp = newTxResp(&wallet.TxData{TxID: "cd"})
	require.Empty(t, resp.Date)
	require.Empty(t, resp.Memo)
}

func TestNewJournalResp(t *testing.T) {
	t.Parallel()

	tx := wire.NewMsgTx(2)
	tx.AddTxOut(wire.NewTxOut(1000, []byte{0x00, 0x14}))

	entry := &journal.Entry{
		Tx:            tx,
		Fee:           btcutil.Amount(300),
		Memo:          fn.Some([]byte("swap")),
		BroadcastTime: time.Unix(1700000000, 0),
		Vault:         true,
	}

	resp := newJournalResp(entry)
	require.Equal(t, tx.TxHash().String(), resp.TxID)
	require.Equal(t, "swap", resp.Memo)
	require.Equal(t, "2023-11-14T22:13:20Z", resp.BroadcastTime)
	require.True(t, resp.Vault)
	require.NotEmpty(t, resp.Hex)

	entry.Memo = fn.None[[]byte]()
	require.Empty(t, newJournalResp(entry).Memo)
}

func TestTables(t *testing.T) {
	t.Parallel()

	out := utxoTable([]utxoResp{{
		OutPoint: "aa:0", Value: 12_345, Confirmed: true, Height: 7,
	}})
	require.Contains(t, out, "aa:0")
	require.Contains(t, out, "12345")

	out = feeTable(
		map[chainfee.FeeOption]uint64{
			chainfee.FeeOptionFast:    10,
			chainfee.FeeOptionFastest: 20,
		},
		[]feeEntryResp{{Target: 1, FeeRate: 20, Fee: 2_820}},
	)
	require.Contains(t, out, "2820")

	// Footers are upper cased by the style.
	require.Contains(t, strings.ToLower(out), "fast=10")
	require.Contains(t, strings.ToLower(out), "fastest=20")

	out = txsTable(3, []txResp{{TxID: "bb", Memo: "swap"}})
	require.Contains(t, out, "bb")
	require.Contains(t, out, "swap")
}
