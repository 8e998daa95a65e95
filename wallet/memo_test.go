package wallet

import (
	"bytes"
	"context"
	"testing"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/stretchr/testify/require"
)

// TestMemoRoundTrip checks every memo compiles to a standard null data
// script and decodes back unchanged.
func TestMemoRoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		memo []byte
	}{
		{name: "negative one", memo: []byte{0x81}},
		{name: "zero", memo: []byte{0}},
		{name: "text", memo: []byte("=:BTC.BTC:bc1q")},
		{
			name: "max size",
			memo: bytes.Repeat([]byte{0x81}, MaxMemoSize),
		},
	}
	for i := byte(1); i <= 16; i++ {
		tests = append(tests, struct {
			name string
			memo []byte
		}{name: "small int", memo: []byte{i}})
	}

	for _, test := range tests {
		script, err := MemoScript(test.memo)
		require.NoError(t, err, test.name)
		require.Equal(
			t, txscript.NullDataTy, txscript.GetScriptClass(script),
			test.name,
		)

		memo, ok := MemoFromScript(script)
		require.True(t, ok, test.name)
		require.Equal(t, test.memo, memo, test.name)
	}
}

// TestMemoFromMinimalScript checks memos other wallets push as small
// integer opcodes are restored.
func TestMemoFromMinimalScript(t *testing.T) {
	t.Parallel()

	for _, memo := range [][]byte{{0}, {5}, {16}, {0x81}} {
		script, err := txscript.NullDataScript(memo)
		require.NoError(t, err)

		decoded, ok := MemoFromScript(script)
		require.True(t, ok)
		require.Equal(t, memo, decoded)
	}

	// A bare OP_RETURN carries an empty memo.
	decoded, ok := MemoFromScript([]byte{txscript.OP_RETURN})
	require.True(t, ok)
	require.Empty(t, decoded)

	// Scripts that aren't OP_RETURN pushes carry none.
	_, ok = MemoFromScript([]byte{txscript.OP_RETURN, txscript.OP_DUP})
	require.False(t, ok)
	_, ok = MemoFromScript([]byte{txscript.OP_0, txscript.OP_DATA_1, 1})
	require.False(t, ok)
	_, ok = MemoFromScript(nil)
	require.False(t, ok)

	tx := wire.NewMsgTx(2)
	tx.AddTxOut(wire.NewTxOut(1000, []byte{txscript.OP_TRUE}))
	require.True(t, ExtractMemo(tx).IsNone())
}

// TestBuildTxSingleByteMemo checks a one byte memo survives signing and
// extraction.
func TestBuildTxSingleByteMemo(t *testing.T) {
	t.Parallel()

	c, chain := newTestClient(t, testOpts{})
	chain.setUTXOs(200_000)

	memo := []byte{0x81}
	authored, err := c.BuildTx(context.Background(), TxParams{
		Recipient: testRecipient,
		Amount:    50_000,
		FeeRate:   5,
		Memo:      fn.Some(memo),
	})
	require.NoError(t, err)

	verifyTx(t, authored)
	checkBalanced(t, authored)
	require.Equal(t, 1, authored.MemoIndex)
	require.Equal(t, memo, ExtractMemo(authored.Tx).UnwrapOr(nil))
}
