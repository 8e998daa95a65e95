package wallet

import (
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/mempool"
	"github.com/btcsuite/btcwallet/wallet/txsizes"
)

const (
	// TxEmptySize 10 bytes
	//	- Version: 4 bytes
	//	- CountTxIn: 1 byte
	//	- CountTxOut: 1 byte
	//	- LockTime: 4 bytes
	TxEmptySize = 4 + 1 + 1 + 4

	// TxInputBaseSize 41 bytes
	//	- PreviousOutPoint:
	//		- Hash: 32 bytes
	//		- Index: 4 bytes
	//	- OP_DATA: 1 byte (ScriptSigLength)
	//	- Sequence: 4 bytes
	TxInputBaseSize = 32 + 4 + 1 + 4

	// TxInputPubKeyHashSize 107 bytes
	//	- OP_DATA: 1 byte (signature length)
	//	- signature: 72 bytes
	//	- OP_DATA: 1 byte (pubkey length)
	//	- pubkey: 33 bytes
	TxInputPubKeyHashSize = 1 + 72 + 1 + 33

	// TxInputSize 148 bytes, one spent output.
	TxInputSize = TxInputBaseSize + TxInputPubKeyHashSize

	// TxOutputBaseSize 9 bytes
	//	- Value: 8 bytes
	//	- VarInt: 1 byte (PkScript length)
	TxOutputBaseSize = 8 + 1

	// TxOutputPubKeyHashSize 25 bytes, a P2PKH script.
	TxOutputPubKeyHashSize = 25

	// TxOutputSize 34 bytes, one value output.
	TxOutputSize = TxOutputBaseSize + TxOutputPubKeyHashSize

	// MinTxFee is the lowest fee the formula estimation will ever return.
	MinTxFee btcutil.Amount = 1000

	// P2WPKHInputVSize 69 vbytes
	//	- TxInputBaseSize: 41 bytes
	//	- witness: 109 weight units / 4, rounded up
	P2WPKHInputVSize = TxInputBaseSize +
		(txsizes.RedeemP2WPKHInputWitnessWeight+3)/4

	// P2WPKHOutputSize 31 bytes
	//	- Value: 8 bytes
	//	- VarInt: 1 byte (PkScript length)
	//	- PkScript (P2WPKH)
	P2WPKHOutputSize = TxOutputBaseSize + txsizes.P2WPKHPkScriptSize
)

// FormulaTxSize returns the closed form size estimate of a transaction with
// numInputs P2WPKH inputs, numOutputs value outputs and an optional OP_RETURN
// script. Every input and output is counted at its legacy (P2PKH) size,
// which overestimates segwit transactions.
func FormulaTxSize(numInputs, numOutputs int, memoScript []byte) int64 {
	size := int64(TxEmptySize) +
		int64(numInputs)*TxInputSize +
		int64(numOutputs)*TxOutputSize

	if len(memoScript) > 0 {
		size += TxOutputBaseSize + int64(len(memoScript))
	}

	return size
}

// FormulaFee returns the fee of a transaction of the given formula size,
// never below MinTxFee.
func FormulaFee(size int64, rate btcutil.Amount) btcutil.Amount {
	fee := btcutil.Amount(size) * rate
	if fee < MinTxFee {
		return MinTxFee
	}

	return fee
}

// EstimateP2WPKHVSize returns the expected virtual size of a transaction
// spending numInputs P2WPKH inputs to numOutputs P2WPKH outputs and an
// optional OP_RETURN script, assuming maximum size signatures.
func EstimateP2WPKHVSize(numInputs, numOutputs int,
	memoScript []byte) int64 {

	// The marker and flag add 2 weight units, i.e. half a vbyte, which
	// rounds up to one.
	size := int64(TxEmptySize) + 1 +
		int64(numInputs)*P2WPKHInputVSize +
		int64(numOutputs)*P2WPKHOutputSize

	if len(memoScript) > 0 {
		size += TxOutputBaseSize + int64(len(memoScript))
	}

	return size
}

// measuredVSize returns the virtual size of a signed transaction.
func measuredVSize(tx *btcutil.Tx) int64 {
	return mempool.GetTxVirtualSize(tx)
}
