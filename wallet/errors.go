package wallet

import (
	"errors"

	"github.com/xchainjs/xchainjs-lib-sub000/keychain"
)

var (
	// ErrNoPhrase is returned by operations that need key material before
	// SetPhrase was called, or after Purge.
	ErrNoPhrase = errors.New("no phrase has been set")

	// ErrInvalidMnemonic is returned by SetPhrase for a phrase that isn't
	// a valid BIP39 mnemonic.
	ErrInvalidMnemonic = keychain.ErrInvalidMnemonic

	// ErrNoUTXOs is returned when a spend is requested but the address
	// has no unspent outputs.
	ErrNoUTXOs = errors.New("no utxos to send")

	// ErrInsufficientFunds is returned when the unspent outputs don't
	// cover the amount plus fees.
	ErrInsufficientFunds = errors.New("insufficient balance for transaction")

	// ErrDustOutput is returned when the recipient amount is below the
	// dust limit.
	ErrDustOutput = errors.New("amount is below the dust limit")

	// ErrMemoTooLarge is returned for memos that don't fit in a standard
	// OP_RETURN output.
	ErrMemoTooLarge = errors.New("memo exceeds maximum OP_RETURN size")

	// ErrMissingMemo is returned when a vault transaction is built
	// without a memo.
	ErrMissingMemo = errors.New("vault transaction requires a memo")

	// ErrInvalidAddress is returned when an address can't be decoded or
	// belongs to another network.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidFeeRate is returned for a zero fee rate, or one above
	// chainfee.AbsoluteFeePerVByteCeiling.
	ErrInvalidFeeRate = errors.New("invalid fee rate")

	// ErrInvalidAmount is returned for amounts above btcutil.MaxSatoshi.
	ErrInvalidAmount = errors.New("amount exceeds the bitcoin supply")
)
