package wallet

import (
	"context"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchainjs/xchainjs-lib-sub000/chainfee"
	"github.com/xchainjs/xchainjs-lib-sub000/esplora"
	"github.com/xchainjs/xchainjs-lib-sub000/journal"
	"github.com/xchainjs/xchainjs-lib-sub000/walletcfg"
)

// Chain is the block explorer API the wallet talks to. It is implemented by
// *esplora.Client.
type Chain interface {
	// GetAddressUTXOs returns the unspent outputs of an address.
	GetAddressUTXOs(ctx context.Context,
		address string) ([]*esplora.UTXO, error)

	// GetAddressStats returns the funded/spent summary of an address.
	GetAddressStats(ctx context.Context,
		address string) (*esplora.AddressStats, error)

	// GetAddressTxs returns mempool and the newest confirmed
	// transactions of an address.
	GetAddressTxs(ctx context.Context,
		address string) ([]*esplora.TxInfo, error)

	// GetAddressTxsChain returns the confirmed transactions older than
	// lastSeenTxid.
	GetAddressTxsChain(ctx context.Context, address,
		lastSeenTxid string) ([]*esplora.TxInfo, error)

	// GetTransaction returns a single transaction.
	GetTransaction(ctx context.Context,
		txid string) (*esplora.TxInfo, error)

	// GetFeeEstimates returns fee rates per confirmation target.
	GetFeeEstimates(ctx context.Context) (esplora.FeeEstimates, error)

	// GetBlocks returns recent blocks, newest first.
	GetBlocks(ctx context.Context,
		start fn.Option[int64]) ([]*esplora.BlockInfo, error)

	// BroadcastTx publishes a transaction.
	BroadcastTx(ctx context.Context,
		tx *wire.MsgTx) (*chainhash.Hash, error)
}

// A compile time check to ensure the esplora client can back a wallet.
var _ Chain = (*esplora.Client)(nil)

// Journal records broadcast transactions.
type Journal interface {
	// Put stores an entry, replacing any entry with the same txid.
	Put(entry *journal.Entry) error
}

// Config houses the parameters of a wallet Client.
type Config struct {
	// ChainParams is the network the wallet operates on.
	ChainParams *chaincfg.Params

	// Chain is the explorer API used for scans and broadcasts.
	Chain Chain

	// Estimator provides fee rates for the named fee options.
	Estimator chainfee.Estimator

	// Journal, if set, records every broadcast transaction.
	Journal Journal

	// Account and Index select the BIP84 key of the wallet address.
	Account uint32
	Index   uint32

	// CoinSelection is either walletcfg.CoinSelectionAll or
	// walletcfg.CoinSelectionLargest.
	CoinSelection string

	// SizeEstimation is walletcfg.SizeEstimationMeasured,
	// walletcfg.SizeEstimationFormula or walletcfg.SizeEstimationSegwit.
	SizeEstimation string

	// Explorer builds links to a block explorer web UI.
	Explorer Explorer

	// Clock timestamps journal entries. Defaults to the system clock.
	Clock clock.Clock
}

// applyDefaults fills in optional fields.
func (c *Config) applyDefaults() {
	if c.ChainParams == nil {
		c.ChainParams = &chaincfg.MainNetParams
	}
	if c.CoinSelection == "" {
		c.CoinSelection = walletcfg.CoinSelectionAll
	}
	if c.SizeEstimation == "" {
		c.SizeEstimation = walletcfg.SizeEstimationMeasured
	}
	if c.Clock == nil {
		c.Clock = clock.NewDefaultClock()
	}
}
