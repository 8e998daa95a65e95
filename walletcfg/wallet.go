package walletcfg

import "fmt"

const (
	// CoinSelectionAll spends every scanned UTXO.
	CoinSelectionAll = "all"

	// CoinSelectionLargest adds UTXOs largest first until the payment and
	// its fee are covered.
	CoinSelectionLargest = "largest"

	// SizeEstimationMeasured signs a representative transaction and
	// measures its virtual size.
	SizeEstimationMeasured = "measured"

	// SizeEstimationFormula uses closed-form per input/output byte counts.
	SizeEstimationFormula = "formula"

	// SizeEstimationSegwit uses closed-form P2WPKH virtual sizes with
	// maximum size signatures, without signing.
	SizeEstimationSegwit = "segwit"
)

// Wallet holds the options of the key and spending policy.
//
//nolint:ll
type Wallet struct {
	Account        uint32 `long:"account" description:"BIP84 account used to derive the wallet address."`
	Index          uint32 `long:"index" description:"BIP84 address index used to derive the wallet address."`
	CoinSelection  string `long:"coinselection" description:"How inputs are picked for a spend." choice:"all" choice:"largest"`
	SizeEstimation string `long:"sizeestimation" description:"How transaction size is estimated for fees." choice:"measured" choice:"formula" choice:"segwit"`
}

// DefaultWalletConfig returns the default wallet options.
func DefaultWalletConfig() *Wallet {
	return &Wallet{
		CoinSelection:  CoinSelectionAll,
		SizeEstimation: SizeEstimationMeasured,
	}
}

// Validate checks the wallet options.
func (w *Wallet) Validate() error {
	switch w.CoinSelection {
	case CoinSelectionAll, CoinSelectionLargest:
	default:
		return fmt.Errorf("unknown coin selection %q", w.CoinSelection)
	}

	switch w.SizeEstimation {
	case SizeEstimationMeasured, SizeEstimationFormula,
		SizeEstimationSegwit:

	default:
		return fmt.Errorf("unknown size estimation %q",
			w.SizeEstimation)
	}

	return nil
}
