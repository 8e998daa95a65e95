package xchainbtc

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
)

// NetParams couples the consensus parameters of a network with the public
// services the wallet talks to on it.
type NetParams struct {
	*chaincfg.Params

	// EsploraURL is the default Esplora API of the network.
	EsploraURL string

	// ExplorerURL is the default block explorer web UI, empty if none.
	ExplorerURL string
}

// mainNetParams contains parameters specific to the current Bitcoin mainnet.
var mainNetParams = NetParams{
	Params:      &chaincfg.MainNetParams,
	EsploraURL:  "https://blockstream.info/api",
	ExplorerURL: "https://blockstream.info",
}

// testNetParams contains parameters specific to the 3rd version of the test
// network.
var testNetParams = NetParams{
	Params:      &chaincfg.TestNet3Params,
	EsploraURL:  "https://blockstream.info/testnet/api",
	ExplorerURL: "https://blockstream.info/testnet",
}

// sigNetParams contains parameters specific to the default signet.
var sigNetParams = NetParams{
	Params:      &chaincfg.SigNetParams,
	EsploraURL:  "https://mempool.space/signet/api",
	ExplorerURL: "https://mempool.space/signet",
}

// regTestNetParams contains parameters specific to a local regtest network
// with electrs serving the Esplora API.
var regTestNetParams = NetParams{
	Params:     &chaincfg.RegressionNetParams,
	EsploraURL: "http://localhost:3002",
}

// Networks lists the supported network names.
var Networks = []string{"mainnet", "testnet", "signet", "regtest"}

// NetworkParams returns the parameters of a network by name. The btcd names
// of the networks are accepted as aliases.
func NetworkParams(name string) (*NetParams, error) {
	var params NetParams
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mainnet", "main", "bitcoin", "stagenet":
		params = mainNetParams

	case "testnet", "testnet3", "test":
		params = testNetParams

	case "signet":
		params = sigNetParams

	case "regtest", "regression":
		params = regTestNetParams

	default:
		return nil, fmt.Errorf("unknown network %q, supported "+
			"networks are %v", name, Networks)
	}

	return &params, nil
}

// NormalizeNetwork returns the canonical name of a network, suitable for a
// directory name.
func NormalizeNetwork(params *chaincfg.Params) string {
	switch params.Name {
	case chaincfg.TestNet3Params.Name:
		return "testnet"

	case chaincfg.RegressionNetParams.Name:
		return "regtest"

	default:
		return params.Name
	}
}
