package esplora

import (
	"sort"
	"strconv"
)

// BlockInfo represents block information from the API.
type BlockInfo struct {
	ID                string  `json:"id"`
	Height            int64   `json:"height"`
	Version           int32   `json:"version"`
	Timestamp         int64   `json:"timestamp"`
	TxCount           int     `json:"tx_count"`
	Size              int     `json:"size"`
	Weight            int     `json:"weight"`
	MerkleRoot        string  `json:"merkle_root"`
	PreviousBlockHash string  `json:"previousblockhash"`
	MedianTime        int64   `json:"mediantime"`
	Nonce             uint32  `json:"nonce"`
	Bits              uint32  `json:"bits"`
	Difficulty        float64 `json:"difficulty"`
}

// TxStatus represents transaction confirmation status.
type TxStatus struct {
	Confirmed   bool   `json:"confirmed"`
	BlockHeight int64  `json:"block_height,omitempty"`
	BlockHash   string `json:"block_hash,omitempty"`
	BlockTime   int64  `json:"block_time,omitempty"`
}

// TxInfo represents transaction information from the API.
type TxInfo struct {
	TxID     string   `json:"txid"`
	Version  int32    `json:"version"`
	LockTime uint32   `json:"locktime"`
	Size     int      `json:"size"`
	Weight   int      `json:"weight"`
	Fee      int64    `json:"fee"`
	Vin      []TxVin  `json:"vin"`
	Vout     []TxVout `json:"vout"`
	Status   TxStatus `json:"status"`
}

// TxVin represents a transaction input.
type TxVin struct {
	TxID         string   `json:"txid"`
	Vout         uint32   `json:"vout"`
	PrevOut      *TxVout  `json:"prevout,omitempty"`
	ScriptSig    string   `json:"scriptsig"`
	ScriptSigAsm string   `json:"scriptsig_asm"`
	Witness      []string `json:"witness,omitempty"`
	Sequence     uint32   `json:"sequence"`
	IsCoinbase   bool     `json:"is_coinbase"`
}

// TxVout represents a transaction output.
type TxVout struct {
	ScriptPubKey     string `json:"scriptpubkey"`
	ScriptPubKeyAsm  string `json:"scriptpubkey_asm"`
	ScriptPubKeyType string `json:"scriptpubkey_type"`
	ScriptPubKeyAddr string `json:"scriptpubkey_address,omitempty"`
	Value            int64  `json:"value"`
}

// UTXO represents an unspent transaction output.
type UTXO struct {
	TxID   string   `json:"txid"`
	Vout   uint32   `json:"vout"`
	Status TxStatus `json:"status"`
	Value  int64    `json:"value"`
}

// TxoStats are the funded/spent counters the API keeps per address, once for
// the confirmed chain and once for the mempool.
type TxoStats struct {
	FundedTxoCount int64 `json:"funded_txo_count"`
	FundedTxoSum   int64 `json:"funded_txo_sum"`
	SpentTxoCount  int64 `json:"spent_txo_count"`
	SpentTxoSum    int64 `json:"spent_txo_sum"`
	TxCount        int64 `json:"tx_count"`
}

// Balance is the funded minus spent value.
func (s TxoStats) Balance() int64 {
	return s.FundedTxoSum - s.SpentTxoSum
}

// AddressStats is the response of GET /address/{address}.
type AddressStats struct {
	Address      string   `json:"address"`
	ChainStats   TxoStats `json:"chain_stats"`
	MempoolStats TxoStats `json:"mempool_stats"`
}

// ConfirmedBalance is the balance of confirmed outputs only.
func (a *AddressStats) ConfirmedBalance() int64 {
	return a.ChainStats.Balance()
}

// UnconfirmedBalance is the net effect of mempool transactions.
func (a *AddressStats) UnconfirmedBalance() int64 {
	return a.MempoolStats.Balance()
}

// TxCount is the number of confirmed and mempool transactions touching the
// address.
func (a *AddressStats) TxCount() int64 {
	return a.ChainStats.TxCount + a.MempoolStats.TxCount
}

// FeeEstimates represents fee estimates from the API.
// Keys are confirmation targets (as strings), values are fee rates in sat/vB.
type FeeEstimates map[string]float64

// Targets returns the confirmation targets present in the estimates in
// ascending order. Keys that aren't positive integers are skipped.
func (f FeeEstimates) Targets() []uint32 {
	targets := make([]uint32, 0, len(f))
	for k := range f {
		target, err := strconv.ParseUint(k, 10, 32)
		if err != nil || target == 0 {
			continue
		}
		targets = append(targets, uint32(target))
	}
	sort.Slice(targets, func(i, j int) bool {
		return targets[i] < targets[j]
	})

	return targets
}

// RateForTarget returns the estimate for the largest known target that is
// not above the requested one. If every known target is above the requested
// one, the estimate for the smallest known target is used. ok is false if
// there are no usable estimates at all.
func (f FeeEstimates) RateForTarget(target uint32) (float64, bool) {
	targets := f.Targets()
	if len(targets) == 0 {
		return 0, false
	}

	best := targets[0]
	for _, t := range targets {
		if t > target {
			break
		}
		best = t
	}

	return f[strconv.FormatUint(uint64(best), 10)], true
}
