package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
)

// DustThreshold is the smallest change amount that gets its own output.
// Anything at or below it is left to the miners.
const DustThreshold btcutil.Amount = 1000

// UTXO is an unspent output of the wallet address.
type UTXO struct {
	// OutPoint identifies the output.
	OutPoint wire.OutPoint

	// WitnessScript is the output's pkScript, the P2WPKH script of the
	// wallet address.
	WitnessScript []byte

	// Value is the output amount.
	Value btcutil.Amount

	// Confirmed is false for outputs still in the mempool.
	Confirmed bool

	// BlockHeight is the confirmation height, zero if unconfirmed.
	BlockHeight int64
}

// TxOut returns the output being spent.
func (u *UTXO) TxOut() *wire.TxOut {
	return wire.NewTxOut(int64(u.Value), u.WitnessScript)
}

// Hash returns the hash of the transaction holding the output.
//
// NOTE: This is part of the coinset.Coin interface.
func (u *UTXO) Hash() *chainhash.Hash {
	return &u.OutPoint.Hash
}

// Index returns the output index.
//
// NOTE: This is part of the coinset.Coin interface.
func (u *UTXO) Index() uint32 {
	return u.OutPoint.Index
}

// coin adapts a UTXO to coinset.Coin, whose Value method would clash with
// the UTXO field.
type coin struct {
	*UTXO
}

// Value returns the output amount.
//
// NOTE: This is part of the coinset.Coin interface.
func (c coin) Value() btcutil.Amount {
	return c.UTXO.Value
}

// PkScript returns the script of the output.
//
// NOTE: This is part of the coinset.Coin interface.
func (c coin) PkScript() []byte {
	return c.WitnessScript
}

// NumConfs is one for confirmed outputs and zero otherwise. The wallet
// doesn't track the tip, and only relative order matters for selection.
//
// NOTE: This is part of the coinset.Coin interface.
func (c coin) NumConfs() int64 {
	if c.Confirmed {
		return 1
	}

	return 0
}

// ValueAge returns the value multiplied by NumConfs.
//
// NOTE: This is part of the coinset.Coin interface.
func (c coin) ValueAge() int64 {
	return int64(c.UTXO.Value) * c.NumConfs()
}

// A compile time check to ensure coin implements coinset.Coin.
var _ coinset.Coin = coin{}

// ScanUTXOs fetches the unspent outputs of the wallet address and replaces
// the cached set. Unconfirmed outputs are included.
func (c *Client) ScanUTXOs(ctx context.Context) ([]*UTXO, error) {
	key, err := c.currentKey()
	if err != nil {
		return nil, err
	}

	addr := key.address.EncodeAddress()
	raw, err := c.cfg.Chain.GetAddressUTXOs(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("unable to scan utxos of %v: %w", addr,
			err)
	}

	utxos := make([]*UTXO, 0, len(raw))
	for _, r := range raw {
		hash, err := chainhash.NewHashFromStr(r.TxID)
		if err != nil {
			return nil, fmt.Errorf("invalid utxo txid %q: %w",
				r.TxID, err)
		}
		if r.Value < 0 {
			return nil, fmt.Errorf("negative utxo value %d in %v",
				r.Value, r.TxID)
		}

		utxos = append(utxos, &UTXO{
			OutPoint:      *wire.NewOutPoint(hash, r.Vout),
			WitnessScript: key.pkScript,
			Value:         btcutil.Amount(r.Value),
			Confirmed:     r.Status.Confirmed,
			BlockHeight:   r.Status.BlockHeight,
		})
	}

	c.mu.Lock()
	// The phrase may have changed while we were fetching.
	if c.key == key {
		c.utxos = utxos
	}
	c.mu.Unlock()

	log.Debugf("Scanned %d utxos for %v", len(utxos), addr)

	return utxos, nil
}

// UTXOs returns the outputs of the last scan.
func (c *Client) UTXOs() []*UTXO {
	c.mu.RLock()
	defer c.mu.RUnlock()

	utxos := make([]*UTXO, len(c.utxos))
	copy(utxos, c.utxos)

	return utxos
}

// sumUTXOs returns the total value of the given outputs.
func sumUTXOs(utxos []*UTXO) btcutil.Amount {
	var total btcutil.Amount
	for _, u := range utxos {
		total += u.Value
	}

	return total
}

// Balance is the total value of the outputs of the last scan.
func (c *Client) Balance() btcutil.Amount {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return sumUTXOs(c.utxos)
}

// AddressBalance is the confirmed and unconfirmed balance reported by the
// API.
type AddressBalance struct {
	Confirmed   btcutil.Amount
	Unconfirmed btcutil.Amount
}

// Total is the sum of the confirmed and unconfirmed balance.
func (b AddressBalance) Total() btcutil.Amount {
	return b.Confirmed + b.Unconfirmed
}

// GetBalance asks the API for the balance of the wallet address.
func (c *Client) GetBalance(ctx context.Context) (*AddressBalance, error) {
	key, err := c.currentKey()
	if err != nil {
		return nil, err
	}

	stats, err := c.cfg.Chain.GetAddressStats(
		ctx, key.address.EncodeAddress(),
	)
	if err != nil {
		return nil, err
	}

	return &AddressBalance{
		Confirmed:   btcutil.Amount(stats.ConfirmedBalance()),
		Unconfirmed: btcutil.Amount(stats.UnconfirmedBalance()),
	}, nil
}

// changeFor returns total - spend if it is above DustThreshold, else zero.
func changeFor(total, spend btcutil.Amount) btcutil.Amount {
	change := total - spend
	if change <= DustThreshold {
		return 0
	}

	return change
}

// GetChange returns the change left after spending spend out of the cached
// balance, or zero if it wouldn't be above DustThreshold.
func (c *Client) GetChange(spend btcutil.Amount) btcutil.Amount {
	return changeFor(c.Balance(), spend)
}
