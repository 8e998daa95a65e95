package wallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchainjs/xchainjs-lib-sub000/chainfee"
	"github.com/xchainjs/xchainjs-lib-sub000/journal"
)

// Broadcast publishes a signed transaction and records it in the journal if
// one is configured. A journal failure is logged, the transaction is already
// out.
func (c *Client) Broadcast(ctx context.Context,
	authored *AuthoredTx) (string, error) {

	txid, err := c.cfg.Chain.BroadcastTx(ctx, authored.Tx)
	if err != nil {
		return "", fmt.Errorf("unable to broadcast %v: %w",
			authored.TxHash(), err)
	}

	log.Infof("Broadcast tx %v (fee=%v, vault=%v)", txid, authored.Fee,
		authored.Vault)

	c.record(&journal.Entry{
		Tx:            authored.Tx,
		Fee:           authored.Fee,
		Memo:          memoOpt(authored.Memo),
		BroadcastTime: c.cfg.Clock.Now(),
		Vault:         authored.Vault,
	})

	return txid.String(), nil
}

// BroadcastRaw publishes a hex encoded transaction that wasn't built by this
// client. It is journalled without a fee.
func (c *Client) BroadcastRaw(ctx context.Context,
	txHex string) (string, error) {

	raw, err := hex.DecodeString(txHex)
	if err != nil {
		return "", fmt.Errorf("invalid tx hex: %w", err)
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(raw)); err != nil {
		return "", fmt.Errorf("invalid tx: %w", err)
	}

	txid, err := c.cfg.Chain.BroadcastTx(ctx, tx)
	if err != nil {
		return "", fmt.Errorf("unable to broadcast %v: %w", tx.TxHash(),
			err)
	}

	log.Infof("Broadcast raw tx %v", txid)

	c.record(&journal.Entry{
		Tx:            tx,
		Memo:          ExtractMemo(tx),
		BroadcastTime: c.cfg.Clock.Now(),
	})

	return txid.String(), nil
}

// memoOpt wraps a memo, nil meaning none.
func memoOpt(memo []byte) fn.Option[[]byte] {
	if len(memo) == 0 {
		return fn.None[[]byte]()
	}

	return fn.Some(memo)
}

func (c *Client) record(entry *journal.Entry) {
	if c.cfg.Journal == nil {
		return
	}

	if err := c.cfg.Journal.Put(entry); err != nil {
		log.Errorf("Unable to journal tx %v: %v", entry.Tx.TxHash(), err)
	}
}

// Transfer builds, signs and broadcasts a payment.
func (c *Client) Transfer(ctx context.Context,
	params TxParams) (string, error) {

	authored, err := c.BuildTx(ctx, params)
	if err != nil {
		return "", err
	}

	return c.Broadcast(ctx, authored)
}

// Deposit builds, signs and broadcasts a vault transaction carrying memo.
func (c *Client) Deposit(ctx context.Context, vault string,
	amount btcutil.Amount, rate chainfee.SatPerVByte,
	memo []byte) (string, error) {

	authored, err := c.BuildVaultTx(ctx, vault, amount, rate, memo)
	if err != nil {
		return "", err
	}

	return c.Broadcast(ctx, authored)
}
