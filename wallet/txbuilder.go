package wallet

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/coinset"
	"github.com/btcsuite/btcd/btcutil/psbt"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcwallet/wallet/txrules"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchainjs/xchainjs-lib-sub000/chainfee"
	"github.com/xchainjs/xchainjs-lib-sub000/walletcfg"
)

const (
	// txVersion is the version of every transaction we author.
	txVersion = 2

	// maxAuthorAttempts bounds the rebuilds needed when the signed
	// transaction ends up larger than the one the fee was sized for.
	maxAuthorAttempts = 4
)

// TxParams describes a payment.
type TxParams struct {
	// Recipient is the address being paid.
	Recipient string

	// Amount is the value sent to Recipient.
	Amount btcutil.Amount

	// FeeRate is the fee rate to pay. If zero, the configured estimator
	// is asked for ConfTarget.
	FeeRate chainfee.SatPerVByte

	// ConfTarget is the confirmation target used when FeeRate is zero.
	// Defaults to the target of chainfee.FeeOptionFast.
	ConfTarget uint32

	// Memo is embedded in an OP_RETURN output when set and non-empty.
	Memo fn.Option[[]byte]
}

// AuthoredTx is a signed transaction ready for broadcast, along with the
// details of how it was funded.
type AuthoredTx struct {
	// Packet is the finalized PSBT the transaction was extracted from.
	Packet *psbt.Packet

	// Tx is the signed transaction.
	Tx *wire.MsgTx

	// Hex is the serialized transaction.
	Hex string

	// Inputs are the spent outputs, in input order.
	Inputs []*UTXO

	// TotalInput is the sum of the spent outputs.
	TotalInput btcutil.Amount

	// Fee is the absolute fee paid.
	Fee btcutil.Amount

	// FeeRate is the rate the fee was sized with.
	FeeRate chainfee.SatPerVByte

	// VSize is the virtual size of the signed transaction.
	VSize int64

	// Change is the value returned to the wallet address.
	Change btcutil.Amount

	// ChangeIndex is the index of the change output, or -1.
	ChangeIndex int

	// MemoIndex is the index of the OP_RETURN output, or -1.
	MemoIndex int

	// Memo is the embedded memo, nil if none.
	Memo []byte

	// Vault is true for transactions built with BuildVaultTx.
	Vault bool
}

// TxHash returns the id of the transaction.
func (a *AuthoredTx) TxHash() string {
	return a.Tx.TxHash().String()
}

// BuildTx selects inputs, sizes the fee and returns a signed transaction
// paying params.Amount to params.Recipient. Outputs are ordered recipient,
// memo, change.
func (c *Client) BuildTx(ctx context.Context,
	params TxParams) (*AuthoredTx, error) {

	recipient, err := c.decodeAddress(params.Recipient)
	if err != nil {
		return nil, err
	}

	recipientScript, err := txscript.PayToAddrScript(recipient)
	if err != nil {
		return nil, err
	}

	if params.Amount > btcutil.MaxSatoshi {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount,
			params.Amount)
	}

	recipientOut := wire.NewTxOut(int64(params.Amount), recipientScript)
	if params.Amount <= 0 || txrules.IsDustOutput(
		recipientOut, txrules.DefaultRelayFeePerKb,
	) {

		return nil, fmt.Errorf("%w: %v", ErrDustOutput, params.Amount)
	}

	memoScript, err := memoScriptOpt(params.Memo)
	if err != nil {
		return nil, err
	}

	rate, err := c.resolveFeeRate(params)
	if err != nil {
		return nil, err
	}

	key, utxos, err := c.scanned(ctx)
	if err != nil {
		return nil, err
	}
	if len(utxos) == 0 {
		return nil, ErrNoUTXOs
	}

	outputs := []*wire.TxOut{recipientOut}
	memoIndex := -1
	if memoScript != nil {
		memoIndex = len(outputs)
		outputs = append(outputs, wire.NewTxOut(0, memoScript))
	}

	authored, err := c.fundTx(key, utxos, outputs, params.Amount, rate)
	if err != nil {
		return nil, err
	}
	authored.MemoIndex = memoIndex
	if memoScript != nil {
		authored.Memo = params.Memo.UnwrapOr(nil)
	}

	log.Debugf("Built tx %v: inputs=%d, fee=%v (%v), vsize=%d, change=%v",
		authored.TxHash(), len(authored.Inputs), authored.Fee, rate,
		authored.VSize, authored.Change)

	return authored, nil
}

// BuildVaultTx builds a transaction paying amount to the vault address with
// a mandatory OP_RETURN memo.
func (c *Client) BuildVaultTx(ctx context.Context, vault string,
	amount btcutil.Amount, rate chainfee.SatPerVByte,
	memo []byte) (*AuthoredTx, error) {

	if len(memo) == 0 {
		return nil, ErrMissingMemo
	}

	authored, err := c.BuildTx(ctx, TxParams{
		Recipient: vault,
		Amount:    amount,
		FeeRate:   rate,
		Memo:      fn.Some(memo),
	})
	if err != nil {
		return nil, err
	}
	authored.Vault = true

	return authored, nil
}

// resolveFeeRate returns the explicit fee rate or asks the estimator.
func (c *Client) resolveFeeRate(params TxParams) (chainfee.SatPerVByte,
	error) {

	if params.FeeRate > chainfee.AbsoluteFeePerVByteCeiling {
		return 0, fmt.Errorf("%w: %v above %v", ErrInvalidFeeRate,
			params.FeeRate, chainfee.AbsoluteFeePerVByteCeiling)
	}
	if params.FeeRate > 0 {
		return params.FeeRate, nil
	}
	if c.cfg.Estimator == nil {
		return 0, ErrInvalidFeeRate
	}

	target := params.ConfTarget
	if target == 0 {
		target = chainfee.FeeOptionFast.Target()
	}

	rate, err := c.cfg.Estimator.EstimateFeePerVByte(target)
	if err != nil {
		return 0, fmt.Errorf("unable to estimate fee: %w", err)
	}
	switch {
	case rate < chainfee.FeePerVByteFloor:
		rate = chainfee.FeePerVByteFloor

	case rate > chainfee.AbsoluteFeePerVByteCeiling:
		rate = chainfee.AbsoluteFeePerVByteCeiling
	}

	return rate, nil
}

// txFee returns the fee of a transaction spending inputs to outputs, where
// outputs already include the change output, at the given rate.
func (c *Client) txFee(key *signingKey, inputs []*UTXO,
	outputs []*wire.TxOut, rate chainfee.SatPerVByte) (btcutil.Amount,
	error) {

	switch c.cfg.SizeEstimation {
	case walletcfg.SizeEstimationFormula:
		memoScript, numValue := splitOutputs(outputs)
		size := FormulaTxSize(len(inputs), numValue, memoScript)

		return FormulaFee(size, btcutil.Amount(rate)), nil

	case walletcfg.SizeEstimationSegwit:
		memoScript, numValue := splitOutputs(outputs)
		size := EstimateP2WPKHVSize(len(inputs), numValue, memoScript)

		return rate.FeeForVSize(size), nil
	}

	_, tx, err := c.signTx(key, inputs, outputs)
	if err != nil {
		return 0, err
	}

	return rate.FeeForVSize(measuredVSize(btcutil.NewTx(tx))), nil
}

// splitOutputs returns the OP_RETURN script among outputs, if any, and the
// number of value outputs.
func splitOutputs(outputs []*wire.TxOut) ([]byte, int) {
	var (
		memoScript []byte
		numValue   int
	)
	for _, out := range outputs {
		if _, ok := MemoFromScript(out.PkScript); ok {
			memoScript = out.PkScript
			continue
		}
		numValue++
	}

	return memoScript, numValue
}

// selectInputs picks the inputs to spend and the fee they need. The fee is
// always sized as if a change output were present.
func (c *Client) selectInputs(key *signingKey, utxos []*UTXO,
	outputs []*wire.TxOut, amount btcutil.Amount,
	rate chainfee.SatPerVByte) ([]*UTXO, btcutil.Amount, error) {

	withChange := func(change btcutil.Amount) []*wire.TxOut {
		if change < 0 {
			change = 0
		}

		outs := make([]*wire.TxOut, len(outputs), len(outputs)+1)
		copy(outs, outputs)

		return append(outs, wire.NewTxOut(int64(change), key.pkScript))
	}

	if c.cfg.CoinSelection != walletcfg.CoinSelectionLargest {
		total := sumUTXOs(utxos)
		fee, err := c.txFee(key, utxos, withChange(total-amount), rate)
		if err != nil {
			return nil, 0, err
		}
		if total < amount+fee {
			return nil, 0, fmt.Errorf("%w: have %v, need %v",
				ErrInsufficientFunds, total, amount+fee)
		}

		return utxos, fee, nil
	}

	coins := make([]coinset.Coin, 0, len(utxos))
	for _, u := range utxos {
		coins = append(coins, coin{u})
	}
	selector := coinset.MinNumberCoinSelector{
		MaxInputs: len(coins),
	}

	// Start by assuming a single input and grow the fee with the
	// selection until it covers itself.
	fee, err := c.txFee(key, utxos[:1], withChange(0), rate)
	if err != nil {
		return nil, 0, err
	}
	for i := 0; i <= len(utxos); i++ {
		selected, err := selector.CoinSelect(amount+fee, coins)
		if errors.Is(err, coinset.ErrCoinsNoSelectionAvailable) {
			return nil, 0, fmt.Errorf("%w: have %v, need %v",
				ErrInsufficientFunds, sumUTXOs(utxos),
				amount+fee)
		}
		if err != nil {
			return nil, 0, err
		}

		inputs := make([]*UTXO, 0, len(selected.Coins()))
		for _, sc := range selected.Coins() {
			inputs = append(inputs, sc.(coin).UTXO)
		}
		total := sumUTXOs(inputs)

		needed, err := c.txFee(
			key, inputs, withChange(total-amount), rate,
		)
		if err != nil {
			return nil, 0, err
		}
		if total >= amount+needed {
			return inputs, needed, nil
		}
		fee = needed
	}

	return nil, 0, fmt.Errorf("%w: coin selection did not converge",
		ErrInsufficientFunds)
}

// fundTx selects inputs for the outputs, adds change if it is above the
// dust threshold and signs the result.
func (c *Client) fundTx(key *signingKey, utxos []*UTXO,
	outputs []*wire.TxOut, amount btcutil.Amount,
	rate chainfee.SatPerVByte) (*AuthoredTx, error) {

	inputs, fee, err := c.selectInputs(key, utxos, outputs, amount, rate)
	if err != nil {
		return nil, err
	}
	total := sumUTXOs(inputs)

	for attempt := 0; attempt < maxAuthorAttempts; attempt++ {
		if fee < 0 || fee > total {
			return nil, fmt.Errorf("%w: fee %v out of range for "+
				"input %v", ErrInvalidFeeRate, fee, total)
		}
		change := changeFor(total, amount+fee)

		outs := outputs
		changeIndex := -1
		if change > 0 {
			changeIndex = len(outputs)
			outs = append(outs[:len(outs):len(outs)],
				wire.NewTxOut(int64(change), key.pkScript))
		}

		packet, tx, err := c.signTx(key, inputs, outs)
		if err != nil {
			return nil, err
		}
		vsize := measuredVSize(btcutil.NewTx(tx))
		paid := total - amount - change
		if paid < 0 {
			return nil, fmt.Errorf("%w: have %v, need %v",
				ErrInsufficientFunds, total, amount+fee)
		}

		// Signatures vary in length, so the final transaction can be
		// a vbyte larger than the one the fee was sized for.
		if c.cfg.SizeEstimation == walletcfg.SizeEstimationMeasured &&
			paid < rate.FeeForVSize(vsize) {

			fee = rate.FeeForVSize(vsize)
			if total < amount+fee {
				return nil, fmt.Errorf("%w: have %v, need %v",
					ErrInsufficientFunds, total, amount+fee)
			}
			continue
		}

		var buf bytes.Buffer
		if err := tx.Serialize(&buf); err != nil {
			return nil, err
		}

		return &AuthoredTx{
			Packet:      packet,
			Tx:          tx,
			Hex:         hex.EncodeToString(buf.Bytes()),
			Inputs:      inputs,
			TotalInput:  total,
			Fee:         paid,
			FeeRate:     rate,
			VSize:       vsize,
			Change:      change,
			ChangeIndex: changeIndex,
			MemoIndex:   -1,
		}, nil
	}

	return nil, fmt.Errorf("unable to size fee after %d attempts",
		maxAuthorAttempts)
}

// signTx creates a PSBT spending inputs to outputs, signs every input with
// the wallet key and returns the finalized packet and its transaction.
func (c *Client) signTx(key *signingKey, inputs []*UTXO,
	outputs []*wire.TxOut) (*psbt.Packet, *wire.MsgTx, error) {

	outpoints := make([]*wire.OutPoint, 0, len(inputs))
	sequences := make([]uint32, 0, len(inputs))
	for _, in := range inputs {
		op := in.OutPoint
		outpoints = append(outpoints, &op)
		sequences = append(sequences, wire.MaxTxInSequenceNum)
	}

	packet, err := psbt.New(outpoints, outputs, txVersion, 0, sequences)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create psbt: %w", err)
	}

	updater, err := psbt.NewUpdater(packet)
	if err != nil {
		return nil, nil, err
	}

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, in := range inputs {
		if err := updater.AddInWitnessUtxo(in.TxOut(), i); err != nil {
			return nil, nil, err
		}
		err := updater.AddInSighashType(txscript.SigHashAll, i)
		if err != nil {
			return nil, nil, err
		}

		fetcher.AddPrevOut(in.OutPoint, in.TxOut())
	}

	sigHashes := txscript.NewTxSigHashes(packet.UnsignedTx, fetcher)
	pubKey := key.desc.PubKey.SerializeCompressed()
	for i, in := range inputs {
		digest, err := txscript.CalcWitnessSigHash(
			in.WitnessScript, sigHashes, txscript.SigHashAll,
			packet.UnsignedTx, i, int64(in.Value),
		)
		if err != nil {
			return nil, nil, err
		}

		var d [32]byte
		copy(d[:], digest)
		sig, err := key.signer.SignDigest(d)
		if err != nil {
			return nil, nil, err
		}
		sigBytes := append(sig.Serialize(), byte(txscript.SigHashAll))

		outcome, err := updater.Sign(i, sigBytes, pubKey, nil, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("unable to sign input %d: %w",
				i, err)
		}
		if outcome != psbt.SignSuccesful {
			return nil, nil, fmt.Errorf("unable to sign input %d: "+
				"outcome %v", i, outcome)
		}
	}

	if err := psbt.MaybeFinalizeAll(packet); err != nil {
		return nil, nil, fmt.Errorf("unable to finalize psbt: %w", err)
	}

	tx, err := psbt.Extract(packet)
	if err != nil {
		return nil, nil, err
	}

	return packet, tx, nil
}
