package wallet

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchainjs/xchainjs-lib-sub000/chainfee"
	"github.com/xchainjs/xchainjs-lib-sub000/walletcfg"
)

// representativeTx returns the inputs and outputs of the transaction fees
// are quoted for: every scanned output is spent to a recipient and a change
// output, plus the memo output if any. With nothing scanned a single input
// stands in, since any spend has at least one.
func representativeTx(key *signingKey, utxos []*UTXO,
	memoScript []byte) ([]*UTXO, []*wire.TxOut) {

	inputs := utxos
	if len(inputs) == 0 {
		inputs = []*UTXO{{WitnessScript: key.pkScript}}
	}

	total := sumUTXOs(inputs)
	outputs := []*wire.TxOut{wire.NewTxOut(int64(total), key.pkScript)}
	if memoScript != nil {
		outputs = append(outputs, wire.NewTxOut(0, memoScript))
	}
	outputs = append(outputs, wire.NewTxOut(0, key.pkScript))

	return inputs, outputs
}

// quoteSize returns the size fees are quoted for: the formula size, the
// segwit estimate or the measured virtual size of the representative
// transaction.
func (c *Client) quoteSize(key *signingKey, utxos []*UTXO,
	memoScript []byte) (int64, error) {

	inputs, outputs := representativeTx(key, utxos, memoScript)

	switch c.cfg.SizeEstimation {
	case walletcfg.SizeEstimationFormula:
		return FormulaTxSize(len(inputs), 2, memoScript), nil

	case walletcfg.SizeEstimationSegwit:
		return EstimateP2WPKHVSize(len(inputs), 2, memoScript), nil
	}

	_, tx, err := c.signTx(key, inputs, outputs)
	if err != nil {
		return 0, err
	}

	return measuredVSize(btcutil.NewTx(tx)), nil
}

// CalcFee scans the wallet outputs and returns the fee of spending all of
// them at rate, with an optional memo.
func (c *Client) CalcFee(ctx context.Context, rate chainfee.SatPerVByte,
	memo fn.Option[[]byte]) (btcutil.Amount, error) {

	if rate == 0 || rate > chainfee.AbsoluteFeePerVByteCeiling {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFeeRate, rate)
	}

	memoScript, err := memoScriptOpt(memo)
	if err != nil {
		return 0, err
	}

	key, utxos, err := c.scanned(ctx)
	if err != nil {
		return 0, err
	}

	size, err := c.quoteSize(key, utxos, memoScript)
	if err != nil {
		return 0, err
	}

	if c.cfg.SizeEstimation == walletcfg.SizeEstimationFormula {
		return FormulaFee(size, btcutil.Amount(rate)), nil
	}

	return rate.FeeForVSize(size), nil
}

// CalcFees returns the fee table for confirmation targets 1 through 10 for
// the representative transaction, with an optional memo.
func (c *Client) CalcFees(ctx context.Context,
	memo fn.Option[[]byte]) (chainfee.FeeTable, error) {

	memoScript, err := memoScriptOpt(memo)
	if err != nil {
		return nil, err
	}

	key, utxos, err := c.scanned(ctx)
	if err != nil {
		return nil, err
	}

	size, err := c.quoteSize(key, utxos, memoScript)
	if err != nil {
		return nil, err
	}

	table, err := chainfee.BuildFeeTable(ctx, c.cfg.Chain, size)
	if err != nil {
		return nil, fmt.Errorf("unable to build fee table: %w", err)
	}

	if c.cfg.SizeEstimation == walletcfg.SizeEstimationFormula {
		for i := range table {
			table[i].Fee = FormulaFee(
				size, btcutil.Amount(table[i].FeeRate),
			)
		}
	}

	return table, nil
}

// FeeRates returns the rate of every fee option, from the estimator when one
// is configured and from a fresh fee table otherwise.
func (c *Client) FeeRates(ctx context.Context) (chainfee.FeeRates, error) {
	if c.cfg.Estimator != nil {
		return chainfee.EstimateFeeRates(c.cfg.Estimator)
	}

	table, err := chainfee.BuildFeeTable(ctx, c.cfg.Chain, 1)
	if err != nil {
		return nil, err
	}

	return chainfee.FeeRatesFromTable(table), nil
}
