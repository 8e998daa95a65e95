package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/xchainjs/xchainjs-lib-sub000/esplora"
)

// TxIO is one side of a transfer: an address and the value it sent or
// received.
type TxIO struct {
	Address string
	Amount  btcutil.Amount
}

// TxData is a decoded transaction from the explorer API.
type TxData struct {
	TxID string

	// Confirmed is false for mempool transactions, in which case Height
	// and Date are zero.
	Confirmed bool
	Height    int64
	Date      time.Time

	Fee btcutil.Amount

	// From lists the spent outputs, To the created value outputs.
	From []TxIO
	To   []TxIO

	// Memo is the OP_RETURN payload, nil if none.
	Memo []byte
}

// TxPage is a window of the address history, newest first.
type TxPage struct {
	// Total is the number of transactions touching the address.
	Total int64

	Txs []*TxData
}

// txDataFromInfo converts an API transaction.
func txDataFromInfo(info *esplora.TxInfo) *TxData {
	data := &TxData{
		TxID:      info.TxID,
		Confirmed: info.Status.Confirmed,
		Height:    info.Status.BlockHeight,
		Fee:       btcutil.Amount(info.Fee),
	}
	if info.Status.BlockTime > 0 {
		data.Date = time.Unix(info.Status.BlockTime, 0).UTC()
	}

	for _, in := range info.Vin {
		if in.PrevOut == nil {
			continue
		}
		data.From = append(data.From, TxIO{
			Address: in.PrevOut.ScriptPubKeyAddr,
			Amount:  btcutil.Amount(in.PrevOut.Value),
		})
	}

	for _, out := range info.Vout {
		if memo, ok := memoFromHexScript(out.ScriptPubKey); ok {
			if data.Memo == nil {
				data.Memo = memo
			}
			continue
		}
		data.To = append(data.To, TxIO{
			Address: out.ScriptPubKeyAddr,
			Amount:  btcutil.Amount(out.Value),
		})
	}

	return data
}

// GetTransactions returns up to limit transactions of the wallet address,
// skipping the offset newest ones. Confirmed history beyond the first page
// is fetched with chain paging.
func (c *Client) GetTransactions(ctx context.Context, offset,
	limit int) (*TxPage, error) {

	if offset < 0 || limit < 0 {
		return nil, fmt.Errorf("invalid window offset=%d limit=%d",
			offset, limit)
	}

	addr, err := c.GetAddress()
	if err != nil {
		return nil, err
	}

	stats, err := c.cfg.Chain.GetAddressStats(ctx, addr)
	if err != nil {
		return nil, err
	}

	infos, err := c.cfg.Chain.GetAddressTxs(ctx, addr)
	if err != nil {
		return nil, err
	}

	want := offset + limit
	for len(infos) < want {
		lastSeen := lastConfirmed(infos)
		if lastSeen == "" {
			break
		}

		more, err := c.cfg.Chain.GetAddressTxsChain(ctx, addr, lastSeen)
		if err != nil {
			return nil, err
		}
		if len(more) == 0 {
			break
		}
		infos = append(infos, more...)
	}

	page := &TxPage{Total: stats.TxCount()}
	if offset >= len(infos) {
		return page, nil
	}
	end := min(want, len(infos))

	page.Txs = make([]*TxData, 0, end-offset)
	for _, info := range infos[offset:end] {
		page.Txs = append(page.Txs, txDataFromInfo(info))
	}

	return page, nil
}

// lastConfirmed returns the id of the last confirmed transaction, the
// cursor for chain paging.
func lastConfirmed(infos []*esplora.TxInfo) string {
	for i := len(infos) - 1; i >= 0; i-- {
		if infos[i].Status.Confirmed {
			return infos[i].TxID
		}
	}

	return ""
}

// GetTransactionData returns a single decoded transaction.
func (c *Client) GetTransactionData(ctx context.Context,
	txid string) (*TxData, error) {

	info, err := c.cfg.Chain.GetTransaction(ctx, txid)
	if err != nil {
		return nil, err
	}

	return txDataFromInfo(info), nil
}
