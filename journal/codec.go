package journal

import (
	"bytes"
	"io"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/lightningnetwork/lnd/tlv"
)

const (
	rawTxType         tlv.Type = 0
	feeType           tlv.Type = 1
	memoType          tlv.Type = 2
	broadcastTimeType tlv.Type = 3
	vaultType         tlv.Type = 4
)

// encodeEntry writes the tlv stream of an entry.
func encodeEntry(w io.Writer, e *Entry) error {
	var rawTx bytes.Buffer
	if err := e.Tx.Serialize(&rawTx); err != nil {
		return err
	}

	var (
		txBytes = rawTx.Bytes()
		fee     = uint64(e.Fee)
		memo    = e.Memo.UnwrapOr(nil)
		sent    = uint64(e.BroadcastTime.Unix())
		vault   = e.Vault
	)

	records := []tlv.Record{
		tlv.MakePrimitiveRecord(rawTxType, &txBytes),
		tlv.MakePrimitiveRecord(feeType, &fee),
	}
	if len(memo) > 0 {
		records = append(
			records, tlv.MakePrimitiveRecord(memoType, &memo),
		)
	}
	records = append(records,
		tlv.MakePrimitiveRecord(broadcastTimeType, &sent),
		tlv.MakePrimitiveRecord(vaultType, &vault),
	)

	stream, err := tlv.NewStream(records...)
	if err != nil {
		return err
	}

	return stream.Encode(w)
}

// decodeEntry reads an entry written by encodeEntry.
func decodeEntry(r io.Reader) (*Entry, error) {
	var (
		txBytes []byte
		fee     uint64
		memo    []byte
		sent    uint64
		vault   bool
	)

	stream, err := tlv.NewStream(
		tlv.MakePrimitiveRecord(rawTxType, &txBytes),
		tlv.MakePrimitiveRecord(feeType, &fee),
		tlv.MakePrimitiveRecord(memoType, &memo),
		tlv.MakePrimitiveRecord(broadcastTimeType, &sent),
		tlv.MakePrimitiveRecord(vaultType, &vault),
	)
	if err != nil {
		return nil, err
	}

	parsed, err := stream.DecodeWithParsedTypes(r)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	if err := tx.Deserialize(bytes.NewReader(txBytes)); err != nil {
		return nil, err
	}

	entry := &Entry{
		Tx:            tx,
		Fee:           btcutil.Amount(fee),
		Memo:          fn.None[[]byte](),
		BroadcastTime: time.Unix(int64(sent), 0),
		Vault:         vault,
	}
	if _, ok := parsed[memoType]; ok {
		entry.Memo = fn.Some(memo)
	}

	return entry, nil
}
