package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
)

// MaxMemoSize is the largest payload a standard OP_RETURN output carries.
const MaxMemoSize = txscript.MaxDataCarrierSize

// MemoScript compiles a memo into an OP_RETURN script. The memo is always
// pushed as data: a lone 0x81 byte would otherwise become OP_1NEGATE, which
// isn't a standard null data script.
func MemoScript(memo []byte) ([]byte, error) {
	if len(memo) > MaxMemoSize {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrMemoTooLarge,
			len(memo), MaxMemoSize)
	}

	return txscript.NewScriptBuilder().
		AddOp(txscript.OP_RETURN).
		AddFullData(memo).
		Script()
}

// memoScriptOpt compiles an optional memo. An empty memo is treated as no
// memo at all.
func memoScriptOpt(memo fn.Option[[]byte]) ([]byte, error) {
	data := memo.UnwrapOr(nil)
	if len(data) == 0 {
		return nil, nil
	}

	return MemoScript(data)
}

// MemoFromScript returns the payload of an OP_RETURN script made only of
// pushes. Single byte payloads that were pushed as small integer opcodes are
// restored.
func MemoFromScript(pkScript []byte) ([]byte, bool) {
	if len(pkScript) == 0 || pkScript[0] != txscript.OP_RETURN {
		return nil, false
	}

	var memo []byte
	tokenizer := txscript.MakeScriptTokenizer(0, pkScript[1:])
	for tokenizer.Next() {
		op := tokenizer.Opcode()
		switch {
		case op == txscript.OP_0:
			memo = append(memo, 0)

		case op <= txscript.OP_PUSHDATA4:
			memo = append(memo, tokenizer.Data()...)

		case op >= txscript.OP_1 && op <= txscript.OP_16:
			memo = append(memo, op-txscript.OP_1+1)

		case op == txscript.OP_1NEGATE:
			memo = append(memo, 0x81)

		default:
			return nil, false
		}
	}
	if tokenizer.Err() != nil {
		return nil, false
	}

	return memo, true
}

// ExtractMemo returns the payload of the first OP_RETURN output of tx.
func ExtractMemo(tx *wire.MsgTx) fn.Option[[]byte] {
	for _, txOut := range tx.TxOut {
		if memo, ok := MemoFromScript(txOut.PkScript); ok {
			return fn.Some(memo)
		}
	}

	return fn.None[[]byte]()
}

// memoFromHexScript decodes a hex pkScript as returned by the API and
// extracts its payload.
func memoFromHexScript(scriptHex string) ([]byte, bool) {
	pkScript, err := hex.DecodeString(scriptHex)
	if err != nil {
		return nil, false
	}

	return MemoFromScript(pkScript)
}
