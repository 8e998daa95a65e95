package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/urfave/cli"
	xchainbtc "github.com/xchainjs/xchainjs-lib-sub000"
	"github.com/xchainjs/xchainjs-lib-sub000/chainfee"
	"github.com/xchainjs/xchainjs-lib-sub000/journal"
	"github.com/xchainjs/xchainjs-lib-sub000/keychain"
	"github.com/xchainjs/xchainjs-lib-sub000/wallet"
)

var newMnemonicCommand = cli.Command{
	Name:     "newmnemonic",
	Category: "Wallet",
	Usage:    "Generate a new BIP39 mnemonic.",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "words",
			Value: 12,
			Usage: "The number of words, 12 or 24.",
		},
	},
	Action: newMnemonic,
}

func newMnemonic(ctx *cli.Context) error {
	var bits int
	switch ctx.Int("words") {
	case 12:
		bits = 128
	case 24:
		bits = 256
	default:
		return fmt.Errorf("words must be 12 or 24")
	}

	phrase, err := keychain.NewMnemonic(bits)
	if err != nil {
		return err
	}

	printJSON(struct {
		Mnemonic string `json:"mnemonic"`
	}{phrase})

	return nil
}

var addressCommand = cli.Command{
	Name:     "address",
	Category: "Wallet",
	Usage:    "Show the wallet address.",
	Action:   address,
}

func address(ctx *cli.Context) error {
	w, cleanup, err := getWallet(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	addr, err := w.GetAddress()
	if err != nil {
		return err
	}

	printJSON(struct {
		Address string `json:"address"`
		Path    string `json:"derivation_path"`
		URL     string `json:"explorer_url"`
	}{addr, w.DerivationPath().String(), w.ExplorerAddressURL(addr)})

	return nil
}

var validateAddressCommand = cli.Command{
	Name:      "validateaddress",
	Category:  "Wallet",
	Usage:     "Check an address is valid on the active network.",
	ArgsUsage: "address",
	Action:    validateAddress,
}

func validateAddress(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "validateaddress")
	}

	w, cleanup, err := getWallet(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	printJSON(struct {
		Valid bool `json:"valid"`
	}{w.ValidateAddress(ctx.Args().First())})

	return nil
}

var balanceCommand = cli.Command{
	Name:     "balance",
	Category: "Wallet",
	Usage:    "Show the confirmed and unconfirmed balance.",
	Action:   balance,
}

func balance(ctx *cli.Context) error {
	ctxc, cancel := getContext()
	defer cancel()

	w, cleanup, err := getWallet(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	bal, err := w.GetBalance(ctxc)
	if err != nil {
		return err
	}

	printJSON(struct {
		Confirmed   int64 `json:"confirmed_sat"`
		Unconfirmed int64 `json:"unconfirmed_sat"`
		Total       int64 `json:"total_sat"`
	}{int64(bal.Confirmed), int64(bal.Unconfirmed), int64(bal.Total())})

	return nil
}

var utxosCommand = cli.Command{
	Name:     "utxos",
	Category: "Wallet",
	Usage:    "List the unspent outputs of the wallet address.",
	Flags:    []cli.Flag{tableFlag},
	Action:   utxos,
}

type utxoResp struct {
	OutPoint  string `json:"outpoint"`
	Value     int64  `json:"value_sat"`
	Confirmed bool   `json:"confirmed"`
	Height    int64  `json:"block_height,omitempty"`
}

func utxos(ctx *cli.Context) error {
	ctxc, cancel := getContext()
	defer cancel()

	w, cleanup, err := getWallet(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	scanned, err := w.ScanUTXOs(ctxc)
	if err != nil {
		return err
	}

	resp := make([]utxoResp, 0, len(scanned))
	for _, u := range scanned {
		resp = append(resp, utxoResp{
			OutPoint:  u.OutPoint.String(),
			Value:     int64(u.Value),
			Confirmed: u.Confirmed,
			Height:    u.BlockHeight,
		})
	}

	if ctx.Bool("table") {
		fmt.Println(utxoTable(resp))
		return nil
	}
	printJSON(resp)

	return nil
}

var memoFlag = cli.StringFlag{
	Name:  "memo",
	Usage: "The memo to embed in an OP_RETURN output.",
}

// memoOption returns the memo flag as an option, empty meaning none.
func memoOption(ctx *cli.Context) fn.Option[[]byte] {
	memo := ctx.String("memo")
	if memo == "" {
		return fn.None[[]byte]()
	}

	return fn.Some([]byte(memo))
}

var feesCommand = cli.Command{
	Name:     "fees",
	Category: "Fees",
	Usage:    "Show fee rates and fees of spending the whole balance.",
	Flags:    []cli.Flag{memoFlag, tableFlag},
	Action:   fees,
}

type feeEntryResp struct {
	Target           uint32 `json:"conf_target"`
	FeeRate          uint64 `json:"sat_per_vbyte"`
	Fee              int64  `json:"fee_sat"`
	ConfirmationTime string `json:"confirmation_time"`
}

func fees(ctx *cli.Context) error {
	ctxc, cancel := getContext()
	defer cancel()

	w, cleanup, err := getWallet(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	table, err := w.CalcFees(ctxc, memoOption(ctx))
	if err != nil {
		return err
	}
	rates, err := w.FeeRates(ctxc)
	if err != nil {
		return err
	}

	resp := struct {
		Rates map[chainfee.FeeOption]uint64 `json:"rates"`
		Table []feeEntryResp                `json:"table"`
	}{
		Rates: make(map[chainfee.FeeOption]uint64, len(rates)),
	}
	for option, rate := range rates {
		resp.Rates[option] = uint64(rate)
	}
	for _, entry := range table {
		resp.Table = append(resp.Table, feeEntryResp{
			Target:           entry.Target,
			FeeRate:          uint64(entry.FeeRate),
			Fee:              int64(entry.Fee),
			ConfirmationTime: entry.ConfirmationTime.String(),
		})
	}

	if ctx.Bool("table") {
		fmt.Println(feeTable(resp.Rates, resp.Table))
		return nil
	}
	printJSON(resp)

	return nil
}

var feeRateFlags = []cli.Flag{
	cli.Uint64Flag{
		Name: "feerate",
		Usage: "A manual fee rate in sat/vbyte. Defaults to the " +
			"estimate for conf_target.",
	},
	cli.Uint64Flag{
		Name:  "conf_target",
		Value: uint64(chainfee.FeeOptionFast.Target()),
		Usage: "The number of blocks the transaction should confirm in.",
	},
	cli.BoolFlag{
		Name:  "dryrun",
		Usage: "Only build and sign the transaction, don't broadcast.",
	},
}

var sendCommand = cli.Command{
	Name:     "send",
	Category: "On-chain",
	Usage:    "Send bitcoin to an address.",
	Flags: append([]cli.Flag{
		cli.StringFlag{
			Name:  "to",
			Usage: "The address to send to.",
		},
		cli.Int64Flag{
			Name:  "amt",
			Usage: "The amount to send in satoshis.",
		},
		memoFlag,
	}, feeRateFlags...),
	Action: send,
}

type authoredResp struct {
	TxID    string `json:"txid"`
	Fee     int64  `json:"fee_sat"`
	FeeRate uint64 `json:"sat_per_vbyte"`
	VSize   int64  `json:"vsize"`
	Change  int64  `json:"change_sat"`
	Hex     string `json:"raw_tx,omitempty"`
	URL     string `json:"explorer_url,omitempty"`
}

// publish broadcasts an authored transaction unless dryrun is set and
// prints the result.
func publish(ctx *cli.Context, w *xchainbtc.Wallet,
	broadcast func() (string, error), authored *wallet.AuthoredTx) error {

	resp := authoredResp{
		TxID:    authored.TxHash(),
		Fee:     int64(authored.Fee),
		FeeRate: uint64(authored.FeeRate),
		VSize:   authored.VSize,
		Change:  int64(authored.Change),
	}

	if ctx.Bool("dryrun") {
		resp.Hex = authored.Hex
		printJSON(resp)

		return nil
	}

	txid, err := broadcast()
	if err != nil {
		return err
	}
	resp.TxID = txid
	resp.URL = w.ExplorerTxURL(txid)
	printJSON(resp)

	return nil
}

func send(ctx *cli.Context) error {
	ctxc, cancel := getContext()
	defer cancel()

	if !ctx.IsSet("to") || !ctx.IsSet("amt") {
		return cli.ShowCommandHelp(ctx, "send")
	}

	w, cleanup, err := getWallet(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	authored, err := w.BuildTx(ctxc, wallet.TxParams{
		Recipient:  ctx.String("to"),
		Amount:     btcutil.Amount(ctx.Int64("amt")),
		FeeRate:    chainfee.SatPerVByte(ctx.Uint64("feerate")),
		ConfTarget: uint32(ctx.Uint64("conf_target")),
		Memo:       memoOption(ctx),
	})
	if err != nil {
		return err
	}

	return publish(ctx, w, func() (string, error) {
		return w.Broadcast(ctxc, authored)
	}, authored)
}

var vaultCommand = cli.Command{
	Name:     "vault",
	Category: "On-chain",
	Usage:    "Deposit to a vault address with a mandatory memo.",
	Flags: append([]cli.Flag{
		cli.StringFlag{
			Name:  "vault",
			Usage: "The vault address.",
		},
		cli.Int64Flag{
			Name:  "amt",
			Usage: "The amount to deposit in satoshis.",
		},
		memoFlag,
	}, feeRateFlags...),
	Action: vault,
}

func vault(ctx *cli.Context) error {
	ctxc, cancel := getContext()
	defer cancel()

	if !ctx.IsSet("vault") || !ctx.IsSet("amt") || !ctx.IsSet("memo") {
		return cli.ShowCommandHelp(ctx, "vault")
	}

	w, cleanup, err := getWallet(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	rate := chainfee.SatPerVByte(ctx.Uint64("feerate"))
	if rate == 0 {
		rate, err = w.Estimator.EstimateFeePerVByte(
			uint32(ctx.Uint64("conf_target")),
		)
		if err != nil {
			return err
		}
	}

	authored, err := w.BuildVaultTx(
		ctxc, ctx.String("vault"), btcutil.Amount(ctx.Int64("amt")),
		rate, []byte(ctx.String("memo")),
	)
	if err != nil {
		return err
	}

	return publish(ctx, w, func() (string, error) {
		return w.Broadcast(ctxc, authored)
	}, authored)
}

var broadcastCommand = cli.Command{
	Name:      "broadcast",
	Category:  "On-chain",
	Usage:     "Broadcast a raw transaction.",
	ArgsUsage: "hex",
	Action:    broadcast,
}

func broadcast(ctx *cli.Context) error {
	ctxc, cancel := getContext()
	defer cancel()

	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "broadcast")
	}

	w, cleanup, err := getWallet(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	txid, err := w.BroadcastRaw(ctxc, ctx.Args().First())
	if err != nil {
		return err
	}

	printJSON(struct {
		TxID string `json:"txid"`
		URL  string `json:"explorer_url,omitempty"`
	}{txid, w.ExplorerTxURL(txid)})

	return nil
}

type txIOResp struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount_sat"`
}

type txResp struct {
	TxID      string     `json:"txid"`
	Confirmed bool       `json:"confirmed"`
	Height    int64      `json:"block_height,omitempty"`
	Date      string     `json:"date,omitempty"`
	Fee       int64      `json:"fee_sat"`
	From      []txIOResp `json:"from"`
	To        []txIOResp `json:"to"`
	Memo      string     `json:"memo,omitempty"`
}

func newTxResp(data *wallet.TxData) txResp {
	resp := txResp{
		TxID:      data.TxID,
		Confirmed: data.Confirmed,
		Height:    data.Height,
		Fee:       int64(data.Fee),
		Memo:      string(data.Memo),
	}
	if !data.Date.IsZero() {
		resp.Date = data.Date.Format(time.RFC3339)
	}
	for _, in := range data.From {
		resp.From = append(resp.From, txIOResp{
			in.Address, int64(in.Amount),
		})
	}
	for _, out := range data.To {
		resp.To = append(resp.To, txIOResp{
			out.Address, int64(out.Amount),
		})
	}

	return resp
}

var listTxsCommand = cli.Command{
	Name:     "txs",
	Category: "On-chain",
	Usage:    "List the transactions of the wallet address, newest first.",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "offset",
			Usage: "The number of newest transactions to skip.",
		},
		cli.IntFlag{
			Name:  "limit",
			Value: 10,
			Usage: "The maximum number of transactions to return.",
		},
		tableFlag,
	},
	Action: listTxs,
}

func listTxs(ctx *cli.Context) error {
	ctxc, cancel := getContext()
	defer cancel()

	w, cleanup, err := getWallet(ctx, true)
	if err != nil {
		return err
	}
	defer cleanup()

	page, err := w.GetTransactions(
		ctxc, ctx.Int("offset"), ctx.Int("limit"),
	)
	if err != nil {
		return err
	}

	resp := struct {
		Total int64    `json:"total"`
		Txs   []txResp `json:"txs"`
	}{Total: page.Total}
	for _, tx := range page.Txs {
		resp.Txs = append(resp.Txs, newTxResp(tx))
	}

	if ctx.Bool("table") {
		fmt.Println(txsTable(resp.Total, resp.Txs))
		return nil
	}
	printJSON(resp)

	return nil
}

var getTxCommand = cli.Command{
	Name:      "tx",
	Category:  "On-chain",
	Usage:     "Show a transaction.",
	ArgsUsage: "txid",
	Action:    getTx,
}

func getTx(ctx *cli.Context) error {
	ctxc, cancel := getContext()
	defer cancel()

	if ctx.NArg() != 1 {
		return cli.ShowCommandHelp(ctx, "tx")
	}

	w, cleanup, err := getWallet(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	data, err := w.GetTransactionData(ctxc, ctx.Args().First())
	if err != nil {
		return err
	}
	printJSON(newTxResp(data))

	return nil
}

var journalCommand = cli.Command{
	Name:     "journal",
	Category: "On-chain",
	Usage:    "List locally recorded broadcasts, oldest first.",
	Flags: []cli.Flag{
		cli.StringFlag{
			Name:  "delete",
			Usage: "Remove the entry of this txid instead of listing.",
		},
	},
	Action: listJournal,
}

type journalResp struct {
	TxID          string `json:"txid"`
	Fee           int64  `json:"fee_sat"`
	Memo          string `json:"memo,omitempty"`
	BroadcastTime string `json:"broadcast_time"`
	Vault         bool   `json:"vault"`
	Hex           string `json:"raw_tx"`
}

func listJournal(ctx *cli.Context) error {
	w, cleanup, err := getWallet(ctx, false)
	if err != nil {
		return err
	}
	defer cleanup()

	if w.Journal == nil {
		return fmt.Errorf("the journal is disabled")
	}

	if ctx.IsSet("delete") {
		txid, err := chainhash.NewHashFromStr(ctx.String("delete"))
		if err != nil {
			return err
		}

		return w.Journal.Delete(*txid)
	}

	entries, err := w.Journal.List()
	if err != nil {
		return err
	}

	resp := make([]journalResp, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, newJournalResp(entry))
	}
	printJSON(resp)

	return nil
}

func newJournalResp(entry *journal.Entry) journalResp {
	var raw bytes.Buffer
	if err := entry.Tx.Serialize(&raw); err != nil {
		fatal(err)
	}

	return journalResp{
		TxID:          entry.TxID().String(),
		Fee:           int64(entry.Fee),
		Memo:          string(entry.Memo.UnwrapOr(nil)),
		BroadcastTime: entry.BroadcastTime.UTC().Format(time.RFC3339),
		Vault:         entry.Vault,
		Hex:           hex.EncodeToString(raw.Bytes()),
	}
}
