package main

import (
	"fmt"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli"
	"github.com/xchainjs/xchainjs-lib-sub000/chainfee"
)

var tableFlag = cli.BoolFlag{
	Name:  "table",
	Usage: "Print a table instead of JSON.",
}

func newTable(header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)

	return t
}

func utxoTable(utxos []utxoResp) string {
	t := newTable(table.Row{
		"OutPoint", "Value (sat)", "Confirmed", "Height",
	})
	for _, u := range utxos {
		t.AppendRow(table.Row{
			u.OutPoint, u.Value, u.Confirmed, u.Height,
		})
	}

	return t.Render()
}

func feeTable(rates map[chainfee.FeeOption]uint64,
	entries []feeEntryResp) string {

	t := newTable(table.Row{
		"Target", "Rate (sat/vB)", "Fee (sat)", "Confirmation",
	})
	for _, e := range entries {
		t.AppendRow(table.Row{
			e.Target, e.FeeRate, e.Fee, e.ConfirmationTime,
		})
	}

	options := make([]string, 0, len(rates))
	for option := range rates {
		options = append(options, string(option))
	}
	sort.Strings(options)

	footer := table.Row{"Rates"}
	for _, option := range options {
		footer = append(footer, fmt.Sprintf("%s=%d", option,
			rates[chainfee.FeeOption(option)]))
	}
	t.AppendFooter(footer)

	return t.Render()
}

func txsTable(total int64, txs []txResp) string {
	t := newTable(table.Row{
		"TxID", "Height", "Date", "Fee (sat)", "Memo",
	})
	for _, tx := range txs {
		t.AppendRow(table.Row{
			tx.TxID, tx.Height, tx.Date, tx.Fee, tx.Memo,
		})
	}
	t.AppendFooter(table.Row{"Total", total})

	return t.Render()
}
