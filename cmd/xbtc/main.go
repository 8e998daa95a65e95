package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli"
	xchainbtc "github.com/xchainjs/xchainjs-lib-sub000"
	"github.com/xchainjs/xchainjs-lib-sub000/build"
	"golang.org/x/term"
)

// phraseEnv is the environment variable the phrase is read from before
// falling back to a prompt.
const phraseEnv = "XBTC_PHRASE"

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[xbtc] %v\n", err)
	os.Exit(1)
}

// getContext returns a context that is canceled on SIGINT or SIGTERM.
func getContext() (context.Context, func()) {
	return signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
}

// loadConfig reads the config file and applies the global flags over it.
func loadConfig(ctx *cli.Context) (*xchainbtc.Config, error) {
	return xchainbtc.LoadConfig(
		ctx.GlobalString("configfile"), func(cfg *xchainbtc.Config) {
			if ctx.GlobalIsSet("network") {
				cfg.Network = ctx.GlobalString("network")
			}
			if ctx.GlobalIsSet("esplora.url") {
				cfg.Esplora.URL = ctx.GlobalString("esplora.url")
			}
			if ctx.GlobalIsSet("debuglevel") {
				cfg.DebugLevel = ctx.GlobalString("debuglevel")
			}
		},
	)
}

// getWallet creates the wallet described by the config and, if needed,
// sets its phrase. Log lines only go to the log file so that they don't mix
// with command output.
func getWallet(ctx *cli.Context, needPhrase bool) (*xchainbtc.Wallet,
	func(), error) {

	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, nil, err
	}

	logMgr := xchainbtc.NewSubLoggerManager()
	logMgr.SetQuiet(true)
	if err := cfg.ApplyLogging(logMgr); err != nil {
		return nil, nil, err
	}

	w, cleanupWallet, err := xchainbtc.NewWallet(cfg)
	if err != nil {
		_ = logMgr.Close()
		return nil, nil, err
	}
	cleanup := func() {
		cleanupWallet()
		_ = logMgr.Close()
	}

	if needPhrase {
		phrase, err := readPhrase()
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if err := w.SetPhrase(phrase); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	return w, cleanup, nil
}

// readPhrase returns the phrase from the environment or asks for it without
// echo.
func readPhrase() (string, error) {
	if phrase := os.Getenv(phraseEnv); phrase != "" {
		return phrase, nil
	}

	fmt.Fprint(os.Stderr, "Input wallet mnemonic: ")

	// The variable syscall.Stdin is of a different type in the Windows API
	// that's why we need the explicit cast. And of course the linter
	// doesn't like it either.
	phrase, err := term.ReadPassword(int(syscall.Stdin)) // nolint:unconvert
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(phrase)), nil
}

func printJSON(resp interface{}) {
	b, err := json.Marshal(resp)
	if err != nil {
		fatal(err)
	}

	var out bytes.Buffer
	_ = json.Indent(&out, b, "", "    ")
	out.WriteString("\n")
	_, _ = out.WriteTo(os.Stdout)
}

func main() {
	app := cli.NewApp()
	app.Name = "xbtc"
	app.Version = build.Version() + " commit=" + build.Commit
	app.Usage = "single address bitcoin wallet backed by an Esplora API"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "configfile",
			Value: xchainbtc.DefaultConfigFile,
			Usage: "The path to the config file.",
		},
		cli.StringFlag{
			Name:  "network, n",
			Value: "mainnet",
			Usage: "The network to operate on: mainnet, testnet, " +
				"signet or regtest.",
		},
		cli.StringFlag{
			Name:  "esplora.url",
			Usage: "The base URL of the Esplora API.",
		},
		cli.StringFlag{
			Name:  "debuglevel",
			Value: "info",
			Usage: "Logging level for all subsystems, or " +
				"<global-level>,<subsystem>=<level>,...",
		},
	}
	app.Commands = []cli.Command{
		newMnemonicCommand,
		addressCommand,
		validateAddressCommand,
		balanceCommand,
		utxosCommand,
		feesCommand,
		sendCommand,
		vaultCommand,
		broadcastCommand,
		listTxsCommand,
		getTxCommand,
		journalCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}
