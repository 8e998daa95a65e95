// Package xchainbtc wires a single address P2WPKH wallet to an Esplora API,
// a fee estimator and a local journal of broadcast transactions.
package xchainbtc

import (
	"fmt"

	"github.com/xchainjs/xchainjs-lib-sub000/chainfee"
	"github.com/xchainjs/xchainjs-lib-sub000/esplora"
	"github.com/xchainjs/xchainjs-lib-sub000/journal"
	"github.com/xchainjs/xchainjs-lib-sub000/walletcfg"
	"github.com/xchainjs/xchainjs-lib-sub000/wallet"
)

// Wallet is a wallet client together with the services backing it.
type Wallet struct {
	*wallet.Client

	// Esplora is the API client used for scans and broadcasts.
	Esplora *esplora.Client

	// Estimator caches fee estimates from Esplora.
	Estimator *chainfee.EsploraEstimator

	// Journal records broadcast transactions. It is nil when disabled.
	Journal *journal.Journal
}

// NewWallet creates the services described by cfg, starts the fee estimator
// and returns the wallet along with a cleanup function releasing everything
// it opened. cfg must have been validated.
func NewWallet(cfg *Config) (*Wallet, func(), error) {
	params := cfg.ActiveNetParams()
	if params == nil {
		return nil, nil, fmt.Errorf("config not validated")
	}

	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	client := esplora.NewClient(&esplora.ClientConfig{
		URL:            cfg.Esplora.URL,
		RequestTimeout: cfg.Esplora.RequestTimeout,
		MaxRetries:     cfg.Esplora.MaxRetries,
		RateLimit:      cfg.Esplora.RateLimit,
		Proxy:          cfg.Esplora.Proxy,
		TorIsolation:   cfg.Esplora.TorIsolation,
	})
	cleanups = append(cleanups, func() {
		if err := client.Stop(); err != nil {
			log.Errorf("Unable to stop esplora client: %v", err)
		}
	})

	estimator := chainfee.NewEsploraEstimator(
		client, &chainfee.EsploraEstimatorConfig{
			FallbackFeeRate: chainfee.SatPerVByte(
				cfg.Fee.FallbackFeeRate,
			),
			MinFeeRate:     chainfee.SatPerVByte(cfg.Fee.MinFeeRate),
			UpdateInterval: cfg.Fee.UpdateInterval,
		},
	)
	if err := estimator.Start(); err != nil {
		cleanup()
		return nil, nil, err
	}
	cleanups = append(cleanups, func() {
		if err := estimator.Stop(); err != nil {
			log.Errorf("Unable to stop fee estimator: %v", err)
		}
	})

	w := &Wallet{
		Esplora:   client,
		Estimator: estimator,
	}

	walletCfg := &wallet.Config{
		ChainParams:    params.Params,
		Chain:          client,
		Estimator:      estimator,
		Account:        cfg.Wallet.Account,
		Index:          cfg.Wallet.Index,
		CoinSelection:  cfg.Wallet.CoinSelection,
		SizeEstimation: cfg.Wallet.SizeEstimation,
		Explorer:       wallet.Explorer{BaseURL: cfg.ExplorerURL},
	}

	if !cfg.Journal.Disable {
		j, err := journal.Open(&journal.Config{
			DBPath:     cfg.NetworkDataDir(),
			DBFileName: walletcfg.DefaultJournalFilename,
			DBTimeout:  cfg.Journal.DBTimeout,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		cleanups = append(cleanups, func() {
			if err := j.Close(); err != nil {
				log.Errorf("Unable to close journal: %v", err)
			}
		})

		w.Journal = j
		walletCfg.Journal = j
	}

	var err error
	w.Client, err = wallet.New(walletCfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	log.Infof("Wallet ready on %v via %v", params.Name, client.URL())

	return w, cleanup, nil
}
