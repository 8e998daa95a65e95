package wallet

import (
	"context"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/lightningnetwork/lnd/fn/v2"
	"github.com/xchainjs/xchainjs-lib-sub000/esplora"
	"github.com/xchainjs/xchainjs-lib-sub000/journal"
)

// mockChain is an in-memory Chain.
type mockChain struct {
	mu sync.Mutex

	utxos     []*esplora.UTXO
	stats     *esplora.AddressStats
	txs       []*esplora.TxInfo
	chainTxs  map[string][]*esplora.TxInfo
	txByID    map[string]*esplora.TxInfo
	estimates esplora.FeeEstimates
	blocks    []*esplora.BlockInfo
	err       error

	broadcast []*wire.MsgTx
}

func newMockChain() *mockChain {
	return &mockChain{
		stats:    &esplora.AddressStats{},
		chainTxs: make(map[string][]*esplora.TxInfo),
		txByID:   make(map[string]*esplora.TxInfo),
	}
}

func (m *mockChain) setUTXOs(values ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.utxos = nil
	for i, v := range values {
		m.utxos = append(m.utxos, &esplora.UTXO{
			TxID:   chainhash.Hash{byte(i + 1), 0xaa}.String(),
			Vout:   uint32(i),
			Value:  v,
			Status: esplora.TxStatus{Confirmed: i%2 == 0},
		})
	}
}

func (m *mockChain) GetAddressUTXOs(context.Context,
	string) ([]*esplora.UTXO, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	return m.utxos, nil
}

func (m *mockChain) GetAddressStats(context.Context,
	string) (*esplora.AddressStats, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stats, m.err
}

func (m *mockChain) GetAddressTxs(context.Context,
	string) ([]*esplora.TxInfo, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.txs, m.err
}

func (m *mockChain) GetAddressTxsChain(_ context.Context, _,
	lastSeen string) ([]*esplora.TxInfo, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.chainTxs[lastSeen], m.err
}

func (m *mockChain) GetTransaction(_ context.Context,
	txid string) (*esplora.TxInfo, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	tx, ok := m.txByID[txid]
	if !ok {
		return nil, esplora.ErrTxNotFound
	}

	return tx, nil
}

func (m *mockChain) GetFeeEstimates(
	context.Context) (esplora.FeeEstimates, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.estimates, m.err
}

func (m *mockChain) GetBlocks(context.Context,
	fn.Option[int64]) ([]*esplora.BlockInfo, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	return m.blocks, m.err
}

func (m *mockChain) BroadcastTx(_ context.Context,
	tx *wire.MsgTx) (*chainhash.Hash, error) {

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	m.broadcast = append(m.broadcast, tx)
	txid := tx.TxHash()

	return &txid, nil
}

var _ Chain = (*mockChain)(nil)

// mockJournal collects entries.
type mockJournal struct {
	mu      sync.Mutex
	entries []*journal.Entry
}

func (m *mockJournal) Put(entry *journal.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, entry)

	return nil
}

var _ Journal = (*mockJournal)(nil)
