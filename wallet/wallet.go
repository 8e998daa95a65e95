package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/xchainjs/xchainjs-lib-sub000/keychain"
)

// signingKey is the key material derived from the phrase.
type signingKey struct {
	desc *keychain.KeyDescriptor

	signer keychain.SingleKeyDigestSigner

	address *btcutil.AddressWitnessPubKeyHash

	pkScript []byte
}

// Client is a single address P2WPKH wallet. It derives its key from a BIP39
// phrase, keeps the unspent outputs of the last scan in memory and builds,
// signs and broadcasts transactions through the configured Chain.
type Client struct {
	cfg *Config

	mu    sync.RWMutex
	key   *signingKey
	utxos []*UTXO
}

// New creates a wallet client. A phrase must be set before any operation
// that needs the address.
func New(cfg *Config) (*Client, error) {
	if cfg == nil || cfg.Chain == nil {
		return nil, fmt.Errorf("wallet needs a chain backend")
	}
	cfg.applyDefaults()

	return &Client{cfg: cfg}, nil
}

// Params returns the wallet's network parameters.
func (c *Client) Params() *chaincfg.Params {
	return c.cfg.ChainParams
}

// SetPhrase derives the wallet key from the phrase and forgets any cached
// unspent outputs. An invalid phrase leaves the client unchanged.
func (c *Client) SetPhrase(phrase string) error {
	ring, err := keychain.NewHDKeyRingFromMnemonic(
		phrase, c.cfg.ChainParams,
	)
	if err != nil {
		return err
	}

	path := keychain.BIP84Path(
		c.cfg.ChainParams, c.cfg.Account, c.cfg.Index,
	)
	desc, err := ring.DeriveKey(path)
	if err != nil {
		return err
	}

	addr, err := keychain.P2WPKHAddress(desc.PubKey, c.cfg.ChainParams)
	if err != nil {
		return err
	}

	pkScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.key = &signingKey{
		desc:     desc,
		signer:   keychain.NewDigestSigner(desc),
		address:  addr,
		pkScript: pkScript,
	}
	c.utxos = nil
	c.mu.Unlock()

	log.Infof("Wallet address set to %v (%v)", addr, path)

	return nil
}

// Purge forgets the key material and the cached unspent outputs.
func (c *Client) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.key = nil
	c.utxos = nil
}

// currentKey returns the current key or ErrNoPhrase.
func (c *Client) currentKey() (*signingKey, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.key == nil {
		return nil, ErrNoPhrase
	}

	return c.key, nil
}

// GetAddress returns the wallet's P2WPKH address.
func (c *Client) GetAddress() (string, error) {
	key, err := c.currentKey()
	if err != nil {
		return "", err
	}

	return key.address.EncodeAddress(), nil
}

// DerivationPath returns the path of the wallet key.
func (c *Client) DerivationPath() keychain.DerivationPath {
	return keychain.BIP84Path(
		c.cfg.ChainParams, c.cfg.Account, c.cfg.Index,
	)
}

// ValidateAddress reports whether addr decodes to an address of the
// wallet's network. It never fails.
func (c *Client) ValidateAddress(addr string) bool {
	_, err := c.decodeAddress(addr)
	return err == nil
}

// decodeAddress decodes addr and checks its network.
func (c *Client) decodeAddress(addr string) (btcutil.Address, error) {
	decoded, err := btcutil.DecodeAddress(addr, c.cfg.ChainParams)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if !decoded.IsForNet(c.cfg.ChainParams) {
		return nil, fmt.Errorf("%w: %v is not a %v address",
			ErrInvalidAddress, addr, c.cfg.ChainParams.Name)
	}

	return decoded, nil
}

// Explorer returns the explorer link builder.
func (c *Client) Explorer() Explorer {
	return c.cfg.Explorer
}

// scanned returns the current key along with a fresh scan of its outputs.
func (c *Client) scanned(ctx context.Context) (*signingKey, []*UTXO, error) {
	key, err := c.currentKey()
	if err != nil {
		return nil, nil, err
	}

	utxos, err := c.ScanUTXOs(ctx)
	if err != nil {
		return nil, nil, err
	}

	return key, utxos, nil
}
