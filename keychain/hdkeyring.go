package keychain

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

// HDKeyRing is an implementation of the KeyRing interface backed by a BIP32
// master key held in memory.
type HDKeyRing struct {
	master *hdkeychain.ExtendedKey

	params *chaincfg.Params
}

// A compile time check to ensure HDKeyRing implements the KeyRing interface.
var _ KeyRing = (*HDKeyRing)(nil)

// NewHDKeyRing creates a key ring from a BIP39 seed.
func NewHDKeyRing(seed []byte, params *chaincfg.Params) (*HDKeyRing, error) {
	master, err := hdkeychain.NewMaster(seed, params)
	if err != nil {
		return nil, fmt.Errorf("unable to create master key: %w", err)
	}

	return &HDKeyRing{
		master: master,
		params: params,
	}, nil
}

// NewHDKeyRingFromMnemonic is a convenience wrapper that derives the seed
// from a mnemonic with an empty passphrase.
func NewHDKeyRingFromMnemonic(phrase string,
	params *chaincfg.Params) (*HDKeyRing, error) {

	seed, err := SeedFromMnemonic(phrase, "")
	if err != nil {
		return nil, err
	}

	return NewHDKeyRing(seed, params)
}

// DeriveKey derives the key pair at the given path.
//
// NOTE: This is part of the keychain.KeyRing interface.
func (h *HDKeyRing) DeriveKey(path DerivationPath) (*KeyDescriptor, error) {
	key := h.master
	for _, child := range path.children() {
		var err error
		key, err = key.Derive(child)
		if err != nil {
			return nil, fmt.Errorf("unable to derive %v: %w", path,
				err)
		}
	}

	privKey, err := key.ECPrivKey()
	if err != nil {
		return nil, err
	}

	return &KeyDescriptor{
		Path:    path,
		PrivKey: privKey,
		PubKey:  privKey.PubKey(),
	}, nil
}

// Params returns the chain parameters the key ring was created for.
func (h *HDKeyRing) Params() *chaincfg.Params {
	return h.params
}

// P2WPKHAddress returns the native segwit address of the public key.
func P2WPKHAddress(pubKey *btcec.PublicKey,
	params *chaincfg.Params) (*btcutil.AddressWitnessPubKeyHash, error) {

	return btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pubKey.SerializeCompressed()), params,
	)
}
