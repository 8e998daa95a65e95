package keychain

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
)

// SingleKeyDigestSigner signs 32 byte digests with a single, specific
// private key.
type SingleKeyDigestSigner interface {
	// PubKey returns the public key of the wrapped private key.
	PubKey() *btcec.PublicKey

	// SignDigest signs the given digest with the wrapped private key.
	SignDigest(digest [32]byte) (*ecdsa.Signature, error)

	// SignDigestCompact signs the given digest and returns the signature
	// in the compact, public key recoverable format.
	SignDigestCompact(digest [32]byte) ([]byte, error)
}

// NewDigestSigner wraps the private key of a derived key.
func NewDigestSigner(keyDesc *KeyDescriptor) *PrivKeyDigestSigner {
	return &PrivKeyDigestSigner{PrivKey: keyDesc.PrivKey}
}

// PrivKeyDigestSigner is an implementation of SingleKeyDigestSigner in which
// we hold the full private key.
type PrivKeyDigestSigner struct {
	// PrivKey is the private key used for signing.
	PrivKey *btcec.PrivateKey
}

// PubKey returns the public key of the wrapped private key.
//
// NOTE: This is part of the SingleKeyDigestSigner interface.
func (p *PrivKeyDigestSigner) PubKey() *btcec.PublicKey {
	return p.PrivKey.PubKey()
}

// SignDigest signs the given digest with the wrapped private key.
//
// NOTE: This is part of the SingleKeyDigestSigner interface.
func (p *PrivKeyDigestSigner) SignDigest(digest [32]byte) (*ecdsa.Signature,
	error) {

	return ecdsa.Sign(p.PrivKey, digest[:]), nil
}

// SignDigestCompact signs the given digest and returns a compact signature.
//
// NOTE: This is part of the SingleKeyDigestSigner interface.
func (p *PrivKeyDigestSigner) SignDigestCompact(digest [32]byte) ([]byte,
	error) {

	return ecdsa.SignCompact(p.PrivKey, digest[:], true), nil
}

var _ SingleKeyDigestSigner = (*PrivKeyDigestSigner)(nil)
