package keychain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

const (
	// BIP0084Purpose is the purpose field of native segwit (P2WPKH)
	// derivation paths.
	BIP0084Purpose = 84

	// CoinTypeBitcoin specifies the BIP44 coin type for Bitcoin key
	// derivation.
	CoinTypeBitcoin uint32 = 0

	// CoinTypeTestnet specifies the BIP44 coin type for all testnet key
	// derivation.
	CoinTypeTestnet uint32 = 1

	// ExternalBranch is the branch used for receiving addresses.
	ExternalBranch uint32 = 0
)

// ErrInvalidPath is returned when a derivation path string can't be parsed.
var ErrInvalidPath = errors.New("invalid derivation path")

// CoinTypeForNet returns the BIP44 coin type for the given network: 0 on
// mainnet and 1 on every test network.
func CoinTypeForNet(params *chaincfg.Params) uint32 {
	if params.Net == chaincfg.MainNetParams.Net {
		return CoinTypeBitcoin
	}

	return CoinTypeTestnet
}

// DerivationPath is a BIP44 style path of the form
//
//   - m/purpose'/coinType'/account'/branch/index
//
// The first three levels are always hardened.
type DerivationPath struct {
	// Purpose is the BIP43 purpose, 84 for native segwit.
	Purpose uint32

	// CoinType is the SLIP-0044 coin type.
	CoinType uint32

	// Account is the account level.
	Account uint32

	// Branch is 0 for external and 1 for change addresses.
	Branch uint32

	// Index is the address index within the branch.
	Index uint32
}

// BIP84Path returns the external P2WPKH path for the given account and index
// on the given network.
func BIP84Path(params *chaincfg.Params, account, index uint32) DerivationPath {
	return DerivationPath{
		Purpose:  BIP0084Purpose,
		CoinType: CoinTypeForNet(params),
		Account:  account,
		Branch:   ExternalBranch,
		Index:    index,
	}
}

// String returns the path in m/84'/0'/0'/0/0 notation.
func (p DerivationPath) String() string {
	return fmt.Sprintf("m/%d'/%d'/%d'/%d/%d", p.Purpose, p.CoinType,
		p.Account, p.Branch, p.Index)
}

// children returns the child indexes to derive from the master key, in order.
func (p DerivationPath) children() []uint32 {
	return []uint32{
		p.Purpose + hdkeychain.HardenedKeyStart,
		p.CoinType + hdkeychain.HardenedKeyStart,
		p.Account + hdkeychain.HardenedKeyStart,
		p.Branch,
		p.Index,
	}
}

// ParsePath parses a path such as "m/84'/0'/0'/0/0". Hardened levels may be
// marked with either ' or h.
func ParsePath(path string) (DerivationPath, error) {
	parts := strings.Split(strings.TrimSpace(path), "/")
	if len(parts) != 6 || parts[0] != "m" {
		return DerivationPath{}, fmt.Errorf("%w: %q", ErrInvalidPath,
			path)
	}

	var levels [5]uint32
	for i, part := range parts[1:] {
		hardened := strings.HasSuffix(part, "'") ||
			strings.HasSuffix(part, "h")

		// The purpose, coin type and account levels must be hardened
		// while branch and index must not be.
		if hardened != (i < 3) {
			return DerivationPath{}, fmt.Errorf("%w: level %d of "+
				"%q", ErrInvalidPath, i+1, path)
		}

		part = strings.TrimRight(part, "'h")
		n, err := strconv.ParseUint(part, 10, 31)
		if err != nil {
			return DerivationPath{}, fmt.Errorf("%w: %v",
				ErrInvalidPath, err)
		}
		levels[i] = uint32(n)
	}

	return DerivationPath{
		Purpose:  levels[0],
		CoinType: levels[1],
		Account:  levels[2],
		Branch:   levels[3],
		Index:    levels[4],
	}, nil
}

// KeyDescriptor describes a derived key: where it lives in the HD tree and
// the key pair itself.
type KeyDescriptor struct {
	// Path is the derivation path of the key.
	Path DerivationPath

	// PrivKey is the private key at Path.
	PrivKey *btcec.PrivateKey

	// PubKey is the public key at Path.
	PubKey *btcec.PublicKey
}

// KeyRing derives keys from a single root seed.
type KeyRing interface {
	// DeriveKey derives the key pair at the given path.
	DeriveKey(path DerivationPath) (*KeyDescriptor, error)
}
