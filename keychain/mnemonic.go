package keychain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tyler-smith/go-bip39"
)

const (
	// DefaultEntropyBits yields a 12 word mnemonic.
	DefaultEntropyBits = 128
)

// ErrInvalidMnemonic is returned when a phrase isn't a valid BIP39 mnemonic.
var ErrInvalidMnemonic = errors.New("invalid BIP39 mnemonic")

// NewMnemonic generates a fresh mnemonic from bits of entropy. bits must be a
// multiple of 32 in the range [128, 256].
func NewMnemonic(bits int) (string, error) {
	entropy, err := bip39.NewEntropy(bits)
	if err != nil {
		return "", fmt.Errorf("unable to generate entropy: %w", err)
	}

	return MnemonicFromEntropy(entropy)
}

// MnemonicFromEntropy encodes raw entropy as a BIP39 mnemonic.
func MnemonicFromEntropy(entropy []byte) (string, error) {
	return bip39.NewMnemonic(entropy)
}

// normalizeMnemonic collapses runs of whitespace between words.
func normalizeMnemonic(phrase string) string {
	return strings.Join(strings.Fields(phrase), " ")
}

// ValidateMnemonic returns ErrInvalidMnemonic if the phrase has an unknown
// word, a bad length or a bad checksum.
func ValidateMnemonic(phrase string) error {
	if !bip39.IsMnemonicValid(normalizeMnemonic(phrase)) {
		return ErrInvalidMnemonic
	}

	return nil
}

// SeedFromMnemonic validates the phrase and returns its 64 byte BIP39 seed.
func SeedFromMnemonic(phrase, passphrase string) ([]byte, error) {
	seed, err := bip39.NewSeedWithErrorChecking(
		normalizeMnemonic(phrase), passphrase,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}

	return seed, nil
}
