package keychain

import (
	"crypto/sha256"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testMnemonic is the BIP84 reference mnemonic.
const testMnemonic = "abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon about"

// TestBIP84Vectors checks derivation against the BIP84 test vectors.
func TestBIP84Vectors(t *testing.T) {
	t.Parallel()

	ring, err := NewHDKeyRingFromMnemonic(
		testMnemonic, &chaincfg.MainNetParams,
	)
	require.NoError(t, err)

	testCases := []struct {
		index   uint32
		address string
	}{
		{index: 0, address: "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"},
		{index: 1, address: "bc1qnjg0jd8228aq7egyzacy8cys3knf9xvrerkf9g"},
	}

	for _, tc := range testCases {
		path := BIP84Path(&chaincfg.MainNetParams, 0, tc.index)
		key, err := ring.DeriveKey(path)
		require.NoError(t, err)
		require.Equal(t, path, key.Path)
		require.True(t, key.PubKey.IsEqual(key.PrivKey.PubKey()))

		addr, err := P2WPKHAddress(key.PubKey, &chaincfg.MainNetParams)
		require.NoError(t, err)
		require.Equal(t, tc.address, addr.EncodeAddress())
	}
}

// TestTestnetCoinType makes sure test networks derive under coin type 1 and
// produce tb1 addresses.
func TestTestnetCoinType(t *testing.T) {
	t.Parallel()

	params := &chaincfg.TestNet3Params
	path := BIP84Path(params, 0, 0)
	require.Equal(t, "m/84'/1'/0'/0/0", path.String())
	require.Equal(t, CoinTypeBitcoin, CoinTypeForNet(&chaincfg.MainNetParams))
	require.Equal(t, CoinTypeTestnet, CoinTypeForNet(&chaincfg.RegressionNetParams))
	require.Equal(t, CoinTypeTestnet, CoinTypeForNet(&chaincfg.SigNetParams))

	ring, err := NewHDKeyRingFromMnemonic(testMnemonic, params)
	require.NoError(t, err)

	key, err := ring.DeriveKey(path)
	require.NoError(t, err)

	addr, err := P2WPKHAddress(key.PubKey, params)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(addr.EncodeAddress(), "tb1q"))
	require.True(t, addr.IsForNet(params))
}

func TestParsePath(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		path     string
		expected DerivationPath
		valid    bool
	}{
		{
			path: "m/84'/0'/0'/0/0",
			expected: DerivationPath{
				Purpose: 84,
			},
			valid: true,
		},
		{
			path: "m/84h/1h/2h/1/7",
			expected: DerivationPath{
				Purpose: 84, CoinType: 1, Account: 2, Branch: 1,
				Index: 7,
			},
			valid: true,
		},
		{path: "m/84'/0'/0'/0"},
		{path: "84'/0'/0'/0/0"},
		{path: "m/84/0'/0'/0/0"},
		{path: "m/84'/0'/0'/0'/0"},
		{path: "m/84'/0'/x'/0/0"},
		{path: "m/84'/0'/0'/0/2147483648"},
	}

	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()

			path, err := ParsePath(tc.path)
			if !tc.valid {
				require.ErrorIs(t, err, ErrInvalidPath)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.expected, path)
		})
	}
}

// TestPathStringParse checks that String and ParsePath agree for any path.
func TestPathStringParse(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		level := rapid.Uint32Range(0, 1<<31-1)
		path := DerivationPath{
			Purpose:  level.Draw(t, "purpose"),
			CoinType: level.Draw(t, "coin"),
			Account:  level.Draw(t, "account"),
			Branch:   level.Draw(t, "branch"),
			Index:    level.Draw(t, "index"),
		}

		parsed, err := ParsePath(path.String())
		require.NoError(t, err)
		require.Equal(t, path, parsed)
	})
}

func TestMnemonic(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateMnemonic(testMnemonic))
	require.NoError(t, ValidateMnemonic("  "+strings.ReplaceAll(
		testMnemonic, " ", "   ")+"\n"))

	// Bad checksum.
	bad := strings.Replace(testMnemonic, "about", "abandon", 1)
	require.ErrorIs(t, ValidateMnemonic(bad), ErrInvalidMnemonic)
	_, err := SeedFromMnemonic(bad, "")
	require.ErrorIs(t, err, ErrInvalidMnemonic)

	// Unknown word.
	require.ErrorIs(t, ValidateMnemonic("hello world"), ErrInvalidMnemonic)

	phrase, err := NewMnemonic(DefaultEntropyBits)
	require.NoError(t, err)
	require.Len(t, strings.Fields(phrase), 12)
	require.NoError(t, ValidateMnemonic(phrase))

	phrase, err = NewMnemonic(256)
	require.NoError(t, err)
	require.Len(t, strings.Fields(phrase), 24)

	_, err = NewMnemonic(100)
	require.Error(t, err)
}

// TestDeterministicDerivation makes sure the same mnemonic always yields the
// same key.
func TestDeterministicDerivation(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		entropy := rapid.SliceOfN(rapid.Byte(), 16, 16).Draw(t, "entropy")
		index := rapid.Uint32Range(0, 100).Draw(t, "index")

		phrase, err := MnemonicFromEntropy(entropy)
		require.NoError(t, err)

		params := &chaincfg.RegressionNetParams
		path := BIP84Path(params, 0, index)

		var addrs []string
		for i := 0; i < 2; i++ {
			ring, err := NewHDKeyRingFromMnemonic(phrase, params)
			require.NoError(t, err)

			key, err := ring.DeriveKey(path)
			require.NoError(t, err)

			addr, err := P2WPKHAddress(key.PubKey, params)
			require.NoError(t, err)
			addrs = append(addrs, addr.EncodeAddress())
		}

		require.Equal(t, addrs[0], addrs[1])
	})
}

func TestDigestSigner(t *testing.T) {
	t.Parallel()

	ring, err := NewHDKeyRingFromMnemonic(
		testMnemonic, &chaincfg.MainNetParams,
	)
	require.NoError(t, err)

	key, err := ring.DeriveKey(BIP84Path(&chaincfg.MainNetParams, 0, 0))
	require.NoError(t, err)

	signer := NewDigestSigner(key)
	require.True(t, signer.PubKey().IsEqual(key.PubKey))

	digest := sha256.Sum256([]byte("xbtc"))
	sig, err := signer.SignDigest(digest)
	require.NoError(t, err)
	require.True(t, sig.Verify(digest[:], key.PubKey))

	compact, err := signer.SignDigestCompact(digest)
	require.NoError(t, err)

	recovered, _, err := ecdsa.RecoverCompact(compact, digest[:])
	require.NoError(t, err)
	require.True(t, recovered.IsEqual(key.PubKey))
}
