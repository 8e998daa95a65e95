package chainfee

import (
	"math"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/stretchr/testify/require"
)

// TestSatPerVByteConversion checks that the conversion from sat/vb to either
// sat/kw or sat/kvb is correct.
func TestSatPerVByteConversion(t *testing.T) {
	t.Parallel()

	// Create a test fee rate of 1 sat/vb.
	rate := SatPerVByte(1)

	// 1 sat/vb should be equal to 1000 sat/kvb.
	require.Equal(t, SatPerKVByte(1000), rate.FeePerKVByte())

	// 1 sat/vb should be equal to 250 sat/kw.
	require.Equal(t, SatPerKWeight(250), rate.FeePerKWeight())

	// And back again, rounding up partial sats.
	require.Equal(t, rate, SatPerKWeight(250).FeePerVByte())
	require.Equal(t, SatPerVByte(2), SatPerKWeight(253).FeePerVByte())
	require.Equal(t, SatPerVByte(2), SatPerKVByte(1001).FeePerVByte())
}

func TestFeeForVSize(t *testing.T) {
	t.Parallel()

	require.Equal(t, btcutil.Amount(1410), SatPerVByte(10).FeeForVSize(141))
	require.Equal(t, btcutil.Amount(141), SatPerKVByte(1000).FeeForVSize(141))
	require.Equal(t, btcutil.Amount(141), SatPerKWeight(250).FeeForVByte(141))
	require.Equal(t, btcutil.Amount(141), SatPerKWeight(250).FeeForWeight(564))
}

func TestNewSatPerVByte(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		raw      float64
		expected SatPerVByte
	}{
		{raw: 0, expected: FeePerVByteFloor},
		{raw: -3, expected: FeePerVByteFloor},
		{raw: 0.25, expected: FeePerVByteFloor},
		{raw: 1, expected: 1},
		{raw: 1.001, expected: 2},
		{raw: 12.5, expected: 13},
		{raw: 40, expected: 40},
		{raw: math.NaN(), expected: FeePerVByteFloor},
		{raw: 1e9, expected: AbsoluteFeePerVByteCeiling},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, NewSatPerVByte(tc.raw),
			"raw %v", tc.raw)
	}
}
