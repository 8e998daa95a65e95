package wallet

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTxSizes(t *testing.T) {
	t.Parallel()

	memoScript, err := MemoScript([]byte("hi"))
	require.NoError(t, err)
	require.Len(t, memoScript, 4)

	tests := []struct {
		name       string
		numInputs  int
		numOutputs int
		memo       []byte
		formula    int64
		segwit     int64
	}{
		{"1 in 1 out", 1, 1, nil, 192, 111},
		{"1 in 2 out", 1, 2, nil, 226, 142},
		{"2 in 2 out", 2, 2, nil, 374, 211},
		{"1 in 2 out memo", 1, 2, memoScript, 239, 155},
	}
	for _, test := range tests {
		require.Equal(t, test.formula, FormulaTxSize(
			test.numInputs, test.numOutputs, test.memo,
		), test.name)
		require.Equal(t, test.segwit, EstimateP2WPKHVSize(
			test.numInputs, test.numOutputs, test.memo,
		), test.name)
	}

	require.EqualValues(t, 69, P2WPKHInputVSize)
	require.EqualValues(t, 31, P2WPKHOutputSize)
}

func TestFormulaFee(t *testing.T) {
	t.Parallel()

	require.Equal(t, MinTxFee, FormulaFee(226, 1))
	require.EqualValues(t, 2_260, FormulaFee(226, 10))
}
