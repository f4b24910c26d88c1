package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSource(t *testing.T) {
	cases := map[string]LiquiditySource{
		"0x":         ZeroX,
		"ZERO_X":     ZeroX,
		"1inch":      OneInch,
		"ONE_INCH":   OneInch,
		"Paraswap":   Paraswap,
		"open-ocean": OpenOcean,
		"COWSWAP":    CowSwap,
	}
	for in, want := range cases {
		got, ok := ParseSource(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := ParseSource("uniswap")
	assert.False(t, ok)
}

func TestSourcePriorityOrder(t *testing.T) {
	for i := 1; i < len(AllSources); i++ {
		assert.Less(t, int(AllSources[i-1]), int(AllSources[i]))
	}
	assert.Equal(t, "unknown", LiquiditySource(99).String())
}

func TestNetworkTxURL(t *testing.T) {
	n := Network{ScannerURL: "https://etherscan.io/"}
	assert.Equal(t, "https://etherscan.io/tx/0xabc", n.TxURL("0xabc"))
	assert.Equal(t, "0xabc", Network{}.TxURL("0xabc"))
}
