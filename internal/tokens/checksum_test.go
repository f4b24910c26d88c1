package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// EIP-55 reference vectors.
var checksummed = []string{
	"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
	"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
	"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
	"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
}

func TestToChecksumAddress(t *testing.T) {
	for _, want := range checksummed {
		got, err := ToChecksumAddress(strings.ToLower(want))
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ToChecksumAddress("0x1234")
	assert.Error(t, err)
	_, err = ToChecksumAddress("0xzz" + strings.Repeat("0", 38))
	assert.Error(t, err)
	_, err = ToChecksumAddress("")
	assert.Error(t, err)
}

func TestValidateAddress(t *testing.T) {
	for _, a := range checksummed {
		assert.NoError(t, ValidateAddress(a))
		assert.NoError(t, ValidateAddress(strings.ToLower(a)))
	}
	assert.NoError(t, ValidateAddress("0x"+strings.ToUpper(checksummed[0][2:])))
	assert.Error(t, ValidateAddress("0x5AAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"))
}
