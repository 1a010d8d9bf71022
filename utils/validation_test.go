package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAmount(t *testing.T) {
	dec, err := ValidateAmount("0.001")
	require.NoError(t, err)
	assert.Equal(t, "0.001", dec.String())

	_, err = ValidateAmount("")
	assert.Error(t, err)

	_, err = ValidateAmount("abc")
	assert.Error(t, err)

	_, err = ValidateAmount("-1")
	assert.Error(t, err)
}

func TestValidateSolanaAddress(t *testing.T) {
	assert.NoError(t, ValidateSolanaAddress("DyJjjHQyd8NYZeXXhSABpFWPn4PE98UDv4oLtaxzJuiE"))
	assert.NoError(t, ValidateSolanaAddress("11111111111111111111111111111111"))

	assert.Error(t, ValidateSolanaAddress(""))
	assert.Error(t, ValidateSolanaAddress("0x742d35Cc6634C0532925a3b8D098f69DB22B6b8B"))
	assert.Error(t, ValidateSolanaAddress("DyJjjHQyd8NYZeXX"))
}

func TestValidateNetwork(t *testing.T) {
	for _, n := range []string{"solana", "solana-mainnet", "solana-devnet"} {
		assert.NoError(t, ValidateNetwork(n), n)
	}
	assert.Error(t, ValidateNetwork("polygon"))
	assert.Error(t, ValidateNetwork(""))
}

func TestValidatePaymentScheme(t *testing.T) {
	assert.NoError(t, ValidatePaymentScheme("exact"))
	assert.Error(t, ValidatePaymentScheme("any"))
}
