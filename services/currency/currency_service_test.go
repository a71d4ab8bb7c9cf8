package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCurrencyValid(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		valid    bool
	}{
		{name: "usdc is supported", currency: "USDC", valid: true},
		{name: "sol is supported", currency: "SOL", valid: true},
		{name: "usdt is supported", currency: "USDT", valid: true},
		{name: "lowercase is not a currency code", currency: "usdc", valid: false},
		{name: "fiat is not supported", currency: "NGN", valid: false},
		{name: "empty string", currency: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsCurrencyValid(tt.currency))
			assert.Equal(t, !tt.valid, IsCurrencyInvalid(tt.currency))
		})
	}
}

func TestTokenBySymbol(t *testing.T) {
	usdc, ok := TokenBySymbol("usdc")
	assert.True(t, ok)
	assert.Equal(t, "USDC", usdc.Symbol)
	assert.Equal(t, int32(6), usdc.Decimals)

	sol, ok := TokenBySymbol("SOL")
	assert.True(t, ok)
	assert.Equal(t, int32(9), sol.Decimals)

	_, ok = TokenBySymbol("DOGE")
	assert.False(t, ok)
}

func TestTokenByMint(t *testing.T) {
	t.Run("mainnet usdc mint resolves", func(t *testing.T) {
		tok, ok := TokenByMint("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v")
		assert.True(t, ok)
		assert.Equal(t, "USDC", tok.Symbol)
	})

	t.Run("devnet usdc mint resolves", func(t *testing.T) {
		tok, ok := TokenByMint("4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU")
		assert.True(t, ok)
		assert.Equal(t, "USDC", tok.Symbol)
	})

	t.Run("unknown mint", func(t *testing.T) {
		_, ok := TokenByMint("11111111111111111111111111111111")
		assert.False(t, ok)
	})
}

func TestMintFor(t *testing.T) {
	usdt, ok := TokenBySymbol("USDT")
	assert.True(t, ok)

	// USDT has no devnet mint registered, so the mainnet mint is the fallback
	assert.Equal(t, usdt.Mints[ClusterMainnet], usdt.MintFor(ClusterDevnet))

	usdc, _ := TokenBySymbol("USDC")
	assert.Equal(t, "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU", usdc.MintFor(ClusterDevnet))
}
