package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		address string
		status  Status
	}{
		{
			name:    "usdc mint address",
			address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			status:  StatusValid,
		},
		{
			name:    "system program address",
			address: "11111111111111111111111111111111",
			status:  StatusValid,
		},
		{
			name:    "surrounding whitespace is tolerated",
			address: "  EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v  ",
			status:  StatusValid,
		},
		{
			name:    "empty string",
			address: "",
			status:  StatusEmpty,
		},
		{
			name:    "whitespace only",
			address: "   \t ",
			status:  StatusEmpty,
		},
		{
			name:    "too short",
			address: "abc123",
			status:  StatusInvalid,
		},
		{
			name:    "one character short of the minimum",
			address: strings.Repeat("1", MinAddressLength-1),
			status:  StatusInvalid,
		},
		{
			name:    "longer than any encoded key",
			address: strings.Repeat("z", MaxAddressLength+1),
			status:  StatusInvalid,
		},
		{
			name:    "zero is not in the base58 alphabet",
			address: "0PjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			status:  StatusInvalid,
		},
		{
			name:    "uppercase o is not in the base58 alphabet",
			address: "OPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			status:  StatusInvalid,
		},
		{
			name:    "lowercase l is not in the base58 alphabet",
			address: "lPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			status:  StatusInvalid,
		},
		{
			name:    "plausible length but short key material",
			address: strings.Repeat("2", 32),
			status:  StatusUnknown,
		},
		{
			name:    "plausible length but long key material",
			address: strings.Repeat("z", 44),
			status:  StatusUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.address)
			assert.Equal(t, tt.status, got.Status)
			if tt.status == StatusValid || tt.status == StatusEmpty {
				assert.Empty(t, got.Reason)
			} else {
				assert.NotEmpty(t, got.Reason)
			}
		})
	}
}

func TestClassifyIsPure(t *testing.T) {
	input := "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
	assert.Equal(t, Classify(input), Classify(input))
}

func TestIsUsable(t *testing.T) {
	assert.True(t, IsUsable("EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"))
	assert.True(t, IsUsable(strings.Repeat("2", 32)), "unknown addresses stay usable with a warning")
	assert.False(t, IsUsable(""))
	assert.False(t, IsUsable("not-an-address"))
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("11111111111111111111111111111111"))
	assert.False(t, IsValid(strings.Repeat("2", 32)))
}
