package address

import (
	"strings"

	"github.com/mr-tron/base58"
)

type Status string

const (
	StatusValid   Status = "valid"
	StatusInvalid Status = "invalid"
	StatusUnknown Status = "unknown"
	StatusEmpty   Status = "empty"
)

// Solana addresses are base58-encoded ed25519 public keys: 32 bytes of key
// material, which always encode to between 32 and 44 text characters.
const (
	MinAddressLength = 32
	MaxAddressLength = 44
	decodedKeyLength = 32
)

type Classification struct {
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

// Classify reports how usable an address string is as a Solana account.
// It is total: every input produces a classification and none panics.
func Classify(addr string) Classification {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		return Classification{Status: StatusEmpty}
	}

	if len(trimmed) < MinAddressLength || len(trimmed) > MaxAddressLength {
		return Classification{
			Status: StatusInvalid,
			Reason: "address length is outside the expected range",
		}
	}

	decoded, err := base58.Decode(trimmed)
	if err != nil {
		return Classification{
			Status: StatusInvalid,
			Reason: "address contains characters outside the base58 alphabet",
		}
	}

	// In-range text that decodes to the wrong key length is plausible but
	// unverifiable, not outright malformed.
	if len(decoded) != decodedKeyLength {
		return Classification{
			Status: StatusUnknown,
			Reason: "address decodes to an unexpected key length",
		}
	}

	return Classification{Status: StatusValid}
}

func IsValid(addr string) bool {
	return Classify(addr).Status == StatusValid
}

// IsUsable reports whether an address may be offered as a payment
// destination. Unverified-but-plausible addresses qualify; callers surface
// a warning for those instead of blocking.
func IsUsable(addr string) bool {
	s := Classify(addr).Status
	return s == StatusValid || s == StatusUnknown
}
