package currency

import "strings"

// Cluster names follow the Solana RPC convention.
type Cluster string

const (
	ClusterDevnet  Cluster = "devnet"
	ClusterTestnet Cluster = "testnet"
	ClusterMainnet Cluster = "mainnet-beta"
)

// Token describes one supported treasury currency: native SOL or an SPL token.
type Token struct {
	Symbol   string
	Name     string
	Decimals int32
	Mints    map[Cluster]string
}

var SupportedCurrencies = []string{"USDC", "USDT", "SOL"}

// DefaultCurrency is used when a payment request omits the spl-token parameter.
const DefaultCurrency = "USDC"

var tokens = map[string]Token{
	"SOL": {
		Symbol:   "SOL",
		Name:     "Solana",
		Decimals: 9,
		Mints: map[Cluster]string{
			ClusterMainnet: "So11111111111111111111111111111111111111112",
			ClusterDevnet:  "So11111111111111111111111111111111111111112",
			ClusterTestnet: "So11111111111111111111111111111111111111112",
		},
	},
	"USDC": {
		Symbol:   "USDC",
		Name:     "USD Coin",
		Decimals: 6,
		Mints: map[Cluster]string{
			ClusterMainnet: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			ClusterDevnet:  "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU",
		},
	},
	"USDT": {
		Symbol:   "USDT",
		Name:     "Tether USD",
		Decimals: 6,
		Mints: map[Cluster]string{
			ClusterMainnet: "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
		},
	},
}

func IsCurrencyValid(request string) bool {
	for _, c := range SupportedCurrencies {
		if request == c {
			return true
		}
	}

	return false
}

func IsCurrencyInvalid(request string) bool {
	return !IsCurrencyValid(request)
}

// TokenBySymbol resolves a supported token by its symbol, case-insensitively.
func TokenBySymbol(symbol string) (Token, bool) {
	t, ok := tokens[strings.ToUpper(symbol)]
	return t, ok
}

// TokenByMint resolves a supported token by one of its mint addresses on any
// cluster. Useful for mapping the spl-token parameter of a payment request
// back to a currency code.
func TokenByMint(mint string) (Token, bool) {
	for _, t := range tokens {
		for _, m := range t.Mints {
			if m == mint {
				return t, true
			}
		}
	}
	return Token{}, false
}

// MintFor returns the token's mint address on the given cluster, falling back
// to the mainnet mint when the cluster has none registered.
func (t Token) MintFor(cluster Cluster) string {
	if m, ok := t.Mints[cluster]; ok {
		return m
	}
	return t.Mints[ClusterMainnet]
}
