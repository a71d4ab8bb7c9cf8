package solana

import (
	"time"

	"github.com/shopspring/decimal"
)

// Clusters the backend runs against. Mint addresses differ between them,
// so currency resolution is always cluster-aware.
const (
	ClusterMainnet = "mainnet-beta"
	ClusterDevnet  = "devnet"
)

const (
	CurrencySOL  = "SOL"
	CurrencyUSDC = "USDC"

	lamportsPerSOL = 9
)

var usdcMintByCluster = map[string]string{
	ClusterMainnet: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
	ClusterDevnet:  "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU",
}

// HeliusTransaction is one enhanced transaction from the Helius
// /v0/addresses/{address}/transactions and /v0/transactions endpoints.
type HeliusTransaction struct {
	Description      string           `json:"description"`
	Type             string           `json:"type"`
	Source           string           `json:"source"`
	Fee              int64            `json:"fee"`
	FeePayer         string           `json:"feePayer"`
	Signature        string           `json:"signature"`
	Slot             int64            `json:"slot"`
	Timestamp        int64            `json:"timestamp"`
	NativeTransfers  []NativeTransfer `json:"nativeTransfers"`
	TokenTransfers   []TokenTransfer  `json:"tokenTransfers"`
	TransactionError interface{}      `json:"transactionError"`
}

type NativeTransfer struct {
	FromUserAccount string `json:"fromUserAccount"`
	ToUserAccount   string `json:"toUserAccount"`
	// Amount is in lamports.
	Amount int64 `json:"amount"`
}

type TokenTransfer struct {
	FromUserAccount  string `json:"fromUserAccount"`
	ToUserAccount    string `json:"toUserAccount"`
	FromTokenAccount string `json:"fromTokenAccount"`
	ToTokenAccount   string `json:"toTokenAccount"`
	// TokenAmount is already in UI units for the mint's decimals.
	TokenAmount float64 `json:"tokenAmount"`
	Mint        string  `json:"mint"`
}

// Transfer is an inbound or outbound value movement extracted from a
// HeliusTransaction, with the amount normalized to decimal UI units.
type Transfer struct {
	Signature string
	From      string
	To        string
	Amount    decimal.Decimal
	// Mint is empty for native SOL movements.
	Mint      string
	Timestamp time.Time
	Slot      int64
}

func (t *HeliusTransaction) Failed() bool {
	return t.TransactionError != nil
}

func (t *HeliusTransaction) Time() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}

// TransferTo returns the first value movement into the given address. Token
// transfers take precedence over native ones so that a USDC deposit whose
// transaction also moves rent lamports resolves to the USDC leg.
func (t *HeliusTransaction) TransferTo(address string) (*Transfer, bool) {
	for _, tt := range t.TokenTransfers {
		if tt.ToUserAccount == address && tt.TokenAmount > 0 {
			return &Transfer{
				Signature: t.Signature,
				From:      tt.FromUserAccount,
				To:        tt.ToUserAccount,
				Amount:    decimal.NewFromFloat(tt.TokenAmount),
				Mint:      tt.Mint,
				Timestamp: t.Time(),
				Slot:      t.Slot,
			}, true
		}
	}
	for _, nt := range t.NativeTransfers {
		if nt.ToUserAccount == address && nt.Amount > 0 {
			return &Transfer{
				Signature: t.Signature,
				From:      nt.FromUserAccount,
				To:        nt.ToUserAccount,
				Amount:    decimal.New(nt.Amount, -lamportsPerSOL),
				Timestamp: t.Time(),
				Slot:      t.Slot,
			}, true
		}
	}
	return nil, false
}

// CurrencyForMint maps a transfer's mint to a ledger currency code for the
// given cluster. An empty mint is native SOL. Unrecognized mints return
// false so callers can refuse tokens the ledger does not track.
func CurrencyForMint(cluster string, mint string) (string, bool) {
	if mint == "" {
		return CurrencySOL, true
	}
	if usdcMintByCluster[cluster] == mint {
		return CurrencyUSDC, true
	}
	return "", false
}
