package transaction

import (
	"time"

	"github.com/shopspring/decimal"
)

type CanonicalType string

const (
	TypeFunding    CanonicalType = "funding"
	TypeWithdrawal CanonicalType = "withdrawal"
	TypeTransfer   CanonicalType = "transfer"
	TypeFee        CanonicalType = "fee"
	TypeSend       CanonicalType = "send"
	TypeReceive    CanonicalType = "receive"
	TypeDeposit    CanonicalType = "deposit"
	TypePayment    CanonicalType = "payment"
	TypeRefund     CanonicalType = "refund"
)

type Direction string

const (
	DirectionIncome  Direction = "income"
	DirectionExpense Direction = "expense"
	DirectionNeutral Direction = "neutral"
)

// Emphasis is the display styling, kept separate from the semantic
// direction so presentation policy can diverge from accounting meaning.
type Emphasis string

const (
	EmphasisPositive Emphasis = "positive"
	EmphasisNegative Emphasis = "negative"
	EmphasisNeutral  Emphasis = "neutral"
)

// DisplayPolicy selects how treasury movements are emphasised. The default
// colors funding and withdrawal like any income/expense; the alternate
// renders them neutral.
type DisplayPolicy string

const (
	PolicyColored         DisplayPolicy = "colored"
	PolicyNeutralTreasury DisplayPolicy = "neutral-treasury"
)

// Record is the raw transaction row as stored. Two overlapping shapes share
// it: split-payment entries carry SplitID/SplitWalletID and name the
// counterpart via SenderName/RecipientName; shared-wallet entries leave the
// split fields blank and name the counterpart via UserName.
type Record struct {
	ID             string          `db:"id" json:"id"`
	UserID         int64           `db:"user_id" json:"user_id"`
	Type           string          `db:"tx_type" json:"type"`
	Amount         decimal.Decimal `db:"amount" json:"amount"`
	Currency       string          `db:"currency" json:"currency"`
	Status         string          `db:"status" json:"status"`
	UserName       string          `db:"user_name" json:"user_name,omitempty"`
	SenderName     string          `db:"sender_name" json:"sender_name,omitempty"`
	RecipientName  string          `db:"recipient_name" json:"recipient_name,omitempty"`
	FromWallet     string          `db:"from_wallet" json:"from_wallet,omitempty"`
	ToWallet       string          `db:"to_wallet" json:"to_wallet,omitempty"`
	SplitID        string          `db:"split_id" json:"split_id,omitempty"`
	SplitWalletID  string          `db:"split_wallet_id" json:"split_wallet_id,omitempty"`
	SplitName      string          `db:"split_name" json:"split_name,omitempty"`
	ExternalCard   bool            `db:"external_card" json:"external_card,omitempty"`
	ExternalWallet bool            `db:"external_wallet" json:"external_wallet,omitempty"`
	Memo           string          `db:"memo" json:"memo,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}

// IsSplitShape reports whether the record belongs to a bill split rather
// than a shared wallet.
func (r Record) IsSplitShape() bool {
	return r.SplitID != "" || r.SplitWalletID != ""
}

// Classified is the display-normalized view of one record. It is always
// recomputed from the source record, never persisted, so the two can not
// diverge.
type Classified struct {
	ID            string          `json:"id"`
	CanonicalType CanonicalType   `json:"type"`
	Direction     Direction       `json:"direction"`
	Emphasis      Emphasis        `json:"emphasis"`
	Label         string          `json:"label"`
	IconClass     string          `json:"icon_class"`
	Subtitle      string          `json:"subtitle"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        string          `json:"status"`
	SplitID       string          `json:"split_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}
