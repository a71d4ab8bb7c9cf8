package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Funding invoice lifecycle. "paid" means the provider reports settlement;
// "credited" means the contribution landed in the ledger.
const (
	InvoicePending  = "pending"
	InvoicePaid     = "paid"
	InvoiceCredited = "credited"
	InvoiceFailed   = "failed"
)

// FundingInvoice is one hosted on-ramp payment tied to a shared wallet.
// Amount is the fiat amount the payer was asked for.
type FundingInvoice struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	WalletID          uuid.UUID       `db:"wallet_id" json:"wallet_id"`
	UserID            int64           `db:"user_id" json:"user_id"`
	Amount            decimal.Decimal `db:"amount" json:"amount"`
	Currency          string          `db:"currency" json:"currency"`
	ProviderInvoiceID string          `db:"provider_invoice_id" json:"-"`
	PaymentURL        string          `db:"payment_url" json:"payment_url,omitempty"`
	Status            string          `db:"status" json:"status"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
}

// Deposit is a verified on-chain contribution. Timestamp is the block time;
// the ledger event is stamped at credit time to keep the event order append-only.
type Deposit struct {
	WalletID  uuid.UUID       `json:"wallet_id"`
	MemberID  int64           `json:"member_id"`
	Signature string          `json:"signature"`
	From      string          `json:"from"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Slot      int64           `json:"slot"`
	Timestamp time.Time       `json:"timestamp"`
}
