package models

import (
	"time"

	"github.com/google/uuid"
)

type CreateWalletParams struct {
	Name      string  `json:"name" binding:"required"`
	Currency  string  `json:"currency"`
	MemberIDs []int64 `json:"member_ids"`
}

// AppendEventParams carries one ledger event. Amount is a decimal string so
// client float formatting can never corrupt it; Timestamp defaults to the
// server clock when omitted.
type AppendEventParams struct {
	MemberID            int64      `json:"member_id" binding:"required"`
	Kind                string     `json:"kind" binding:"required"`
	Amount              string     `json:"amount" binding:"required"`
	Timestamp           *time.Time `json:"timestamp"`
	SourceTransactionID string     `json:"source_transaction_id" binding:"required"`
}

type AddMemberParams struct {
	UserID int64 `json:"user_id" binding:"required"`
}

type FundWalletParams struct {
	Amount   string `json:"amount" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

type VerifyDepositParams struct {
	Signature string `json:"signature" binding:"required"`
}

type TreasuryParams struct {
	TreasuryAddress string `json:"treasury_address" binding:"required"`
}

type WalletCollectionResponse []WalletResponse

type WalletResponse struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	CreatorID    int64            `json:"creator_id"`
	Currency     string           `json:"currency"`
	TotalBalance string           `json:"total_balance"`
	Status       string           `json:"status"`
	Members      []MemberResponse `json:"members"`
}

type MemberResponse struct {
	UserID           int64  `json:"user_id"`
	TotalContributed string `json:"total_contributed"`
	TotalWithdrawn   string `json:"total_withdrawn"`
	Balance          string `json:"balance"`
}

// LedgerRefusal is the 422 body for events the ledger will not apply.
// Clients branch on Code.
type LedgerRefusal struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
