package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventKind string

const (
	KindContribution EventKind = "contribution"
	KindWithdrawal   EventKind = "withdrawal"
)

type WalletStatus string

const (
	StatusActive WalletStatus = "active"
	StatusClosed WalletStatus = "closed"
)

// LedgerEvent is one immutable contribution or withdrawal. Events are
// append-only; balances are always a fold over the ordered sequence, with
// SourceTransactionID breaking timestamp ties deterministically.
type LedgerEvent struct {
	WalletID            uuid.UUID       `json:"wallet_id"`
	MemberID            int64           `json:"member_id"`
	Kind                EventKind       `json:"kind"`
	Amount              decimal.Decimal `json:"amount"`
	Timestamp           time.Time       `json:"timestamp"`
	SourceTransactionID string          `json:"source_transaction_id"`
}

type Member struct {
	UserID           int64           `json:"user_id"`
	TotalContributed decimal.Decimal `json:"total_contributed"`
	TotalWithdrawn   decimal.Decimal `json:"total_withdrawn"`
}

// Balance is the member's derived position. Never negative for a wallet
// built through ApplyEvent.
func (m Member) Balance() decimal.Decimal {
	return m.TotalContributed.Sub(m.TotalWithdrawn)
}

// SharedWallet is an immutable balance snapshot. Mutating operations return
// a fresh snapshot and leave their input untouched, so a rejected event can
// never leave a half-applied wallet behind.
type SharedWallet struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	CreatorID    int64           `json:"creator_id"`
	Members      []Member        `json:"members"`
	TotalBalance decimal.Decimal `json:"total_balance"`
	Currency     string          `json:"currency"`
	Status       WalletStatus    `json:"status"`

	// Ordering cursor of the last applied event.
	LastEventAt     time.Time `json:"last_event_at"`
	LastEventSource string    `json:"last_event_source"`
}

// NewSharedWallet builds an empty active wallet. The creator is always a
// member; duplicate member IDs collapse.
func NewSharedWallet(id uuid.UUID, name string, creatorID int64, currency string, memberIDs []int64) *SharedWallet {
	seen := map[int64]bool{creatorID: true}
	members := []Member{{UserID: creatorID}}

	for _, uid := range memberIDs {
		if seen[uid] {
			continue
		}
		seen[uid] = true
		members = append(members, Member{UserID: uid})
	}

	return &SharedWallet{
		ID:        id,
		Name:      name,
		CreatorID: creatorID,
		Members:   members,
		Currency:  currency,
		Status:    StatusActive,
	}
}

func (w *SharedWallet) memberIndex(userID int64) int {
	for i := range w.Members {
		if w.Members[i].UserID == userID {
			return i
		}
	}
	return -1
}

// HasMember reports membership without touching balances.
func (w *SharedWallet) HasMember(userID int64) bool {
	return w.memberIndex(userID) >= 0
}

// clone returns a deep copy so the original snapshot stays untouched.
func (w *SharedWallet) clone() *SharedWallet {
	next := *w
	next.Members = make([]Member, len(w.Members))
	copy(next.Members, w.Members)
	return &next
}
