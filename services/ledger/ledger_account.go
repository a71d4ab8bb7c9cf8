package ledger

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// / Pure balance arithmetic over the event log. Nothing in this file touches
// / the store; the service layer feeds it and persists what it accepts.

// eventAfter reports whether e is strictly after the wallet's ordering
// cursor (timestamp, then source transaction id).
func eventAfter(w *SharedWallet, e LedgerEvent) bool {
	if w.LastEventAt.IsZero() && w.LastEventSource == "" {
		return true
	}
	if e.Timestamp.After(w.LastEventAt) {
		return true
	}
	if e.Timestamp.Equal(w.LastEventAt) {
		return e.SourceTransactionID > w.LastEventSource
	}
	return false
}

// ApplyEvent folds one event into the wallet and returns the new snapshot.
// The input wallet is never mutated: every rejection leaves it byte-for-byte
// intact. Rejections are typed sentinel errors wrapped in *LedgerError.
func ApplyEvent(w *SharedWallet, e LedgerEvent) (*SharedWallet, error) {
	if w.Status != StatusActive {
		return nil, NewLedgerError(ErrWalletClosed, w.ID.String())
	}
	if e.WalletID != w.ID {
		return nil, NewLedgerError(ErrWalletMismatch, w.ID.String())
	}
	if e.Kind != KindContribution && e.Kind != KindWithdrawal {
		return nil, NewLedgerError(ErrUnknownKind, w.ID.String())
	}
	if !e.Amount.IsPositive() {
		return nil, NewLedgerError(ErrNonPositiveAmount, w.ID.String())
	}
	if e.SourceTransactionID == "" {
		return nil, NewLedgerError(ErrMissingSource, w.ID.String())
	}

	idx := w.memberIndex(e.MemberID)
	if idx < 0 {
		return nil, NewLedgerError(ErrUnknownMember, w.ID.String())
	}

	if !eventAfter(w, e) {
		if e.Timestamp.Equal(w.LastEventAt) && e.SourceTransactionID == w.LastEventSource {
			return nil, NewLedgerError(ErrDuplicateEvent, w.ID.String())
		}
		return nil, NewLedgerError(ErrOutOfOrder, w.ID.String())
	}

	if e.Kind == KindWithdrawal {
		remaining := w.Members[idx].Balance().Sub(e.Amount)
		if remaining.IsNegative() {
			return nil, NewLedgerError(ErrInsufficientBalance, w.ID.String())
		}
	}

	next := w.clone()
	switch e.Kind {
	case KindContribution:
		next.Members[idx].TotalContributed = next.Members[idx].TotalContributed.Add(e.Amount)
		next.TotalBalance = next.TotalBalance.Add(e.Amount)
	case KindWithdrawal:
		next.Members[idx].TotalWithdrawn = next.Members[idx].TotalWithdrawn.Add(e.Amount)
		next.TotalBalance = next.TotalBalance.Sub(e.Amount)
	}
	next.LastEventAt = e.Timestamp
	next.LastEventSource = e.SourceTransactionID

	return next, nil
}

// BalanceOf returns the member's derived balance, zero for non-members.
func BalanceOf(w *SharedWallet, memberID int64) decimal.Decimal {
	idx := w.memberIndex(memberID)
	if idx < 0 {
		return decimal.Zero
	}
	return w.Members[idx].Balance()
}

// TotalBalance sums the member balances. It recomputes from the member set
// rather than trusting the snapshot field, so tests can hold the two equal
// against the independent fold over events.
func TotalBalance(w *SharedWallet) decimal.Decimal {
	total := decimal.Zero
	for _, m := range w.Members {
		total = total.Add(m.Balance())
	}
	return total
}

// IsCreator gates display and close/settle permissions only; it plays no
// part in balance computation.
func IsCreator(w *SharedWallet, userID int64) bool {
	return w.CreatorID == userID
}

// SortEvents orders events by (timestamp, source transaction id) in place.
func SortEvents(events []LedgerEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].SourceTransactionID < events[j].SourceTransactionID
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// Replay deterministically rebuilds a snapshot from the full event log:
// sort, then fold. The meta wallet supplies identity, membership and status;
// its balances are reset before folding.
func Replay(meta *SharedWallet, events []LedgerEvent) (*SharedWallet, error) {
	base := meta.clone()
	for i := range base.Members {
		base.Members[i].TotalContributed = decimal.Zero
		base.Members[i].TotalWithdrawn = decimal.Zero
	}
	base.TotalBalance = decimal.Zero
	base.LastEventAt = time.Time{}
	base.LastEventSource = ""

	ordered := make([]LedgerEvent, len(events))
	copy(ordered, events)
	SortEvents(ordered)

	snapshot := base
	for _, e := range ordered {
		next, err := ApplyEvent(snapshot, e)
		if err != nil {
			return nil, err
		}
		snapshot = next
	}

	return snapshot, nil
}

// AddMember returns a snapshot with the user added at zero balance.
func AddMember(w *SharedWallet, userID int64) (*SharedWallet, error) {
	if w.Status != StatusActive {
		return nil, NewLedgerError(ErrWalletClosed, w.ID.String())
	}
	if w.HasMember(userID) {
		return nil, NewLedgerError(ErrMemberExists, w.ID.String())
	}

	next := w.clone()
	next.Members = append(next.Members, Member{UserID: userID})
	return next, nil
}

// Close settles the wallet. Only the creator may close, and only once.
func Close(w *SharedWallet, byUserID int64) (*SharedWallet, error) {
	if !IsCreator(w, byUserID) {
		return nil, NewLedgerError(ErrNotCreator, w.ID.String())
	}
	if w.Status != StatusActive {
		return nil, NewLedgerError(ErrWalletClosed, w.ID.String())
	}

	next := w.clone()
	next.Status = StatusClosed
	return next, nil
}
