package ledger

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	walletID = uuid.MustParse("8f9e7d6c-5b4a-4c3d-9e2f-1a0b9c8d7e6f")
	baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

func testWallet(memberIDs ...int64) *SharedWallet {
	return NewSharedWallet(walletID, "Trip Fund", 1, "USDC", memberIDs)
}

func event(member int64, kind EventKind, amount string, offset time.Duration, source string) LedgerEvent {
	return LedgerEvent{
		WalletID:            walletID,
		MemberID:            member,
		Kind:                kind,
		Amount:              decimal.RequireFromString(amount),
		Timestamp:           baseTime.Add(offset),
		SourceTransactionID: source,
	}
}

func mustApply(t *testing.T, w *SharedWallet, e LedgerEvent) *SharedWallet {
	t.Helper()
	next, err := ApplyEvent(w, e)
	require.NoError(t, err)
	return next
}

func TestNewSharedWallet(t *testing.T) {
	w := NewSharedWallet(walletID, "Trip Fund", 1, "USDC", []int64{2, 3, 1, 2})

	assert.Equal(t, StatusActive, w.Status)
	assert.Len(t, w.Members, 3, "creator once, duplicates collapsed")
	assert.True(t, w.HasMember(1))
	assert.True(t, w.HasMember(2))
	assert.True(t, w.HasMember(3))
	assert.True(t, IsCreator(w, 1))
	assert.False(t, IsCreator(w, 2))
}

func TestContributionAndWithdrawalScenario(t *testing.T) {
	// One member contributes 100 and withdraws 30; balance is 70. A further
	// withdrawal of 80 must be refused, then 60 brings the balance to 10.
	w := testWallet(2)

	w = mustApply(t, w, event(2, KindContribution, "100", 0, "tx-1"))
	w = mustApply(t, w, event(2, KindWithdrawal, "30", time.Minute, "tx-2"))
	assert.True(t, BalanceOf(w, 2).Equal(decimal.RequireFromString("70")))

	_, err := ApplyEvent(w, event(2, KindWithdrawal, "80", 2*time.Minute, "tx-3"))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	w = mustApply(t, w, event(2, KindWithdrawal, "60", 2*time.Minute, "tx-3"))
	assert.True(t, BalanceOf(w, 2).Equal(decimal.RequireFromString("10")))
}

func TestApplyEventNeverMutatesInput(t *testing.T) {
	w := testWallet(2)
	w = mustApply(t, w, event(2, KindContribution, "50", 0, "tx-1"))

	before := *w.clone()

	// Each rejection class must leave the snapshot untouched
	rejections := []LedgerEvent{
		event(2, KindWithdrawal, "999", time.Minute, "tx-2"), // insufficient
		event(9, KindContribution, "5", time.Minute, "tx-2"), // unknown member
		event(2, "mystery", "5", time.Minute, "tx-2"),        // unknown kind
		event(2, KindContribution, "0", time.Minute, "tx-2"), // non-positive
		event(2, KindContribution, "-3", time.Minute, "tx-2"),
		event(2, KindContribution, "5", -time.Minute, "tx-0"), // out of order
	}

	for _, bad := range rejections {
		next, err := ApplyEvent(w, bad)
		assert.Error(t, err)
		assert.Nil(t, next)
		assert.Equal(t, before, *w, "input snapshot changed on rejection")
	}

	// The accepted path returns a fresh snapshot and still leaves the input alone
	next := mustApply(t, w, event(2, KindContribution, "5", time.Minute, "tx-2"))
	assert.Equal(t, before, *w)
	assert.True(t, BalanceOf(next, 2).Equal(decimal.RequireFromString("55")))
}

func TestApplyEventValidation(t *testing.T) {
	w := testWallet(2)

	tests := []struct {
		name string
		ev   LedgerEvent
		want error
	}{
		{"unknown member", event(42, KindContribution, "5", 0, "s"), ErrUnknownMember},
		{"unknown kind", event(2, "loan", "5", 0, "s"), ErrUnknownKind},
		{"zero amount", event(2, KindContribution, "0", 0, "s"), ErrNonPositiveAmount},
		{"negative amount", event(2, KindContribution, "-1", 0, "s"), ErrNonPositiveAmount},
		{"missing source id", event(2, KindContribution, "5", 0, ""), ErrMissingSource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyEvent(w, tt.ev)
			assert.ErrorIs(t, err, tt.want)

			var ledgerErr *LedgerError
			assert.ErrorAs(t, err, &ledgerErr)
			assert.Equal(t, walletID.String(), ledgerErr.WalletID)
		})
	}

	t.Run("wallet mismatch", func(t *testing.T) {
		ev := event(2, KindContribution, "5", 0, "s")
		ev.WalletID = uuid.New()
		_, err := ApplyEvent(w, ev)
		assert.ErrorIs(t, err, ErrWalletMismatch)
	})

	t.Run("closed wallet refuses events", func(t *testing.T) {
		closed, err := Close(w, 1)
		require.NoError(t, err)
		_, err = ApplyEvent(closed, event(1, KindContribution, "5", 0, "s"))
		assert.ErrorIs(t, err, ErrWalletClosed)
	})
}

func TestOrderingEnforcement(t *testing.T) {
	w := testWallet(2)
	w = mustApply(t, w, event(2, KindContribution, "10", time.Hour, "tx-b"))

	t.Run("older timestamp rejected", func(t *testing.T) {
		_, err := ApplyEvent(w, event(2, KindContribution, "10", 0, "tx-a"))
		assert.ErrorIs(t, err, ErrOutOfOrder)
	})

	t.Run("same timestamp lower source rejected", func(t *testing.T) {
		_, err := ApplyEvent(w, event(2, KindContribution, "10", time.Hour, "tx-a"))
		assert.ErrorIs(t, err, ErrOutOfOrder)
	})

	t.Run("same timestamp same source is a duplicate", func(t *testing.T) {
		_, err := ApplyEvent(w, event(2, KindContribution, "10", time.Hour, "tx-b"))
		assert.ErrorIs(t, err, ErrDuplicateEvent)
	})

	t.Run("same timestamp higher source accepted", func(t *testing.T) {
		_, err := ApplyEvent(w, event(2, KindContribution, "10", time.Hour, "tx-c"))
		assert.NoError(t, err)
	})
}

func TestDoubleEntryInvariant(t *testing.T) {
	// The snapshot total, the sum of member balances and the independent
	// fold over raw events must all agree, whatever the sequence.
	w := testWallet(2, 3)

	r := rand.New(rand.NewSource(11))
	contributed := decimal.Zero
	withdrawn := decimal.Zero

	members := []int64{1, 2, 3}
	for i := 0; i < 200; i++ {
		member := members[r.Intn(len(members))]
		amount := decimal.NewFromInt(int64(r.Intn(50) + 1))
		kind := KindContribution
		if r.Intn(2) == 0 {
			kind = KindWithdrawal
		}

		ev := LedgerEvent{
			WalletID:            walletID,
			MemberID:            member,
			Kind:                kind,
			Amount:              amount,
			Timestamp:           baseTime.Add(time.Duration(i) * time.Second),
			SourceTransactionID: uuid.New().String(),
		}

		next, err := ApplyEvent(w, ev)
		if err != nil {
			assert.ErrorIs(t, err, ErrInsufficientBalance, "only balance refusals expected here")
			continue
		}
		w = next

		if kind == KindContribution {
			contributed = contributed.Add(amount)
		} else {
			withdrawn = withdrawn.Add(amount)
		}
	}

	independent := contributed.Sub(withdrawn)
	assert.True(t, TotalBalance(w).Equal(independent), "member-sum total diverged from the event fold")
	assert.True(t, w.TotalBalance.Equal(independent), "snapshot total diverged from the event fold")

	for _, m := range w.Members {
		assert.False(t, m.Balance().IsNegative(), "member %d went negative", m.UserID)
	}
}

func TestBalanceOfUnknownMember(t *testing.T) {
	w := testWallet()
	assert.True(t, BalanceOf(w, 99).IsZero())
}

func TestReplayIsDeterministic(t *testing.T) {
	meta := testWallet(2, 3)

	events := []LedgerEvent{
		event(1, KindContribution, "40", 0, "tx-1"),
		event(2, KindContribution, "25", time.Minute, "tx-2"),
		event(1, KindWithdrawal, "15", 2*time.Minute, "tx-3"),
		event(3, KindContribution, "5", 2*time.Minute, "tx-4"),
		event(2, KindWithdrawal, "10", 3*time.Minute, "tx-5"),
	}

	want, err := Replay(meta, events)
	require.NoError(t, err)
	assert.True(t, want.TotalBalance.Equal(decimal.RequireFromString("45")))

	r := rand.New(rand.NewSource(7))
	for trial := 0; trial < 20; trial++ {
		shuffled := make([]LedgerEvent, len(events))
		copy(shuffled, events)
		r.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got, err := Replay(meta, shuffled)
		require.NoError(t, err)
		assert.Equal(t, want, got, "replay diverged for a shuffled log")
	}
}

func TestReplayResetsMeta(t *testing.T) {
	meta := testWallet(2)
	meta.TotalBalance = decimal.RequireFromString("999")
	meta.Members[0].TotalContributed = decimal.RequireFromString("999")

	got, err := Replay(meta, []LedgerEvent{event(2, KindContribution, "10", 0, "tx-1")})
	require.NoError(t, err)

	assert.True(t, got.TotalBalance.Equal(decimal.RequireFromString("10")))
	assert.True(t, BalanceOf(got, 1).IsZero(), "stale meta balances must not leak into the rebuild")
}

func TestAddMember(t *testing.T) {
	w := testWallet()

	next, err := AddMember(w, 5)
	require.NoError(t, err)
	assert.True(t, next.HasMember(5))
	assert.False(t, w.HasMember(5), "input snapshot untouched")

	_, err = AddMember(next, 5)
	assert.ErrorIs(t, err, ErrMemberExists)
}

func TestClose(t *testing.T) {
	w := testWallet(2)

	_, err := Close(w, 2)
	assert.ErrorIs(t, err, ErrNotCreator)

	closed, err := Close(w, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, closed.Status)
	assert.Equal(t, StatusActive, w.Status, "input snapshot untouched")

	_, err = Close(closed, 1)
	assert.ErrorIs(t, err, ErrWalletClosed)

	_, err = AddMember(closed, 9)
	assert.ErrorIs(t, err, ErrWalletClosed)
}
