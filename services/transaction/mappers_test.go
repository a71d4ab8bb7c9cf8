package transaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		raw  string
		want CanonicalType
	}{
		{"funding", TypeFunding},
		{"add_funds", TypeFunding},
		{"TOP_UP", TypeFunding},
		{"withdrawal", TypeWithdrawal},
		{"withdraw", TypeWithdrawal},
		{"send", TypeSend},
		{"sent", TypeSend},
		{"receive", TypeReceive},
		{"received", TypeReceive},
		{"deposit", TypeDeposit},
		{"payment", TypePayment},
		{"refund", TypeRefund},
		{"fee", TypeFee},
		{"network_fee", TypeFee},
		{"transfer", TypeTransfer},
		{"something_new", TypeTransfer},
		{"", TypeTransfer},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeType(tt.raw))
		})
	}
}

func TestDirections(t *testing.T) {
	c := NewClassifier(PolicyColored)

	tests := []struct {
		txType    string
		direction Direction
		emphasis  Emphasis
	}{
		{"funding", DirectionIncome, EmphasisPositive},
		{"deposit", DirectionIncome, EmphasisPositive},
		{"receive", DirectionIncome, EmphasisPositive},
		{"withdrawal", DirectionExpense, EmphasisNegative},
		{"send", DirectionExpense, EmphasisNegative},
		{"payment", DirectionExpense, EmphasisNegative},
		{"transfer", DirectionNeutral, EmphasisNeutral},
		{"fee", DirectionNeutral, EmphasisNeutral},
		{"refund", DirectionNeutral, EmphasisNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.txType, func(t *testing.T) {
			got := c.Classify(Record{ID: "t1", Type: tt.txType})
			assert.Equal(t, tt.direction, got.Direction)
			assert.Equal(t, tt.emphasis, got.Emphasis)
		})
	}
}

func TestNeutralTreasuryPolicy(t *testing.T) {
	c := NewClassifier(PolicyNeutralTreasury)

	funding := c.Classify(Record{Type: "funding"})
	assert.Equal(t, DirectionIncome, funding.Direction, "semantic direction is policy independent")
	assert.Equal(t, EmphasisNeutral, funding.Emphasis, "treasury movements lose colored emphasis")

	withdrawal := c.Classify(Record{Type: "withdrawal"})
	assert.Equal(t, DirectionExpense, withdrawal.Direction)
	assert.Equal(t, EmphasisNeutral, withdrawal.Emphasis)

	// Non-treasury types keep their colored emphasis under the policy
	send := c.Classify(Record{Type: "send"})
	assert.Equal(t, EmphasisNegative, send.Emphasis)
	receive := c.Classify(Record{Type: "receive"})
	assert.Equal(t, EmphasisPositive, receive.Emphasis)
}

func TestSubtitlePrecedence(t *testing.T) {
	c := NewClassifier(PolicyColored)

	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "split name wins when the split wallet is the destination",
			rec: Record{
				Type:          "send",
				SplitID:       "split-9",
				SplitWalletID: "SW1",
				SplitName:     "Hackathon Solana",
				ToWallet:      "SW1",
				RecipientName: "Alice",
				Memo:          "pizza",
			},
			want: "Hackathon Solana",
		},
		{
			name: "split name does not apply when the counterpart is someone else",
			rec: Record{
				Type:          "send",
				SplitID:       "split-9",
				SplitWalletID: "SW1",
				SplitName:     "Hackathon Solana",
				ToWallet:      "other-wallet",
				RecipientName: "Alice",
			},
			want: "Alice",
		},
		{
			name: "external card flag beats names and memo",
			rec: Record{
				Type:         "withdrawal",
				ExternalCard: true,
				UserName:     "Bob",
				Memo:         "cash out",
			},
			want: "External card",
		},
		{
			name: "external wallet flag",
			rec: Record{
				Type:           "transfer",
				ExternalWallet: true,
				Memo:           "cold storage",
			},
			want: "External wallet",
		},
		{
			name: "shared wallet shape uses the member name",
			rec: Record{
				Type:     "funding",
				UserName: "Carol",
				Memo:     "first contribution",
			},
			want: "Carol",
		},
		{
			name: "memo when nothing names the counterpart",
			rec: Record{
				Type: "fee",
				Memo: "priority fee",
			},
			want: "priority fee",
		},
		{
			name: "empty when nothing applies",
			rec:  Record{Type: "transfer"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.rec).Subtitle)
		})
	}
}

func TestSplitSendResolvesSplitNameAndExpense(t *testing.T) {
	c := NewClassifier(PolicyColored)

	got := c.Classify(Record{
		ID:            "tx-42",
		Type:          "send",
		SplitID:       "split-1",
		SplitWalletID: "SPLITWALLET",
		SplitName:     "Hackathon Solana",
		ToWallet:      "SPLITWALLET",
	})

	assert.Equal(t, "Hackathon Solana", got.Subtitle)
	assert.Equal(t, DirectionExpense, got.Direction)
	assert.Equal(t, TypeSend, got.CanonicalType)
}

func TestSplitShapeCounterpartPriority(t *testing.T) {
	c := NewClassifier(PolicyColored)

	t.Run("income prefers the sender", func(t *testing.T) {
		got := c.Classify(Record{
			Type:          "receive",
			SplitID:       "s",
			SenderName:    "Dana",
			RecipientName: "Me",
		})
		assert.Equal(t, "Dana", got.Subtitle)
	})

	t.Run("income falls back to the recipient name", func(t *testing.T) {
		got := c.Classify(Record{
			Type:          "receive",
			SplitID:       "s",
			RecipientName: "Me",
		})
		assert.Equal(t, "Me", got.Subtitle)
	})

	t.Run("expense prefers the recipient", func(t *testing.T) {
		got := c.Classify(Record{
			Type:          "send",
			SplitID:       "s",
			SenderName:    "Me",
			RecipientName: "Eve",
		})
		assert.Equal(t, "Eve", got.Subtitle)
	})
}

func TestClassifyCarriesRecordFields(t *testing.T) {
	c := NewClassifier(PolicyColored)
	now := time.Now()

	got := c.Classify(Record{
		ID:        "tx-7",
		Type:      "payment",
		Amount:    decimal.RequireFromString("12.34"),
		Currency:  "USDC",
		Status:    "completed",
		SplitID:   "split-3",
		CreatedAt: now,
	})

	assert.Equal(t, "tx-7", got.ID)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("12.34")))
	assert.Equal(t, "USDC", got.Currency)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "split-3", got.SplitID)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, "Payment", got.Label)
	assert.Equal(t, "tx-payment", got.IconClass)
}

func TestClassifyIsPure(t *testing.T) {
	c := NewClassifier(PolicyColored)
	rec := Record{ID: "p", Type: "send", UserName: "Zed", Memo: "m"}

	assert.Equal(t, c.Classify(rec), c.Classify(rec))
}
