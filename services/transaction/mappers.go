package transaction

import "strings"

// Subtitle text for the external-destination flags.
const (
	externalCardSubtitle   = "External card"
	externalWalletSubtitle = "External wallet"
)

type Classifier struct {
	policy DisplayPolicy
}

func NewClassifier(policy DisplayPolicy) *Classifier {
	if policy == "" {
		policy = PolicyColored
	}
	return &Classifier{policy: policy}
}

func (c *Classifier) Policy() DisplayPolicy {
	return c.policy
}

// Classify maps one raw record to its display-normalized form. Pure function
// of the record and the classifier's display policy.
func (c *Classifier) Classify(r Record) Classified {
	canonical := normalizeType(r.Type)
	direction := directionOf(canonical)

	return Classified{
		ID:            r.ID,
		CanonicalType: canonical,
		Direction:     direction,
		Emphasis:      c.emphasisOf(canonical, direction),
		Label:         labelOf(canonical),
		IconClass:     iconOf(canonical),
		Subtitle:      resolveSubtitle(r, direction),
		Amount:        r.Amount,
		Currency:      r.Currency,
		Status:        r.Status,
		SplitID:       r.SplitID,
		CreatedAt:     r.CreatedAt,
	}
}

// ClassifyAll maps a history slice in order.
func (c *Classifier) ClassifyAll(records []Record) []Classified {
	out := make([]Classified, len(records))
	for i, r := range records {
		out[i] = c.Classify(r)
	}
	return out
}

// normalizeType folds the raw type vocabulary of both record shapes onto the
// canonical set. Unrecognized types fall back to transfer.
func normalizeType(raw string) CanonicalType {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "funding", "fund", "add_funds", "top_up", "topup":
		return TypeFunding
	case "withdrawal", "withdraw", "cash_out":
		return TypeWithdrawal
	case "send", "sent":
		return TypeSend
	case "receive", "received":
		return TypeReceive
	case "deposit":
		return TypeDeposit
	case "payment", "pay", "bill_payment":
		return TypePayment
	case "refund":
		return TypeRefund
	case "fee", "network_fee", "gas":
		return TypeFee
	case "transfer":
		return TypeTransfer
	default:
		return TypeTransfer
	}
}

func directionOf(t CanonicalType) Direction {
	switch t {
	case TypeFunding, TypeDeposit, TypeReceive:
		return DirectionIncome
	case TypeWithdrawal, TypeSend, TypePayment:
		return DirectionExpense
	default:
		return DirectionNeutral
	}
}

// emphasisOf applies the display policy. Under NeutralTreasury the treasury
// movements keep their semantic direction but lose colored emphasis.
func (c *Classifier) emphasisOf(t CanonicalType, d Direction) Emphasis {
	if c.policy == PolicyNeutralTreasury && (t == TypeFunding || t == TypeWithdrawal) {
		return EmphasisNeutral
	}

	switch d {
	case DirectionIncome:
		return EmphasisPositive
	case DirectionExpense:
		return EmphasisNegative
	default:
		return EmphasisNeutral
	}
}

func labelOf(t CanonicalType) string {
	switch t {
	case TypeFunding:
		return "Added funds"
	case TypeWithdrawal:
		return "Withdrew funds"
	case TypeTransfer:
		return "Transfer"
	case TypeFee:
		return "Network fee"
	case TypeSend:
		return "Sent"
	case TypeReceive:
		return "Received"
	case TypeDeposit:
		return "Deposit"
	case TypePayment:
		return "Payment"
	case TypeRefund:
		return "Refund"
	default:
		return "Transfer"
	}
}

func iconOf(t CanonicalType) string {
	return "tx-" + string(t)
}

// resolveSubtitle applies the fixed precedence: split name when the split
// wallet is the counterpart, then external-destination flags, then the
// counterpart's display name, then the memo, then blank.
func resolveSubtitle(r Record, d Direction) string {
	if name, ok := splitCounterpartName(r, d); ok {
		return name
	}

	if r.ExternalCard {
		return externalCardSubtitle
	}
	if r.ExternalWallet {
		return externalWalletSubtitle
	}

	if name := counterpartName(r, d); name != "" {
		return name
	}

	if memo := strings.TrimSpace(r.Memo); memo != "" {
		return memo
	}

	return ""
}

// splitCounterpartName reports the split's own name when the record's
// counterpart wallet is the split wallet itself: for money going out that is
// the destination wallet, for money coming in the origin wallet.
func splitCounterpartName(r Record, d Direction) (string, bool) {
	if !r.IsSplitShape() || r.SplitName == "" || r.SplitWalletID == "" {
		return "", false
	}

	switch d {
	case DirectionExpense:
		if r.ToWallet == r.SplitWalletID {
			return r.SplitName, true
		}
	case DirectionIncome:
		if r.FromWallet == r.SplitWalletID {
			return r.SplitName, true
		}
	default:
		if r.ToWallet == r.SplitWalletID || r.FromWallet == r.SplitWalletID {
			return r.SplitName, true
		}
	}

	return "", false
}

// counterpartName resolves the other party's display name per record shape:
// split entries prioritise sender/recipient by direction, shared-wallet
// entries carry the member's name under UserName.
func counterpartName(r Record, d Direction) string {
	if r.IsSplitShape() {
		if d == DirectionIncome {
			if r.SenderName != "" {
				return r.SenderName
			}
			return r.RecipientName
		}
		if r.RecipientName != "" {
			return r.RecipientName
		}
		return r.SenderName
	}

	return r.UserName
}
