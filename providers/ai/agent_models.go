package ai

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Categories is the expense category whitelist the agent classifies into.
// Anything else in a response is a contract violation, not a new category.
var Categories = []string{
	"Food & Drinks",
	"Events & Entertainment",
	"Travel & Transport",
	"Housing & Utilities",
	"Shopping & Essentials",
	"On-Chain Life",
}

func ValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// totalsTolerance is the allowed drift between the printed total and the
// sum of line items before the receipt is flagged as inconsistent.
var totalsTolerance = decimal.New(1, -2)

type Merchant struct {
	Name      string `json:"name,omitempty"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	VATNumber string `json:"vat_number,omitempty"`
}

type ReceiptTransaction struct {
	Date          string `json:"date,omitempty"`
	Time          string `json:"time,omitempty"`
	ReceiptNumber string `json:"receipt_number,omitempty"`
	Country       string `json:"country,omitempty"`
	Currency      string `json:"currency,omitempty"`
}

// LineItem is one extracted receipt line. Amount fields are pointers so a
// missing value and an explicit zero stay distinguishable.
type LineItem struct {
	Description string           `json:"description"`
	Quantity    *decimal.Decimal `json:"quantity,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPrice  *decimal.Decimal `json:"total_price,omitempty"`
	TaxRate     *decimal.Decimal `json:"tax_rate,omitempty"`
}

type Totals struct {
	Subtotal        *decimal.Decimal `json:"subtotal,omitempty"`
	Tax             *decimal.Decimal `json:"tax,omitempty"`
	Total           *decimal.Decimal `json:"total,omitempty"`
	TotalCalculated *decimal.Decimal `json:"total_calculated,omitempty"`
	TotalMatches    *bool            `json:"total_matches,omitempty"`
}

// ReceiptData is the agent's structured extraction for one receipt image.
type ReceiptData struct {
	IsReceipt   bool                `json:"is_receipt"`
	Category    string              `json:"category,omitempty"`
	Merchant    *Merchant           `json:"merchant,omitempty"`
	Transaction *ReceiptTransaction `json:"transaction,omitempty"`
	Items       []LineItem          `json:"items,omitempty"`
	Totals      *Totals             `json:"totals,omitempty"`
	Notes       string              `json:"notes,omitempty"`
	Reason      string              `json:"reason,omitempty"`
}

// Normalize repairs the quirks the agent is allowed to produce: negative
// line amounts (discount lines) become positive, missing quantities default
// to one, and the totals block is reconciled against the items.
func (r *ReceiptData) Normalize() {
	one := decimal.New(1, 0)
	for i := range r.Items {
		item := &r.Items[i]
		if item.Quantity == nil {
			q := one
			item.Quantity = &q
		} else if item.Quantity.IsNegative() {
			q := item.Quantity.Abs()
			item.Quantity = &q
		}
		if item.UnitPrice != nil && item.UnitPrice.IsNegative() {
			p := item.UnitPrice.Abs()
			item.UnitPrice = &p
		}
		if item.TotalPrice != nil && item.TotalPrice.IsNegative() {
			p := item.TotalPrice.Abs()
			item.TotalPrice = &p
		}
	}
	r.reconcileTotals()
}

// reconcileTotals recomputes the item sum and checks it against the printed
// total within totalsTolerance. A receipt with no printed total adopts the
// calculated one and is considered consistent.
func (r *ReceiptData) reconcileTotals() {
	if r.Totals == nil || len(r.Items) == 0 {
		return
	}

	calculated := decimal.Zero
	for _, item := range r.Items {
		if item.TotalPrice != nil {
			calculated = calculated.Add(*item.TotalPrice)
		}
	}
	r.Totals.TotalCalculated = &calculated

	if r.Totals.Total != nil {
		matches := r.Totals.Total.Sub(calculated).Abs().LessThanOrEqual(totalsTolerance)
		r.Totals.TotalMatches = &matches
		return
	}

	total := calculated
	matches := true
	r.Totals.Total = &total
	r.Totals.TotalMatches = &matches
}

// Validate rejects responses that violate the agent contract. A blank
// category is allowed (the agent could not classify); a category outside
// the whitelist is not.
func (r *ReceiptData) Validate() error {
	if r.Category != "" && !ValidCategory(r.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, r.Category)
	}
	for _, item := range r.Items {
		if item.Description == "" {
			return fmt.Errorf("%w: item with empty description", ErrMalformedResponse)
		}
	}
	return nil
}

// AnalysisResponse is the agent's HTTP envelope. Error is populated only
// when Success is false.
type AnalysisResponse struct {
	Success        bool                   `json:"success"`
	Data           *ReceiptData           `json:"data,omitempty"`
	IsReceipt      bool                   `json:"is_receipt"`
	ProcessingTime float64                `json:"processing_time"`
	Confidence     float64                `json:"confidence"`
	Usage          map[string]interface{} `json:"usage,omitempty"`
	RawResponse    string                 `json:"raw_response,omitempty"`
	Error          string                 `json:"error,omitempty"`
}

type AgentHealth struct {
	Status           string `json:"status"`
	Ready            bool   `json:"ai_agent_ready"`
	APIKeyConfigured bool   `json:"api_key_configured"`
}
