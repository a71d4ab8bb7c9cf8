package onramp

// Invoice statuses Cryptomus reports. Settlement logic only trusts statuses
// re-fetched through GetPaymentInfo, never the webhook body itself.
const (
	StatusCheck       = "check"
	StatusProcess     = "process"
	StatusConfirming  = "confirm_check"
	StatusPaid        = "paid"
	StatusPaidOver    = "paid_over"
	StatusWrongAmount = "wrong_amount"
	StatusCancel      = "cancel"
	StatusFail        = "fail"
	StatusSystemFail  = "system_fail"
)

// Settled reports whether the payer's money has arrived in full.
func Settled(status string) bool {
	return status == StatusPaid || status == StatusPaidOver
}

// Final reports whether the invoice can no longer change state.
func Final(status string) bool {
	switch status {
	case StatusPaid, StatusPaidOver, StatusWrongAmount, StatusCancel, StatusFail, StatusSystemFail:
		return true
	}
	return false
}

// InvoiceRequest creates a hosted payment page. Amount is a decimal string
// in the fiat currency; ToCurrency asks Cryptomus to settle into the wallet
// currency (USDC for shared wallets).
type InvoiceRequest struct {
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	OrderID     string `json:"order_id"`
	ToCurrency  string `json:"to_currency,omitempty"`
	URLCallback string `json:"url_callback,omitempty"`
	URLReturn   string `json:"url_return,omitempty"`
	Lifetime    int    `json:"lifetime,omitempty"`
}

type Invoice struct {
	UUID     string `json:"uuid"`
	OrderID  string `json:"order_id"`
	Amount   string `json:"amount"`
	Currency string `json:"currency"`
	// PaymentAmount is what actually arrived, in the settlement currency.
	PaymentAmount string `json:"payment_amount,omitempty"`
	PayerCurrency string `json:"payer_currency,omitempty"`
	URL           string `json:"url,omitempty"`
	Status        string `json:"status"`
	ExpiredAt     int64  `json:"expired_at,omitempty"`
	IsFinal       bool   `json:"is_final"`
}

type InvoiceRawResponse struct {
	State  int      `json:"state"`
	Result *Invoice `json:"result"`
}

// PaymentInfoRequest looks an invoice up by our order ID or by the
// provider's UUID. Exactly one should be set.
type PaymentInfoRequest struct {
	UUID    string `json:"uuid,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

// WebhookPayload is the subset of the callback body the API needs to
// identify which invoice changed. The reported status is advisory only.
type WebhookPayload struct {
	UUID    string `json:"uuid"`
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Sign    string `json:"sign"`
}
