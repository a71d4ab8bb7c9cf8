package onramp

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WeSplit-io/WeSplit-Backend/providers"
)

func testCryptomus(baseURL string) *CryptomusProvider {
	return &CryptomusProvider{
		BaseProvider: providers.BaseProvider{
			Name:    providers.Cryptomus,
			BaseURL: baseURL,
			APIKey:  "test-key",
			Client:  http.DefaultClient,
		},
		config: &CryptomusConfig{
			APIKey:     "test-key",
			MerchantID: "merchant-1",
		},
	}
}

func TestCreateInvoiceSignsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment", r.URL.Path)
		assert.Equal(t, "merchant-1", r.Header.Get("merchant"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		// The sign header must cover the exact bytes on the wire.
		encoded := base64.StdEncoding.EncodeToString(body)
		sum := md5.Sum([]byte(encoded + "test-key"))
		assert.Equal(t, hex.EncodeToString(sum[:]), r.Header.Get("sign"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"state": 0,
			"result": {
				"uuid": "8b03432e-385b-4670-8d06-064591096795",
				"order_id": "inv-42",
				"amount": "25.00",
				"currency": "USD",
				"url": "https://pay.cryptomus.com/pay/8b03432e",
				"status": "check",
				"is_final": false
			}
		}`)
	}))
	defer srv.Close()

	p := testCryptomus(srv.URL)
	invoice, err := p.CreateInvoice(&InvoiceRequest{
		Amount:     "25.00",
		Currency:   "USD",
		OrderID:    "inv-42",
		ToCurrency: "USDC",
	})
	require.NoError(t, err)

	assert.Equal(t, "inv-42", invoice.OrderID)
	assert.Equal(t, "https://pay.cryptomus.com/pay/8b03432e", invoice.URL)
	assert.Equal(t, StatusCheck, invoice.Status)
}

func TestCreateInvoiceEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"state": 1, "result": null}`)
	}))
	defer srv.Close()

	p := testCryptomus(srv.URL)
	_, err := p.CreateInvoice(&InvoiceRequest{Amount: "10.00", Currency: "USD", OrderID: "inv-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty result")
}

func TestGetPaymentInfoByOrderID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payment/info", r.URL.Path)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.JSONEq(t, `{"order_id": "inv-42"}`, string(body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"state": 0,
			"result": {
				"uuid": "8b03432e-385b-4670-8d06-064591096795",
				"order_id": "inv-42",
				"amount": "25.00",
				"currency": "USD",
				"status": "paid",
				"is_final": true
			}
		}`)
	}))
	defer srv.Close()

	p := testCryptomus(srv.URL)
	invoice, err := p.GetPaymentInfo(&PaymentInfoRequest{OrderID: "inv-42"})
	require.NoError(t, err)

	assert.Equal(t, StatusPaid, invoice.Status)
	assert.True(t, Settled(invoice.Status))
	assert.True(t, invoice.IsFinal)
}

func TestGetPaymentInfoServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	p := testCryptomus(srv.URL)
	_, err := p.GetPaymentInfo(&PaymentInfoRequest{OrderID: "inv-42"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code")
}

func TestStatusPredicates(t *testing.T) {
	tests := []struct {
		status  string
		settled bool
		final   bool
	}{
		{StatusCheck, false, false},
		{StatusProcess, false, false},
		{StatusConfirming, false, false},
		{StatusPaid, true, true},
		{StatusPaidOver, true, true},
		{StatusWrongAmount, false, true},
		{StatusCancel, false, true},
		{StatusFail, false, true},
		{StatusSystemFail, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.settled, Settled(tt.status))
			assert.Equal(t, tt.final, Final(tt.status))
		})
	}
}
