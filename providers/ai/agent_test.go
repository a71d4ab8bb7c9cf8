package ai

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WeSplit-io/WeSplit-Backend/providers"
)

func testAgent(baseURL string) *AiAgentProvider {
	return &AiAgentProvider{
		BaseProvider: providers.BaseProvider{
			Name:    providers.AiAgent,
			BaseURL: baseURL,
			Client:  http.DefaultClient,
		},
		config: &AiAgentConfig{},
	}
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestAnalyzeBillPostsImageData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/analyze-bill", r.URL.Path)

		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "aGVsbG8=", payload["imageData"])

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"success": true,
			"is_receipt": true,
			"processing_time": 3.2,
			"confidence": 0.95,
			"data": {
				"is_receipt": true,
				"category": "Food & Drinks",
				"merchant": {"name": "Chez Marcel", "vat_number": "FR123"},
				"transaction": {"date": "2025-06-14", "currency": "EUR"},
				"items": [
					{"description": "Burger", "quantity": 2, "unit_price": 9.5, "total_price": 19.0},
					{"description": "Discount", "total_price": -2.0}
				],
				"totals": {"subtotal": 17.0, "total": 17.0}
			}
		}`)
	}))
	defer srv.Close()

	p := testAgent(srv.URL)
	analysis, err := p.AnalyzeBill("aGVsbG8=")
	require.NoError(t, err)

	assert.True(t, analysis.Success)
	assert.True(t, analysis.IsReceipt)
	require.NotNil(t, analysis.Data)
	assert.Equal(t, "Food & Drinks", analysis.Data.Category)
	assert.Equal(t, "Chez Marcel", analysis.Data.Merchant.Name)
	require.Len(t, analysis.Data.Items, 2)
}

func TestAnalyzeBillAgentFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"success": false, "error": "AI Agent not initialized"}`)
	}))
	defer srv.Close()

	p := testAgent(srv.URL)
	analysis, err := p.AnalyzeBill("aGVsbG8=")
	require.NoError(t, err)

	assert.False(t, analysis.Success)
	assert.Equal(t, "AI Agent not initialized", analysis.Error)
}

func TestAnalyzeBillNonJSONAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream timeout")
	}))
	defer srv.Close()

	p := testAgent(srv.URL)
	_, err := p.AnalyzeBill("aGVsbG8=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status code: 502")
}

func TestHealth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"status": "healthy", "ai_agent_ready": true, "api_key_configured": true}`)
	}))
	defer srv.Close()

	p := testAgent(srv.URL)
	health, err := p.Health()
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)
	assert.True(t, health.Ready)
}

func TestNormalizeAbsolutesNegativeAmounts(t *testing.T) {
	r := &ReceiptData{
		IsReceipt: true,
		Items: []LineItem{
			{Description: "Discount", Quantity: dec("-1"), UnitPrice: dec("-2.00"), TotalPrice: dec("-2.00")},
		},
	}

	r.Normalize()

	assert.True(t, r.Items[0].Quantity.Equal(decimal.RequireFromString("1")))
	assert.True(t, r.Items[0].UnitPrice.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, r.Items[0].TotalPrice.Equal(decimal.RequireFromString("2.00")))
}

func TestNormalizeDefaultsQuantityToOne(t *testing.T) {
	r := &ReceiptData{
		IsReceipt: true,
		Items:     []LineItem{{Description: "Coffee", TotalPrice: dec("3.50")}},
	}

	r.Normalize()

	require.NotNil(t, r.Items[0].Quantity)
	assert.True(t, r.Items[0].Quantity.Equal(decimal.RequireFromString("1")))
}

func TestReconcileTotalsWithinTolerance(t *testing.T) {
	r := &ReceiptData{
		IsReceipt: true,
		Items: []LineItem{
			{Description: "A", TotalPrice: dec("10.00")},
			{Description: "B", TotalPrice: dec("15.505")},
		},
		Totals: &Totals{Total: dec("25.50")},
	}

	r.Normalize()

	require.NotNil(t, r.Totals.TotalCalculated)
	assert.True(t, r.Totals.TotalCalculated.Equal(decimal.RequireFromString("25.505")))
	require.NotNil(t, r.Totals.TotalMatches)
	assert.True(t, *r.Totals.TotalMatches)
}

func TestReconcileTotalsOutsideTolerance(t *testing.T) {
	r := &ReceiptData{
		IsReceipt: true,
		Items: []LineItem{
			{Description: "A", TotalPrice: dec("10.00")},
			{Description: "B", TotalPrice: dec("15.52")},
		},
		Totals: &Totals{Total: dec("25.50")},
	}

	r.Normalize()

	require.NotNil(t, r.Totals.TotalMatches)
	assert.False(t, *r.Totals.TotalMatches)
}

func TestReconcileTotalsAdoptsCalculatedTotal(t *testing.T) {
	r := &ReceiptData{
		IsReceipt: true,
		Items: []LineItem{
			{Description: "A", TotalPrice: dec("4.20")},
			{Description: "B", TotalPrice: dec("1.80")},
		},
		Totals: &Totals{},
	}

	r.Normalize()

	require.NotNil(t, r.Totals.Total)
	assert.True(t, r.Totals.Total.Equal(decimal.RequireFromString("6.00")))
	require.NotNil(t, r.Totals.TotalMatches)
	assert.True(t, *r.Totals.TotalMatches)
}

func TestReconcileSkippedWithoutItems(t *testing.T) {
	r := &ReceiptData{
		IsReceipt: true,
		Totals:    &Totals{Total: dec("12.00")},
	}

	r.Normalize()

	assert.Nil(t, r.Totals.TotalCalculated)
	assert.Nil(t, r.Totals.TotalMatches)
}

func TestValidateCategoryWhitelist(t *testing.T) {
	for _, category := range Categories {
		r := &ReceiptData{IsReceipt: true, Category: category}
		assert.NoError(t, r.Validate(), category)
	}

	r := &ReceiptData{IsReceipt: true, Category: "Groceries"}
	assert.ErrorIs(t, r.Validate(), ErrInvalidCategory)

	empty := &ReceiptData{IsReceipt: true}
	assert.NoError(t, empty.Validate())
}

func TestValidateRejectsBlankItemDescriptions(t *testing.T) {
	r := &ReceiptData{
		IsReceipt: true,
		Items:     []LineItem{{TotalPrice: dec("1.00")}},
	}
	assert.ErrorIs(t, r.Validate(), ErrMalformedResponse)
}
