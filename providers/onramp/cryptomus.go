package onramp

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/WeSplit-io/WeSplit-Backend/providers"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
)

// CryptomusProvider creates hosted payment invoices so a member can fund a
// shared wallet from fiat. Every request is signed with the merchant key.
type CryptomusProvider struct {
	providers.BaseProvider
	config *CryptomusConfig
}

type CryptomusConfig struct {
	CryptomusProviderName string `mapstructure:"CRYPTOMUS_PROVIDER_NAME"`
	BaseURL               string `mapstructure:"CRYPTOMUS_BASE_URL"`
	APIKey                string `mapstructure:"CRYPTOMUS_API_KEY"`
	MerchantID            string `mapstructure:"CRYPTOMUS_MERCHANT_ID"`
}

func NewCryptomusProvider() *CryptomusProvider {

	var c CryptomusConfig

	err := utils.LoadCustomConfig(utils.EnvPath, &c)
	if err != nil {
		panic(fmt.Sprintf("Could not load config: %v", err))
	}

	return &CryptomusProvider{
		BaseProvider: providers.BaseProvider{
			Name:    c.CryptomusProviderName,
			BaseURL: c.BaseURL,
			APIKey:  c.APIKey,
			Client: &http.Client{
				Timeout: time.Second * 30,
			},
		},
		config: &c,
	}
}

// CreateInvoice opens a hosted payment page for the given order. The
// returned invoice carries the URL the mobile app hands to the payer.
func (p *CryptomusProvider) CreateInvoice(request *InvoiceRequest) (*Invoice, error) {
	resp, err := p.processRequest("POST", "/payment", request)
	if err != nil {
		return nil, err
	}

	var invoiceResponse InvoiceRawResponse
	decoder := json.NewDecoder(resp.Body)
	err = decoder.Decode(&invoiceResponse)
	if err != nil {
		return nil, fmt.Errorf("error decoding response body: %w", err)
	}

	if invoiceResponse.Result == nil {
		return nil, fmt.Errorf("empty result in provider response (state %d)", invoiceResponse.State)
	}

	return invoiceResponse.Result, nil
}

// GetPaymentInfo re-fetches an invoice's current state from Cryptomus.
// Webhook handling calls this instead of trusting the callback body.
func (p *CryptomusProvider) GetPaymentInfo(request *PaymentInfoRequest) (*Invoice, error) {
	resp, err := p.processRequest("POST", "/payment/info", request)
	if err != nil {
		return nil, err
	}

	var invoiceResponse InvoiceRawResponse
	decoder := json.NewDecoder(resp.Body)
	err = decoder.Decode(&invoiceResponse)
	if err != nil {
		return nil, fmt.Errorf("error decoding response body: %w", err)
	}

	if invoiceResponse.Result == nil {
		return nil, fmt.Errorf("empty result in provider response (state %d)", invoiceResponse.State)
	}

	return invoiceResponse.Result, nil
}

func (p *CryptomusProvider) processRequest(method string, endpoint string, payload any) (*http.Response, error) {
	if payload == nil {
		payload = map[string]string{}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	sign := p.signRequest(p.config.APIKey, body)
	extraHeaders := map[string]string{
		"Content-Type": "application/json",
		"merchant":     p.config.MerchantID,
		"sign":         sign,
	}

	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// Path params
	base.Path += endpoint

	resp, err := p.MakeRequest(method, base.String(), payload, extraHeaders)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		logging.NewLogger().Error("failed to read response body", err)
		return nil, fmt.Errorf("unexpected status code: %d \nURL: %s", resp.StatusCode, resp.Request.URL)
	}

	// Reset the response body for further processing
	resp.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

	// Check the status code
	if resp.StatusCode != http.StatusOK {
		logging.NewLogger().Error("cryptomus response",
			"status_code", resp.StatusCode,
			"body", string(bodyBytes))
		return nil, fmt.Errorf("unexpected status code: %d \nURL: %s", resp.StatusCode, resp.Request.URL)
	}

	return resp, nil
}

// signRequest implements the Cryptomus request signature:
// hex(md5(base64(body) + api key)).
func (p *CryptomusProvider) signRequest(apiKey string, reqBody []byte) string {
	data := base64.StdEncoding.EncodeToString(reqBody)
	hash := md5.Sum([]byte(data + apiKey))
	return hex.EncodeToString(hash[:])
}
