package solana

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/WeSplit-io/WeSplit-Backend/providers"
	"github.com/WeSplit-io/WeSplit-Backend/services/monitoring/logging"
	"github.com/WeSplit-io/WeSplit-Backend/utils"
)

var ErrTransactionNotFound = errors.New("transaction not found on chain")

const defaultHeliusBaseURL = "https://api.helius.xyz"

// HeliusProvider reads enhanced transaction history from the Helius API.
// It is the backend's only view of the chain; nothing here signs or sends.
type HeliusProvider struct {
	providers.BaseProvider
	config *HeliusConfig
}

type HeliusConfig struct {
	ChainProviderName string `mapstructure:"CHAIN_PROVIDER_NAME"`
	HeliusBaseURL     string `mapstructure:"HELIUS_BASE_URL"`
	HeliusAPIKey      string `mapstructure:"HELIUS_API_KEY"`
	SolanaCluster     string `mapstructure:"SOLANA_CLUSTER"`
}

func NewHeliusProvider() *HeliusProvider {

	var c HeliusConfig

	err := utils.LoadCustomConfig(utils.EnvPath, &c)
	if err != nil {
		panic(fmt.Sprintf("Could not load config: %v", err))
	}

	if c.HeliusBaseURL == "" {
		c.HeliusBaseURL = defaultHeliusBaseURL
	}
	if c.SolanaCluster == "" {
		c.SolanaCluster = ClusterMainnet
	}

	return &HeliusProvider{
		BaseProvider: providers.BaseProvider{
			Name:    c.ChainProviderName,
			BaseURL: c.HeliusBaseURL,
			APIKey:  c.HeliusAPIKey,
			Client: &http.Client{
				Timeout: time.Second * 30,
			},
		},
		config: &c,
	}
}

// Cluster reports which cluster the provider was configured for. Currency
// resolution for token mints depends on it.
func (p *HeliusProvider) Cluster() string {
	return p.config.SolanaCluster
}

// GetTransactionsForAddress returns the most recent enhanced transfer
// transactions touching the given address, newest first.
func (p *HeliusProvider) GetTransactionsForAddress(address string) ([]HeliusTransaction, error) {
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	base.Path += fmt.Sprintf("/v0/addresses/%s/transactions", address)

	params := url.Values{}
	params.Set("api-key", p.APIKey)
	params.Set("type", "TRANSFER")
	params.Set("limit", "100")
	base.RawQuery = params.Encode()

	resp, err := p.MakeRequest("GET", base.String(), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logging.NewLogger().Error("helius response", "status_code", resp.StatusCode, "body", string(bodyBytes))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var transactions []HeliusTransaction
	decoder := json.NewDecoder(resp.Body)
	err = decoder.Decode(&transactions)
	if err != nil {
		return nil, fmt.Errorf("error decoding response body: %w", err)
	}

	return transactions, nil
}

// GetTransaction fetches a single transaction by signature. Signatures that
// Helius has never seen come back as an empty batch, surfaced here as
// ErrTransactionNotFound.
func (p *HeliusProvider) GetTransaction(signature string) (*HeliusTransaction, error) {
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	base.Path += "/v0/transactions"

	params := url.Values{}
	params.Set("api-key", p.APIKey)
	base.RawQuery = params.Encode()

	payload := map[string][]string{
		"transactions": {signature},
	}

	resp, err := p.MakeRequest("POST", base.String(), payload, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		logging.NewLogger().Error("helius response", "status_code", resp.StatusCode, "body", string(bodyBytes))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var transactions []HeliusTransaction
	decoder := json.NewDecoder(resp.Body)
	err = decoder.Decode(&transactions)
	if err != nil {
		return nil, fmt.Errorf("error decoding response body: %w", err)
	}

	if len(transactions) == 0 {
		return nil, ErrTransactionNotFound
	}

	return &transactions[0], nil
}
