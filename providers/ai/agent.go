package ai

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

var (
	ErrInvalidCategory   = errors.New("category outside the agent whitelist")
	ErrMalformedResponse = errors.New("malformed agent response")
)

// AiAgentProvider talks to the receipt-analysis agent. The agent accepts a
// base64 image and returns a structured extraction; this client only moves
// bytes, contract checks live on the models.
type AiAgentProvider struct {
	providers.BaseProvider
	config *AiAgentConfig
}

type AiAgentConfig struct {
	AiAgentProviderName string `mapstructure:"AIAGENT_PROVIDER_NAME"`
	AiAgentBaseURL      string `mapstructure:"AIAGENT_BASE_URL"`
	AiAgentAPIKey       string `mapstructure:"AIAGENT_API_KEY"`
}

func NewAiAgentProvider() *AiAgentProvider {

	var c AiAgentConfig

	err := utils.LoadCustomConfig(utils.EnvPath, &c)
	if err != nil {
		panic(fmt.Sprintf("Could not load config: %v", err))
	}

	return &AiAgentProvider{
		BaseProvider: providers.BaseProvider{
			Name:    c.AiAgentProviderName,
			BaseURL: c.AiAgentBaseURL,
			APIKey:  c.AiAgentAPIKey,
			Client: &http.Client{
				// Vision models are slow; 30s is not enough for large images.
				Timeout: time.Second * 120,
			},
		},
		config: &c,
	}
}

// AnalyzeBill sends a base64-encoded image for extraction. The agent
// answers with the same envelope on success and failure, so any decodable
// body comes back as a response; the transport error path is only for
// unreachable or non-JSON answers.
func (p *AiAgentProvider) AnalyzeBill(imageData string) (*AnalysisResponse, error) {
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	base.Path += "/analyze-bill"

	payload := map[string]string{
		"imageData": imageData,
	}

	resp, err := p.MakeRequest("POST", base.String(), payload, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response body: %w", err)
	}

	var analysis AnalysisResponse
	if err := json.Unmarshal(bodyBytes, &analysis); err != nil {
		logging.NewLogger().Error("agent response", "status_code", resp.StatusCode, "body", string(bodyBytes))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return &analysis, nil
}

// Health probes the agent's readiness endpoint.
func (p *AiAgentProvider) Health() (*AgentHealth, error) {
	base, err := url.Parse(p.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	base.Path += "/health"

	resp, err := p.MakeRequest("GET", base.String(), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var health AgentHealth
	decoder := json.NewDecoder(resp.Body)
	err = decoder.Decode(&health)
	if err != nil {
		return nil, fmt.Errorf("error decoding response body: %w", err)
	}

	return &health, nil
}
