package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// HFConfig holds HuggingFace Inference API configuration.
type HFConfig struct {
	APIToken    string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// HFClient implements Generator against the HuggingFace Inference API.
type HFClient struct {
	httpClient  *http.Client
	apiToken    string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
}

// NewHFClient constructs an HFClient if the supplied configuration is valid.
func NewHFClient(cfg HFConfig) (*HFClient, error) {
	if strings.TrimSpace(cfg.APIToken) == "" {
		return nil, ErrDisabled
	}
	cfg.Model = strings.TrimSpace(cfg.Model)
	if cfg.Model == "" {
		cfg.Model = "microsoft/DialoGPT-medium"
	}
	cfg.BaseURL = strings.TrimSpace(cfg.BaseURL)
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api-inference.huggingface.co/models"
	}
	temp := cfg.Temperature
	if temp <= 0 {
		temp = 0.1
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 512
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HFClient{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		apiToken:    strings.TrimSpace(cfg.APIToken),
		model:       cfg.Model,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		temperature: temp,
		maxTokens:   cfg.MaxTokens,
	}, nil
}

// Enabled reports whether the client can make outbound calls.
func (c *HFClient) Enabled() bool {
	return c != nil && c.apiToken != ""
}

// Generate sends the assessment prompt formatted for instruction-following
// models and returns the generated text.
func (c *HFClient) Generate(ctx context.Context, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}

	formatted := fmt.Sprintf("<|system|>\n%s\n</s>\n<|user|>\n%s\n</s>\n<|assistant|>", systemPrompt, prompt)
	payload := map[string]any{
		"inputs": formatted,
		"parameters": map[string]any{
			"max_new_tokens":   c.maxTokens,
			"temperature":      c.temperature,
			"return_full_text": false,
			"do_sample":        true,
			"top_p":            0.9,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := c.baseURL + "/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("inference request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return "", fmt.Errorf("inference status %d: %v", resp.StatusCode, apiErr)
	}

	var raw json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	return extractGeneratedText(raw)
}

// extractGeneratedText handles the response shapes the inference API is known
// to produce: a list of generations, a single object, or an error object.
func extractGeneratedText(raw json.RawMessage) (string, error) {
	var list []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		if text := strings.TrimSpace(list[0].GeneratedText); text != "" {
			return text, nil
		}
	}

	var single struct {
		GeneratedText string `json:"generated_text"`
		Error         string `json:"error"`
	}
	if err := json.Unmarshal(raw, &single); err == nil {
		if single.Error != "" {
			return "", fmt.Errorf("inference api error: %s", single.Error)
		}
		if text := strings.TrimSpace(single.GeneratedText); text != "" {
			return text, nil
		}
	}

	return "", fmt.Errorf("unrecognized inference response: %s", strings.TrimSpace(string(raw)))
}
