package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"tripwise/models"
)

const anthropicVersion = "2023-06-01"

// AnthropicAdapter talks to the Anthropic Messages API over plain HTTP.
type AnthropicAdapter struct {
	cfg    Config
	client *http.Client
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature,omitempty"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewAnthropicAdapter(cfg Config) *AnthropicAdapter {
	cfg = cfg.withDefaults("claude-3-5-sonnet-20241022", 4096)
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com/v1"
	}
	return &AnthropicAdapter{cfg: cfg, client: &http.Client{}}
}

func (a *AnthropicAdapter) Name() models.Provider { return models.ProviderAnthropic }

func (a *AnthropicAdapter) Generate(ctx context.Context, prompt, key string) (string, error) {
	return a.complete(ctx, key, generateCall(prompt, a.cfg.MaxTokens))
}

func (a *AnthropicAdapter) Critique(ctx context.Context, strategyJSON, key string) (string, error) {
	return a.complete(ctx, key, critiqueCall(strategyJSON))
}

func (a *AnthropicAdapter) Verify(ctx context.Context, key string) error {
	_, err := a.complete(ctx, key, verifyCall())
	if KindOf(err) == KindEmpty {
		return nil
	}
	return err
}

func (a *AnthropicAdapter) complete(ctx context.Context, key string, c call) (string, error) {
	if key == "" {
		return "", providerErr(models.ProviderAnthropic, KindMissingKey, ErrMissingKey)
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(anthropicRequest{
		Model:       a.cfg.Model,
		MaxTokens:   c.maxTokens,
		System:      c.system,
		Messages:    []anthropicMessage{{Role: "user", Content: c.user}},
		Temperature: a.cfg.Temperature,
	})
	if err != nil {
		return "", providerErr(models.ProviderAnthropic, KindBadRequest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(a.cfg.BaseURL, "/")+"/messages", bytes.NewReader(body))
	if err != nil {
		return "", providerErr(models.ProviderAnthropic, KindBadRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", key)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", providerErr(models.ProviderAnthropic, kindForTransport(err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		var apiErr anthropicError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Message != "" {
			msg = apiErr.Error.Type + ": " + apiErr.Error.Message
		}
		return "", providerErr(models.ProviderAnthropic, kindForStatus(resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", providerErr(models.ProviderAnthropic, KindUnknown, fmt.Errorf("decode response: %w", err))
	}

	var sb strings.Builder
	for _, block := range out.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", providerErr(models.ProviderAnthropic, KindEmpty, ErrEmptyResponse)
	}
	return sb.String(), nil
}
