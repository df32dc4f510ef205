package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"

	"tripwise/models"
)

// OpenAIAdapter talks to the OpenAI chat completions API (or any compatible endpoint).
type OpenAIAdapter struct {
	cfg Config
}

func NewOpenAIAdapter(cfg Config) *OpenAIAdapter {
	return &OpenAIAdapter{cfg: cfg.withDefaults("gpt-4o", 4096)}
}

func (a *OpenAIAdapter) Name() models.Provider { return models.ProviderOpenAI }

func (a *OpenAIAdapter) Generate(ctx context.Context, prompt, key string) (string, error) {
	return a.complete(ctx, key, generateCall(prompt, a.cfg.MaxTokens))
}

func (a *OpenAIAdapter) Critique(ctx context.Context, strategyJSON, key string) (string, error) {
	return a.complete(ctx, key, critiqueCall(strategyJSON))
}

func (a *OpenAIAdapter) Verify(ctx context.Context, key string) error {
	_, err := a.complete(ctx, key, verifyCall())
	if KindOf(err) == KindEmpty {
		return nil
	}
	return err
}

func (a *OpenAIAdapter) complete(ctx context.Context, key string, c call) (string, error) {
	if key == "" {
		return "", providerErr(models.ProviderOpenAI, KindMissingKey, ErrMissingKey)
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	clientConfig := openai.DefaultConfig(key)
	if a.cfg.BaseURL != "" {
		clientConfig.BaseURL = a.cfg.BaseURL
	}
	client := openai.NewClientWithConfig(clientConfig)

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if c.system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: c.system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: c.user})

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.cfg.Model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: float32(a.cfg.Temperature),
	})
	if err != nil {
		return "", providerErr(models.ProviderOpenAI, openAIKind(err), err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", providerErr(models.ProviderOpenAI, KindEmpty, ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIKind(err error) ErrorKind {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return kindForStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return kindForStatus(reqErr.HTTPStatusCode)
	}
	return kindForTransport(err)
}
