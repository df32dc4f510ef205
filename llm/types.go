// Package llm holds the provider adapters. Each adapter keeps its provider's
// request and response shapes to itself and exposes the same Adapter contract.
package llm

import (
	"context"
	"time"

	"tripwise/models"
)

// Adapter is one language-model provider.
type Adapter interface {
	Name() models.Provider
	// Generate returns raw model text for a strategy-generation prompt.
	Generate(ctx context.Context, prompt, key string) (string, error)
	// Critique returns raw model text evaluating one strategy (JSON encoded).
	Critique(ctx context.Context, strategyJSON, key string) (string, error)
	// Verify performs a minimal live call to check that key works.
	Verify(ctx context.Context, key string) error
}

// Config configures an adapter. Zero values get per-provider defaults.
type Config struct {
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

const (
	defaultTimeout     = 30 * time.Second
	defaultTemperature = 0.7
	critiqueMaxTokens  = 1024
	verifyMaxTokens    = 8
)

func (c Config) withDefaults(model string, maxTokens int) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = maxTokens
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	return c
}

// call is the single request shape every adapter implements.
type call struct {
	system    string
	user      string
	maxTokens int
}

func generateCall(prompt string, maxTokens int) call {
	return call{system: generationSystem, user: prompt, maxTokens: maxTokens}
}

func critiqueCall(strategyJSON string) call {
	return call{system: critiqueSystem, user: CritiquePrompt(strategyJSON), maxTokens: critiqueMaxTokens}
}

func verifyCall() call {
	return call{user: "Reply with the single word OK.", maxTokens: verifyMaxTokens}
}
