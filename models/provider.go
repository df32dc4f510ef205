package models

import (
	"fmt"
	"strings"
)

// Provider names an external language-model service.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Providers is the fixed fallback chain, highest priority first.
var Providers = []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic}

func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic:
		return p, nil
	}
	return "", fmt.Errorf("unknown provider %q", s)
}

// ProviderKeys holds one user's encrypted provider credentials.
// Values are ciphertext (or legacy plaintext) and must never be sent to clients.
type ProviderKeys struct {
	UserID       string `json:"-" bson:"_id"`
	GeminiKey    string `json:"-" bson:"gemini_key,omitempty"`
	OpenAIKey    string `json:"-" bson:"openai_key,omitempty"`
	AnthropicKey string `json:"-" bson:"anthropic_key,omitempty"`
}

// Get returns the stored value for p, or "" if none.
func (k *ProviderKeys) Get(p Provider) string {
	if k == nil {
		return ""
	}
	switch p {
	case ProviderGemini:
		return k.GeminiKey
	case ProviderOpenAI:
		return k.OpenAIKey
	case ProviderAnthropic:
		return k.AnthropicKey
	}
	return ""
}

// Set stores v for p. Unknown providers are ignored.
func (k *ProviderKeys) Set(p Provider, v string) {
	switch p {
	case ProviderGemini:
		k.GeminiKey = v
	case ProviderOpenAI:
		k.OpenAIKey = v
	case ProviderAnthropic:
		k.AnthropicKey = v
	}
}

// Configured reports which providers have a stored value, without exposing it.
func (k *ProviderKeys) Configured() map[Provider]bool {
	out := make(map[Provider]bool, len(Providers))
	for _, p := range Providers {
		out[p] = k.Get(p) != ""
	}
	return out
}
