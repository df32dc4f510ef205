package llm

import "tripwise/models"

// Chain returns the adapters in the fixed fallback order: Gemini, OpenAI, Anthropic.
func Chain(gemini, openai, anthropic Config) []Adapter {
	return []Adapter{
		NewGeminiAdapter(gemini),
		NewOpenAIAdapter(openai),
		NewAnthropicAdapter(anthropic),
	}
}

// Find returns the adapter for provider p.
func Find(adapters []Adapter, p models.Provider) (Adapter, bool) {
	for _, a := range adapters {
		if a.Name() == p {
			return a, true
		}
	}
	return nil, false
}
