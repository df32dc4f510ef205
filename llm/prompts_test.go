package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tripwise/models"
)

func TestComposeProblem(t *testing.T) {
	assert.Equal(t, "7 days in Japan", ComposeProblem(" 7 days in Japan ", ""))
	assert.Equal(t, "7 days in Japan (Travelling from: Boston)", ComposeProblem("7 days in Japan", "Boston"))
}

func TestPromptsCarryInput(t *testing.T) {
	assert.Contains(t, GenerationPrompt("food and history"), "Problem: food and history")
	assert.Contains(t, CritiquePrompt(`{"title":"x"}`), `{"title":"x"}`)
}

func TestChainOrder(t *testing.T) {
	chain := Chain(Config{}, Config{}, Config{})
	var names []models.Provider
	for _, a := range chain {
		names = append(names, a.Name())
	}
	assert.Equal(t, models.Providers, names)

	a, ok := Find(chain, models.ProviderAnthropic)
	assert.True(t, ok)
	assert.Equal(t, models.ProviderAnthropic, a.Name())
}
