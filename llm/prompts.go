package llm

import (
	"fmt"
	"strings"
)

const generationSystem = "You are a travel planning expert. You answer with JSON only, no prose and no markdown."

const critiqueSystem = "You are a harsh but fair travel critic. You answer with JSON only."

// ComposeProblem folds the optional origin hint into the user's problem text.
func ComposeProblem(problem, origin string) string {
	problem = strings.TrimSpace(problem)
	if origin = strings.TrimSpace(origin); origin != "" {
		return fmt.Sprintf("%s (Travelling from: %s)", problem, origin)
	}
	return problem
}

// GenerationPrompt asks for three strategies in the structured-cost schema.
func GenerationPrompt(problem string) string {
	return fmt.Sprintf(`Break down the following travel problem into 3 distinct high-level approaches or strategies.
Problem: %s

Output strictly as a JSON list of objects. Each object must have:
- "title": string
- "summary": string (1-2 sentences)
- "cost_breakdown": object with numeric "flights", "lodging", "food", "transport", "activities", "total" and a "currency" code
- "itinerary": list of objects, each with "day" (int), "title" (string) and "activities" (list of {"name", "type" (food/history/other), "description"})
- "locations": list of objects with "name", "lat" (float), "lon" (float) for major cities visited`, problem)
}

// CritiquePrompt asks for a scored evaluation of one strategy.
func CritiquePrompt(strategyJSON string) string {
	return fmt.Sprintf(`Analyze this travel strategy: %s
Evaluate feasibility, balance and budget. Give an overall score from 1 to 10.
Output a JSON object with keys "critique" (string) and "score" (number).`, strategyJSON)
}
