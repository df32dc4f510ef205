package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripwise/models"
)

func TestStrategyPDF(t *testing.T) {
	ss, err := models.NewSavedStrategy("u1", models.Strategy{
		Title:         "Strategy 1: Kansai",
		Summary:       "Osaka, Kyoto and Nara.",
		CostBreakdown: models.CostBreakdown{Details: &models.CostDetails{Flights: 2600, Lodging: 800}},
		Itinerary: []models.Day{{Day: 1, Title: "Osaka", Activities: []models.Activity{
			{Name: "Dotonbori", Type: models.ActivityFood, Description: "Takoyaki."},
		}}},
		Locations: []models.Location{{Name: "Osaka", Lat: 34.6937, Lon: 135.5023}},
		Critique:  "Feasibility: 9/10.",
		Score:     7.5,
	})
	require.NoError(t, err)
	ss.ID = "s1"

	withQR, err := StrategyPDF(ss, "http://localhost:8080/strategies/s1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(withQR, []byte("%PDF")))

	plain, err := StrategyPDF(ss, "")
	require.NoError(t, err)
	assert.Less(t, len(plain), len(withQR), "the share code adds an image")
}

func TestStrategyPDFRejectsCorruptContent(t *testing.T) {
	_, err := StrategyPDF(models.SavedStrategy{ID: "s1", Title: "x", Content: "{"}, "")
	assert.Error(t, err)
}
