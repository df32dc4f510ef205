package pipeline

import "tripwise/models"

// MockStrategies returns the fixed baseline used when no provider can produce
// strategies. Each call returns a fresh slice.
func MockStrategies() []models.Strategy {
	return []models.Strategy{
		{
			Title:         "Strategy 1: The 'Kitchen of Japan' Deep Dive",
			Summary:       "Focus entirely on the Kansai region (Osaka, Kyoto, Nara) to maximize food and history while saving on transport.",
			CostBreakdown: models.CostBreakdown{Text: "Flights: $2600, Lodging: $800, Food: $1000, Transport: $300, Activities: $300"},
			Itinerary: []models.Day{
				{Day: 1, Title: "Arrival in Osaka", Activities: []models.Activity{
					{Name: "Dotonbori Street Food", Type: models.ActivityFood, Description: "Eat Takoyaki and Okonomiyaki."},
				}},
				{Day: 2, Title: "Kyoto History", Activities: []models.Activity{
					{Name: "Fushimi Inari Shrine", Type: models.ActivityHistory, Description: "Hike the 1000 torii gates."},
					{Name: "Nishiki Market", Type: models.ActivityFood, Description: "Kyoto's Kitchen."},
				}},
				{Day: 3, Title: "Nara Day Trip", Activities: []models.Activity{
					{Name: "Todai-ji Temple", Type: models.ActivityHistory, Description: "See the Great Buddha and deer."},
				}},
			},
			Locations: []models.Location{
				{Name: "Osaka", Lat: 34.6937, Lon: 135.5023},
				{Name: "Kyoto", Lat: 35.0116, Lon: 135.7681},
			},
			Critique: "Feasibility: 9/10. Smart logistical play. Balance: 10/10. Perfect marriage of interests. Budget: 6/10. Flights might blow the budget. Overall Score: 7.5/10",
			Score:    7.5,
		},
		{
			Title:         "Strategy 2: The 'Samurai & Seafood' Route",
			Summary:       "Pair Tokyo with Kanazawa ('Little Kyoto') for a deep dive into Samurai culture and fresh seafood.",
			CostBreakdown: models.CostBreakdown{Text: "Flights: $2400, Lodging: $900, Food: $800, Transport: $600, Activities: $300"},
			Itinerary: []models.Day{
				{Day: 1, Title: "Tokyo Arrival", Activities: []models.Activity{
					{Name: "Shinjuku Omoide Yokocho", Type: models.ActivityFood, Description: "Yakitori alley dining."},
				}},
				{Day: 2, Title: "Tokyo Edo History", Activities: []models.Activity{
					{Name: "Edo-Tokyo Museum", Type: models.ActivityHistory, Description: "Learn about the Samurai era."},
				}},
				{Day: 3, Title: "Travel to Kanazawa", Activities: []models.Activity{
					{Name: "Omicho Market", Type: models.ActivityFood, Description: "Fresh seafood bowls (Kaisendon)."},
				}},
			},
			Locations: []models.Location{
				{Name: "Tokyo", Lat: 35.6762, Lon: 139.6503},
				{Name: "Kanazawa", Lat: 36.5613, Lon: 136.6562},
			},
			Critique: "Feasibility: 8/10. Good pace. Balance: 9/10. Strong history/food mix. Budget: 7/10. Hokuriku Arch Pass saves money. Overall Score: 8/10",
			Score:    8.0,
		},
		{
			Title:         "Strategy 3: The 'Golden Route' Express",
			Summary:       "The classic Tokyo and Kyoto itinerary condensed for 7 days, using 'smart luxury' to stay on budget.",
			CostBreakdown: models.CostBreakdown{Text: "Flights: $2400, Lodging: $900, Food: $700, Transport: $700, Activities: $300"},
			Itinerary: []models.Day{
				{Day: 1, Title: "Tokyo Modern & Old", Activities: []models.Activity{
					{Name: "Meiji Shrine", Type: models.ActivityHistory, Description: "Forest oasis in the city."},
					{Name: "Harajuku Crepes", Type: models.ActivityFood, Description: "Famous sweet treat."},
				}},
				{Day: 2, Title: "Kyoto Temples", Activities: []models.Activity{
					{Name: "Kiyomizu-dera", Type: models.ActivityHistory, Description: "Wooden stage temple."},
				}},
				{Day: 3, Title: "Shojin Ryori", Activities: []models.Activity{
					{Name: "Tenryu-ji Temple", Type: models.ActivityFood, Description: "Traditional Buddhist vegetarian lunch."},
				}},
			},
			Locations: []models.Location{
				{Name: "Tokyo", Lat: 35.6762, Lon: 139.6503},
				{Name: "Kyoto", Lat: 35.0116, Lon: 135.7681},
			},
			Critique: "Feasibility: 7/10. A bit rushed. Balance: 8/10. Classic hits. Budget: 5/10. Shinkansen is pricey. Overall Score: 6.5/10",
			Score:    6.5,
		},
	}
}
