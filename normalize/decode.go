package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"tripwise/models"
)

var (
	numberRun = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)
	digitRun  = regexp.MustCompile(`\d+`)
)

// Decode converts normalized objects into typed strategies. Every field is
// decoded on its own: a value that does not fit the schema is coerced when its
// meaning is clear and dropped otherwise, so one bad field never costs the
// rest. Critique and score are never taken from generation output.
func Decode(objs []map[string]any) []models.Strategy {
	out := make([]models.Strategy, 0, len(objs))
	for _, obj := range objs {
		out = append(out, models.Strategy{
			Title:         stringField(obj, "title"),
			Summary:       stringField(obj, "summary"),
			CostBreakdown: costBreakdown(obj["cost_breakdown"]),
			Itinerary:     days(obj["itinerary"]),
			Locations:     locations(obj["locations"]),
		})
	}
	return out
}

// typed decodes v into dst through its JSON form.
func typed(v, dst any) bool {
	b, err := json.Marshal(v)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dst) == nil
}

func costBreakdown(v any) models.CostBreakdown {
	var c models.CostBreakdown
	if typed(v, &c) {
		return c
	}
	switch t := v.(type) {
	case float64:
		return models.CostBreakdown{Details: &models.CostDetails{Total: models.Amount(t)}}
	case map[string]any:
		return models.CostBreakdown{Details: &models.CostDetails{
			Flights:    amount(t["flights"]),
			Lodging:    amount(t["lodging"]),
			Food:       amount(t["food"]),
			Transport:  amount(t["transport"]),
			Activities: amount(t["activities"]),
			Total:      amount(t["total"]),
			Currency:   stringField(t, "currency"),
		}}
	}
	return models.CostBreakdown{}
}

// amount reads a money value. A range such as "$1,200 - $1,500" keeps its
// lower bound; anything without a number is 0.
func amount(v any) models.Amount {
	var a models.Amount
	if typed(v, &a) {
		return a
	}
	s, ok := v.(string)
	if !ok {
		return 0
	}
	if m := numberRun.FindString(s); m != "" {
		if f, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64); err == nil {
			return models.Amount(f)
		}
	}
	return 0
}

func days(v any) []models.Day {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []models.Day
	for i, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		var d models.Day
		if !typed(m, &d) {
			d = models.Day{
				Day:        intValue(m["day"], i+1),
				Title:      stringField(m, "title"),
				Activities: activities(m["activities"]),
			}
		}
		if d.Day <= 0 {
			d.Day = i + 1
		}
		out = append(out, d)
	}
	return out
}

func activities(v any) []models.Activity {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []models.Activity
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, models.Activity{
			Name:        stringField(m, "name"),
			Type:        models.ActivityType(stringField(m, "type")),
			Description: stringField(m, "description"),
		})
	}
	return out
}

// locations keeps every entry whose coordinates can be read; the rest are dropped.
func locations(v any) []models.Location {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []models.Location
	for _, el := range arr {
		m, ok := el.(map[string]any)
		if !ok {
			continue
		}
		lat, okLat := coordinate(m["lat"])
		lon, okLon := coordinate(m["lon"])
		if !okLat || !okLon {
			continue
		}
		out = append(out, models.Location{Name: stringField(m, "name"), Lat: lat, Lon: lon})
	}
	return out
}

func coordinate(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

// intValue reads a day number from 3, "3" or "Day 3".
func intValue(v any, fallback int) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		if m := digitRun.FindString(t); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				return n
			}
		}
	}
	return fallback
}
