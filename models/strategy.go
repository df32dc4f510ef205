package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Strategy is one candidate trip plan produced by the generation pipeline.
type Strategy struct {
	Title         string        `json:"title"`
	Summary       string        `json:"summary"`
	CostBreakdown CostBreakdown `json:"cost_breakdown"`
	Itinerary     []Day         `json:"itinerary"`
	Locations     []Location    `json:"locations"`
	Critique      string        `json:"critique,omitempty"`
	Score         float64       `json:"score"`
}

// Valid reports whether the strategy can be displayed.
func (s Strategy) Valid() bool {
	return strings.TrimSpace(s.Title) != "" && strings.TrimSpace(s.Summary) != ""
}

// CostDetails is the structured cost estimate requested by the current prompt.
type CostDetails struct {
	Flights    Amount `json:"flights"`
	Lodging    Amount `json:"lodging"`
	Food       Amount `json:"food"`
	Transport  Amount `json:"transport"`
	Activities Amount `json:"activities"`
	Total      Amount `json:"total"`
	Currency   string `json:"currency,omitempty"`
}

// CostBreakdown holds either the legacy display string or the structured
// mapping. It marshals back to whichever shape it was read from.
type CostBreakdown struct {
	Text    string
	Details *CostDetails
}

// Structured reports whether the breakdown uses the mapping schema.
func (c CostBreakdown) Structured() bool { return c.Details != nil }

// String renders the breakdown for display regardless of schema.
func (c CostBreakdown) String() string {
	if c.Details == nil {
		return c.Text
	}
	d := c.Details
	cur := d.Currency
	if cur == "" {
		cur = "USD"
	}
	total := d.Total
	if total == 0 {
		total = d.Flights + d.Lodging + d.Food + d.Transport + d.Activities
	}
	return fmt.Sprintf("Flights: %s, Lodging: %s, Food: %s, Transport: %s, Activities: %s, Total: %s %s",
		d.Flights, d.Lodging, d.Food, d.Transport, d.Activities, total, cur)
}

func (c CostBreakdown) MarshalJSON() ([]byte, error) {
	if c.Details != nil {
		return json.Marshal(c.Details)
	}
	return json.Marshal(c.Text)
}

func (c *CostBreakdown) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*c = CostBreakdown{}
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	switch b[0] {
	case '"':
		return json.Unmarshal(b, &c.Text)
	case '{':
		var d CostDetails
		if err := json.Unmarshal(b, &d); err != nil {
			return fmt.Errorf("cost_breakdown: %w", err)
		}
		c.Details = &d
		return nil
	}
	return fmt.Errorf("cost_breakdown: unsupported JSON value %s", b)
}

// Amount is a money value. Providers emit both numbers and strings such as
// "$1,200"; both decode to the numeric value.
type Amount float64

func (a Amount) String() string {
	return "$" + strconv.FormatFloat(float64(a), 'f', -1, 64)
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*a = 0
		return nil
	}
	if b[0] != '"' {
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		*a = Amount(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	s = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			return r
		}
		return -1
	}, s)
	if s == "" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("amount %q: %w", s, err)
	}
	*a = Amount(f)
	return nil
}
