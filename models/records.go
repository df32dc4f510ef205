package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SearchHistory is one analyzed query with a snapshot of its ranked results.
type SearchHistory struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Query     string    `json:"query" bson:"query"`
	Results   string    `json:"results" bson:"results"` // serialized []Strategy
	Degraded  bool      `json:"degraded" bson:"degraded"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Strategies decodes the stored result snapshot.
func (h SearchHistory) Strategies() ([]Strategy, error) {
	var out []Strategy
	if h.Results == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(h.Results), &out); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return out, nil
}

// StrategyContent is the part of a strategy serialized into SavedStrategy.Content.
type StrategyContent struct {
	Summary       string        `json:"summary"`
	CostBreakdown CostBreakdown `json:"cost_breakdown"`
	Itinerary     []Day         `json:"itinerary"`
	Locations     []Location    `json:"locations"`
}

// SavedStrategy is a strategy a user chose to keep.
type SavedStrategy struct {
	ID        string    `json:"id" bson:"_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Title     string    `json:"title" bson:"title"`
	Content   string    `json:"content" bson:"content"`
	Critique  string    `json:"critique,omitempty" bson:"critique,omitempty"`
	Score     float64   `json:"score" bson:"score"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// NewSavedStrategy serializes s for storage. ID and timestamps are assigned by the store.
func NewSavedStrategy(userID string, s Strategy) (SavedStrategy, error) {
	content, err := json.Marshal(StrategyContent{
		Summary:       s.Summary,
		CostBreakdown: s.CostBreakdown,
		Itinerary:     s.Itinerary,
		Locations:     s.Locations,
	})
	if err != nil {
		return SavedStrategy{}, fmt.Errorf("encode strategy content: %w", err)
	}
	return SavedStrategy{
		UserID:   userID,
		Title:    s.Title,
		Content:  string(content),
		Critique: s.Critique,
		Score:    s.Score,
	}, nil
}

// Details decodes the serialized content.
func (s SavedStrategy) Details() (StrategyContent, error) {
	var c StrategyContent
	if err := json.Unmarshal([]byte(s.Content), &c); err != nil {
		return c, fmt.Errorf("decode strategy %s content: %w", s.ID, err)
	}
	return c, nil
}

// Strategy reassembles the full strategy from its stored parts.
func (s SavedStrategy) Strategy() (Strategy, error) {
	c, err := s.Details()
	if err != nil {
		return Strategy{}, err
	}
	return Strategy{
		Title:         s.Title,
		Summary:       c.Summary,
		CostBreakdown: c.CostBreakdown,
		Itinerary:     c.Itinerary,
		Locations:     c.Locations,
		Critique:      s.Critique,
		Score:         s.Score,
	}, nil
}

// Trip is a dated calendar entry, optionally linked to a saved strategy.
type Trip struct {
	ID          string    `json:"id" bson:"_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Destination string    `json:"destination" bson:"destination"`
	StartDate   time.Time `json:"start_date" bson:"start_date"`
	EndDate     time.Time `json:"end_date" bson:"end_date"`
	StrategyID  *string   `json:"strategy_id" bson:"strategy_id"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}
