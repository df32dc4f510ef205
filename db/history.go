package db

import (
	"context"
	"encoding/json"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tripwise/models"
)

// HistoryLimit is how many searches the profile shows.
const HistoryLimit = 10

// CreateSearchHistory stores a query with a snapshot of its ranked results.
func (s *Store) CreateSearchHistory(ctx context.Context, userID, query string, results []models.Strategy, degraded bool) (models.SearchHistory, error) {
	snapshot, err := json.Marshal(results)
	if err != nil {
		return models.SearchHistory{}, fmt.Errorf("encode search results: %w", err)
	}
	h := models.SearchHistory{
		ID:        newID(),
		UserID:    userID,
		Query:     query,
		Results:   string(snapshot),
		Degraded:  degraded,
		Timestamp: s.now(),
	}
	if _, err := s.History.InsertOne(ctx, h); err != nil {
		return models.SearchHistory{}, fmt.Errorf("insert search history: %w", err)
	}
	return h, nil
}

// ListSearchHistory returns the user's most recent searches, newest first.
func (s *Store) ListSearchHistory(ctx context.Context, userID string, limit int64) ([]models.SearchHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	out, err := findAll[models.SearchHistory](ctx, s.History, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list search history: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteSearchHistory(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.History, userID, id)
}
