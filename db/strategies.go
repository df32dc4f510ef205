package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tripwise/models"
)

// CreateSavedStrategy assigns an ID and creation time and stores ss.
func (s *Store) CreateSavedStrategy(ctx context.Context, ss models.SavedStrategy) (models.SavedStrategy, error) {
	ss.ID = newID()
	ss.CreatedAt = s.now()
	if _, err := s.Strategies.InsertOne(ctx, ss); err != nil {
		return models.SavedStrategy{}, fmt.Errorf("insert saved strategy: %w", err)
	}
	return ss, nil
}

func (s *Store) ListSavedStrategies(ctx context.Context, userID string) ([]models.SavedStrategy, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	out, err := findAll[models.SavedStrategy](ctx, s.Strategies, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list saved strategies: %w", err)
	}
	return out, nil
}

// GetSavedStrategy returns ErrNotFound for strategies owned by someone else.
func (s *Store) GetSavedStrategy(ctx context.Context, userID, id string) (models.SavedStrategy, error) {
	var ss models.SavedStrategy
	err := s.Strategies.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&ss)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ss, ErrNotFound
	}
	if err != nil {
		return ss, fmt.Errorf("get saved strategy %s: %w", id, err)
	}
	return ss, nil
}

// DeleteSavedStrategy removes the strategy and unlinks, without deleting, the
// trips that referenced it.
func (s *Store) DeleteSavedStrategy(ctx context.Context, userID, id string) error {
	if err := deleteOwned(ctx, s.Strategies, userID, id); err != nil {
		return err
	}
	_, err := s.Trips.UpdateMany(ctx,
		bson.M{"user_id": userID, "strategy_id": id},
		bson.M{"$set": bson.M{"strategy_id": nil, "updated_at": s.now()}},
	)
	if err != nil {
		return fmt.Errorf("unlink trips from strategy %s: %w", id, err)
	}
	return nil
}
