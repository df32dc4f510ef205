package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tripwise/models"
)

// CreateOrUpdateTrip inserts t, or, when t links a strategy the user already
// has a trip for, moves that trip's dates. The existing destination is kept.
func (s *Store) CreateOrUpdateTrip(ctx context.Context, t models.Trip) (models.Trip, error) {
	now := s.now()
	if t.StrategyID == nil {
		t.ID = newID()
		t.CreatedAt, t.UpdatedAt = now, now
		if _, err := s.Trips.InsertOne(ctx, t); err != nil {
			return models.Trip{}, fmt.Errorf("insert trip: %w", err)
		}
		return t, nil
	}

	filter := bson.M{"user_id": t.UserID, "strategy_id": *t.StrategyID}
	update := bson.M{
		"$set": bson.M{
			"start_date": t.StartDate,
			"end_date":   t.EndDate,
			"updated_at": now,
		},
		"$setOnInsert": bson.M{
			"_id":         newID(),
			"destination": t.Destination,
			"created_at":  now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var saved models.Trip
	if err := s.Trips.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
		return models.Trip{}, fmt.Errorf("upsert trip for strategy %s: %w", *t.StrategyID, err)
	}
	return saved, nil
}

// ListTrips returns the user's trips by start date, earliest first.
func (s *Store) ListTrips(ctx context.Context, userID string) ([]models.Trip, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	out, err := findAll[models.Trip](ctx, s.Trips, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteTrip(ctx context.Context, userID, id string) error {
	return deleteOwned(ctx, s.Trips, userID, id)
}
