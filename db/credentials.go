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

// GetProviderKeys returns the user's stored (encrypted) keys. A user with no
// record gets an empty value and no error.
func (s *Store) GetProviderKeys(ctx context.Context, userID string) (*models.ProviderKeys, error) {
	keys := &models.ProviderKeys{UserID: userID}
	err := s.Credentials.FindOne(ctx, bson.M{"_id": userID}).Decode(keys)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.ProviderKeys{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get provider keys: %w", err)
	}
	return keys, nil
}

// SetProviderKeys replaces all three stored keys; empty values clear a key.
func (s *Store) SetProviderKeys(ctx context.Context, keys models.ProviderKeys) error {
	set, unset := bson.M{}, bson.M{}
	for _, p := range models.Providers {
		field := string(p) + "_key"
		if v := keys.Get(p); v != "" {
			set[field] = v
		} else {
			unset[field] = ""
		}
	}
	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := s.Credentials.UpdateOne(ctx, bson.M{"_id": keys.UserID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("set provider keys: %w", err)
	}
	return nil
}
