// Package db is the Mongo-backed persistence gateway for search history,
// saved strategies, trips and per-user provider credentials.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// newID is the document ID scheme for every collection.
func newID() string {
	return uuid.New().String()
}

// ErrNotFound is returned when a document does not exist or is not owned by the caller.
var ErrNotFound = errors.New("not found")

const (
	historyCollection     = "search_history"
	strategiesCollection  = "saved_strategies"
	tripsCollection       = "trips"
	credentialsCollection = "credentials"
)

type Store struct {
	client      *mongo.Client
	History     *mongo.Collection
	Strategies  *mongo.Collection
	Trips       *mongo.Collection
	Credentials *mongo.Collection

	now func() time.Time
}

// Connect dials Mongo and pings it before returning the store.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	s := NewStore(client.Database(database))
	s.client = client
	return s, nil
}

// NewStore wraps an existing database handle.
func NewStore(database *mongo.Database) *Store {
	return &Store{
		History:     database.Collection(historyCollection),
		Strategies:  database.Collection(strategiesCollection),
		Trips:       database.Collection(tripsCollection),
		Credentials: database.Collection(credentialsCollection),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes creates the per-user lookup indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	byUser := func(field string, order int) mongo.IndexModel {
		return mongo.IndexModel{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: field, Value: order}}}
	}
	for coll, idx := range map[*mongo.Collection]mongo.IndexModel{
		s.History:    byUser("timestamp", -1),
		s.Strategies: byUser("created_at", -1),
		s.Trips:      byUser("start_date", 1),
	} {
		if _, err := coll.Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("create index on %s: %w", coll.Name(), err)
		}
	}
	// one trip per (user, strategy); manual trips have a null strategy and are exempt
	_, err := s.Trips.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "strategy_id", Value: 1}},
		Options: options.Index().SetUnique(true).
			SetPartialFilterExpression(bson.M{"strategy_id": bson.M{"$type": "string"}}),
	})
	if err != nil {
		return fmt.Errorf("create trip strategy index: %w", err)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// findAll runs a query and decodes every document, never returning a nil slice.
func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func deleteOwned(ctx context.Context, coll *mongo.Collection, userID, id string) error {
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
