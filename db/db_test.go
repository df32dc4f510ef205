package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"tripwise/models"
)

var fixedNow = time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

func newTestStore(mt *mtest.T) *Store {
	s := NewStore(mt.DB)
	s.now = func() time.Time { return fixedNow }
	return s
}

func TestNewID(t *testing.T) {
	a, b := newID(), newID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

func TestSearchHistory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create snapshots results", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		h, err := store.CreateSearchHistory(context.Background(), "u1", "Japan", []models.Strategy{{Title: "A", Summary: "a", Score: 7}}, true)
		require.NoError(mt, err)
		_, err = uuid.Parse(h.ID)
		assert.NoError(mt, err, "ids are uuids")
		assert.Equal(mt, fixedNow, h.Timestamp)
		assert.True(mt, h.Degraded)

		got, err := h.Strategies()
		require.NoError(mt, err)
		require.Len(mt, got, 1)
		assert.Equal(mt, 7.0, got[0].Score)
	})

	mt.Run("list", func(mt *mtest.T) {
		store := newTestStore(mt)
		ns := mt.DB.Name() + "." + historyCollection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "h2"}, {Key: "user_id", Value: "u1"}, {Key: "query", Value: "Peru"}},
			bson.D{{Key: "_id", Value: "h1"}, {Key: "user_id", Value: "u1"}, {Key: "query", Value: "Japan"}},
		))

		list, err := store.ListSearchHistory(context.Background(), "u1", HistoryLimit)
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "Peru", list[0].Query)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.Equal(mt, int64(HistoryLimit), evt.Command.Lookup("limit").AsInt64())
	})

	mt.Run("list empty is not nil", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+historyCollection, mtest.FirstBatch))

		list, err := store.ListSearchHistory(context.Background(), "u1", HistoryLimit)
		require.NoError(mt, err)
		assert.NotNil(mt, list)
		assert.Empty(mt, list)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := store.DeleteSearchHistory(context.Background(), "u1", "nope")
		assert.ErrorIs(mt, err, ErrNotFound)
	})
}

func TestSavedStrategies(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get not owned", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+strategiesCollection, mtest.FirstBatch))

		_, err := store.GetSavedStrategy(context.Background(), "u2", "s1")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete unlinks trips", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}),
		)

		require.NoError(mt, store.DeleteSavedStrategy(context.Background(), "u1", "s1"))

		del := mt.GetStartedEvent()
		require.NotNil(mt, del)
		assert.Equal(mt, "delete", del.CommandName)
		assert.Equal(mt, strategiesCollection, del.Command.Lookup("delete").StringValue())

		upd := mt.GetStartedEvent()
		require.NotNil(mt, upd)
		assert.Equal(mt, "update", upd.CommandName)
		assert.Equal(mt, tripsCollection, upd.Command.Lookup("update").StringValue())
		set := upd.Command.Lookup("updates", "0", "u", "$set")
		assert.Equal(mt, bson.TypeNull, set.Document().Lookup("strategy_id").Type)
	})

	mt.Run("delete missing leaves trips alone", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := store.DeleteSavedStrategy(context.Background(), "u1", "s1")
		assert.ErrorIs(mt, err, ErrNotFound)
		mt.GetStartedEvent()
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestTrips(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	mt.Run("manual trip inserts", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		trip, err := store.CreateOrUpdateTrip(context.Background(), models.Trip{
			UserID: "u1", Destination: "Lisbon", StartDate: start, EndDate: start.AddDate(0, 0, 7),
		})
		require.NoError(mt, err)
		assert.NotEmpty(mt, trip.ID)
		assert.Equal(mt, fixedNow, trip.CreatedAt)
		assert.Equal(mt, "insert", mt.GetStartedEvent().CommandName)
	})

	mt.Run("linked trip upserts", func(mt *mtest.T) {
		store := newTestStore(mt)
		sid := "s1"
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "t1"},
			{Key: "user_id", Value: "u1"},
			{Key: "destination", Value: "Kyoto first"},
			{Key: "start_date", Value: start},
			{Key: "end_date", Value: start.AddDate(0, 0, 3)},
			{Key: "strategy_id", Value: sid},
		}}))

		trip, err := store.CreateOrUpdateTrip(context.Background(), models.Trip{
			UserID: "u1", Destination: "renamed", StartDate: start, EndDate: start.AddDate(0, 0, 3), StrategyID: &sid,
		})
		require.NoError(mt, err)
		assert.Equal(mt, "t1", trip.ID)
		assert.Equal(mt, "Kyoto first", trip.Destination)
		require.NotNil(mt, trip.StrategyID)
		assert.Equal(mt, sid, *trip.StrategyID)
		assert.True(mt, trip.StartDate.Equal(start))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "findAndModify", evt.CommandName)
		assert.True(mt, evt.Command.Lookup("upsert").Boolean())
	})

	mt.Run("list", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+tripsCollection, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "t1"}, {Key: "user_id", Value: "u1"}, {Key: "destination", Value: "Oslo"}, {Key: "strategy_id", Value: nil}},
		))

		trips, err := store.ListTrips(context.Background(), "u1")
		require.NoError(mt, err)
		require.Len(mt, trips, 1)
		assert.Nil(mt, trips[0].StrategyID)
	})
}

func TestProviderKeys(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("absent user", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+credentialsCollection, mtest.FirstBatch))

		keys, err := store.GetProviderKeys(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Equal(mt, "u1", keys.UserID)
		assert.Empty(mt, keys.Get(models.ProviderOpenAI))
	})

	mt.Run("stored", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, mt.DB.Name()+"."+credentialsCollection, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "u1"}, {Key: "openai_key", Value: "v1.cipher"}},
		))

		keys, err := store.GetProviderKeys(context.Background(), "u1")
		require.NoError(mt, err)
		assert.Equal(mt, "v1.cipher", keys.Get(models.ProviderOpenAI))
		assert.Empty(mt, keys.Get(models.ProviderGemini))
	})

	mt.Run("set clears absent keys", func(mt *mtest.T) {
		store := newTestStore(mt)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		err := store.SetProviderKeys(context.Background(), models.ProviderKeys{UserID: "u1", GeminiKey: "v1.g"})
		require.NoError(mt, err)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		u := evt.Command.Lookup("updates", "0", "u").Document()
		assert.Equal(mt, "v1.g", u.Lookup("$set", "gemini_key").StringValue())
		_, err = u.LookupErr("$unset", "openai_key")
		assert.NoError(mt, err)
		_, err = u.LookupErr("$unset", "anthropic_key")
		assert.NoError(mt, err)
	})
}
