// Package mq publishes domain events to Redis pub/sub for downstream consumers.
package mq

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const Channel = "tripwise-events"

const (
	SearchCreated      = "search-created"
	StrategySaved      = "strategy-saved"
	TripUpserted       = "trip-upserted"
	CredentialsUpdated = "credentials-updated"
)

// Event is the envelope written to Channel.
type Event struct {
	Name      string    `json:"event"`
	UserID    string    `json:"user_id"`
	EntityID  string    `json:"entity_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the subset of *redis.Client the emitter needs.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// Emitter is fire-and-forget: publish failures are logged, never returned.
// A nil Emitter, or one without a publisher, drops events.
type Emitter struct {
	pub Publisher
	log *zap.Logger
}

func NewEmitter(pub Publisher, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{pub: pub, log: log}
}

// Emit publishes name for userID and entityID.
func (e *Emitter) Emit(ctx context.Context, name, userID, entityID string) {
	if e == nil || e.pub == nil {
		return
	}
	data, err := json.Marshal(Event{Name: name, UserID: userID, EntityID: entityID, Timestamp: time.Now().UTC()})
	if err != nil {
		e.log.Warn("marshal event", zap.String("event", name), zap.Error(err))
		return
	}
	if err := e.pub.Publish(ctx, Channel, data).Err(); err != nil {
		e.log.Warn("publish event", zap.String("event", name), zap.String("channel", Channel), zap.Error(err))
		return
	}
	e.log.Debug("event published", zap.String("event", name), zap.String("entity_id", entityID))
}
