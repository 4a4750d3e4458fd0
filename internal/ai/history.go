package ai

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// HistoryCollection is where chat exchanges are stored.
const HistoryCollection = "ai_conversations"

const (
	defaultHistoryLimit = 25
	maxHistoryLimit     = 100
)

// Exchange is one user message and the assistant's reply.
type Exchange struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"-"`
	Message   string             `bson:"message" json:"message"`
	Reply     string             `bson:"reply" json:"reply"`
	Fallback  bool               `bson:"fallback" json:"fallback"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// HistoryStore persists chat transcripts.
type HistoryStore interface {
	Append(ctx context.Context, exchange Exchange) error
	Recent(ctx context.Context, userID string, limit int) ([]Exchange, error)
}

type mongoHistory struct {
	coll *mongo.Collection
}

// NewMongoHistory stores transcripts in the given collection.
func NewMongoHistory(coll *mongo.Collection) HistoryStore {
	return &mongoHistory{coll: coll}
}

// EnsureHistoryIndexes creates the (user_id, created_at) index used by Recent.
func EnsureHistoryIndexes(ctx context.Context, coll *mongo.Collection) error {
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "user_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("idx_user_created_at"),
	})
	if err != nil {
		return fmt.Errorf("create %s index: %w", HistoryCollection, err)
	}
	return nil
}

func (h *mongoHistory) Append(ctx context.Context, exchange Exchange) error {
	if exchange.CreatedAt.IsZero() {
		exchange.CreatedAt = time.Now().UTC()
	}
	if _, err := h.coll.InsertOne(ctx, exchange); err != nil {
		return fmt.Errorf("insert chat exchange: %w", err)
	}
	return nil
}

// Recent returns the newest exchanges first.
func (h *mongoHistory) Recent(ctx context.Context, userID string, limit int) ([]Exchange, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := h.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find chat exchanges: %w", err)
	}
	defer cur.Close(ctx)

	items := make([]Exchange, 0, limit)
	for cur.Next(ctx) {
		var item Exchange
		if err := cur.Decode(&item); err != nil {
			return nil, fmt.Errorf("decode chat exchange: %w", err)
		}
		items = append(items, item)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat exchanges: %w", err)
	}
	return items, nil
}
