package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoHistory(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("append inserts exchange", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		store := NewMongoHistory(mt.Coll)

		err := store.Append(context.Background(), Exchange{UserID: "u1", Message: "hi", Reply: "hello"})
		require.NoError(mt, err)
	})

	mt.Run("append surfaces write errors", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))
		store := NewMongoHistory(mt.Coll)

		err := store.Append(context.Background(), Exchange{UserID: "u1", Message: "hi", Reply: "hello"})
		require.Error(mt, err)
	})

	mt.Run("recent decodes newest first", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		newer := time.Date(2026, 5, 2, 10, 0, 0, 0, time.UTC)
		older := newer.Add(-time.Hour)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "user_id", Value: "u1"},
					{Key: "message", Value: "second"},
					{Key: "reply", Value: "b"},
					{Key: "created_at", Value: newer},
				},
				bson.D{
					{Key: "_id", Value: primitive.NewObjectID()},
					{Key: "user_id", Value: "u1"},
					{Key: "message", Value: "first"},
					{Key: "reply", Value: "a"},
					{Key: "fallback", Value: true},
					{Key: "created_at", Value: older},
				},
			),
		)
		store := NewMongoHistory(mt.Coll)

		items, err := store.Recent(context.Background(), "u1", 10)
		require.NoError(mt, err)
		require.Len(mt, items, 2)
		assert.Equal(mt, "second", items[0].Message)
		assert.True(mt, items[1].Fallback)
		assert.True(mt, items[0].CreatedAt.Equal(newer))
	})
}
