package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveybuddy/internal/model"
)

// MessageRepo handles MongoDB operations for session transcripts. Messages
// are append-only; the single update per message is the finalize pass that
// strips directive tags from an assistant reply.
type MessageRepo interface {
	Append(ctx context.Context, msg *model.ChatMessage) error
	Update(ctx context.Context, msg *model.ChatMessage) error
	ListBySession(ctx context.Context, sessionID string) ([]model.ChatMessage, error)
}

type messageRepo struct {
	collection *mongo.Collection
}

// NewMessageRepo creates a new message repository
func NewMessageRepo(db *mongo.Database) MessageRepo {
	return &messageRepo{
		collection: db.Collection("messages"),
	}
}

func (r *messageRepo) Append(ctx context.Context, msg *model.ChatMessage) error {
	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

func (r *messageRepo) Update(ctx context.Context, msg *model.ChatMessage) error {
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": msg.ID}, msg)
	return err
}

func (r *messageRepo) ListBySession(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sessionId": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []model.ChatMessage
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}
