package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gb112302/agriconnect/internal/app/config"
	"github.com/gb112302/agriconnect/internal/domain/entity"
	"github.com/gb112302/agriconnect/internal/platform/logger"
	"github.com/gb112302/agriconnect/internal/repository"
)

const chatCollectionName = "chats"

type chatRepository struct {
	collection *mongo.Collection
}

func NewChatRepository(client *mongo.Client, cfg config.MongoDBConfig, log logger.Logger) repository.ChatRepository {
	collection := client.Database(cfg.Database).Collection(chatCollectionName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "participants", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "last_message_time", Value: -1}}},
	})
	if err != nil {
		log.Warnf("Could not create indexes on chats: %v", err)
	}

	return &chatRepository{collection: collection}
}

func (r *chatRepository) GetOrCreate(ctx context.Context, a, b primitive.ObjectID) (*entity.Chat, error) {
	participants := entity.SortParticipants(a, b)

	var chat entity.Chat
	err := r.collection.FindOne(ctx, bson.M{"participants": participants}).Decode(&chat)
	if err == nil {
		return &chat, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("failed to look up chat: %w", err)
	}

	fresh, err := entity.NewChat(a, b)
	if err != nil {
		return nil, err
	}
	res, err := r.collection.InsertOne(ctx, fresh)
	if err != nil {
		// A concurrent first message may have created it between the read
		// and the insert.
		if isDuplicateKey(err) {
			if errFind := r.collection.FindOne(ctx, bson.M{"participants": participants}).Decode(&chat); errFind == nil {
				return &chat, nil
			}
		}
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		fresh.ID = id
	}
	return fresh, nil
}

func (r *chatRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Chat, error) {
	var chat entity.Chat
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&chat)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chat %s: %w", id.Hex(), err)
	}
	return &chat, nil
}

func (r *chatRepository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Chat, error) {
	findOptions := options.Find().
		SetSort(bson.D{{Key: "last_message_time", Value: -1}}).
		SetProjection(bson.M{"messages": 0})

	cursor, err := r.collection.Find(ctx, bson.M{"participants": userID}, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}
	defer cursor.Close(ctx)

	var chats []entity.Chat
	if err = cursor.All(ctx, &chats); err != nil {
		return nil, fmt.Errorf("failed to decode listed chats: %w", err)
	}
	return chats, nil
}

func (r *chatRepository) AppendMessage(ctx context.Context, chatID primitive.ObjectID, message entity.ChatMessage) error {
	update := bson.M{
		"$push": bson.M{"messages": message},
		"$set": bson.M{
			"last_message":      message.Content,
			"last_message_time": message.SentAt,
		},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": chatID}, update)
	if err != nil {
		return fmt.Errorf("failed to append message to chat %s: %w", chatID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *chatRepository) MarkRead(ctx context.Context, chatID, readerID primitive.ObjectID) error {
	update := bson.M{
		"$set": bson.M{"messages.$[msg].read": true},
	}
	arrayFilters := options.ArrayFilters{
		Filters: bson.A{bson.M{
			"msg.sender": bson.M{"$ne": readerID},
			"msg.read":   false,
		}},
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": chatID}, update,
		options.Update().SetArrayFilters(arrayFilters))
	if err != nil {
		return fmt.Errorf("failed to mark chat %s as read: %w", chatID.Hex(), err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
